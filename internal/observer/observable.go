package observer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Policy selects how Notify treats a failing observer.
type Policy int

const (
	// IsolateFailures reports the failure and keeps delivering to the
	// remaining observers.
	IsolateFailures Policy = iota
	// StopOnFailure skips the remaining observers of the notification.
	StopOnFailure
)

func (p Policy) String() string {
	switch p {
	case IsolateFailures:
		return "isolate"
	case StopOnFailure:
		return "stop"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy parses "isolate" or "stop".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "isolate":
		return IsolateFailures, nil
	case "stop":
		return StopOnFailure, nil
	default:
		return 0, fmt.Errorf("unknown failure policy: %s", s)
	}
}

// Option configures an Observable.
type Option func(*Observable)

// WithLogger sets the sink for delivery diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Observable) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPolicy sets the failure policy. The default is IsolateFailures.
func WithPolicy(p Policy) Option {
	return func(o *Observable) {
		o.policy = p
	}
}

// Observable owns an ordered list of observers and delivers snapshots to
// them. Registration happens before the run; the list is not safe for
// modification concurrent with Notify.
type Observable struct {
	observers []Observer
	logger    *slog.Logger
	policy    Policy
}

// NewObservable creates an Observable with no observers.
func NewObservable(opts ...Option) *Observable {
	o := &Observable{
		logger: slog.Default(),
		policy: IsolateFailures,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Register appends obs to the delivery list. Nil observers are ignored.
// The same observer registered twice is notified twice.
func (o *Observable) Register(obs Observer) {
	if obs == nil {
		return
	}
	o.observers = append(o.observers, obs)
	o.logger.Debug("Observer registered", "observer", nameOf(obs), "position", len(o.observers)-1)
}

// Len returns the number of registered observers.
func (o *Observable) Len() int {
	return len(o.observers)
}

// Policy returns the failure policy in effect.
func (o *Observable) Policy() Policy {
	return o.policy
}

// Notify delivers s to every registered observer in registration order and
// returns once all of them have returned. Each failure is logged; the
// returned error joins them for callers that want to inspect them. Under
// IsolateFailures a failure never stops delivery to later observers.
func (o *Observable) Notify(ctx context.Context, s Snapshot) error {
	var errs []error

	for _, obs := range o.observers {
		name := nameOf(obs)
		start := time.Now()
		err := deliver(ctx, obs, s)
		updateDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

		if err == nil {
			updatesTotal.WithLabelValues(name, outcomeOK).Inc()
			continue
		}

		var panicErr *PanicError
		if errors.As(err, &panicErr) {
			updatesTotal.WithLabelValues(name, outcomePanic).Inc()
		} else {
			updatesTotal.WithLabelValues(name, outcomeError).Inc()
		}

		err = fmt.Errorf("observer %s: %w", name, err)
		errs = append(errs, err)
		o.report(ctx, name, s, err)

		if o.policy == StopOnFailure {
			o.logger.ErrorContext(ctx, "Stopping delivery after observer failure",
				"observer", name,
				"evaluations", s.Evaluations,
			)
			break
		}
	}

	return errors.Join(errs...)
}

// report logs a delivery failure. Contract violations are errors; anything
// else is treated as a transient side-effect failure.
func (o *Observable) report(ctx context.Context, name string, s Snapshot, err error) {
	level := slog.LevelWarn
	var panicErr *PanicError
	if errors.Is(err, ErrMissingField) || errors.As(err, &panicErr) {
		level = slog.LevelError
	}
	o.logger.Log(ctx, level, "Observer update failed",
		"observer", name,
		"evaluations", s.Evaluations,
		"error", err,
	)
}

// deliver calls obs.Update, converting a panic into a *PanicError.
func deliver(ctx context.Context, obs Observer, s Snapshot) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return obs.Update(ctx, s)
}

// Close releases observers that own resources (those implementing
// io.Closer), in registration order. Every closer is called even if an
// earlier one fails or panics.
func (o *Observable) Close() error {
	var errs []error
	for _, obs := range o.observers {
		c, ok := obs.(io.Closer)
		if !ok {
			continue
		}
		if err := release(c); err != nil {
			errs = append(errs, fmt.Errorf("close observer %s: %w", nameOf(obs), err))
		}
	}
	return errors.Join(errs...)
}

// release calls c.Close, converting a panic into a *PanicError.
func release(c io.Closer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return c.Close()
}

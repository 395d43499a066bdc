package observer

import (
	"context"
	"log/slog"
)

// SummaryLog logs the evaluation count, best objective vector and
// computing time at Debug level on throttled snapshots with a non-empty
// front.
type SummaryLog struct {
	throttle Throttle
	logger   *slog.Logger
}

// NewSummaryLog creates a summary logger acting every frequency evaluations.
// A nil logger uses slog.Default().
func NewSummaryLog(frequency int, logger *slog.Logger) (*SummaryLog, error) {
	throttle, err := NewThrottle(frequency)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryLog{throttle: throttle, logger: logger}, nil
}

// Name implements Named.
func (l *SummaryLog) Name() string { return "summary-log" }

// Update implements Observer.
func (l *SummaryLog) Update(ctx context.Context, s Snapshot) error {
	if err := s.Require(FieldComputingTime, FieldEvaluations); err != nil {
		return err
	}

	best, ok := s.Best()
	if !ok || !l.throttle.Allow(s.Evaluations) {
		return nil
	}

	l.logger.DebugContext(ctx, "Search progress",
		"evaluations", s.Evaluations,
		"best_fitness", best.ObjectiveValues(),
		"computing_time", s.ComputingTime,
	)
	return nil
}

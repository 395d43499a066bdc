package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/cwbudde/mayflywatch/internal/observer"
	"github.com/cwbudde/mayflywatch/internal/problem"
	"github.com/google/uuid"
)

// Config parameterizes a search run.
type Config struct {
	// Iterations is the number of mayfly iterations per scalarization.
	Iterations int
	// Population is the mayfly population size (at least MinPopulation).
	Population int
	// Seed makes runs reproducible.
	Seed int64
	// MaxEvaluations stops the run once reached. Zero means no budget.
	MaxEvaluations int
	// NotifyEvery emits a snapshot every NotifyEvery evaluations.
	NotifyEvery int
	// Scalarizations is the number of weight vectors the problem is
	// optimized under. Zero picks 1 for single-objective problems and 5
	// otherwise.
	Scalarizations int
	// ArchiveSize bounds the front. Zero means DefaultArchiveSize.
	ArchiveSize int
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", c.Iterations)
	}
	if c.Population < MinPopulation {
		return fmt.Errorf("population must be at least %d, got %d", MinPopulation, c.Population)
	}
	if c.NotifyEvery < 1 {
		return fmt.Errorf("notify_every must be at least 1, got %d", c.NotifyEvery)
	}
	if c.MaxEvaluations < 0 {
		return fmt.Errorf("max_evaluations cannot be negative, got %d", c.MaxEvaluations)
	}
	if c.Scalarizations < 0 {
		return fmt.Errorf("scalarizations cannot be negative, got %d", c.Scalarizations)
	}
	if c.ArchiveSize < 0 {
		return fmt.Errorf("archive_size cannot be negative, got %d", c.ArchiveSize)
	}
	return nil
}

// Result summarizes a finished run.
type Result struct {
	RunID         string             `json:"runId"`
	Problem       string             `json:"problem"`
	Evaluations   int                `json:"evaluations"`
	Elapsed       time.Duration      `json:"elapsed"`
	Front         []problem.Solution `json:"front"`
	BestCost      float64            `json:"bestCost"`
	Notifications int                `json:"notifications"`
	Failures      int                `json:"failures"`
}

// OptimizerFactory creates the optimizer for one scalarization.
type OptimizerFactory func(cfg Config, seed int64) Optimizer

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithOptimizerFactory replaces the mayfly optimizer.
func WithOptimizerFactory(f OptimizerFactory) RunnerOption {
	return func(r *Runner) {
		if f != nil {
			r.newOptimizer = f
		}
	}
}

// Runner solves a problem with mayfly and reports progress to its
// observers. Register observers through the embedded Observable before
// calling Run.
type Runner struct {
	*observer.Observable

	problem      problem.Problem
	config       Config
	logger       *slog.Logger
	newOptimizer OptimizerFactory
}

// NewRunner creates a runner for p. A nil observable gets a fresh one with
// default options.
func NewRunner(p problem.Problem, cfg Config, obs *observer.Observable, opts ...RunnerOption) (*Runner, error) {
	if p == nil {
		return nil, errors.New("problem cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search config: %w", err)
	}
	if obs == nil {
		obs = observer.NewObservable()
	}

	r := &Runner{
		Observable: obs,
		problem:    p,
		config:     cfg,
		logger:     slog.Default(),
		newOptimizer: func(cfg Config, seed int64) Optimizer {
			return NewMayfly(cfg.Iterations, cfg.Population, seed)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// errBudget short-circuits the remaining evaluations of a run.
var errBudget = errors.New("evaluation budget exhausted")

// run holds the mutable state of one Run call.
type run struct {
	id            string
	start         time.Time
	archive       *Archive
	evaluations   int
	notifications int
	failures      int
	lastNotified  int
	stop          error
}

// Run executes the search. Every NotifyEvery evaluations, and once more at
// the end if the last evaluation was not already reported, the current
// front is delivered to the observers. Observers are closed when Run
// returns.
//
// Under observer.StopOnFailure the first failing notification ends the
// run and its error is returned. Cancelling ctx ends the run with
// ctx.Err().
func (r *Runner) Run(ctx context.Context) (result *Result, err error) {
	defer func() {
		if cerr := r.Observable.Close(); cerr != nil {
			r.logger.Warn("Failed to close observers", "error", cerr)
		}
	}()

	lower, upper := r.problem.Bounds()
	dim := r.problem.NumberOfVariables()
	lowerVec, upperVec := make([]float64, dim), make([]float64, dim)
	for i := 0; i < dim; i++ {
		lowerVec[i] = lower
		upperVec[i] = upper
	}

	scalarizations := r.config.Scalarizations
	if scalarizations == 0 {
		scalarizations = 5
		if r.problem.NumberOfObjectives() == 1 {
			scalarizations = 1
		}
	}
	weights := WeightVectors(r.problem.NumberOfObjectives(), scalarizations, rand.New(rand.NewSource(r.config.Seed)))

	st := &run{
		id:           uuid.NewString(),
		start:        time.Now(),
		archive:      NewArchive(r.config.ArchiveSize),
		lastNotified: -1,
	}

	r.logger.Info("Search started",
		"run_id", st.id,
		"problem", r.problem.Name(),
		"variables", dim,
		"objectives", r.problem.NumberOfObjectives(),
		"scalarizations", scalarizations,
		"observers", r.Len(),
		"policy", r.Policy().String(),
	)

	bestCost := math.Inf(1)
	for i, w := range weights {
		if st.stop != nil {
			break
		}

		eval := r.evaluator(ctx, st, w, lower, upper)
		_, cost, err := r.newOptimizer(r.config, r.config.Seed+int64(i)).Run(ctx, eval, lowerVec, upperVec, dim)
		if err != nil && st.stop == nil {
			return nil, fmt.Errorf("scalarization %d: %w", i, err)
		}
		if st.stop == nil && cost < bestCost {
			bestCost = cost
		}
		r.logger.Debug("Scalarization finished", "run_id", st.id, "index", i, "weights", w, "cost", cost)
	}

	if errors.Is(st.stop, errBudget) {
		st.stop = nil
	}
	if st.stop == nil && st.lastNotified != st.evaluations {
		r.notify(ctx, st)
	}

	result = &Result{
		RunID:         st.id,
		Problem:       r.problem.Name(),
		Evaluations:   st.evaluations,
		Elapsed:       time.Since(st.start),
		Front:         st.archive.Solutions(),
		BestCost:      bestCost,
		Notifications: st.notifications,
		Failures:      st.failures,
	}

	r.logger.Info("Search finished",
		"run_id", st.id,
		"evaluations", result.Evaluations,
		"front_size", len(result.Front),
		"notifications", result.Notifications,
		"failures", result.Failures,
		"elapsed", result.Elapsed,
	)

	if st.stop != nil {
		return result, st.stop
	}
	return result, nil
}

// evaluator wraps the problem in the scalar objective handed to the
// optimizer. Once the run is stopped, further calls cost nothing and are
// not counted.
func (r *Runner) evaluator(ctx context.Context, st *run, weights []float64, lower, upper float64) func([]float64) float64 {
	var mu sync.Mutex
	return func(x []float64) float64 {
		mu.Lock()
		defer mu.Unlock()

		if st.stop != nil {
			return math.Inf(1)
		}
		if err := ctx.Err(); err != nil {
			st.stop = err
			return math.Inf(1)
		}
		if r.config.MaxEvaluations > 0 && st.evaluations >= r.config.MaxEvaluations {
			st.stop = errBudget
			return math.Inf(1)
		}

		clamped := make([]float64, len(x))
		for i, v := range x {
			clamped[i] = math.Max(lower, math.Min(upper, v))
		}

		objectives := r.problem.Evaluate(clamped)
		st.evaluations++
		st.archive.Add(problem.NewSolution(clamped, objectives))

		if st.evaluations%r.config.NotifyEvery == 0 {
			if err := r.notify(ctx, st); err != nil && r.Policy() == observer.StopOnFailure {
				st.stop = err
			}
		}

		cost := Scalarize(objectives, weights)
		if math.IsNaN(cost) {
			return math.Inf(1)
		}
		return cost
	}
}

func (r *Runner) notify(ctx context.Context, st *run) error {
	snapshot := observer.Snapshot{
		RunID:         st.id,
		ComputingTime: time.Since(st.start),
		Evaluations:   st.evaluations,
		Solutions:     st.archive.Solutions(),
		Problem:       r.problem,
	}

	st.notifications++
	st.lastNotified = st.evaluations

	err := r.Notify(ctx, snapshot)
	st.failures += countErrors(err)
	return err
}

// countErrors counts the failures joined into err.
func countErrors(err error) int {
	if err == nil {
		return 0
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	return 1
}

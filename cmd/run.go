package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cwbudde/mayflywatch/internal/config"
	"github.com/cwbudde/mayflywatch/internal/observer"
	"github.com/cwbudde/mayflywatch/internal/plot"
	"github.com/cwbudde/mayflywatch/internal/problem"
	"github.com/cwbudde/mayflywatch/internal/search"
	"github.com/cwbudde/mayflywatch/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	runConfigPath  string
	problemName    string
	variables      int
	iters          int
	popSize        int
	seed           int64
	maxEvals       int
	notifyEvery    int
	policyName     string
	showProgress   bool
	logEvery       int
	frontDir       string
	plotEnabled    bool
	plotAddr       string
	plotEvery      int
	plotHold       bool
	tracePath      string
	publishAddr    string
	publishChannel string
	recordDir      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a mayfly search with progress observers",
	Long: `Runs mayfly on a benchmark problem and reports progress to the enabled
observers, in this order: progress bar, summary log, front files, trace,
live plot, Redis publishing.

Settings come from --config (YAML, TOML or JSON) and are overridden by
flags given on the command line.`,
	RunE: runSearch,
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Config file (.yaml, .toml, .json)")
	runCmd.Flags().StringVar(&problemName, "problem", "zdt1", "Problem: "+strings.Join(problem.Names(), ", "))
	runCmd.Flags().IntVar(&variables, "variables", 30, "Number of decision variables")
	runCmd.Flags().IntVar(&iters, "iters", 500, "Mayfly iterations per scalarization")
	runCmd.Flags().IntVar(&popSize, "pop", 20, "Population size (at least 20)")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "Random seed")
	runCmd.Flags().IntVar(&maxEvals, "max-evals", 25000, "Evaluation budget (0 = unlimited)")
	runCmd.Flags().IntVar(&notifyEvery, "notify-every", 100, "Notify observers every N evaluations")
	runCmd.Flags().StringVar(&policyName, "policy", "isolate", "Observer failure policy: isolate, stop")
	runCmd.Flags().BoolVar(&showProgress, "progress", true, "Show a progress bar")
	runCmd.Flags().IntVar(&logEvery, "log-every", 1000, "Log a summary every N evaluations (0 = off)")
	runCmd.Flags().StringVar(&frontDir, "front-dir", "", "Write FUN.<n> front files to this directory")
	runCmd.Flags().BoolVar(&plotEnabled, "plot", false, "Serve a live plot of the front")
	runCmd.Flags().StringVar(&plotAddr, "plot-addr", ":8080", "Live plot listen address")
	runCmd.Flags().IntVar(&plotEvery, "plot-every", 1000, "Update the plot every N evaluations")
	runCmd.Flags().BoolVar(&plotHold, "plot-hold", false, "Keep serving the plot after the run until interrupted")
	runCmd.Flags().StringVar(&tracePath, "trace", "", "Record a JSONL trace to this path")
	runCmd.Flags().StringVar(&publishAddr, "publish", "", "Publish fronts to the Redis server at this address")
	runCmd.Flags().StringVar(&publishChannel, "channel", "mayflywatch:fronts", "Redis channel for published fronts")
	runCmd.Flags().StringVar(&recordDir, "data-dir", "", "Save a run record under this directory")

	rootCmd.AddCommand(runCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if runConfigPath != "" {
		loaded, err := config.Load(runConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applyRunFlags(cmd, &cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	result, err := executeRun(ctx, cfg, out, logger)
	if result != nil {
		printSummary(out, result)
	}
	return err
}

// applyRunFlags copies explicitly set flags over cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("problem") {
		cfg.Problem = problemName
	}
	if flags.Changed("variables") {
		cfg.Variables = variables
	}
	if flags.Changed("iters") {
		cfg.Iterations = iters
	}
	if flags.Changed("pop") {
		cfg.Population = popSize
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("max-evals") {
		cfg.MaxEvaluations = maxEvals
	}
	if flags.Changed("notify-every") {
		cfg.NotifyEvery = notifyEvery
	}
	if flags.Changed("policy") {
		cfg.Policy = policyName
	}
	if flags.Changed("progress") {
		cfg.Progress.Enabled = showProgress
	}
	if flags.Changed("log-every") {
		cfg.Log.Enabled = logEvery > 0
		cfg.Log.Frequency = logEvery
	}
	if flags.Changed("front-dir") {
		cfg.Front.Enabled = frontDir != ""
		cfg.Front.Directory = frontDir
	}
	if flags.Changed("plot") {
		cfg.Plot.Enabled = plotEnabled
	}
	if flags.Changed("plot-addr") {
		cfg.Plot.Addr = plotAddr
	}
	if flags.Changed("plot-every") {
		cfg.Plot.Frequency = plotEvery
	}
	if flags.Changed("plot-hold") {
		cfg.Plot.Hold = plotHold
	}
	if flags.Changed("trace") {
		cfg.Trace.Enabled = tracePath != ""
		cfg.Trace.Path = tracePath
	}
	if flags.Changed("publish") {
		cfg.Publish.Enabled = publishAddr != ""
		cfg.Publish.Addr = publishAddr
	}
	if flags.Changed("channel") {
		cfg.Publish.Channel = publishChannel
	}
	if flags.Changed("data-dir") {
		cfg.Record.Enabled = recordDir != ""
		cfg.Record.Directory = recordDir
	}
}

// executeRun validates cfg, assembles the observers and runs the search.
// Setup failures are returned before any evaluation happens.
func executeRun(ctx context.Context, cfg config.Config, out io.Writer, logger *slog.Logger) (*search.Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	p, err := problem.Lookup(cfg.Problem, cfg.Variables)
	if err != nil {
		return nil, err
	}
	policy, err := observer.ParsePolicy(strings.ToLower(cfg.Policy))
	if err != nil {
		return nil, err
	}

	obs := observer.NewObservable(observer.WithLogger(logger), observer.WithPolicy(policy))
	scatter, client, err := registerObservers(ctx, cfg, p, obs, out, logger)
	if client != nil {
		defer client.Close()
	}
	if err != nil {
		if cerr := obs.Close(); cerr != nil {
			logger.Warn("Failed to release observers", "error", cerr)
		}
		return nil, err
	}

	runner, err := search.NewRunner(p, searchConfig(cfg), obs, search.WithLogger(logger))
	if err != nil {
		obs.Close()
		return nil, err
	}

	var result *search.Result
	if scatter != nil {
		result, err = runWithPlot(ctx, cfg.Plot, runner, scatter, logger)
	} else {
		result, err = runner.Run(ctx)
	}

	if result != nil && cfg.Record.Enabled {
		if rerr := saveRecord(cfg, result); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}
	return result, err
}

// registerObservers builds the enabled observers and registers them in
// their fixed order. It returns the live plot and the Redis client when
// those are enabled.
func registerObservers(ctx context.Context, cfg config.Config, p problem.Problem, obs *observer.Observable, out io.Writer, logger *slog.Logger) (*plot.Scatter, *redis.Client, error) {
	if cfg.Progress.Enabled {
		bar, err := observer.NewTerminalProgressBar(out,
			cfg.ProgressStep(), cfg.ProgressMaximum(), cfg.Progress.Description,
			observer.WithInitial(cfg.Progress.Initial),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("progress bar: %w", err)
		}
		obs.Register(bar)
	}

	if cfg.Log.Enabled {
		summary, err := observer.NewSummaryLog(cfg.Log.Frequency, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("summary log: %w", err)
		}
		obs.Register(summary)
	}

	if cfg.Front.Enabled {
		fronts, err := observer.NewFrontWriter(cfg.Front.Directory, logger)
		if err != nil {
			return nil, nil, err
		}
		obs.Register(fronts)
	}

	if cfg.Trace.Enabled {
		trace, err := observer.NewTraceRecorder(cfg.Trace.Path, cfg.Trace.Frequency)
		if err != nil {
			return nil, nil, fmt.Errorf("trace: %w", err)
		}
		obs.Register(trace)
	}

	var scatter *plot.Scatter
	if cfg.Plot.Enabled {
		scatter = plot.NewScatter(p.Name()+" front", plot.NewHub(logger))
		visualizer, err := observer.NewVisualizer(scatter, cfg.Plot.Frequency, cfg.Plot.Replace)
		if err != nil {
			return nil, nil, fmt.Errorf("visualizer: %w", err)
		}
		obs.Register(visualizer)
	}

	var client *redis.Client
	if cfg.Publish.Enabled {
		client = redis.NewClient(&redis.Options{Addr: cfg.Publish.Addr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return scatter, client, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Publish.Addr, err)
		}
		publisher, err := observer.NewPublisher(client, cfg.Publish.Channel, cfg.Publish.Frequency)
		if err != nil {
			return scatter, client, fmt.Errorf("publisher: %w", err)
		}
		obs.Register(publisher)
	}

	logger.Debug("Observers assembled", "count", obs.Len())
	return scatter, client, nil
}

// runWithPlot runs the search while serving the live plot. The server
// stops when the run ends, or on interrupt when hold is set.
func runWithPlot(ctx context.Context, cfg config.PlotConfig, runner *search.Runner, scatter *plot.Scatter, logger *slog.Logger) (*search.Result, error) {
	srv := plot.NewServer(cfg.Addr, scatter, logger)

	serverCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()

	g, gctx := errgroup.WithContext(serverCtx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	var result *search.Result
	g.Go(func() error {
		var err error
		result, err = runner.Run(gctx)
		if err != nil {
			return err
		}
		if cfg.Hold {
			logger.Info("Run finished, serving plot until interrupted", "addr", cfg.Addr)
			<-gctx.Done()
		}
		stopServer()
		return nil
	})

	err := g.Wait()
	return result, err
}

func searchConfig(cfg config.Config) search.Config {
	return search.Config{
		Iterations:     cfg.Iterations,
		Population:     cfg.Population,
		Seed:           cfg.Seed,
		MaxEvaluations: cfg.MaxEvaluations,
		NotifyEvery:    cfg.NotifyEvery,
		Scalarizations: cfg.Scalarizations,
		ArchiveSize:    cfg.ArchiveSize,
	}
}

func saveRecord(cfg config.Config, result *search.Result) error {
	runStore, err := store.NewRunStore(cfg.Record.Directory)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	record := &store.RunRecord{
		RunID: result.RunID,
		Settings: store.RunSettings{
			Problem:        result.Problem,
			Variables:      cfg.Variables,
			Iterations:     cfg.Iterations,
			Population:     cfg.Population,
			Seed:           cfg.Seed,
			MaxEvaluations: cfg.MaxEvaluations,
			NotifyEvery:    cfg.NotifyEvery,
			Policy:         cfg.Policy,
		},
		Evaluations:   result.Evaluations,
		Elapsed:       result.Elapsed,
		Front:         problem.ObjectiveMatrix(result.Front),
		Notifications: result.Notifications,
		Failures:      result.Failures,
		Timestamp:     time.Now(),
	}
	if !math.IsInf(result.BestCost, 0) {
		record.BestCost = result.BestCost
	}

	if err := runStore.SaveRun(record); err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}
	return nil
}

func printSummary(w io.Writer, result *search.Result) {
	fmt.Fprintf(w, "Run %s (%s)\n", result.RunID, result.Problem)
	fmt.Fprintf(w, "  Evaluations:   %d\n", result.Evaluations)
	fmt.Fprintf(w, "  Front size:    %d\n", len(result.Front))
	if len(result.Front) > 0 {
		fmt.Fprintf(w, "  Best:          %v\n", result.Front[0].ObjectiveValues())
	}
	fmt.Fprintf(w, "  Notifications: %d (%d failed)\n", result.Notifications, result.Failures)
	fmt.Fprintf(w, "  Elapsed:       %s\n", result.Elapsed.Round(time.Millisecond))
}

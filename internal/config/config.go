// Package config loads run settings for mayflywatch from YAML, TOML or
// JSON files.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Config describes one search run and the observers watching it.
type Config struct {
	Problem        string `json:"problem" yaml:"problem" toml:"problem"`
	Variables      int    `json:"variables" yaml:"variables" toml:"variables"`
	Iterations     int    `json:"iterations" yaml:"iterations" toml:"iterations"`
	Population     int    `json:"population" yaml:"population" toml:"population"`
	Seed           int64  `json:"seed" yaml:"seed" toml:"seed"`
	MaxEvaluations int    `json:"max_evaluations" yaml:"max_evaluations" toml:"max_evaluations"`
	NotifyEvery    int    `json:"notify_every" yaml:"notify_every" toml:"notify_every"`
	Scalarizations int    `json:"scalarizations" yaml:"scalarizations" toml:"scalarizations"`
	ArchiveSize    int    `json:"archive_size" yaml:"archive_size" toml:"archive_size"`
	Policy         string `json:"policy" yaml:"policy" toml:"policy"`

	Progress ProgressConfig `json:"progress" yaml:"progress" toml:"progress"`
	Log      LogConfig      `json:"log" yaml:"log" toml:"log"`
	Front    FrontConfig    `json:"front" yaml:"front" toml:"front"`
	Plot     PlotConfig     `json:"plot" yaml:"plot" toml:"plot"`
	Trace    TraceConfig    `json:"trace" yaml:"trace" toml:"trace"`
	Publish  PublishConfig  `json:"publish" yaml:"publish" toml:"publish"`
	Record   RecordConfig   `json:"record" yaml:"record" toml:"record"`
}

// ProgressConfig configures the terminal progress bar. Step and Maximum
// count evaluations; zero means NotifyEvery and MaxEvaluations.
type ProgressConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	Step        int    `json:"step" yaml:"step" toml:"step"`
	Maximum     int    `json:"maximum" yaml:"maximum" toml:"maximum"`
	Initial     int    `json:"initial" yaml:"initial" toml:"initial"`
	Description string `json:"description" yaml:"description" toml:"description"`
}

// LogConfig configures the throttled summary log.
type LogConfig struct {
	Enabled   bool `json:"enabled" yaml:"enabled" toml:"enabled"`
	Frequency int  `json:"frequency" yaml:"frequency" toml:"frequency"`
}

// FrontConfig configures the FUN file writer.
type FrontConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	Directory string `json:"directory" yaml:"directory" toml:"directory"`
}

// PlotConfig configures the live plot and its HTTP server.
type PlotConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	Frequency int    `json:"frequency" yaml:"frequency" toml:"frequency"`
	Replace   bool   `json:"replace" yaml:"replace" toml:"replace"`
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	// Hold keeps the server up after the run until interrupted.
	Hold bool `json:"hold" yaml:"hold" toml:"hold"`
}

// TraceConfig configures the JSONL run trace.
type TraceConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	Path      string `json:"path" yaml:"path" toml:"path"`
	Frequency int    `json:"frequency" yaml:"frequency" toml:"frequency"`
}

// PublishConfig configures Redis publishing.
type PublishConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	Channel   string `json:"channel" yaml:"channel" toml:"channel"`
	Frequency int    `json:"frequency" yaml:"frequency" toml:"frequency"`
}

// RecordConfig configures the run record store.
type RecordConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	Directory string `json:"directory" yaml:"directory" toml:"directory"`
}

// Default returns a fully populated configuration.
func Default() Config {
	return Config{
		Problem:        "zdt1",
		Variables:      30,
		Iterations:     500,
		Population:     20,
		Seed:           1,
		MaxEvaluations: 25000,
		NotifyEvery:    100,
		Policy:         "isolate",
		Progress: ProgressConfig{
			Enabled:     true,
			Description: "Mayfly",
		},
		Log: LogConfig{
			Enabled:   true,
			Frequency: 1000,
		},
		Front: FrontConfig{
			Directory: "fronts",
		},
		Plot: PlotConfig{
			Frequency: 1000,
			Replace:   true,
			Addr:      ":8080",
		},
		Trace: TraceConfig{
			Path:      "trace.jsonl",
			Frequency: 100,
		},
		Publish: PublishConfig{
			Addr:      "localhost:6379",
			Channel:   "mayflywatch:fronts",
			Frequency: 1000,
		},
		Record: RecordConfig{
			Directory: "data",
		},
	}
}

// ProgressStep returns the progress step, defaulting to NotifyEvery.
func (c Config) ProgressStep() int {
	if c.Progress.Step > 0 {
		return c.Progress.Step
	}
	return c.NotifyEvery
}

// ProgressMaximum returns the progress maximum, defaulting to
// MaxEvaluations.
func (c Config) ProgressMaximum() int {
	if c.Progress.Maximum > 0 {
		return c.Progress.Maximum
	}
	return c.MaxEvaluations
}

// Validate checks ranges and cross-field requirements. All problems are
// reported together.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Problem != "", "problem cannot be empty")
	check(c.Variables >= 1, "variables must be at least 1, got %d", c.Variables)
	check(c.Iterations >= 1, "iterations must be at least 1, got %d", c.Iterations)
	check(c.Population >= 20, "population must be at least 20, got %d", c.Population)
	check(c.MaxEvaluations >= 0, "max_evaluations cannot be negative, got %d", c.MaxEvaluations)
	check(c.NotifyEvery >= 1, "notify_every must be at least 1, got %d", c.NotifyEvery)
	check(c.Scalarizations >= 0, "scalarizations cannot be negative, got %d", c.Scalarizations)
	check(c.ArchiveSize >= 0, "archive_size cannot be negative, got %d", c.ArchiveSize)

	switch strings.ToLower(c.Policy) {
	case "", "isolate", "stop":
	default:
		errs = append(errs, fmt.Errorf("policy must be isolate or stop, got %q", c.Policy))
	}

	if c.Progress.Enabled {
		check(c.ProgressStep() >= 1, "progress.step must be at least 1")
		check(c.ProgressMaximum() >= 1, "progress.maximum must be set when max_evaluations is 0")
		check(c.Progress.Initial >= 0, "progress.initial cannot be negative, got %d", c.Progress.Initial)
	}
	if c.Log.Enabled {
		check(c.Log.Frequency >= 1, "log.frequency must be at least 1, got %d", c.Log.Frequency)
	}
	if c.Front.Enabled {
		check(c.Front.Directory != "", "front.directory cannot be empty")
	}
	if c.Plot.Enabled {
		check(c.Plot.Frequency >= 1, "plot.frequency must be at least 1, got %d", c.Plot.Frequency)
		check(c.Plot.Addr != "", "plot.addr cannot be empty")
	}
	if c.Trace.Enabled {
		check(c.Trace.Path != "", "trace.path cannot be empty")
		check(c.Trace.Frequency >= 1, "trace.frequency must be at least 1, got %d", c.Trace.Frequency)
	}
	if c.Publish.Enabled {
		check(c.Publish.Addr != "", "publish.addr cannot be empty")
		check(c.Publish.Channel != "", "publish.channel cannot be empty")
		check(c.Publish.Frequency >= 1, "publish.frequency must be at least 1, got %d", c.Publish.Frequency)
	}
	if c.Record.Enabled {
		check(c.Record.Directory != "", "record.directory cannot be empty")
	}

	return errors.Join(errs...)
}

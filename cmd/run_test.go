package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/mayflywatch/internal/config"
	"github.com/cwbudde/mayflywatch/internal/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func smallConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Problem = "zdt1"
	cfg.Variables = 3
	cfg.Iterations = 5
	cfg.Population = 20
	cfg.MaxEvaluations = 300
	cfg.NotifyEvery = 50
	cfg.Scalarizations = 1
	cfg.Log.Frequency = 100
	return cfg
}

func TestExecuteRun_AllFileObservers(t *testing.T) {
	dir := t.TempDir()
	cfg := smallConfig(t)
	cfg.Front.Enabled = true
	cfg.Front.Directory = filepath.Join(dir, "fronts")
	cfg.Trace.Enabled = true
	cfg.Trace.Path = filepath.Join(dir, "trace.jsonl")
	cfg.Trace.Frequency = 50
	cfg.Record.Enabled = true
	cfg.Record.Directory = filepath.Join(dir, "data")

	var out bytes.Buffer
	result, err := executeRun(context.Background(), cfg, &out, quietLogger())
	if err != nil {
		t.Fatalf("executeRun failed: %v", err)
	}

	if result.Evaluations == 0 || result.Evaluations > 300 {
		t.Fatalf("Unexpected evaluation count %d", result.Evaluations)
	}
	wantNotifications := result.Evaluations / 50
	if result.Evaluations%50 != 0 {
		wantNotifications++
	}
	if result.Notifications != wantNotifications {
		t.Errorf("Expected %d notifications, got %d", wantNotifications, result.Notifications)
	}
	if result.Failures != 0 {
		t.Errorf("Expected no observer failures, got %d", result.Failures)
	}

	files, err := store.FrontFiles(cfg.Front.Directory)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != result.Notifications {
		t.Errorf("Expected one front file per notification, got %d files for %d notifications",
			len(files), result.Notifications)
	}

	if _, err := os.Stat(cfg.Trace.Path); err != nil {
		t.Errorf("Expected trace file: %v", err)
	}

	runStore, err := store.NewRunStore(cfg.Record.Directory)
	if err != nil {
		t.Fatal(err)
	}
	record, err := runStore.LoadRun(result.RunID)
	if err != nil {
		t.Fatalf("Expected run record: %v", err)
	}
	if record.Evaluations != result.Evaluations || len(record.Front) != len(result.Front) {
		t.Errorf("Record does not match result: %+v", record)
	}

	if !strings.Contains(out.String(), "Mayfly") {
		t.Errorf("Expected progress bar output, got %q", out.String())
	}
}

func TestExecuteRun_WithPlotServer(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Progress.Enabled = false
	cfg.Plot.Enabled = true
	cfg.Plot.Addr = "127.0.0.1:0"
	cfg.Plot.Frequency = 50

	result, err := executeRun(context.Background(), cfg, &bytes.Buffer{}, quietLogger())
	if err != nil {
		t.Fatalf("executeRun failed: %v", err)
	}
	if result == nil || result.Notifications == 0 {
		t.Fatalf("Expected notifications, got %+v", result)
	}
}

func TestExecuteRun_SetupFailures(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"invalid config", func(c *config.Config) { c.NotifyEvery = 0 }},
		{"unknown problem", func(c *config.Config) { c.Problem = "dtlz9" }},
		{"front dir is a file", func(c *config.Config) {
			c.Front.Enabled = true
			c.Front.Directory = file
		}},
		{"unreachable redis", func(c *config.Config) {
			c.Publish.Enabled = true
			c.Publish.Addr = "127.0.0.1:1"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig(t)
			cfg.Progress.Enabled = false
			tt.mutate(&cfg)

			result, err := executeRun(context.Background(), cfg, &bytes.Buffer{}, quietLogger())
			if err == nil {
				t.Fatal("Expected setup error")
			}
			if result != nil {
				t.Errorf("Expected no run to happen, got %+v", result)
			}
		})
	}
}

func TestApplyRunFlags(t *testing.T) {
	flags := runCmd.Flags()
	set := func(name, value string) {
		t.Helper()
		if err := flags.Set(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
	t.Cleanup(func() {
		for _, name := range []string{"problem", "notify-every", "front-dir", "log-every", "plot"} {
			f := flags.Lookup(name)
			f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})

	set("problem", "sphere")
	set("notify-every", "25")
	set("front-dir", "/tmp/fronts")
	set("log-every", "0")
	set("plot", "true")

	cfg := config.Default()
	cfg.Seed = 99
	applyRunFlags(runCmd, &cfg)

	if cfg.Problem != "sphere" || cfg.NotifyEvery != 25 {
		t.Errorf("Flags not applied: %+v", cfg)
	}
	if !cfg.Front.Enabled || cfg.Front.Directory != "/tmp/fronts" {
		t.Errorf("Expected front writer enabled: %+v", cfg.Front)
	}
	if cfg.Log.Enabled {
		t.Error("Expected summary log disabled by --log-every 0")
	}
	if !cfg.Plot.Enabled {
		t.Error("Expected plot enabled")
	}
	if cfg.Seed != 99 {
		t.Errorf("Unset flag must not override config, got seed %d", cfg.Seed)
	}
}

func TestPrintSummary(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Progress.Enabled = false
	result, err := executeRun(context.Background(), cfg, &bytes.Buffer{}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	printSummary(&buf, result)
	if !strings.Contains(buf.String(), result.RunID) || !strings.Contains(buf.String(), "Front size:") {
		t.Errorf("Unexpected summary:\n%s", buf.String())
	}
}

// Command dswbench runs the DSW (direct worker-to-worker) scheduling
// policy: workers hop straight to the next worker, sharing a single core
// between the generator and the coordinator.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/corepath/shardbench/internal/config"
	"github.com/corepath/shardbench/internal/harness"
	"github.com/corepath/shardbench/internal/telemetry"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logFile    string
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dswbench <mode> <worker-cores>",
		Short: "Run the DSW per-core scheduling benchmark",
		Args:  cobra.ExactArgs(2),
		RunE:  runDSW,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML run configuration file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "optional rotating log file path")
	return cmd
}

func runDSW(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if err := telemetry.Init(telemetry.Config{Level: cfg.Log.Level, File: cfg.Log.File}); err != nil {
		return fmt.Errorf("dswbench: init logging: %w", err)
	}

	// DSW fatal-errors on an unrecognized mode argument.
	mode, err := harness.ParseMode(args[0], true)
	if err != nil {
		return err
	}

	workerCores, err := parseCores(args[1])
	if err != nil {
		return err
	}

	telemetry.WithFields(map[string]any{
		"policy": "dsw",
		"mode":   mode.String(),
		"cores":  workerCores,
	}).Info("starting run")

	runCfg := harness.RunConfig{
		WorkerCores:    workerCores,
		GeneratorCore:  cfg.GeneratorCore,
		ControllerCore: cfg.GeneratorCore, // DSW shares the generator's core with the coordinator
		Duration:       time.Duration(cfg.DurationSeconds) * time.Second,
		StageCycles:    cfg.StageCycles,
		Mode:           mode,
	}

	report, err := harness.RunDSW(runCfg)
	if err != nil {
		return fmt.Errorf("dswbench: run: %w", err)
	}

	return harness.WriteReport(os.Stdout, report)
}

func parseCores(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	cores := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		c, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("dswbench: invalid core id %q: %w", p, err)
		}
		cores = append(cores, c)
	}
	return cores, nil
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Command swbench runs the SW (controller-routed) scheduling policy: every
// hop between pipeline stages is routed back through a dedicated
// controller core.
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
		Use:   "swbench <mode> <worker-cores>",
		Short: "Run the SW per-core scheduling benchmark",
		Args:  cobra.ExactArgs(2),
		RunE:  runSW,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML run configuration file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "optional rotating log file path")
	return cmd
}

func runSW(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("swbench: init logging: %w", err)
	}

	// SW silently falls back to ModeNone on an unrecognized mode argument.
	mode, err := harness.ParseMode(args[0], false)
	if err != nil {
		return err
	}

	workerCores, err := parseCores(args[1])
	if err != nil {
		return err
	}

	telemetry.WithFields(map[string]any{
		"policy": "sw",
		"mode":   mode.String(),
		"cores":  workerCores,
	}).Info("starting run")

	runCfg := harness.RunConfig{
		WorkerCores:    workerCores,
		GeneratorCore:  cfg.GeneratorCore,
		ControllerCore: cfg.ControllerCore,
		Duration:       time.Duration(cfg.DurationSeconds) * time.Second,
		StageCycles:    cfg.StageCycles,
		Mode:           mode,
	}

	report, err := harness.RunSW(runCfg)
	if err != nil {
		return fmt.Errorf("swbench: run: %w", err)
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
			return nil, fmt.Errorf("swbench: invalid core id %q: %w", p, err)
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

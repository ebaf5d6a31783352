package main

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/smp/logging"
	"github.com/sarchlab/smp/manifest"
	"github.com/sarchlab/smp/metrics"
	"github.com/sarchlab/smp/simulator"
)

var (
	runDuration  time.Duration
	storeOutPath string
	propsPath    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load a manifest, run the simulator for a fixed duration, and optionally persist its state",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	runCmd.Flags().DurationVar(&runDuration, "duration", time.Second, "simulation time to advance before stopping")
	runCmd.Flags().StringVar(&storeOutPath, "store", "", "write the simulator's state to this file after the run")
	runCmd.Flags().StringVar(&propsPath, "log-properties", "", "path to an XsmpLogger.properties file")
}

func runRun(cmd *cobra.Command, args []string) error {
	if manifestPath == "" {
		return fmt.Errorf("--manifest is required")
	}

	sim := simulator.New().WithMetrics(metrics.New(prometheus.NewRegistry()))
	if lg, err := buildLogger(sim); err != nil {
		return err
	} else if lg != nil {
		sim.WithLogger(lg)
		defer lg.Close()
	}

	f, err := os.Open(manifestPath)
	if err != nil {
		return fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	m, err := manifest.Parse(f)
	if err != nil {
		return err
	}
	if err := m.Apply(sim); err != nil {
		return err
	}

	atexit.Register(sim.Shutdown)

	sim.Publish()
	sim.Configure()
	sim.Connect()
	sim.RunFor(runDuration)

	if storeOutPath != "" {
		out, err := os.Create(storeOutPath)
		if err != nil {
			return fmt.Errorf("creating state file: %w", err)
		}
		defer out.Close()
		if err := sim.Store(out); err != nil {
			return fmt.Errorf("storing state: %w", err)
		}
	}

	sim.Exit()
	atexit.Exit(0)
	return nil
}

// buildLogger constructs a logging.Logger from --log-properties, or nil if
// the flag was not given (the simulator then keeps slog's default handler).
func buildLogger(sim *simulator.Simulator) (*logging.Logger, error) {
	if propsPath == "" {
		return nil, nil
	}
	f, err := os.Open(propsPath)
	if err != nil {
		return nil, fmt.Errorf("opening log properties: %w", err)
	}
	defer f.Close()

	props, err := logging.ParseProperties(f)
	if err != nil {
		return nil, err
	}
	return logging.Build(props, sim.TimeKeeper())
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/phasesim/datarecording"
	"github.com/sarchlab/phasesim/monitoring"
	"github.com/sarchlab/phasesim/sim/hooking"
	"github.com/sarchlab/phasesim/sim/simulation"
	"github.com/sarchlab/phasesim/tracing"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the counting example described by a config file.",
	Long: "`run --config sim.yaml` builds the components of the config, " +
		"routes data between them with the border file, and runs until the " +
		"tick bound is reached.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}

		if err := applyRunFlags(cmd, &cfg); err != nil {
			return err
		}

		paused, _ := cmd.Flags().GetBool("paused")
		if paused && !cfg.Monitor.Enabled {
			return fmt.Errorf("%w: --paused needs the monitor", ErrInvalidConfig)
		}

		return runSimulation(cmd.Context(), cfg, paused, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("config", "", "The YAML file that describes the run.")
	runCmd.Flags().Uint64("ticks", 0, "Overrides the tick bound of the config.")
	runCmd.Flags().Bool("monitor", false, "Serve the monitoring API.")
	runCmd.Flags().Int("port", 0, "The port of the monitoring API.")
	runCmd.Flags().Bool("browser", false, "Open the monitor in a browser.")
	runCmd.Flags().String("record", "",
		"Record the run into the given SQLite file, without extension.")
	runCmd.Flags().Bool("trace-phases", false,
		"Record every phase handled by every component.")
	runCmd.Flags().Bool("count-phases", false,
		"Report how many ticks each component handled.")
	runCmd.Flags().Bool("paused", false,
		"Wait for the monitor to start the simulation.")

	_ = runCmd.MarkFlagRequired("config")
}

func applyRunFlags(cmd *cobra.Command, cfg *Config) error {
	flags := cmd.Flags()

	if flags.Changed("ticks") {
		cfg.Ticks, _ = flags.GetUint64("ticks")
	}

	if flags.Changed("monitor") {
		cfg.Monitor.Enabled, _ = flags.GetBool("monitor")
	}

	if flags.Changed("port") {
		cfg.Monitor.Port, _ = flags.GetInt("port")
		cfg.Monitor.Enabled = true
	}

	if flags.Changed("browser") {
		cfg.Monitor.Browser, _ = flags.GetBool("browser")
	}

	if flags.Changed("record") {
		cfg.Recording.Path, _ = flags.GetString("record")
		cfg.Recording.Enabled = true
	}

	if flags.Changed("count-phases") {
		cfg.CountPhases, _ = flags.GetBool("count-phases")
	}

	if flags.Changed("trace-phases") {
		cfg.Recording.TracePhases, _ = flags.GetBool("trace-phases")
	}

	return cfg.Validate()
}

func runSimulation(
	ctx context.Context,
	cfg Config,
	paused bool,
	out io.Writer,
) error {
	s := newSimulation(cfg)

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		s.AddListener(simulation.NewLogListener(
			logrus.WithField("cmd", "run")))
	}

	if cfg.Recording.Enabled {
		recorder := datarecording.New(cfg.Recording.Path)
		defer closeRecorder(recorder)

		tracer := tracing.NewDBTracer(recorder)
		if cfg.Recording.TracePhases {
			tracer.EnablePhaseTracing()
		}

		s.AddListener(tracer)
	}

	r, err := populate(s, cfg)
	if err != nil {
		return err
	}

	if cfg.CountPhases {
		r.phaseCounts = hooking.NewPhaseCountTracer()
		for _, c := range r.components {
			c.AcceptHook(r.phaseCounts)
		}
	}

	if cfg.Monitor.Enabled {
		stop, err := startMonitor(s, cfg)
		if err != nil {
			return err
		}
		defer stop()
	}

	if err := s.Init(); err != nil {
		return err
	}

	if !paused {
		if err := s.Run(); err != nil {
			return err
		}
	}

	if err := wait(ctx, s); err != nil {
		return err
	}

	return report(out, r)
}

func closeRecorder(recorder datarecording.DataRecorder) {
	if err := recorder.Close(); err != nil {
		logrus.WithError(err).Error("cannot close the recording")
	}
}

func startMonitor(s *simulation.Simulation, cfg Config) (func(), error) {
	m := monitoring.NewMonitor().WithPortNumber(cfg.Monitor.Port)
	if cfg.Monitor.Browser {
		m = m.WithBrowser()
	}

	m.RegisterSimulation(s)

	busy := tracing.NewBusyTimeTracer()
	for _, c := range s.Components() {
		tracing.CollectTrace(c, busy)
	}

	m.RegisterBusyTimeTracer(busy)
	m.TrackTicks("Ticks", cfg.Ticks)

	if _, err := m.StartServer(); err != nil {
		return nil, err
	}

	return func() {
		if err := m.StopServer(context.Background()); err != nil {
			logrus.WithError(err).Warn("cannot stop the monitor")
		}
	}, nil
}

// wait blocks until the simulation finishes. An interrupt finishes the
// simulation early.
func wait(ctx context.Context, s *simulation.Simulation) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	err := s.Wait(ctx)
	if !errors.Is(err, context.Canceled) {
		return err
	}

	logrus.Warn("interrupted, finishing the simulation")

	if err := s.Finish(); err != nil &&
		!errors.Is(err, simulation.ErrIllegalTransition) {
		return err
	}

	return s.Wait(context.Background())
}

func report(out io.Writer, r *run) error {
	for _, p := range r.probes {
		for _, sample := range p.Samples() {
			if _, err := fmt.Fprintf(out, "%s %s\n", p.Name(), sample); err != nil {
				return err
			}
		}
	}

	if r.phaseCounts != nil {
		first := r.sim.Clock().Phases().First()

		for _, c := range r.components {
			_, err := fmt.Fprintf(out, "%s handled %d ticks\n",
				c.Name(), r.phaseCounts.Count(c.Name(), first))
			if err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(out, "finished at %s\n", r.sim.Now())

	return err
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/boristopalov/wumpus/internal/logging"
	"github.com/boristopalov/wumpus/internal/render"
	"github.com/boristopalov/wumpus/pkg/config"
	"github.com/boristopalov/wumpus/pkg/experiment"
	"github.com/boristopalov/wumpus/pkg/messaging"
)

type flags struct {
	configPath string
	seed       int64
	episodes   int
	maxTurns   int
	width      int
	height     int
	wumpus     int
	pits       int
	arrows     int
	logLevel   string
	statsCSV   string
	chartHTML  string
	noColor    bool
	noClear    bool
}

func main() {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:          "wumpus",
		Short:        "Wumpus is a grid world where an agent hunts for gold among pits and a wumpus using only local percepts.",
		SilenceUsage: true,
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	pf.Int64Var(&f.seed, "seed", 0, "world seed (agent seed is derived from it)")
	pf.IntVar(&f.maxTurns, "max-turns", 0, "turn cap per episode")
	pf.IntVar(&f.width, "width", 0, "grid width")
	pf.IntVar(&f.height, "height", 0, "grid height")
	pf.IntVar(&f.wumpus, "wumpus", 0, "number of wumpus")
	pf.IntVar(&f.pits, "pits", 0, "number of pits")
	pf.IntVar(&f.arrows, "arrows", 0, "arrows carried by the agent")
	pf.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Play one episode and draw it in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEpisode(cmd, f)
		},
	}
	runCmd.Flags().Duration("interval", 0, "delay between turns")
	runCmd.Flags().BoolVar(&f.noColor, "no-color", false, "disable colors")
	runCmd.Flags().BoolVar(&f.noClear, "no-clear", false, "print frames one after another instead of redrawing")

	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Play many seeded episodes and report statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, f)
		},
	}
	batchCmd.Flags().IntVarP(&f.episodes, "episodes", "n", 0, "number of episodes")
	batchCmd.Flags().StringVar(&f.statsCSV, "stats-csv", "", "write per-episode rows to this CSV file")
	batchCmd.Flags().StringVar(&f.chartHTML, "chart", "", "write an HTML chart to this file")

	if err := config.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	rootCmd.AddCommand(runCmd, batchCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers the config file, WUMPUS_* variables and explicitly set flags over the defaults.
func loadConfig(cmd *cobra.Command, f *flags) (*config.ExperimentConfig, error) {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("seed") {
		cfg.Seed = f.seed
	}
	if changed("episodes") {
		cfg.Episodes = f.episodes
	}
	if changed("max-turns") {
		cfg.MaxTurns = f.maxTurns
	}
	if changed("width") {
		cfg.World.Width = f.width
	}
	if changed("height") {
		cfg.World.Height = f.height
	}
	if changed("wumpus") {
		cfg.World.Wumpus = f.wumpus
	}
	if changed("pits") {
		cfg.World.Pits = f.pits
	}
	if changed("arrows") {
		cfg.Agent.Arrows = f.arrows
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if changed("stats-csv") {
		cfg.Report.StatsCSV = f.statsCSV
	}
	if changed("chart") {
		cfg.Report.ChartHTML = f.chartHTML
	}
	if changed("interval") {
		if cfg.StepInterval, err = cmd.Flags().GetDuration("interval"); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// signalContext cancels on the first interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}

// runLogger builds the logger for the run command. While the board is redrawn in place only
// warnings and errors get through, so log lines do not scroll the frame away.
func runLogger(level string, redraw bool, w io.Writer) (*zap.Logger, error) {
	if !redraw {
		return logging.New(level)
	}
	logger, err := logging.NewWithWriter(level, w)
	if err != nil {
		return nil, err
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		logger = logger.WithOptions(zap.IncreaseLevel(zapcore.WarnLevel))
	}
	return logger, nil
}

func runEpisode(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	logger, err := runLogger(cfg.Logging.Level, !f.noClear, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	broker := messaging.NewBroker()
	defer broker.Reset()
	events := make(chan messaging.Event, 64)
	if err := broker.Subscribe("renderer", events); err != nil {
		return err
	}

	ep, err := experiment.BuildEpisode(cfg, cfg.Seed, logger,
		experiment.WithEpisodeID(fmt.Sprintf("%s-%d", cfg.Name, cfg.Seed)),
		experiment.WithBroker(broker),
		experiment.WithStepInterval(cfg.StepInterval))
	if err != nil {
		return err
	}

	renderer := render.New(cmd.OutOrStdout(),
		render.WithColors(!f.noColor),
		render.WithClearScreen(!f.noClear))
	drawn := make(chan error, 1)
	go func() {
		drawn <- renderer.Watch(ctx, events)
	}()

	result, runErr := ep.Run(ctx)
	if runErr != nil {
		cancel()
	}
	// the episode has published its last event, so the renderer can drain and stop
	if err := broker.Unsubscribe("renderer"); err != nil {
		logger.Warn("unsubscribing renderer", zap.Error(err))
	}
	close(events)
	if err := <-drawn; err != nil && runErr == nil {
		logger.Warn("renderer stopped", zap.Error(err))
	}
	if runErr != nil {
		return fmt.Errorf("episode failed: %w", runErr)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "outcome=%s score=%d turns=%d wumpus_killed=%t\n",
		result.Outcome, result.Score, result.Turns, result.WumpusKilled)
	return nil
}

func runBatch(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	exp, err := experiment.NewBatchExperiment(cfg, experiment.WithBatchLogger(logger))
	if err != nil {
		return err
	}
	if err := exp.Run(ctx); err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	s := exp.Stats()
	fmt.Fprintf(cmd.OutOrStdout(),
		"episodes=%d wins=%d deaths=%d timeouts=%d win_rate=%.1f%% mean_score=%.2f stddev=%.2f mean_turns=%.1f kills=%d\n",
		s.Episodes, s.Wins, s.Deaths, s.Timeouts, s.WinRate, s.MeanScore, s.StdDevScore, s.MeanTurns, s.Kills)
	return nil
}

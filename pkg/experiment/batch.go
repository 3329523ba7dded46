package experiment

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"

	"go.uber.org/zap"

	"github.com/boristopalov/wumpus/internal/report"
	"github.com/boristopalov/wumpus/pkg/agent"
	"github.com/boristopalov/wumpus/pkg/config"
	"github.com/boristopalov/wumpus/pkg/environment"
)

const agentSeedMix = 0x5eed

// AgentSeed derives the policy seed from a world seed so the two random streams stay independent.
func AgentSeed(worldSeed int64) int64 {
	return worldSeed ^ agentSeedMix
}

// BuildEpisode generates the world for seed and puts a fresh agent in it, both configured from cfg.
func BuildEpisode(cfg *config.ExperimentConfig, seed int64, logger *zap.Logger, opts ...EpisodeOption) (*Episode, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	env, err := environment.NewWumpusEnvironment(cfg.World.Params(), rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, fmt.Errorf("generating world for seed %d: %w", seed, err)
	}
	a, err := agent.NewExplorerAgent(env,
		agent.WithSeed(AgentSeed(seed)),
		agent.WithArrows(cfg.Agent.Arrows),
		agent.WithMemoryCapacity(cfg.Agent.MemoryCapacity),
		agent.WithLogger(logger.Named("agent")),
	)
	if err != nil {
		return nil, fmt.Errorf("creating agent: %w", err)
	}

	base := []EpisodeOption{
		WithEpisodeSeed(seed),
		WithMaxTurns(cfg.MaxTurns),
		WithEpisodeLogger(logger.Named("episode")),
	}
	return NewEpisode(env, a, append(base, opts...)...)
}

// BatchExperiment plays a number of seeded episodes back to back and reports on them.
type BatchExperiment struct {
	cfg       *config.ExperimentConfig
	logger    *zap.Logger
	results   []EpisodeResult
	statsFile *os.File // per-episode CSV rows
}

type BatchOption func(*BatchExperiment)

func WithBatchLogger(l *zap.Logger) BatchOption {
	return func(b *BatchExperiment) {
		b.logger = l
	}
}

func NewBatchExperiment(cfg *config.ExperimentConfig, opts ...BatchOption) (*BatchExperiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &BatchExperiment{
		cfg:     cfg,
		logger:  zap.NewNop(),
		results: make([]EpisodeResult, 0, cfg.Episodes),
	}
	for _, opt := range opts {
		opt(b)
	}

	if cfg.Report.StatsCSV != "" {
		statsFile, err := os.Create(cfg.Report.StatsCSV)
		if err != nil {
			b.logger.Warn("failed to create stats file", zap.String("path", cfg.Report.StatsCSV), zap.Error(err))
		} else {
			header := "Episode,Seed,Outcome,Score,Turns,WumpusKilled,GoldGrabbed,GoldDistance\n"
			if _, err := statsFile.WriteString(header); err != nil {
				b.logger.Warn("failed to write stats header", zap.Error(err))
			}
			b.statsFile = statsFile
		}
	}
	return b, nil
}

// Run plays every episode with seeds Seed, Seed+1, ... and then writes the report.
func (b *BatchExperiment) Run(ctx context.Context) error {
	defer func() {
		if b.statsFile != nil {
			b.statsFile.Close()
		}
	}()

	for i := 0; i < b.cfg.Episodes; i++ {
		seed := b.cfg.Seed + int64(i)
		ep, err := BuildEpisode(b.cfg, seed, b.logger,
			WithEpisodeID(fmt.Sprintf("%s-%d", b.cfg.Name, i)))
		if err != nil {
			return fmt.Errorf("failed to build episode %d: %w", i, err)
		}

		result, err := ep.Run(ctx)
		if err != nil {
			return fmt.Errorf("failed to run episode %d: %w", i, err)
		}
		b.results = append(b.results, result)
		b.recordEpisode(i, result)
	}

	b.logStats(b.Stats())

	if path := b.cfg.Report.ChartHTML; path != "" {
		if err := report.WriteFile(path, b.cfg.Name, b.rows()); err != nil {
			return err
		}
		b.logger.Info("wrote chart", zap.String("path", path))
	}
	return nil
}

func (b *BatchExperiment) Results() []EpisodeResult {
	return append([]EpisodeResult(nil), b.results...)
}

type Stats struct {
	Episodes         int
	Wins             int
	Deaths           int
	Timeouts         int
	Kills            int
	Grabs            int
	WinRate          float64
	MeanScore        float64
	StdDevScore      float64
	MeanTurns        float64
	MeanGoldDistance float64
}

func (b *BatchExperiment) Stats() Stats {
	return computeStats(b.results)
}

func computeStats(results []EpisodeResult) Stats {
	s := Stats{Episodes: len(results)}
	if len(results) == 0 {
		return s
	}

	var totalScore, totalTurns, totalDistance float64
	for _, r := range results {
		switch r.Outcome {
		case OutcomeWon:
			s.Wins++
		case OutcomeDied:
			s.Deaths++
		case OutcomeTimeout:
			s.Timeouts++
		}
		if r.WumpusKilled {
			s.Kills++
		}
		if r.GoldGrabbed {
			s.Grabs++
		}
		totalScore += float64(r.Score)
		totalTurns += float64(r.Turns)
		totalDistance += r.GoldDistance
	}

	n := float64(len(results))
	s.WinRate = float64(s.Wins) / n * 100
	s.MeanScore = totalScore / n
	s.MeanTurns = totalTurns / n
	s.MeanGoldDistance = totalDistance / n

	var sumSquares float64
	for _, r := range results {
		diff := float64(r.Score) - s.MeanScore
		sumSquares += diff * diff
	}
	s.StdDevScore = math.Sqrt(sumSquares / n)
	return s
}

func (b *BatchExperiment) recordEpisode(i int, r EpisodeResult) {
	if b.statsFile == nil {
		return
	}
	csvLine := fmt.Sprintf("%d,%d,%s,%d,%d,%t,%t,%.2f\n",
		i,
		r.Seed,
		r.Outcome,
		r.Score,
		r.Turns,
		r.WumpusKilled,
		r.GoldGrabbed,
		r.GoldDistance,
	)
	if _, err := b.statsFile.WriteString(csvLine); err != nil {
		b.logger.Warn("failed to write to stats file", zap.Error(err))
	}
}

func (b *BatchExperiment) logStats(s Stats) {
	b.logger.Info("batch statistics",
		zap.String("name", b.cfg.Name),
		zap.Int("episodes", s.Episodes),
		zap.Int("wins", s.Wins),
		zap.Int("deaths", s.Deaths),
		zap.Int("timeouts", s.Timeouts),
		zap.Int("kills", s.Kills),
		zap.Int("grabs", s.Grabs),
		zap.Float64("win_rate", s.WinRate),
		zap.Float64("mean_score", s.MeanScore),
		zap.Float64("stddev_score", s.StdDevScore),
		zap.Float64("mean_turns", s.MeanTurns),
		zap.Float64("mean_gold_distance", s.MeanGoldDistance))
}

func (b *BatchExperiment) rows() []report.Row {
	rows := make([]report.Row, 0, len(b.results))
	for i, r := range b.results {
		rows = append(rows, report.Row{
			Episode: i,
			Score:   r.Score,
			Turns:   r.Turns,
			Outcome: string(r.Outcome),
		})
	}
	return rows
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/boristopalov/wumpus/pkg/environment"
)

var ErrInvalidConfig = errors.New("invalid config")

const envPrefix = "WUMPUS_"

type ExperimentConfig struct {
	Name         string        `yaml:"name"`
	Seed         int64         `yaml:"seed"`
	Episodes     int           `yaml:"episodes"`
	MaxTurns     int           `yaml:"max_turns"`
	StepInterval time.Duration `yaml:"step_interval"`
	World        WorldConfig   `yaml:"world"`
	Agent        AgentConfig   `yaml:"agent"`
	Logging      LogConfig     `yaml:"logging"`
	Report       ReportConfig  `yaml:"report"`
}

type WorldConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Wumpus int `yaml:"wumpus"`
	Pits   int `yaml:"pits"`
}

type AgentConfig struct {
	Arrows         int `yaml:"arrows"`
	MemoryCapacity int `yaml:"memory_capacity"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// ReportConfig names the batch output files. Empty paths disable the output.
type ReportConfig struct {
	StatsCSV  string `yaml:"stats_csv"`
	ChartHTML string `yaml:"chart_html"`
}

// Default matches the classic 4x4 board at two ticks per second.
func Default() *ExperimentConfig {
	world := environment.DefaultWorldParams()
	return &ExperimentConfig{
		Name:         "wumpus",
		Seed:         1,
		Episodes:     1,
		MaxTurns:     1000,
		StepInterval: 500 * time.Millisecond,
		World: WorldConfig{
			Width:  world.Width,
			Height: world.Height,
			Wumpus: world.Wumpus,
			Pits:   world.Pits,
		},
		Agent: AgentConfig{
			Arrows:         1,
			MemoryCapacity: 100,
		},
		Logging: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path returns the defaults.
func LoadConfig(path string) (*ExperimentConfig, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// LoadEnv loads the first .env file found walking up from the working directory.
// A missing file is not an error.
func LoadEnv() error {
	for _, p := range []string{".env", "../../.env", "../../../.env"} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
		return nil
	}
	return nil
}

// ApplyEnv overrides fields from WUMPUS_* environment variables.
func (c *ExperimentConfig) ApplyEnv() error {
	var err error
	c.Name = getEnvWithDefault(envPrefix+"NAME", c.Name)
	c.Logging.Level = getEnvWithDefault(envPrefix+"LOG_LEVEL", c.Logging.Level)
	c.Report.StatsCSV = getEnvWithDefault(envPrefix+"STATS_CSV", c.Report.StatsCSV)
	c.Report.ChartHTML = getEnvWithDefault(envPrefix+"CHART_HTML", c.Report.ChartHTML)

	if c.Seed, err = getEnvAsInt64(envPrefix+"SEED", c.Seed); err != nil {
		return err
	}
	if c.StepInterval, err = getEnvAsDuration(envPrefix+"STEP_INTERVAL", c.StepInterval); err != nil {
		return err
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"EPISODES", &c.Episodes},
		{"MAX_TURNS", &c.MaxTurns},
		{"WIDTH", &c.World.Width},
		{"HEIGHT", &c.World.Height},
		{"WUMPUS", &c.World.Wumpus},
		{"PITS", &c.World.Pits},
		{"ARROWS", &c.Agent.Arrows},
		{"MEMORY_CAPACITY", &c.Agent.MemoryCapacity},
	}
	for _, f := range ints {
		if *f.dst, err = getEnvAsInt(envPrefix+f.key, *f.dst); err != nil {
			return err
		}
	}
	return nil
}

func (c *ExperimentConfig) Validate() error {
	if c.Episodes < 1 {
		return fmt.Errorf("%w: episodes must be positive, got %d", ErrInvalidConfig, c.Episodes)
	}
	if c.MaxTurns < 1 {
		return fmt.Errorf("%w: max_turns must be positive, got %d", ErrInvalidConfig, c.MaxTurns)
	}
	if c.StepInterval < 0 {
		return fmt.Errorf("%w: step_interval must not be negative, got %s", ErrInvalidConfig, c.StepInterval)
	}
	if c.Agent.Arrows < 0 {
		return fmt.Errorf("%w: arrows must not be negative, got %d", ErrInvalidConfig, c.Agent.Arrows)
	}
	if c.Agent.MemoryCapacity < 1 {
		return fmt.Errorf("%w: memory_capacity must be positive, got %d", ErrInvalidConfig, c.Agent.MemoryCapacity)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	if err := c.World.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (w WorldConfig) Params() environment.WorldParams {
	return environment.WorldParams{
		Width:  w.Width,
		Height: w.Height,
		Wumpus: w.Wumpus,
		Pits:   w.Pits,
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%w: %s must be an integer: %w", ErrInvalidConfig, key, err)
	}
	return n, nil
}

func getEnvAsInt64(key string, defaultValue int64) (int64, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue, fmt.Errorf("%w: %s must be an integer: %w", ErrInvalidConfig, key, err)
	}
	return n, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%w: %s must be a duration: %w", ErrInvalidConfig, key, err)
	}
	return d, nil
}

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mgrette/vantage/pkg/analyzer/bottleneck"
	"github.com/mgrette/vantage/pkg/analyzer/readiness"
	"github.com/mgrette/vantage/pkg/complexity"
)

// Config holds all configuration options for vantage.
type Config struct {
	// Readiness scoring weights
	Weights readiness.Weights `koanf:"weights"`

	// Thresholds for insights and bottleneck detection
	Thresholds ThresholdConfig `koanf:"thresholds"`

	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis"`

	// Cache settings
	Cache CacheConfig `koanf:"cache"`
}

// ThresholdConfig defines the cutoffs used by insight generation and
// bottleneck detection.
type ThresholdConfig struct {
	// ReadyScore is the minimum total readiness score a task must exceed
	// before it is suggested as parallel work.
	ReadyScore float64 `koanf:"ready_score"`

	// ParallelLimit caps how many tasks a parallel-work recommendation
	// may carry.
	ParallelLimit int `koanf:"parallel_limit"`

	Bottleneck bottleneck.Thresholds `koanf:"bottleneck"`
}

// AnalysisConfig controls how the engine runs an analysis.
type AnalysisConfig struct {
	// DefaultComplexity is assigned to tasks that carry no explicit
	// complexity and have no entry in the complexity provider.
	DefaultComplexity int `koanf:"default_complexity"`

	// Workers bounds the scoring goroutine pool. Zero means one worker
	// per CPU.
	Workers int `koanf:"workers"`

	// MaxAnalysisTimeSeconds is advisory. The engine never enforces it;
	// callers that want a deadline derive a context from it.
	MaxAnalysisTimeSeconds int `koanf:"max_analysis_time_seconds"`
}

// CacheConfig controls the in-memory analysis result cache.
type CacheConfig struct {
	Enabled bool `koanf:"enabled"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: readiness.DefaultWeights(),
		Thresholds: ThresholdConfig{
			ReadyScore:    0.7,
			ParallelLimit: 3,
			Bottleneck:    bottleneck.DefaultThresholds(),
		},
		Analysis: AnalysisConfig{
			DefaultComplexity: complexity.DefaultScore,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	// Load the config file
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	// Unmarshal into config struct
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	// Standard config file names to search for
	configNames := []string{
		"vantage.toml",
		"vantage.yaml",
		"vantage.yml",
		"vantage.json",
		".vantage.toml",
		".vantage.yaml",
		".vantage.yml",
		".vantage.json",
	}

	// Search in current directory and .vantage directory
	searchDirs := []string{".", ".vantage"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type ProjectConfig struct {
	Project   string          `yaml:"project"`
	Version   int             `yaml:"version"`
	Database  DatabaseConfig  `yaml:"database"`
	Catalog   string          `yaml:"catalog"`
	Lore      LoreConfig      `yaml:"lore"`
	Logging   LoggingConfig   `yaml:"logging"`
	Emergence EmergenceConfig `yaml:"emergence"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type LoreConfig struct {
	Paths   []string `yaml:"paths"`
	Exclude []string `yaml:"exclude"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// EmergenceConfig holds the thresholds the emergence observer gates on.
// Omitted values fall back to the defaults below.
type EmergenceConfig struct {
	VillainFear       float64 `yaml:"villain_fear"`
	VillainResentment float64 `yaml:"villain_resentment"`
	AllyTrust         float64 `yaml:"ally_trust"`
	AllyRespect       float64 `yaml:"ally_respect"`
	AllyAffection     float64 `yaml:"ally_affection"`
	MinConfidence     float64 `yaml:"min_confidence"`
}

func DefaultEmergenceConfig() EmergenceConfig {
	return EmergenceConfig{
		VillainFear:       0.6,
		VillainResentment: 0.5,
		AllyTrust:         0.6,
		AllyRespect:       0.6,
		AllyAffection:     0.5,
		MinConfidence:     0.3,
	}
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *ProjectConfig) {
	defaults := DefaultEmergenceConfig()
	fill := func(value *float64, fallback float64) {
		if *value == 0 {
			*value = fallback
		}
	}
	fill(&cfg.Emergence.VillainFear, defaults.VillainFear)
	fill(&cfg.Emergence.VillainResentment, defaults.VillainResentment)
	fill(&cfg.Emergence.AllyTrust, defaults.AllyTrust)
	fill(&cfg.Emergence.AllyRespect, defaults.AllyRespect)
	fill(&cfg.Emergence.AllyAffection, defaults.AllyAffection)
	fill(&cfg.Emergence.MinConfidence, defaults.MinConfidence)

	if strings.TrimSpace(cfg.Logging.Level) == "" {
		cfg.Logging.Level = "info"
	}
	if strings.TrimSpace(cfg.Logging.Format) == "" {
		cfg.Logging.Format = "console"
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("database dsn is required")
	}

	switch cfg.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported logging format: %s", cfg.Logging.Format)
	}

	thresholds := map[string]float64{
		"villain_fear":       cfg.Emergence.VillainFear,
		"villain_resentment": cfg.Emergence.VillainResentment,
		"ally_trust":         cfg.Emergence.AllyTrust,
		"ally_respect":       cfg.Emergence.AllyRespect,
		"ally_affection":     cfg.Emergence.AllyAffection,
		"min_confidence":     cfg.Emergence.MinConfidence,
	}
	for name, value := range thresholds {
		if value < 0 || value > 1 {
			return fmt.Errorf("emergence %s must be between 0 and 1, got %v", name, value)
		}
	}

	seen := make(map[string]struct{})
	for i, path := range cfg.Lore.Paths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("lore path %d is empty", i)
		}
		if _, exists := seen[path]; exists {
			return fmt.Errorf("duplicate lore path: %s", path)
		}
		seen[path] = struct{}{}
	}

	return nil
}

// Package config provides the unified configuration system for galaxymap.
// It defines a single Config structure shared by the extraction pipeline and
// the viewer core, organized into logical sections:
//   - Extract: streaming extraction settings (buffers, progress cadence)
//   - Index: spatial grid construction settings
//   - Sampler: level-of-detail budget tiers
//   - Observability: metrics and logging
//
// Example usage:
//
//	cfg := config.NewDefaultConfig()
//	cfg.Extract.ProgressEvery = 50000
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"time"
)

// Config is the single unified configuration structure for galaxymap.
type Config struct {
	// Extract controls the streaming extractor
	Extract ExtractConfig `yaml:"extract" json:"extract"`

	// Index controls spatial grid construction
	Index IndexConfig `yaml:"index" json:"index"`

	// Sampler controls level-of-detail sampling
	Sampler SamplerConfig `yaml:"sampler" json:"sampler"`

	// Observability settings for monitoring and debugging
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// ExtractConfig contains streaming-extraction settings.
type ExtractConfig struct {
	// BufferSize sets the size of the read and write buffers in bytes
	BufferSize int `yaml:"buffer_size" json:"buffer_size"`
	// ProgressEvery reports progress after this many accepted-or-rejected items
	ProgressEvery int `yaml:"progress_every" json:"progress_every"`
	// PrettyIndent is the indent string used in the compact output file
	PrettyIndent string `yaml:"pretty_indent" json:"pretty_indent"`
}

// IndexConfig contains spatial grid construction settings.
type IndexConfig struct {
	// TargetPerCell is the average number of records a grid cell should hold.
	// Cell size is derived from the dataset bounding box and this target.
	TargetPerCell int `yaml:"target_per_cell" json:"target_per_cell"`
}

// BudgetTier maps a viewport span threshold to a point budget.
// A tier applies when the viewport span exceeds SpanAbove.
type BudgetTier struct {
	SpanAbove float64 `yaml:"span_above" json:"span_above"`
	MaxPoints int     `yaml:"max_points" json:"max_points"`
}

// SamplerConfig contains level-of-detail sampling settings.
// Tiers must be ordered by descending SpanAbove; a viewport whose span
// exceeds no tier threshold is rendered at full fidelity.
type SamplerConfig struct {
	Tiers []BudgetTier `yaml:"tiers" json:"tiers"`
}

// ObservabilityConfig contains monitoring and observability settings.
type ObservabilityConfig struct {
	// EnableMetrics activates Prometheus metrics collection
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level"`
	// ProgressLogInterval throttles periodic progress log lines
	ProgressLogInterval time.Duration `yaml:"progress_log_interval" json:"progress_log_interval"`
}

// NewDefaultConfig creates a Config with production defaults. The sampler
// tiers mirror the zoom levels the viewer renders at: far out the map is
// readable at 2000 points, fully zoomed in every system in view is shown.
func NewDefaultConfig() *Config {
	return &Config{
		Extract: ExtractConfig{
			BufferSize:    64 * 1024,
			ProgressEvery: 10000,
			PrettyIndent:  "    ",
		},
		Index: IndexConfig{
			TargetPerCell: 128,
		},
		Sampler: SamplerConfig{
			Tiers: []BudgetTier{
				{SpanAbove: 40000, MaxPoints: 2000},
				{SpanAbove: 10000, MaxPoints: 5000},
				{SpanAbove: 1000, MaxPoints: 10000},
			},
		},
		Observability: ObservabilityConfig{
			EnableMetrics:       true,
			LogLevel:            "info",
			ProgressLogInterval: 10 * time.Second,
		},
	}
}

// Validate validates the configuration for correctness.
func (c *Config) Validate() error {
	if c.Extract.BufferSize <= 0 {
		return fmt.Errorf("extract.buffer_size must be positive")
	}
	if c.Extract.ProgressEvery <= 0 {
		return fmt.Errorf("extract.progress_every must be positive")
	}
	if c.Index.TargetPerCell <= 0 {
		return fmt.Errorf("index.target_per_cell must be positive")
	}
	if len(c.Sampler.Tiers) == 0 {
		return fmt.Errorf("sampler.tiers must not be empty")
	}
	prev := 0.0
	for i, tier := range c.Sampler.Tiers {
		if tier.SpanAbove <= 0 {
			return fmt.Errorf("sampler.tiers[%d].span_above must be positive", i)
		}
		if tier.MaxPoints <= 0 {
			return fmt.Errorf("sampler.tiers[%d].max_points must be positive", i)
		}
		if i > 0 && tier.SpanAbove >= prev {
			return fmt.Errorf("sampler.tiers must be ordered by descending span_above")
		}
		prev = tier.SpanAbove
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/quillworks/quill/internal/analyzer"
	"github.com/quillworks/quill/internal/ledger"
	"github.com/quillworks/quill/internal/profile"
)

const (
	EnvPipelineLedgerCeiling = "QUILL_PIPELINE_LEDGER_CEILING_MICROS"
	EnvPipelineMinJobLength  = "QUILL_PIPELINE_MIN_JOB_LENGTH"
	EnvPipelineMaxJobLength  = "QUILL_PIPELINE_MAX_JOB_LENGTH"
	EnvPipelineMinConsistent = "QUILL_PIPELINE_MIN_CONSISTENT_EDITS"
	EnvPipelineDecayFactor   = "QUILL_PIPELINE_DECAY_FACTOR"
	EnvPipelineSelectorSeed  = "QUILL_PIPELINE_SELECTOR_SEED"
)

// PipelineConfig holds generation pipeline tuning: the monthly cost ceiling,
// job posting length bounds, and edit-learning parameters.
type PipelineConfig struct {
	LedgerCeilingMicros int64   `toml:"ledger_ceiling_micros"`
	MinJobLength        int     `toml:"min_job_length"`
	MaxJobLength        int     `toml:"max_job_length"`
	MinConsistentEdits  int     `toml:"min_consistent_edits"`
	DecayFactor         float64 `toml:"decay_factor"`
	SelectorSeed        int64   `toml:"selector_seed"`
}

// LedgerCeiling returns the ceiling as ledger cost units.
func (c *PipelineConfig) LedgerCeiling() ledger.CostMicros {
	return ledger.CostMicros(c.LedgerCeilingMicros)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.LedgerCeilingMicros != 0 {
		c.LedgerCeilingMicros = overlay.LedgerCeilingMicros
	}
	if overlay.MinJobLength != 0 {
		c.MinJobLength = overlay.MinJobLength
	}
	if overlay.MaxJobLength != 0 {
		c.MaxJobLength = overlay.MaxJobLength
	}
	if overlay.MinConsistentEdits != 0 {
		c.MinConsistentEdits = overlay.MinConsistentEdits
	}
	if overlay.DecayFactor != 0 {
		c.DecayFactor = overlay.DecayFactor
	}
	if overlay.SelectorSeed != 0 {
		c.SelectorSeed = overlay.SelectorSeed
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.LedgerCeilingMicros == 0 {
		// $25.00 per calendar month.
		c.LedgerCeilingMicros = 25_000_000
	}
	if c.MinJobLength == 0 {
		c.MinJobLength = analyzer.DefaultMinLength
	}
	if c.MaxJobLength == 0 {
		c.MaxJobLength = analyzer.DefaultMaxLength
	}
	if c.MinConsistentEdits == 0 {
		c.MinConsistentEdits = profile.DefaultMinConsistent
	}
	if c.DecayFactor == 0 {
		c.DecayFactor = profile.DefaultDecayFactor
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineLedgerCeiling); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.LedgerCeilingMicros = n
		}
	}
	if v := os.Getenv(EnvPipelineMinJobLength); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MinJobLength = n
		}
	}
	if v := os.Getenv(EnvPipelineMaxJobLength); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxJobLength = n
		}
	}
	if v := os.Getenv(EnvPipelineMinConsistent); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MinConsistentEdits = n
		}
	}
	if v := os.Getenv(EnvPipelineDecayFactor); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.DecayFactor = f
		}
	}
	if v := os.Getenv(EnvPipelineSelectorSeed); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.SelectorSeed = n
		}
	}
}

func (c *PipelineConfig) validate() error {
	if c.LedgerCeilingMicros < 0 {
		return fmt.Errorf("ledger_ceiling_micros must not be negative: %d", c.LedgerCeilingMicros)
	}
	if c.MinJobLength >= c.MaxJobLength {
		return fmt.Errorf("min_job_length %d must be below max_job_length %d", c.MinJobLength, c.MaxJobLength)
	}
	if c.MinConsistentEdits < 1 {
		return fmt.Errorf("min_consistent_edits must be at least 1: %d", c.MinConsistentEdits)
	}
	if c.DecayFactor <= 0 || c.DecayFactor > 1 {
		return fmt.Errorf("decay_factor must be in (0, 1]: %f", c.DecayFactor)
	}
	return nil
}

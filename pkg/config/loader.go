package config

import (
	"fmt"
	"os"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if cfg.HTTPAddr == "" {
		return fmt.Errorf("http_addr cannot be empty")
	}

	if err := validateEstimator(&cfg.Estimator); err != nil {
		return fmt.Errorf("estimator validation failed: %w", err)
	}

	if cfg.Study != nil {
		if err := validateStudy(cfg.Study); err != nil {
			return fmt.Errorf("study validation failed: %w", err)
		}
	}

	return nil
}

// validateEstimator validates the estimator defaults
func validateEstimator(e *EstimatorConfig) error {
	if !ValidMethod(e.Method) {
		return fmt.Errorf("invalid method: %s (must be loop, batch, or parallel)", e.Method)
	}
	if e.Samples <= 0 {
		return fmt.Errorf("samples must be positive, got %d", e.Samples)
	}
	if e.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", e.Workers)
	}
	if e.ChunkSize < 0 {
		return fmt.Errorf("chunk_size cannot be negative, got %d", e.ChunkSize)
	}
	return nil
}

// validateStudy validates the convergence study grid
func validateStudy(s *StudyConfig) error {
	if len(s.SampleCounts) == 0 {
		return fmt.Errorf("at least one sample count must be defined")
	}
	for i, n := range s.SampleCounts {
		if n <= 0 {
			return fmt.Errorf("sample_counts[%d] must be positive, got %d", i, n)
		}
	}
	if s.Repeats <= 0 {
		return fmt.Errorf("repeats must be positive, got %d", s.Repeats)
	}
	return nil
}

package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEnhance()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	c.Paths.NoisyDir = strings.TrimSpace(c.Paths.NoisyDir)
	if c.Paths.NoisyDir != "" {
		if c.Paths.NoisyDir, err = expandPath(c.Paths.NoisyDir); err != nil {
			return fmt.Errorf("paths.noisy_dir: %w", err)
		}
	}
	c.Paths.NoisyJSON = strings.TrimSpace(c.Paths.NoisyJSON)
	if c.Paths.NoisyJSON != "" {
		if c.Paths.NoisyJSON, err = expandPath(c.Paths.NoisyJSON); err != nil {
			return fmt.Errorf("paths.noisy_json: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.OutDir) == "" {
		c.Paths.OutDir = defaultOutDir
	}
	if c.Paths.OutDir, err = expandPath(c.Paths.OutDir); err != nil {
		return fmt.Errorf("paths.out_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEnhance() {
	c.Enhance.Model = strings.TrimSpace(c.Enhance.Model)
	if c.Enhance.Model == "" {
		c.Enhance.Model = defaultModel
	}
	c.Enhance.Device = strings.ToLower(strings.TrimSpace(c.Enhance.Device))
	if c.Enhance.Device == "" {
		c.Enhance.Device = defaultDevice
	}
	if c.Enhance.NumWorkers == 0 {
		c.Enhance.NumWorkers = defaultNumWorkers
	}
	if c.Enhance.BatchSize == 0 {
		c.Enhance.BatchSize = defaultBatchSize
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

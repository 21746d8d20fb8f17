package config

import (
	"github.com/Alexgichamba/denoiser/internal/services"
)

// Validate ensures the configuration is usable. Violations are tagged as
// configuration errors so the CLI can exit non-zero immediately at startup.
func (c *Config) Validate() error {
	if err := c.validateInputs(); err != nil {
		return err
	}
	if err := c.validateEnhance(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateInputs() error {
	// Both unset is valid: the run resolves an empty dataset and becomes a
	// warned no-op.
	if c.Paths.NoisyDir != "" && c.Paths.NoisyJSON != "" {
		return services.Wrap(services.ErrConfiguration, "config", "",
			"paths.noisy_dir and paths.noisy_json are mutually exclusive", nil)
	}
	return nil
}

func (c *Config) validateEnhance() error {
	if c.Enhance.Model == "" {
		return services.Wrap(services.ErrConfiguration, "config", "",
			"enhance.model must be set", nil)
	}
	switch c.Enhance.Device {
	case DeviceCPU, DeviceAccelerator:
	default:
		return services.Wrap(services.ErrConfiguration, "config", "",
			"enhance.device must be cpu or accelerator", nil)
	}
	if c.Enhance.Dry < 0 || c.Enhance.Dry > 1 {
		return services.Wrap(services.ErrConfiguration, "config", "",
			"enhance.dry must be between 0 and 1", nil)
	}
	if c.Enhance.NumWorkers < 1 {
		return services.Wrap(services.ErrConfiguration, "config", "",
			"enhance.num_workers must be at least 1", nil)
	}
	if c.Enhance.BatchSize < 1 {
		return services.Wrap(services.ErrConfiguration, "config", "",
			"enhance.batch_size must be at least 1", nil)
	}
	return nil
}

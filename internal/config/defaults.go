package config

const (
	defaultOutDir     = "enhanced"
	defaultLogDir     = "~/.local/share/denoiser/logs"
	defaultStateDir   = "~/.local/share/denoiser/state"
	defaultModel      = "gate16"
	defaultDevice     = DeviceCPU
	defaultNumWorkers = 10
	defaultBatchSize  = 1
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutDir:   defaultOutDir,
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Enhance: Enhance{
			Model:      defaultModel,
			Device:     defaultDevice,
			Dry:        0,
			NumWorkers: defaultNumWorkers,
			BatchSize:  defaultBatchSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

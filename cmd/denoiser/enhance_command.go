package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Alexgichamba/denoiser/internal/audio"
	"github.com/Alexgichamba/denoiser/internal/config"
	"github.com/Alexgichamba/denoiser/internal/distrib"
	"github.com/Alexgichamba/denoiser/internal/enhance"
	"github.com/Alexgichamba/denoiser/internal/fileset"
	"github.com/Alexgichamba/denoiser/internal/ledger"
	"github.com/Alexgichamba/denoiser/internal/logging"
	"github.com/Alexgichamba/denoiser/internal/model"
)

func newEnhanceCommand(ctx *commandContext) *cobra.Command {
	var (
		noisyDir  string
		noisyJSON string
		outDir    string
		modelName string
		device    string
		dry       float64
		workers   int
		batchSize int
		streaming bool
	)

	cmd := &cobra.Command{
		Use:   "enhance",
		Short: "Enhance every file from the configured input source",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd, cfg, flagOverrides{
				noisyDir:  noisyDir,
				noisyJSON: noisyJSON,
				outDir:    outDir,
				modelName: modelName,
				device:    device,
				dry:       dry,
				workers:   workers,
				batchSize: batchSize,
				streaming: streaming,
			})
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			return runEnhance(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&noisyDir, "noisy-dir", "", "Directory of noisy audio files")
	cmd.Flags().StringVar(&noisyJSON, "noisy-json", "", "JSON manifest listing noisy audio files")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory for enhanced output")
	cmd.Flags().StringVarP(&modelName, "model", "m", "", "Enhancement model name")
	cmd.Flags().StringVar(&device, "device", "", "Execution device (cpu or accelerator)")
	cmd.Flags().Float64Var(&dry, "dry", 0, "Fraction of the original signal kept in the output")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size for cpu runs")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Files per dispatched job")
	cmd.Flags().BoolVar(&streaming, "streaming", false, "Use streaming inference")
	return cmd
}

type flagOverrides struct {
	noisyDir  string
	noisyJSON string
	outDir    string
	modelName string
	device    string
	dry       float64
	workers   int
	batchSize int
	streaming bool
}

// applyFlagOverrides layers explicitly set flags over the loaded config so a
// flag always wins without disturbing file-provided values.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config, o flagOverrides) {
	if cmd.Flags().Changed("noisy-dir") {
		cfg.Paths.NoisyDir = o.noisyDir
	}
	if cmd.Flags().Changed("noisy-json") {
		cfg.Paths.NoisyJSON = o.noisyJSON
	}
	if cmd.Flags().Changed("out") {
		cfg.Paths.OutDir = o.outDir
	}
	if cmd.Flags().Changed("model") {
		cfg.Enhance.Model = o.modelName
	}
	if cmd.Flags().Changed("device") {
		cfg.Enhance.Device = o.device
	}
	if cmd.Flags().Changed("dry") {
		cfg.Enhance.Dry = o.dry
	}
	if cmd.Flags().Changed("workers") {
		cfg.Enhance.NumWorkers = o.workers
	}
	if cmd.Flags().Changed("batch-size") {
		cfg.Enhance.BatchSize = o.batchSize
	}
	if cmd.Flags().Changed("streaming") {
		cfg.Enhance.Streaming = o.streaming
	}
}

func runEnhance(cmd *cobra.Command, cfg *config.Config) error {
	// Console rendering is for humans; piped output gets JSON lines.
	if cfg.Logging.Format == "console" && !isatty.IsTerminal(os.Stderr.Fd()) {
		cfg.Logging.Format = "json"
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	rt, err := distrib.FromEnv(filepath.Join(cfg.Paths.StateDir, "barrier"))
	if err != nil {
		return err
	}

	lockPath := filepath.Join(cfg.Paths.StateDir, fmt.Sprintf("enhance.rank%d.lock", rt.Rank()))
	runLock := flock.New(lockPath)
	locked, err := runLock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another enhancement run is already active (lock %s)", lockPath)
	}
	defer func() { _ = runLock.Unlock() }()

	store, err := ledger.Open(cfg)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer func() { _ = store.Close() }()

	m, err := model.Get(cfg.Enhance.Model)
	if err != nil {
		return err
	}

	files, err := fileset.Resolve(cfg)
	if err != nil {
		return err
	}
	set := audio.NewSet(files, m.SampleRate(), m.Channels())

	scheduler := enhance.NewScheduler(cfg, rt, logger, store)
	summary, err := scheduler.Run(cmd.Context(), m, set, cfg.Paths.OutDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Files", "Enhanced", "Failed", "Elapsed"},
		[][]string{{
			summary.RunID,
			fmt.Sprintf("%d", summary.Total),
			fmt.Sprintf("%d", summary.Enhanced),
			fmt.Sprintf("%d", summary.Failed),
			summary.Elapsed.Round(time.Millisecond).String(),
		}},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
	return nil
}

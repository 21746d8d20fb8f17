package enhance_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Alexgichamba/denoiser/internal/audio"
	"github.com/Alexgichamba/denoiser/internal/config"
	"github.com/Alexgichamba/denoiser/internal/enhance"
	"github.com/Alexgichamba/denoiser/internal/ledger"
	"github.com/Alexgichamba/denoiser/internal/services"
)

func writeTestWav(t *testing.T, path string, samples int, value float32) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()
	if err := audio.EncodeWav(file, constClip(samples, value)); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func testConfig(noisyDir, outDir string, workers int) *config.Config {
	cfg := &config.Config{}
	cfg.Paths.NoisyDir = noisyDir
	cfg.Paths.OutDir = outDir
	cfg.Enhance.Model = "passthrough16"
	cfg.Enhance.Device = config.DeviceCPU
	cfg.Enhance.NumWorkers = workers
	cfg.Enhance.BatchSize = 1
	return cfg
}

func TestRunPreservesDirectoryStructure(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeTestWav(t, filepath.Join(in, "a.wav"), 1000, 0.3)
	writeTestWav(t, filepath.Join(in, "d", "b.wav"), 1000, 0.3)

	cfg := testConfig(in, out, 1)
	set := audio.NewSet([]string{
		filepath.Join(in, "a.wav"),
		filepath.Join(in, "d", "b.wav"),
	}, 16000, 1)

	scheduler := enhance.NewScheduler(cfg, nil, nil, nil)
	summary, err := scheduler.Run(context.Background(), halver{}, set, out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Enhanced != 2 || summary.Failed != 0 {
		t.Fatalf("summary: %+v", summary)
	}

	for _, rel := range []string{"a.wav", filepath.Join("d", "b.wav")} {
		clip := readWav(t, filepath.Join(out, rel))
		if clip.Peak() > 1 {
			t.Fatalf("%s exceeds unit amplitude", rel)
		}
	}
}

func TestRunPoolDrainsSuccessfully(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	input := filepath.Join(src, "c.wav")
	writeTestWav(t, input, 1000, 0.3)

	// Manifest-style run: no input root, basename-only layout.
	cfg := testConfig("", out, 4)
	set := audio.NewSet([]string{input}, 16000, 1)

	scheduler := enhance.NewScheduler(cfg, nil, nil, nil)
	summary, err := scheduler.Run(context.Background(), halver{}, set, out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Enhanced != 1 {
		t.Fatalf("summary: %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(out, "c.wav")); err != nil {
		t.Fatalf("expected output: %v", err)
	}
}

func TestRunEmptySetIsSuccessfulNoop(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	cfg := testConfig("", out, 1)

	scheduler := enhance.NewScheduler(cfg, nil, nil, nil)
	summary, err := scheduler.Run(context.Background(), halver{}, audio.NewSet(nil, 16000, 1), out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 0 || summary.Enhanced != 0 {
		t.Fatalf("summary: %+v", summary)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("no-op run must not create the output directory")
	}
}

// flakyThird fails on its third inference call.
type flakyThird struct {
	mu    sync.Mutex
	calls int
}

func (*flakyThird) Name() string    { return "flaky" }
func (*flakyThird) SampleRate() int { return 16000 }
func (*flakyThird) Channels() int   { return 1 }

func (f *flakyThird) Process(clip audio.Clip) (audio.Clip, error) {
	f.mu.Lock()
	f.calls++
	calls := f.calls
	f.mu.Unlock()
	if calls == 3 {
		return audio.Clip{}, errors.New("numeric failure")
	}
	return clip.Clone(), nil
}

func TestRunFailFastKeepsEarlierOutput(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	names := []string{"f1.wav", "f2.wav", "f3.wav", "f4.wav", "f5.wav"}
	files := make([]string, len(names))
	for i, name := range names {
		files[i] = filepath.Join(in, name)
		writeTestWav(t, files[i], 500, 0.2)
	}

	cfg := testConfig(in, out, 1)
	set := audio.NewSet(files, 16000, 1)

	scheduler := enhance.NewScheduler(cfg, nil, nil, nil)
	summary, err := scheduler.Run(context.Background(), &flakyThird{}, set, out)
	if err == nil {
		t.Fatal("expected run to fail on the third item")
	}
	if !errors.Is(err, services.ErrInference) {
		t.Fatalf("expected inference error class, got %v", err)
	}
	if summary.Enhanced != 2 || summary.Failed != 1 {
		t.Fatalf("summary: %+v", summary)
	}

	for _, name := range []string{"f1.wav", "f2.wav"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Fatalf("earlier output %s missing: %v", name, err)
		}
	}
	for _, name := range []string{"f3.wav", "f4.wav", "f5.wav"} {
		if _, err := os.Stat(filepath.Join(out, name)); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("%s must not exist after fail-fast abort", name)
		}
	}
}

func TestRunRejectsOutputCollision(t *testing.T) {
	srcA := t.TempDir()
	srcB := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	fileA := filepath.Join(srcA, "same.wav")
	fileB := filepath.Join(srcB, "same.wav")
	writeTestWav(t, fileA, 100, 0.1)
	writeTestWav(t, fileB, 100, 0.1)

	// Basename-only layout maps both inputs to out/same.wav.
	cfg := testConfig("", out, 1)
	set := audio.NewSet([]string{fileA, fileB}, 16000, 1)

	scheduler := enhance.NewScheduler(cfg, nil, nil, nil)
	_, err := scheduler.Run(context.Background(), halver{}, set, out)
	if err == nil {
		t.Fatal("expected collision to be rejected")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error class, got %v", err)
	}
}

func TestRunRecordsLedger(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	state := t.TempDir()
	writeTestWav(t, filepath.Join(in, "a.wav"), 400, 0.2)
	writeTestWav(t, filepath.Join(in, "b.wav"), 400, 0.2)

	cfg := testConfig(in, out, 1)
	cfg.Paths.StateDir = state
	cfg.Paths.LogDir = state

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	defer store.Close()

	set := audio.NewSet([]string{
		filepath.Join(in, "a.wav"),
		filepath.Join(in, "b.wav"),
	}, 16000, 1)

	scheduler := enhance.NewScheduler(cfg, nil, nil, store)
	summary, err := scheduler.Run(context.Background(), halver{}, set, out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	run, err := store.GetRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run == nil {
		t.Fatal("run not recorded")
	}
	if run.Status != ledger.RunCompleted || run.Enhanced != 2 || run.TotalFiles != 2 {
		t.Fatalf("run record: %+v", run)
	}

	records, err := store.FilesForRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("FilesForRun: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 file records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Status != ledger.FileEnhanced || rec.OutputPath == "" {
			t.Fatalf("file record: %+v", rec)
		}
	}
}

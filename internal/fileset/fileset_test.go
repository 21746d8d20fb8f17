package fileset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Alexgichamba/denoiser/internal/config"
	"github.com/Alexgichamba/denoiser/internal/fileset"
	"github.com/Alexgichamba/denoiser/internal/services"
)

func testConfig() *config.Config {
	cfg := config.Default()
	return &cfg
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestResolveEmptyWhenNoSource(t *testing.T) {
	files, err := fileset.Resolve(testConfig())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected empty set, got %v", files)
	}
}

func TestResolveDirectoryRecursiveSortedAndFiltered(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.wav"))
	writeFile(t, filepath.Join(root, "a.flac"))
	writeFile(t, filepath.Join(root, "sub", "c.WAV"))
	writeFile(t, filepath.Join(root, "sub", "notes.txt"))

	cfg := testConfig()
	cfg.Paths.NoisyDir = root

	files, err := fileset.Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := []string{
		filepath.Join(root, "a.flac"),
		filepath.Join(root, "b.wav"),
		filepath.Join(root, "sub", "c.WAV"),
	}
	if len(files) != len(want) {
		t.Fatalf("got %v want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v want %v", i, files, want)
		}
	}
}

func TestResolveManifest(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "noisy.json")
	if err := os.WriteFile(manifest, []byte(`["/x/c.mp3", "/y/d.wav"]`), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	cfg := testConfig()
	cfg.Paths.NoisyJSON = manifest

	files, err := fileset.Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(files) != 2 || files[0] != "/x/c.mp3" || files[1] != "/y/d.wav" {
		t.Fatalf("unexpected files: %v", files)
	}
}

func TestResolveManifestMalformed(t *testing.T) {
	cases := map[string]string{
		"invalid json":   `{"oops"`,
		"non-list top":   `{"files": []}`,
		"non-string item": `[1, 2]`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			manifest := filepath.Join(t.TempDir(), "noisy.json")
			if err := os.WriteFile(manifest, []byte(content), 0o644); err != nil {
				t.Fatalf("write manifest: %v", err)
			}
			cfg := testConfig()
			cfg.Paths.NoisyJSON = manifest
			_, err := fileset.Resolve(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !services.IsConfiguration(err) {
				t.Fatalf("expected configuration marker, got %v", err)
			}
		})
	}
}

func TestResolveMissingManifestIsConfigError(t *testing.T) {
	cfg := testConfig()
	cfg.Paths.NoisyJSON = filepath.Join(t.TempDir(), "absent.json")
	_, err := fileset.Resolve(cfg)
	if !services.IsConfiguration(err) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
}

func TestIsAudioPath(t *testing.T) {
	if !fileset.IsAudioPath("/a/b.WAV") {
		t.Fatal("expected wav to be recognized")
	}
	if fileset.IsAudioPath("/a/b.txt") {
		t.Fatal("txt should not be recognized")
	}
}

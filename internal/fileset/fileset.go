package fileset

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Alexgichamba/denoiser/internal/config"
	"github.com/Alexgichamba/denoiser/internal/services"
)

// audioExtensions lists the file extensions recognized when scanning a noisy
// directory.
var audioExtensions = map[string]struct{}{
	".wav":  {},
	".flac": {},
	".mp3":  {},
	".ogg":  {},
	".aiff": {},
	".m4a":  {},
}

// IsAudioPath reports whether the path carries a recognized audio extension.
func IsAudioPath(path string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Resolve turns the configured input source into an ordered list of file
// paths. An empty list with a nil error means no input source was configured;
// the caller logs a warning and skips the run.
func Resolve(cfg *config.Config) ([]string, error) {
	switch {
	case cfg.Paths.NoisyJSON != "":
		return fromManifest(cfg.Paths.NoisyJSON)
	case cfg.Paths.NoisyDir != "":
		return fromDirectory(cfg.Paths.NoisyDir)
	default:
		return nil, nil
	}
}

// fromManifest parses a JSON manifest holding an array of audio file paths.
func fromManifest(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "fileset", "read manifest", path, err)
	}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "fileset", "parse manifest", path, err)
	}

	var files []string
	if err := json.Unmarshal(raw, &files); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "fileset", "parse manifest",
			fmt.Sprintf("%s: top level must be a list of file path strings", path), err)
	}

	out := make([]string, 0, len(files))
	for _, file := range files {
		file = strings.TrimSpace(file)
		if file == "" {
			continue
		}
		out = append(out, file)
	}
	return out, nil
}

// fromDirectory enumerates recognized audio files recursively beneath root in
// deterministic sorted order.
func fromDirectory(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "fileset", "stat noisy_dir", root, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrConfiguration, "fileset", "",
			fmt.Sprintf("noisy_dir %s is not a directory", root), nil)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		if IsAudioPath(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "fileset", "scan noisy_dir", root, err)
	}

	sort.Strings(files)
	return files, nil
}

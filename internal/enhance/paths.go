package enhance

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Alexgichamba/denoiser/internal/services"
)

// PlanOutputPath maps an input filename to its output path under outDir and
// ensures the containing directory exists. With inputRoot set, the path
// relative to the root is preserved and the extension becomes .wav; without
// it, only the basename survives. Calling it twice with the same arguments
// returns the same path.
func PlanOutputPath(filename, outDir, inputRoot string) (string, error) {
	planned, err := planPath(filename, outDir, inputRoot)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(planned), 0o755); err != nil {
		return "", services.Wrap(services.ErrIO, "plan", "mkdir", filepath.Dir(planned), err)
	}
	return planned, nil
}

// planPath is the pure mapping behind PlanOutputPath, used on its own for
// collision checks before any directory is created.
func planPath(filename, outDir, inputRoot string) (string, error) {
	if inputRoot != "" {
		rel, err := filepath.Rel(inputRoot, filename)
		if err != nil {
			return "", services.Wrap(services.ErrConfiguration, "plan", "relative path",
				filename+" is not under "+inputRoot, err)
		}
		return filepath.Join(outDir, replaceExt(rel)), nil
	}
	return filepath.Join(outDir, replaceExt(filepath.Base(filename))), nil
}

func replaceExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".wav"
}

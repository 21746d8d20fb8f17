package enhance

import (
	"bytes"

	"github.com/Alexgichamba/denoiser/internal/audio"
	"github.com/Alexgichamba/denoiser/internal/fileutil"
	"github.com/Alexgichamba/denoiser/internal/services"
)

// WriteWav persists the clip as a PCM16 WAV file at path. When the peak
// amplitude exceeds 1 the whole clip is scaled down so the peak lands exactly
// at 1; quieter clips are written unchanged, never amplified.
func WriteWav(clip audio.Clip, path string) error {
	if peak := clip.Peak(); peak > 1 {
		scaled := clip.Clone()
		inv := 1 / peak
		for ch := range scaled.Channels {
			for i := range scaled.Channels[ch] {
				scaled.Channels[ch][i] *= inv
			}
		}
		clip = scaled
	}

	var buf bytes.Buffer
	if err := audio.EncodeWav(&buf, clip); err != nil {
		return services.Wrap(services.ErrIO, "write", "encode", path, err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return services.Wrap(services.ErrIO, "write", "persist", path, err)
	}
	return nil
}

package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alexgichamba/denoiser/internal/services"
)

// Set lazily decodes a list of audio files into clips with a fixed channel
// count and sample rate, yielding (clip, path) pairs. Nothing is decoded until
// an item is requested, so large datasets never sit in memory at once.
type Set struct {
	files    []string
	rate     int
	channels int
}

// NewSet builds a dataset over files converted to the given sample rate and
// channel count (typically the model's native shape).
func NewSet(files []string, sampleRate, channels int) *Set {
	return &Set{files: files, rate: sampleRate, channels: channels}
}

// Len returns the number of files in the set.
func (s *Set) Len() int {
	return len(s.files)
}

// Path returns the source path of item i without decoding it.
func (s *Set) Path(i int) string {
	return s.files[i]
}

// At decodes item i and converts it to the set's channel count and sample
// rate.
func (s *Set) At(i int) (Clip, string, error) {
	path := s.files[i]

	clip, err := decodeFile(path)
	if err != nil {
		return Clip{}, path, err
	}

	clip = ConvertChannels(clip, s.channels)
	clip, err = Resample(clip, s.rate)
	if err != nil {
		return Clip{}, path, services.Wrap(services.ErrIO, "audioset", "resample", path, err)
	}
	return clip, path, nil
}

func decodeFile(path string) (Clip, error) {
	file, err := os.Open(path)
	if err != nil {
		return Clip{}, services.Wrap(services.ErrIO, "audioset", "open", path, err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		clip, err := DecodeWav(file)
		if err != nil {
			return Clip{}, services.Wrap(services.ErrIO, "audioset", "decode", path, err)
		}
		return clip, nil
	default:
		return Clip{}, services.Wrap(services.ErrIO, "audioset", "decode",
			fmt.Sprintf("%s: no decoder for this format (PCM16 wav only)", path), nil)
	}
}

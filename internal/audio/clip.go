package audio

// Clip is a decoded waveform: channel-major float32 samples in [-1, 1] plus
// the sample rate they were decoded (or converted) at. All channels hold the
// same number of samples.
type Clip struct {
	Rate     int
	Channels [][]float32
}

// NewClip allocates a silent clip with the given shape.
func NewClip(rate, channels, samples int) Clip {
	data := make([][]float32, channels)
	for i := range data {
		data[i] = make([]float32, samples)
	}
	return Clip{Rate: rate, Channels: data}
}

// ChannelCount returns the number of channels.
func (c Clip) ChannelCount() int {
	return len(c.Channels)
}

// SampleCount returns the per-channel sample count.
func (c Clip) SampleCount() int {
	if len(c.Channels) == 0 {
		return 0
	}
	return len(c.Channels[0])
}

// Peak returns the maximum absolute sample amplitude across all channels.
func (c Clip) Peak() float32 {
	var peak float32
	for _, ch := range c.Channels {
		for _, s := range ch {
			if s < 0 {
				s = -s
			}
			if s > peak {
				peak = s
			}
		}
	}
	return peak
}

// Clone returns a deep copy.
func (c Clip) Clone() Clip {
	out := Clip{Rate: c.Rate, Channels: make([][]float32, len(c.Channels))}
	for i, ch := range c.Channels {
		out.Channels[i] = append([]float32(nil), ch...)
	}
	return out
}

// ConvertChannels returns a clip with the requested channel count. Downmixing
// averages the source channels; upmixing duplicates the last source channel.
func ConvertChannels(c Clip, channels int) Clip {
	if channels <= 0 || c.ChannelCount() == channels {
		return c
	}

	samples := c.SampleCount()
	out := NewClip(c.Rate, channels, samples)

	if channels < c.ChannelCount() && channels == 1 {
		scale := 1 / float32(c.ChannelCount())
		mono := out.Channels[0]
		for _, ch := range c.Channels {
			for i, s := range ch {
				mono[i] += s * scale
			}
		}
		return out
	}

	for i := 0; i < channels; i++ {
		src := i
		if src >= c.ChannelCount() {
			src = c.ChannelCount() - 1
		}
		copy(out.Channels[i], c.Channels[src])
	}
	return out
}

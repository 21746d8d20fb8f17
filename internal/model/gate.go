package model

import (
	"math"
	"sort"

	"github.com/Alexgichamba/denoiser/internal/audio"
)

func init() {
	Register("gate16", func() Model { return &gate{} })
}

// gate is an envelope-following noise gate operating on 16 kHz mono audio.
// It estimates the noise floor from the quietest stretches of the clip,
// then attenuates hops whose short-time energy sits near that floor. Gains
// are smoothed with separate attack and release constants so speech onsets
// open the gate quickly while tails decay without pumping.
type gate struct{}

const (
	gateRate     = 16000
	gateHop      = 128  // 8 ms at 16 kHz
	gateWindow   = 256  // 16 ms analysis window
	gateOpen     = 2.5  // envelope-to-floor ratio that fully opens the gate
	gateFloorPct = 0.10 // percentile of hop energies treated as noise floor
	gateMinGain  = 0.1
	gateAttack   = 0.60 // per-hop smoothing toward a louder gain
	gateRelease  = 0.05 // per-hop smoothing toward a quieter gain
)

func (*gate) Name() string    { return "gate16" }
func (*gate) SampleRate() int { return gateRate }
func (*gate) Channels() int   { return 1 }

func (g *gate) Process(clip audio.Clip) (audio.Clip, error) {
	if err := checkShape(g, clip); err != nil {
		return audio.Clip{}, err
	}

	samples := clip.Channels[0]
	n := len(samples)
	out := audio.NewClip(clip.Rate, 1, n)
	if n == 0 {
		return out, nil
	}

	envelope := hopEnvelope(samples)
	floor := noiseFloor(envelope)
	gains := hopGains(envelope, floor)

	// Linear gain interpolation between hop centers avoids zipper noise at
	// hop boundaries.
	dst := out.Channels[0]
	for i := 0; i < n; i++ {
		hop := i / gateHop
		frac := float32(i%gateHop) / gateHop
		cur := gains[hop]
		next := cur
		if hop+1 < len(gains) {
			next = gains[hop+1]
		}
		dst[i] = samples[i] * (cur + (next-cur)*frac)
	}
	return out, nil
}

// hopEnvelope returns the RMS of a gateWindow-long window centered on each
// hop. The final partial hop reuses whatever samples remain.
func hopEnvelope(samples []float32) []float64 {
	hops := (len(samples) + gateHop - 1) / gateHop
	envelope := make([]float64, hops)
	for h := 0; h < hops; h++ {
		start := h*gateHop - (gateWindow-gateHop)/2
		if start < 0 {
			start = 0
		}
		end := start + gateWindow
		if end > len(samples) {
			end = len(samples)
		}
		var sum float64
		for _, s := range samples[start:end] {
			sum += float64(s) * float64(s)
		}
		envelope[h] = math.Sqrt(sum / float64(end-start))
	}
	return envelope
}

func noiseFloor(envelope []float64) float64 {
	sorted := append([]float64(nil), envelope...)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)) * gateFloorPct)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	floor := sorted[idx]
	if floor < 1e-6 {
		floor = 1e-6
	}
	return floor
}

func hopGains(envelope []float64, floor float64) []float32 {
	gains := make([]float32, len(envelope))
	smoothed := 1.0
	for h, env := range envelope {
		ratio := env / (floor * gateOpen)
		target := 1.0
		if ratio < 1 {
			// Quadratic rolloff below the threshold keeps low-level speech
			// audible while pushing steady noise toward the minimum gain.
			target = gateMinGain + (1-gateMinGain)*ratio*ratio
		}
		coeff := gateRelease
		if target > smoothed {
			coeff = gateAttack
		}
		smoothed += coeff * (target - smoothed)
		gains[h] = float32(smoothed)
	}
	return gains
}

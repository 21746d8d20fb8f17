// Package audio owns waveform representation and audio file IO for the
// enhancement pipeline: the channel-major Clip type, a PCM16 WAV codec,
// sample-rate conversion, and the lazily decoding Set that feeds the
// scheduler fixed-shape clips.
package audio

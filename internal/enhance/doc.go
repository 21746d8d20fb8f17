// Package enhance is the orchestration core of the pipeline: it estimates
// denoised waveforms, plans output paths, writes normalized WAV files and
// schedules the per-file work across inline or pooled execution.
package enhance

// Command denoiser enhances batches of noisy speech recordings from a
// directory or manifest into normalized WAV files, and keeps a ledger of
// past runs.
package main

// Package services defines shared utilities consumed across the enhancement
// pipeline.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, stage names, and source file
//     paths for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the configuration / inference / io taxonomy the CLI maps to exit
//     behaviour.
//
// Use these helpers when wiring new pipeline logic so error handling and
// observability stay uniform across components.
package services

// Package fileset resolves the configured input source into the ordered list
// of audio files an enhancement run processes.
//
// Inputs come from either a JSON manifest (a flat array of file path strings)
// or a recursive directory scan filtered to recognized audio extensions.
// Neither being configured is not an error: the resolver returns an empty
// list and the scheduler skips the run with a warning.
package fileset

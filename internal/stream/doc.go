// Package stream chunks audio through an enhancement model frame by frame,
// for use when enhanced output should become available before the whole clip
// has been processed.
package stream

// Package model defines the enhancement model contract and a registry of
// built-in models.
package model

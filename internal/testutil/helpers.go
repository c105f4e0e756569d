package testutil

import (
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
)

// NewTestRNG creates a deterministic random number generator for tests
func NewTestRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NopLogger returns a no-op logger for tests
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

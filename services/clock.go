package services

import (
	"math/rand"
	"time"
)

// Clock returns the current instant. Services always work in UTC.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

// RandomSource is the randomness consumed by spins and order offers.
// *rand.Rand satisfies it for deterministic tests.
type RandomSource interface {
	Intn(n int) int
	Float64() float64
}

type globalRandom struct{}

func (globalRandom) Intn(n int) int   { return rand.Intn(n) }
func (globalRandom) Float64() float64 { return rand.Float64() }

// NewRandomSource returns a source safe for concurrent use.
func NewRandomSource() RandomSource {
	return globalRandom{}
}

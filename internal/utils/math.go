package utils

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// float53 is 2^53, the number of distinct float64 values in [0, 1) with uniform spacing
const float53 = 1 << 53

// RandomFloat returns a random float64 in [0.0, 1.0)
func RandomFloat() float64 {
	return rand.Float64() //nolint:gosec // Game logic randomness, not security critical
}

// SecureRandomFloat returns a uniform float64 in [0.0, 1.0) read from crypto/rand.
// It falls back to math/rand if the system entropy source fails.
func SecureRandomFloat() float64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return RandomFloat()
	}
	return float64(binary.BigEndian.Uint64(b[:])>>11) / float53
}

// SeededFloats returns a deterministic [0, 1) source, for reproducible draws in tests and replays
func SeededFloats(seed int64) func() float64 {
	r := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic replay source
	return r.Float64
}

// FixedFloats returns a source that yields values in order, repeating the last one
func FixedFloats(values ...float64) func() float64 {
	i := 0
	return func() float64 {
		if len(values) == 0 {
			return 0
		}
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}

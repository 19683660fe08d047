// Package prng provides the deterministic generator used to shuffle choice
// pools and options so that identical source content always renders in the
// same order.
package prng

import "unicode/utf16"

const (
	multiplier = 9301
	increment  = 49297
	modulus    = 233280

	// MinLengthSeed is the floor applied to length-derived seeds.
	MinLengthSeed = 1337
	maxSeed       = 2147483647
)

// Generator is a linear-congruential generator. It is not safe for
// concurrent use; create one per shuffle.
type Generator struct {
	state int64
}

// New returns a generator seeded with seed.
func New(seed int64) *Generator {
	s := seed % modulus
	if s < 0 {
		s += modulus
	}
	return &Generator{state: s}
}

// Next returns the next value in [0,1).
func (g *Generator) Next() float64 {
	g.state = (g.state*multiplier + increment) % modulus
	return float64(g.state) / modulus
}

// Shuffle permutes items in place (Fisher-Yates, last index down to 1).
func Shuffle[T any](g *Generator, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := int(g.Next() * float64(i+1))
		items[i], items[j] = items[j], items[i]
	}
}

// Shuffled returns a shuffled copy of items, leaving the input untouched.
func Shuffled[T any](seed int64, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	Shuffle(New(seed), out)
	return out
}

// LengthSeed derives the cheap seed used for blank, matching, sort and swipe
// pools: max(1337, len(source) mod 2147483647), length in UTF-16 code units.
func LengthSeed(source string) int64 {
	n := int64(len(utf16.Encode([]rune(source)))) % maxSeed
	if n < MinLengthSeed {
		return MinLengthSeed
	}
	return n
}

// ContentSeed folds every UTF-16 code unit of parts into a 32-bit signed
// accumulator (hash = (hash<<5) - hash + c) and returns its absolute value.
func ContentSeed(parts ...string) int64 {
	var hash int32
	for _, p := range parts {
		for _, c := range utf16.Encode([]rune(p)) {
			hash = (hash << 5) - hash + int32(c)
		}
	}
	h := int64(hash)
	if h < 0 {
		h = -h
	}
	return h
}

package prng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_Deterministic(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestGenerator_Range(t *testing.T) {
	g := New(1337)
	for i := 0; i < 1000; i++ {
		v := g.Next()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestGenerator_NegativeSeed(t *testing.T) {
	g := New(-5)
	v := g.Next()
	assert.GreaterOrEqual(t, v, 0.0)
	assert.Less(t, v, 1.0)
}

func TestShuffle_IsPermutation(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f"}
	out := Shuffled(LengthSeed("some source"), items)

	assert.ElementsMatch(t, items, out)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, items, "input must not be mutated")
}

func TestShuffle_SameSeedSameOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	first := Shuffled(99, items)
	second := Shuffled(99, items)
	assert.Equal(t, first, second)
}

func TestShuffle_ShortInputs(t *testing.T) {
	assert.Empty(t, Shuffled(1, []string{}))
	assert.Equal(t, []string{"x"}, Shuffled(1, []string{"x"}))
}

func TestLengthSeed(t *testing.T) {
	assert.Equal(t, int64(MinLengthSeed), LengthSeed(""))
	assert.Equal(t, int64(MinLengthSeed), LengthSeed("short"))

	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	assert.Equal(t, int64(2000), LengthSeed(string(long)))
}

func TestContentSeed(t *testing.T) {
	// "a" = 97, "ab" = 97*31 + 98
	assert.Equal(t, int64(97), ContentSeed("a"))
	assert.Equal(t, int64(97*31+98), ContentSeed("ab"))
	assert.Equal(t, ContentSeed("ab"), ContentSeed("a", "b"))
	assert.NotEqual(t, ContentSeed("question one"), ContentSeed("question two"))
	assert.GreaterOrEqual(t, ContentSeed("a long string that will overflow the accumulator many times"), int64(0))
}

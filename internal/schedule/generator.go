package schedule

import "math/bits"

const (
	// zeroSeedReplacement keeps a zero seed from locking the generator at 0.
	zeroSeedReplacement uint64 = 0x0123456789ABCDEF

	// mixConstant is xored in on every step.
	mixConstant uint64 = 0xA0761D6478BD642F
)

// Generator is a deterministic xorshift-style bit generator. The same seed
// always produces the same sequence, on any platform.
type Generator struct {
	state uint64
}

// NewGenerator returns a Generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		seed = zeroSeedReplacement
	}
	return &Generator{state: seed}
}

// Next advances the generator and returns the new state.
func (g *Generator) Next() uint64 {
	g.state ^= g.state << 7
	g.state ^= g.state >> 9
	g.state ^= mixConstant
	return g.state
}

// Bounded returns a value in [0, bound). Multiply-shift with rejection keeps
// the draw unbiased. bound must be > 0.
func (g *Generator) Bounded(bound uint64) uint64 {
	hi, lo := bits.Mul64(g.Next(), bound)
	if lo < bound {
		threshold := -bound % bound
		for lo < threshold {
			hi, lo = bits.Mul64(g.Next(), bound)
		}
	}
	return hi
}

// Shuffle permutes n elements in place through swap, walking from the
// front and swapping each slot with a random slot at or after it.
func (g *Generator) Shuffle(n int, swap func(i, j int)) {
	for i := 0; n-i > 1; i++ {
		j := i + int(g.Bounded(uint64(n-i)))
		swap(i, j)
	}
}

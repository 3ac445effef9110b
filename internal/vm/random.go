package vm

import "math/rand/v2"

// RandomSource supplies the bytes consumed by the rand instruction.
type RandomSource interface {
	NextByte() uint8
}

type pcgSource struct {
	rng *rand.Rand
}

// NewRandomSource returns a PCG-backed source. A zero seed picks a random
// seed; any other value gives a reproducible sequence.
func NewRandomSource(seed uint64) RandomSource {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &pcgSource{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (s *pcgSource) NextByte() uint8 {
	return uint8(s.rng.IntN(256))
}

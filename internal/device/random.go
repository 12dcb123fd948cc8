package device

import "math/rand/v2"

// chanceToChange is the per-tick probability that a device spontaneously
// mutates one of its randomly drifting attributes.
const chanceToChange = 0.01

// Rand supplies the randomness device ticks consume. *rand.Rand from
// math/rand/v2 satisfies it; tests substitute scripted implementations
// to force specific branches.
type Rand interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// IntN returns a uniform value in [0, n).
	IntN(n int) int
}

// NewRand returns a seeded Rand for production use.
func NewRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// intBetween returns a uniform value in [lo, hi], both bounds inclusive.
func intBetween(rng Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

// intBetweenExcept re-rolls until the result differs from current.
func intBetweenExcept(rng Rand, lo, hi, current int) int {
	next := current
	for next == current {
		next = intBetween(rng, lo, hi)
	}
	return next
}

// pick returns a uniformly chosen element of choices.
func pick[T any](rng Rand, choices []T) T {
	return choices[rng.IntN(len(choices))]
}

// pickExcept re-rolls until the choice differs from current.
func pickExcept[T comparable](rng Rand, choices []T, current T) T {
	next := current
	for next == current {
		next = pick(rng, choices)
	}
	return next
}

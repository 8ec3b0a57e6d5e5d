package quiz

import "math/rand/v2"

// Shuffle returns a uniformly random permutation of in using Fisher–Yates.
// The input slice is never modified. A nil rng uses the global source.
func Shuffle[T any](in []T, rng *rand.Rand) []T {
	out := make([]T, len(in))
	copy(out, in)

	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(out) - 1; i > 0; i-- {
		j := intN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

package chess

import "math/rand"

// PickWithNoise weakens play below noiseFreeLevel by sampling uniformly among the
// first few of the ordered moves. With no random source, or nothing to sample
// from, best is returned unchanged.
func PickWithNoise(best Move, ordered []Move, level int, r *rand.Rand) Move {
	width := noiseWidth(level)
	if width <= 1 || r == nil || len(ordered) == 0 {
		return best
	}
	width = min(width, len(ordered))
	return ordered[r.Intn(width)]
}

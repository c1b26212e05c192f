package scroll

// Clamp bounds proposed to [lo, hi] and reports whether it had to move it.
// Inverted bounds are swapped rather than rejected.
func Clamp(proposed, lo, hi int) (int, bool) {
	if lo > hi {
		lo, hi = hi, lo
	}
	out := proposed
	if out < lo {
		out = lo
	}
	if out > hi {
		out = hi
	}
	return out, out != proposed
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

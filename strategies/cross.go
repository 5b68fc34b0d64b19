package strategies

import "github.com/rustyeddy/backtester/indicators"

// crossedUp reports whether a moved from below b to above b at index i.
// Bars where the two are equal are skipped when looking back, so a touch
// followed by a move away in the same direction is not a cross. Any invalid
// value met on the way back means there is no cross.
func crossedUp(a, b indicators.Series, i int) bool {
	av, aok := a.At(i)
	bv, bok := b.At(i)
	if !aok || !bok || av <= bv {
		return false
	}

	for j := i - 1; j >= 0; j-- {
		av, aok = a.At(j)
		bv, bok = b.At(j)
		if !aok || !bok {
			return false
		}
		if av < bv {
			return true
		}
		if av > bv {
			return false
		}
	}
	return false
}

// crossedDown reports whether a moved from above b to below b at index i.
func crossedDown(a, b indicators.Series, i int) bool {
	return crossedUp(b, a, i)
}

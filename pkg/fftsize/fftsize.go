/*
Package fftsize picks transform sizes that FFT implementations handle
efficiently. Mixed-radix FFTs run fastest on lengths whose only prime
factors are 2, 3 and 5 ("5-smooth" numbers), so frames are zero-padded up
to the closest such length before transforming.

Usage:

	// Pad a 1000x700 frame to a square 1000x1000 transform
	n, err := fftsize.ClosestEfficientSize(1000) // Returns 1000

	// 1001 is 7*11*13, the next smooth size is 1024
	n, err = fftsize.ClosestEfficientSize(1001) // Returns 1024

----------------------------------------------------------------------

What this code does:

	Every exponent is bounded by ceil(log_base(x)) for its base. A
	larger exponent on its own already exceeds x, so no minimum can
	hide beyond the bound. All (a, b, c) combinations within the bounds
	are enumerated and the smallest 2^a * 3^b * 5^c >= x wins.

	The bounds are found by repeated multiplication rather than
	math.Log, so exact powers (243 = 3^5) never lose an exponent to
	floating point rounding.

	Products stop growing along an axis as soon as they reach x: any
	larger exponent on that axis only produces bigger candidates, so
	the enumeration is pruned there. This keeps every intermediate
	value below 5x and far from overflow.
*/
package fftsize

import "errors"

// ErrNoEfficientSize is returned when no 5-smooth candidate qualifies,
// which only happens for non-positive input.
var ErrNoEfficientSize = errors.New("no efficient FFT size")

// ClosestEfficientSize returns the smallest n >= x of the form 2^a * 3^b * 5^c.
//
// Examples:
//
//	Input  Output  Factorisation
//	1      1       2^0 * 3^0 * 5^0
//	7      8       2^3
//	10     10      2 * 5
//	11     12      2^2 * 3
//	0      error   Not positive
func ClosestEfficientSize(x int) (int, error) {
	if x <= 0 {
		return 0, ErrNoEfficientSize
	}

	power2 := exponentBound(x, 2)
	power3 := exponentBound(x, 3)
	power5 := exponentBound(x, 5)

	best := 0
	p2 := 1
	for a := 0; a <= power2; a++ {
		p23 := p2
		for b := 0; b <= power3; b++ {
			v := p23
			for c := 0; c <= power5; c++ {
				if v >= x {
					if best == 0 || v < best {
						best = v
					}
					break
				}
				v *= 5
			}
			if p23 >= x {
				break
			}
			p23 *= 3
		}
		if p2 >= x {
			break
		}
		p2 *= 2
	}

	if best == 0 {
		return 0, ErrNoEfficientSize
	}
	return best, nil
}

// exponentBound returns ceil(log_base(x)), the smallest e with base^e >= x.
func exponentBound(x, base int) int {
	e, v := 0, 1
	for v < x {
		v *= base
		e++
	}
	return e
}

// IsSmooth reports whether n > 0 has no prime factors other than 2, 3 and 5.
func IsSmooth(n int) bool {
	if n <= 0 {
		return false
	}
	for _, p := range [...]int{2, 3, 5} {
		for n%p == 0 {
			n /= p
		}
	}
	return n == 1
}

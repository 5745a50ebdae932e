// Package isqrt computes floor(sqrt(x)) for 256-bit unsigned integers.
package isqrt

import "github.com/holiman/uint256"

// Sqrt returns floor(sqrt(x)) using a Babylonian (Newton) iteration, the
// same approach the pool's teacher contracts use for their 64-bit reserves,
// generalized to the full 256-bit width the invariant check operates on.
//
// The pool relies on monotonicity: x <= y implies Sqrt(x) <= Sqrt(y).
func Sqrt(x *uint256.Int) *uint256.Int {
	if x == nil || x.IsZero() {
		return uint256.NewInt(0)
	}

	one := uint256.NewInt(1)
	two := uint256.NewInt(2)

	// z starts at x, y at (x+1)/2, matching the teacher's sqrt64:
	//   z := x; y := (z+1)/2; for y < z { z = y; y = (y + x/y)/2 }
	// (x+1)/2 is computed as x/2 + (x&1) so that x = 2^256-1 does not wrap.
	z := new(uint256.Int).Set(x)
	y := new(uint256.Int).Rsh(x, 1)
	if x.Uint64()&1 == 1 {
		y.Add(y, one)
	}

	for y.Lt(z) {
		z.Set(y)
		// y = (y + x/y) / 2
		quotient := new(uint256.Int).Div(x, y)
		y.Add(y, quotient)
		y.Div(y, two)
	}
	return z
}

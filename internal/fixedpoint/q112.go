// Package fixedpoint implements the Q112.112 binary fixed-point format used
// exclusively by the pool's cumulative price accumulator: 112 integer bits,
// 112 fractional bits, packed into a 224-bit value that fits a uint256 word.
//
// This generalizes the teacher contract's Q32.32 helpers (qMul/qDiv in the
// v3 example) to the 112.112 width spec.md requires for the price
// accumulator.
package fixedpoint

import "github.com/holiman/uint256"

// Shift is the number of fractional bits in a Q112.112 value.
const Shift = 112

// Encode returns x encoded as a Q112.112 value: x * 2^112.
//
// x must fit in 112 bits (the pool guarantees this by construction — it is
// always a reserve already checked against 2^112); the result then fits in
// 224 bits, well within the 256-bit word. Encoding is exact: no rounding.
func Encode(x *uint256.Int) *uint256.Int {
	return new(uint256.Int).Lsh(x, Shift)
}

// UQDiv divides a Q112.112 value by a plain (112-bit) integer divisor,
// yielding another Q112.112 value truncated toward zero.
//
// Division by zero is undefined behavior for the caller to avoid; the pool
// only ever calls this with a divisor it has already proven nonzero.
func UQDiv(q, y *uint256.Int) *uint256.Int {
	return new(uint256.Int).Div(q, y)
}

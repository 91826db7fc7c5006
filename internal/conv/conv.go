// Package conv provides checked integer conversions.
//
// The engine indexes states and capture slots with narrower integer types
// than int. A conversion that would overflow means a program grew past its
// configured limit without being caught, so these helpers panic instead of
// silently wrapping.
package conv

import "math"

// IntToUint32 converts n to uint32.
// Panics if n < 0 or n > math.MaxUint32.
func IntToUint32(n int) uint32 {
	// Compare as uint so 32-bit platforms never overflow the constant.
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("integer overflow: int value out of uint32 range")
	}
	return uint32(n)
}

// SaturatingMul returns a*b, clamped to limit+1 once the product exceeds
// limit. Both operands must be non-negative.
func SaturatingMul(a, b, limit int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a > (limit+1)/b {
		return limit + 1
	}
	if p := a * b; p <= limit {
		return p
	}
	return limit + 1
}

// SaturatingAdd returns a+b, clamped to limit+1 once the sum exceeds limit.
// Both operands must be non-negative.
func SaturatingAdd(a, b, limit int) int {
	if a > limit || b > limit || a+b > limit {
		return limit + 1
	}
	return a + b
}

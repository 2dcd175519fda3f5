package abc

import "math"

// truncF32 converts f toward zero, saturating at the int32 range.
// NaN converts to 0.
func truncF32(f float32) int32 {
	switch {
	case f != f:
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	default:
		return int32(f)
	}
}

// negative maps any sum onto a strictly negative value, or MinInt32.
func negative(sum int32) int32 {
	if sum <= 0 {
		if sum == math.MinInt32 {
			return sum
		}
		return sum - 1
	}
	return -sum
}

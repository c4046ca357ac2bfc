package cbor

import (
	"math"

	"github.com/x448/float16"
)

// halfBitsToFloat64 decodes an IEEE-754 half-precision bit pattern to a
// float64, delegating the bit-twiddling to x448/float16 rather than
// re-deriving it.
func halfBitsToFloat64(bits uint16) float64 {
	return float64(float16.Frombits(bits).Float32())
}

func float32FromBits(bits uint32) float32 {
	return math.Float32frombits(bits)
}

func float64FromBits(bits uint64) float64 {
	return math.Float64frombits(bits)
}

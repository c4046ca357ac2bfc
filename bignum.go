package cbor

import (
	"math/big"
	"strings"
)

// renderBigIntDecimal renders a tag 2/3 bignum's raw big-endian byte
// payload as a base-10 string. Tag 3 (negative bignum) encodes value =
// -1 - n, matching the major-type-1 negative integer convention.
func renderBigIntDecimal(raw []byte, negative bool) string {
	n := new(big.Int).SetBytes(raw)
	if negative {
		n.Add(n, big.NewInt(1))
		n.Neg(n)
	}
	return n.String()
}

// renderDecimalFraction renders a tag 4 decimal fraction (value =
// mantissa * 10^exponent) as a plain decimal string, without resorting to
// float64 and its precision loss.
func renderDecimalFraction(exponent int64, mantissa *big.Int) string {
	neg := mantissa.Sign() < 0
	digits := new(big.Int).Abs(mantissa).String()

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	switch {
	case exponent >= 0:
		sb.WriteString(digits)
		sb.WriteString(strings.Repeat("0", int(exponent)))
	default:
		shift := int(-exponent)
		if shift >= len(digits) {
			sb.WriteString("0.")
			sb.WriteString(strings.Repeat("0", shift-len(digits)))
			sb.WriteString(digits)
		} else {
			point := len(digits) - shift
			sb.WriteString(digits[:point])
			sb.WriteByte('.')
			sb.WriteString(digits[point:])
		}
	}
	return sb.String()
}

// renderBigFloat renders a tag 5 bigfloat (value = mantissa * 2^exponent)
// as a C99-style hex-float string ("0x1.8p+03"), using math/big's own hex
// formatter so the full mantissa precision survives.
func renderBigFloat(exponent int64, mantissa *big.Int) string {
	f := new(big.Float).SetPrec(mantissa.BitLen() + 64).SetInt(mantissa)
	scale := new(big.Float).SetPrec(f.Prec()).SetMantExp(big.NewFloat(1), int(exponent))
	f.Mul(f, scale)
	return f.Text('x', -1)
}

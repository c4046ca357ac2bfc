package cbor

import "encoding/binary"

// TypedArrayKind identifies the element type of a TypedArray, per the
// RFC 8746 typed-array tag extension.
type TypedArrayKind int

const (
	TAKindU8 TypedArrayKind = iota
	TAKindU16
	TAKindU32
	TAKindU64
	TAKindI8
	TAKindI16
	TAKindI32
	TAKindI64
	TAKindF32
	// TAKindF64 also holds arrays whose wire elements were half-precision
	// (tag 0x50/0x54); those are widened to float64 on decode.
	TAKindF64
	// TAKindF128 has no native Go representation. Unless WithFloat128Support
	// is enabled, Raw is left nil, so the array reads as empty (Len() is 0).
	TAKindF128
)

// TypedArray is the materialized form of a typed-array tagged byte string.
// It intentionally avoids unsafe byte reinterpretation: at most one of the
// slice fields is populated, selected by Kind (none for a TAKindF128 array
// decoded without WithFloat128Support).
type TypedArray struct {
	Kind TypedArrayKind

	U8  []uint8
	U16 []uint16
	U32 []uint32
	U64 []uint64

	I8  []int8
	I16 []int16
	I32 []int32
	I64 []int64

	F32 []float32
	F64 []float64

	// Raw holds the per-element 16-byte runs for TAKindF128 when
	// WithFloat128Support is enabled (float128 has no native Go type).
	// It is nil when that option is disabled.
	Raw [][]byte
}

// Len returns the element count, regardless of which slice is populated.
func (ta *TypedArray) Len() int {
	switch ta.Kind {
	case TAKindU8:
		return len(ta.U8)
	case TAKindU16:
		return len(ta.U16)
	case TAKindU32:
		return len(ta.U32)
	case TAKindU64:
		return len(ta.U64)
	case TAKindI8:
		return len(ta.I8)
	case TAKindI16:
		return len(ta.I16)
	case TAKindI32:
		return len(ta.I32)
	case TAKindI64:
		return len(ta.I64)
	case TAKindF32:
		return len(ta.F32)
	case TAKindF64:
		return len(ta.F64)
	case TAKindF128:
		return len(ta.Raw)
	default:
		return 0
	}
}

// elementEvent produces the synthetic scalar event for element i, used by
// Cursor to fan a TypedArray out into individual events.
func (ta *TypedArray) elementEvent(i int) Event {
	switch ta.Kind {
	case TAKindU8:
		return Event{Kind: EventUint64, Uint: uint64(ta.U8[i])}
	case TAKindU16:
		return Event{Kind: EventUint64, Uint: uint64(ta.U16[i])}
	case TAKindU32:
		return Event{Kind: EventUint64, Uint: uint64(ta.U32[i])}
	case TAKindU64:
		return Event{Kind: EventUint64, Uint: ta.U64[i]}
	case TAKindI8:
		return Event{Kind: EventInt64, Int: int64(ta.I8[i])}
	case TAKindI16:
		return Event{Kind: EventInt64, Int: int64(ta.I16[i])}
	case TAKindI32:
		return Event{Kind: EventInt64, Int: int64(ta.I32[i])}
	case TAKindI64:
		return Event{Kind: EventInt64, Int: ta.I64[i]}
	case TAKindF32:
		return Event{Kind: EventDouble, Float: float64(ta.F32[i])}
	case TAKindF64:
		return Event{Kind: EventDouble, Float: ta.F64[i]}
	case TAKindF128:
		return Event{Kind: EventByteString, Bytes: ta.Raw[i]}
	default:
		return Event{}
	}
}

// typedArrayTagInfo describes one entry of the RFC 8746 typed-array tag
// table, indexed by (tag - wireTagTypedArrayFirst).
type typedArrayTagInfo struct {
	valid        bool
	kind         TypedArrayKind
	bigEndian    bool
	bytesPerElem int
	isHalfFloat  bool
}

var typedArrayTags = buildTypedArrayTags()

func buildTypedArrayTags() [24]typedArrayTagInfo {
	var t [24]typedArrayTagInfo
	set := func(offset byte, kind TypedArrayKind, be bool, size int, half bool) {
		t[offset] = typedArrayTagInfo{valid: true, kind: kind, bigEndian: be, bytesPerElem: size, isHalfFloat: half}
	}
	set(0x00, TAKindU8, true, 1, false)
	set(0x01, TAKindU16, true, 2, false)
	set(0x02, TAKindU32, true, 4, false)
	set(0x03, TAKindU64, true, 8, false)
	set(0x04, TAKindU8, false, 1, false)
	set(0x05, TAKindU16, false, 2, false)
	set(0x06, TAKindU32, false, 4, false)
	set(0x07, TAKindU64, false, 8, false)
	set(0x08, TAKindI8, true, 1, false)
	set(0x09, TAKindI16, true, 2, false)
	set(0x0a, TAKindI32, true, 4, false)
	set(0x0b, TAKindI64, true, 8, false)
	// 0x0c is reserved (signed 8-bit little-endian is meaningless).
	set(0x0d, TAKindI16, false, 2, false)
	set(0x0e, TAKindI32, false, 4, false)
	set(0x0f, TAKindI64, false, 8, false)
	set(0x10, TAKindF64, true, 2, true) // f16, widened to float64
	set(0x11, TAKindF32, true, 4, false)
	set(0x12, TAKindF64, true, 8, false)
	set(0x13, TAKindF128, true, 16, false)
	set(0x14, TAKindF64, false, 2, true)
	set(0x15, TAKindF32, false, 4, false)
	set(0x16, TAKindF64, false, 8, false)
	set(0x17, TAKindF128, false, 16, false)
	return t
}

// materializeTypedArray decodes a typed-array tagged byte string's raw
// bytes into a TypedArray. f128Supported controls whether tag 0x53/0x57
// elements are kept as raw 16-byte runs or discarded (Raw left nil, so
// the result has zero elements).
func materializeTypedArray(tag wireTag, data []byte, f128Supported bool) (*TypedArray, error) {
	if tag < wireTagTypedArrayFirst || tag > wireTagTypedArrayLast {
		return nil, ErrInvalidTypedArrayTag
	}
	info := typedArrayTags[tag-wireTagTypedArrayFirst]
	if !info.valid {
		return nil, ErrInvalidTypedArrayTag
	}
	if info.bytesPerElem > 0 && len(data)%info.bytesPerElem != 0 {
		return nil, ErrInvalidTypedArrayLength
	}
	n := 0
	if info.bytesPerElem > 0 {
		n = len(data) / info.bytesPerElem
	}
	order := byteOrderFor(info.bigEndian)
	ta := &TypedArray{Kind: info.kind}

	switch {
	case info.kind == TAKindF128:
		if !f128Supported {
			ta.Raw = nil
			return ta, nil
		}
		ta.Raw = make([][]byte, n)
		for i := 0; i < n; i++ {
			chunk := make([]byte, 16)
			copy(chunk, data[i*16:i*16+16])
			ta.Raw[i] = chunk
		}
		return ta, nil
	case info.isHalfFloat:
		ta.F64 = make([]float64, n)
		for i := 0; i < n; i++ {
			bits := order.Uint16(data[i*2 : i*2+2])
			ta.F64[i] = halfBitsToFloat64(bits)
		}
		return ta, nil
	}

	switch info.kind {
	case TAKindU8:
		ta.U8 = append([]byte(nil), data...)
	case TAKindU16:
		ta.U16 = make([]uint16, n)
		for i := 0; i < n; i++ {
			ta.U16[i] = order.Uint16(data[i*2 : i*2+2])
		}
	case TAKindU32:
		ta.U32 = make([]uint32, n)
		for i := 0; i < n; i++ {
			ta.U32[i] = order.Uint32(data[i*4 : i*4+4])
		}
	case TAKindU64:
		ta.U64 = make([]uint64, n)
		for i := 0; i < n; i++ {
			ta.U64[i] = order.Uint64(data[i*8 : i*8+8])
		}
	case TAKindI8:
		ta.I8 = make([]int8, n)
		for i := 0; i < n; i++ {
			ta.I8[i] = int8(data[i])
		}
	case TAKindI16:
		ta.I16 = make([]int16, n)
		for i := 0; i < n; i++ {
			ta.I16[i] = int16(order.Uint16(data[i*2 : i*2+2]))
		}
	case TAKindI32:
		ta.I32 = make([]int32, n)
		for i := 0; i < n; i++ {
			ta.I32[i] = int32(order.Uint32(data[i*4 : i*4+4]))
		}
	case TAKindI64:
		ta.I64 = make([]int64, n)
		for i := 0; i < n; i++ {
			ta.I64[i] = int64(order.Uint64(data[i*8 : i*8+8]))
		}
	case TAKindF32:
		ta.F32 = make([]float32, n)
		for i := 0; i < n; i++ {
			ta.F32[i] = float32FromBits(order.Uint32(data[i*4 : i*4+4]))
		}
	case TAKindF64:
		ta.F64 = make([]float64, n)
		for i := 0; i < n; i++ {
			ta.F64[i] = float64FromBits(order.Uint64(data[i*8 : i*8+8]))
		}
	}
	return ta, nil
}

// byteOrder is the narrow slice of encoding/binary.ByteOrder this file
// actually needs.
type byteOrder interface {
	Uint16([]byte) uint16
	Uint32([]byte) uint32
	Uint64([]byte) uint64
}

func byteOrderFor(bigEndian bool) byteOrder {
	if bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

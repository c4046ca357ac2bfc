package cbor

import "testing"

func TestMaterializeTypedArrayU32LittleEndian(t *testing.T) {
	// tag 70 (0x46) = u32, little-endian
	data := []byte{0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00}
	ta, err := materializeTypedArray(wireTag(0x46), data, false)
	if err != nil {
		t.Fatalf("materializeTypedArray: %v", err)
	}
	if ta.Kind != TAKindU32 || len(ta.U32) != 2 || ta.U32[0] != 1 || ta.U32[1] != 2 {
		t.Fatalf("ta = %+v", ta)
	}
}

func TestMaterializeTypedArrayInvalidTag(t *testing.T) {
	if _, err := materializeTypedArray(wireTag(0x4c), []byte{0, 0}, false); err != ErrInvalidTypedArrayTag {
		t.Fatalf("err = %v, want ErrInvalidTypedArrayTag", err)
	}
}

func TestMaterializeTypedArrayBadLength(t *testing.T) {
	// tag 65 (u16) with an odd byte count.
	if _, err := materializeTypedArray(wireTag(0x41), []byte{0x00}, false); err != ErrInvalidTypedArrayLength {
		t.Fatalf("err = %v, want ErrInvalidTypedArrayLength", err)
	}
}

func TestMaterializeTypedArrayFloat128Gated(t *testing.T) {
	data := make([]byte, 32) // two 16-byte elements
	ta, err := materializeTypedArray(wireTag(0x53), data, false)
	if err != nil {
		t.Fatalf("materializeTypedArray: %v", err)
	}
	if ta.Kind != TAKindF128 || ta.Raw != nil {
		t.Fatalf("expected empty Raw when unsupported, got %+v", ta)
	}

	ta, err = materializeTypedArray(wireTag(0x53), data, true)
	if err != nil {
		t.Fatalf("materializeTypedArray: %v", err)
	}
	if len(ta.Raw) != 2 || len(ta.Raw[0]) != 16 {
		t.Fatalf("expected 2 raw elements, got %+v", ta.Raw)
	}
}

func TestMaterializeTypedArrayHalfFloatWidenedToF64(t *testing.T) {
	// tag 80 (0x50) = f16, big-endian. 0x3E00 = 1.5 in half precision.
	ta, err := materializeTypedArray(wireTag(0x50), []byte{0x3E, 0x00}, false)
	if err != nil {
		t.Fatalf("materializeTypedArray: %v", err)
	}
	if ta.Kind != TAKindF64 || len(ta.F64) != 1 || ta.F64[0] != 1.5 {
		t.Fatalf("ta = %+v", ta)
	}
}

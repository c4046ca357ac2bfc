// Package cbor implements a streaming, allocation-conscious decoder for
// CBOR (RFC 8949) data items. Rather than materializing a full document
// tree, it drives a state machine over a byte source and reports one
// semantic event at a time, either by pushing events into a Sink or by
// pulling them one at a time through a Cursor. This implementation is
// inspired by .NET's System.Formats.Cbor.
package cbor

// MajorType represents the CBOR major type (3-bit value in the initial byte).
type MajorType byte

const (
	// MajorTypeUnsignedInteger represents unsigned integer (major type 0).
	MajorTypeUnsignedInteger MajorType = 0
	// MajorTypeNegativeInteger represents negative integer (major type 1).
	MajorTypeNegativeInteger MajorType = 1
	// MajorTypeByteString represents byte string (major type 2).
	MajorTypeByteString MajorType = 2
	// MajorTypeTextString represents UTF-8 text string (major type 3).
	MajorTypeTextString MajorType = 3
	// MajorTypeArray represents array of data items (major type 4).
	MajorTypeArray MajorType = 4
	// MajorTypeMap represents map of pairs of data items (major type 5).
	MajorTypeMap MajorType = 5
	// MajorTypeTag represents tagged data item (major type 6).
	MajorTypeTag MajorType = 6
	// MajorTypeSimpleOrFloat represents simple values and floats (major type 7).
	MajorTypeSimpleOrFloat MajorType = 7
)

// String returns the string representation of the major type.
func (mt MajorType) String() string {
	switch mt {
	case MajorTypeUnsignedInteger:
		return "UnsignedInteger"
	case MajorTypeNegativeInteger:
		return "NegativeInteger"
	case MajorTypeByteString:
		return "ByteString"
	case MajorTypeTextString:
		return "TextString"
	case MajorTypeArray:
		return "Array"
	case MajorTypeMap:
		return "Map"
	case MajorTypeTag:
		return "Tag"
	case MajorTypeSimpleOrFloat:
		return "SimpleOrFloat"
	default:
		return "Unknown"
	}
}

// AdditionalInfo represents the additional information in the initial byte.
type AdditionalInfo byte

const (
	// AdditionalInfoIndefiniteLength means indefinite length (used for strings, arrays, maps).
	AdditionalInfoIndefiniteLength AdditionalInfo = 31
)

// SimpleValue represents CBOR simple values.
type SimpleValue byte

const (
	// SimpleValueFalse represents the boolean value false.
	SimpleValueFalse SimpleValue = 20
	// SimpleValueTrue represents the boolean value true.
	SimpleValueTrue SimpleValue = 21
	// SimpleValueNull represents a null value.
	SimpleValueNull SimpleValue = 22
	// SimpleValueUndefined represents an undefined value.
	SimpleValueUndefined SimpleValue = 23
)

// wireTag is a raw CBOR semantic tag number (major type 6 argument), as it
// appears on the wire, before the parser folds it into a SemanticTag or a
// structural dispatch decision (bignum, typed array, stringref, ...).
type wireTag uint64

const (
	wireTagDateTimeString  wireTag = 0
	wireTagEpochDateTime   wireTag = 1
	wireTagUnsignedBignum  wireTag = 2
	wireTagNegativeBignum  wireTag = 3
	wireTagDecimalFraction wireTag = 4
	wireTagBigFloat        wireTag = 5
	wireTagBase64URLExpect wireTag = 21
	wireTagBase64Expect    wireTag = 22
	wireTagBase16Expect    wireTag = 23
	wireTagURI             wireTag = 32
	wireTagBase64URLText   wireTag = 33
	wireTagBase64Text      wireTag = 34
	wireTagStringRefNS     wireTag = 256
	wireTagStringRef       wireTag = 25
	wireTagSelfDescribed   wireTag = 55799

	// wireTagTypedArrayFirst and wireTagTypedArrayLast bound the RFC 8746
	// typed-array tag range.
	wireTagTypedArrayFirst wireTag = 0x40
	wireTagTypedArrayLast  wireTag = 0x57
)

// Break byte used to terminate indefinite-length items.
const breakByte byte = 0xFF

// decodeInitialByte extracts major type and additional info from initial byte.
func decodeInitialByte(b byte) (MajorType, byte) {
	return MajorType(b >> 5), b & 0x1F
}

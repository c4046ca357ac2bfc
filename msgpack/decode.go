// Package msgpack decodes MessagePack-encoded data, pushing the same event
// vocabulary the cbor package uses so a caller can drive one Sink
// implementation from either wire format. It exists alongside cbor to
// demonstrate that the Sink/Event abstraction generalizes across
// self-describing binary formats, not just the one it was designed for.
package msgpack

import (
	"math"
	"unicode/utf8"

	cbor "github.com/argon-chat/streamcbor"
	"github.com/argon-chat/streamcbor/bytesource"
)

// msgpack ext type for timestamps, as defined by the MessagePack
// specification's timestamp extension.
const extTimestamp = -1

const defaultMaxNestingDepth = 64

// Option configures a Decoder.
type Option func(*decoder)

// WithMaxNestingDepth overrides the default recursion limit of 64 nested
// arrays/maps.
func WithMaxNestingDepth(depth int) Option {
	return func(d *decoder) { d.maxDepth = depth }
}

// Decode reads exactly one MessagePack-encoded value from data and pushes
// its structure into sink, in the same style as cbor.Decode.
func Decode(data []byte, sink cbor.Sink, opts ...Option) error {
	src := bytesource.NewMemorySource(data)
	d := &decoder{src: src, sink: sink, maxDepth: defaultMaxNestingDepth}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.readValue(0); err != nil {
		return err
	}
	if !src.EOF() {
		return newDecodeError(ErrExtraItems, src.Position(), "")
	}
	sink.Flush()
	return nil
}

type decoder struct {
	src      *bytesource.MemorySource
	sink     cbor.Sink
	maxDepth int
}

func (d *decoder) errAt(kind error, msg string) error {
	return newDecodeError(kind, d.src.Position(), msg)
}

func (d *decoder) readByte() (byte, error) {
	b, err := d.src.ReadByte()
	if err != nil {
		return 0, d.errAt(ErrUnexpectedEOF, "")
	}
	return b, nil
}

func (d *decoder) readN(n int) ([]byte, error) {
	b, err := d.src.Read(n)
	if err != nil {
		return nil, d.errAt(ErrUnexpectedEOF, "")
	}
	return b, nil
}

func (d *decoder) readUint(n int) (uint64, error) {
	b, err := d.readN(n)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// readValue decodes one MessagePack item at the given nesting depth and
// pushes it into d.sink.
func (d *decoder) readValue(depth int) error {
	lead, err := d.readByte()
	if err != nil {
		return err
	}

	switch {
	case lead <= 0x7f: // positive fixint
		d.sink.Uint64Value(uint64(lead), cbor.TagNone)
		return nil
	case lead >= 0xe0: // negative fixint
		d.sink.Int64Value(int64(int8(lead)), cbor.TagNone)
		return nil
	case lead >= 0x80 && lead <= 0x8f: // fixmap
		return d.readMap(uint64(lead&0x0f), depth)
	case lead >= 0x90 && lead <= 0x9f: // fixarray
		return d.readArray(uint64(lead&0x0f), depth)
	case lead >= 0xa0 && lead <= 0xbf: // fixstr
		return d.readStr(int(lead & 0x1f))
	}

	switch lead {
	case 0xc0:
		d.sink.NullValue(cbor.TagNone)
		return nil
	case 0xc2:
		d.sink.BoolValue(false, cbor.TagNone)
		return nil
	case 0xc3:
		d.sink.BoolValue(true, cbor.TagNone)
		return nil
	case 0xc4:
		n, err := d.readUint(1)
		if err != nil {
			return err
		}
		return d.readBin(int(n))
	case 0xc5:
		n, err := d.readUint(2)
		if err != nil {
			return err
		}
		return d.readBin(int(n))
	case 0xc6:
		n, err := d.readUint(4)
		if err != nil {
			return err
		}
		return d.readBin(int(n))
	case 0xc7:
		n, err := d.readUint(1)
		if err != nil {
			return err
		}
		return d.readExt(int(n))
	case 0xc8:
		n, err := d.readUint(2)
		if err != nil {
			return err
		}
		return d.readExt(int(n))
	case 0xc9:
		n, err := d.readUint(4)
		if err != nil {
			return err
		}
		return d.readExt(int(n))
	case 0xca:
		bits, err := d.readUint(4)
		if err != nil {
			return err
		}
		d.sink.DoubleValue(float64(math.Float32frombits(uint32(bits))), cbor.TagNone)
		return nil
	case 0xcb:
		bits, err := d.readUint(8)
		if err != nil {
			return err
		}
		d.sink.DoubleValue(math.Float64frombits(bits), cbor.TagNone)
		return nil
	case 0xcc:
		v, err := d.readUint(1)
		if err != nil {
			return err
		}
		d.sink.Uint64Value(v, cbor.TagNone)
		return nil
	case 0xcd:
		v, err := d.readUint(2)
		if err != nil {
			return err
		}
		d.sink.Uint64Value(v, cbor.TagNone)
		return nil
	case 0xce:
		v, err := d.readUint(4)
		if err != nil {
			return err
		}
		d.sink.Uint64Value(v, cbor.TagNone)
		return nil
	case 0xcf:
		v, err := d.readUint(8)
		if err != nil {
			return err
		}
		d.sink.Uint64Value(v, cbor.TagNone)
		return nil
	case 0xd0:
		b, err := d.readByte()
		if err != nil {
			return err
		}
		d.sink.Int64Value(int64(int8(b)), cbor.TagNone)
		return nil
	case 0xd1:
		v, err := d.readUint(2)
		if err != nil {
			return err
		}
		d.sink.Int64Value(int64(int16(v)), cbor.TagNone)
		return nil
	case 0xd2:
		v, err := d.readUint(4)
		if err != nil {
			return err
		}
		d.sink.Int64Value(int64(int32(v)), cbor.TagNone)
		return nil
	case 0xd3:
		v, err := d.readUint(8)
		if err != nil {
			return err
		}
		d.sink.Int64Value(int64(v), cbor.TagNone)
		return nil
	case 0xd4:
		return d.readExt(1)
	case 0xd5:
		return d.readExt(2)
	case 0xd6:
		return d.readExt(4)
	case 0xd7:
		return d.readExt(8)
	case 0xd8:
		return d.readExt(16)
	case 0xd9:
		n, err := d.readUint(1)
		if err != nil {
			return err
		}
		return d.readStr(int(n))
	case 0xda:
		n, err := d.readUint(2)
		if err != nil {
			return err
		}
		return d.readStr(int(n))
	case 0xdb:
		n, err := d.readUint(4)
		if err != nil {
			return err
		}
		return d.readStr(int(n))
	case 0xdc:
		n, err := d.readUint(2)
		if err != nil {
			return err
		}
		return d.readArray(n, depth)
	case 0xdd:
		n, err := d.readUint(4)
		if err != nil {
			return err
		}
		return d.readArray(n, depth)
	case 0xde:
		n, err := d.readUint(2)
		if err != nil {
			return err
		}
		return d.readMap(n, depth)
	case 0xdf:
		n, err := d.readUint(4)
		if err != nil {
			return err
		}
		return d.readMap(n, depth)
	}

	return d.errAt(ErrInvalidFormat, "")
}

func (d *decoder) readStr(n int) error {
	b, err := d.readN(n)
	if err != nil {
		return err
	}
	if !validUTF8(b) {
		return d.errAt(ErrInvalidUTF8String, "")
	}
	d.sink.StringValue(string(b), cbor.TagNone)
	return nil
}

func (d *decoder) readBin(n int) error {
	b, err := d.readN(n)
	if err != nil {
		return err
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	d.sink.ByteStringValue(cp, cbor.TagNone)
	return nil
}

// readExt decodes an extension payload of n bytes, preceded by its type
// byte. The timestamp extension is recognized and surfaced with
// cbor.TagTimestamp so callers get the same semantic tag they would from a
// CBOR epoch timestamp (tag 1); every other extension type is surfaced as
// an untagged byte string, since MessagePack's open-ended type registry has
// no general-purpose mapping onto cbor.SemanticTag.
func (d *decoder) readExt(n int) error {
	typeByte, err := d.readByte()
	if err != nil {
		return err
	}
	payload, err := d.readN(n)
	if err != nil {
		return err
	}

	if int8(typeByte) == extTimestamp {
		if sec, ok := decodeTimestampExt(payload); ok {
			d.sink.Int64Value(sec, cbor.TagTimestamp)
			return nil
		}
	}

	cp := make([]byte, len(payload))
	copy(cp, payload)
	d.sink.ByteStringValue(cp, cbor.TagNone)
	return nil
}

// decodeTimestampExt extracts the whole-seconds component of a MessagePack
// timestamp extension payload. Sub-second precision is dropped since
// cbor.Event carries a single int64 for Int64Value; a future revision could
// widen this into a dedicated timestamp event.
func decodeTimestampExt(payload []byte) (int64, bool) {
	switch len(payload) {
	case 4:
		var sec uint64
		for _, c := range payload {
			sec = sec<<8 | uint64(c)
		}
		return int64(sec), true
	case 8:
		var v uint64
		for _, c := range payload {
			v = v<<8 | uint64(c)
		}
		return int64(v & 0x3ffffffff), true
	case 12:
		var sec uint64
		for _, c := range payload[4:] {
			sec = sec<<8 | uint64(c)
		}
		return int64(sec), true
	default:
		return 0, false
	}
}

func (d *decoder) readArray(length uint64, depth int) error {
	if depth+1 > d.maxDepth {
		return d.errAt(ErrNestingDepthExceeded, "")
	}
	d.sink.BeginArrayLen(length, cbor.TagNone)
	for i := uint64(0); i < length; i++ {
		if err := d.readValue(depth + 1); err != nil {
			return err
		}
	}
	d.sink.EndArray()
	return nil
}

func (d *decoder) readMap(length uint64, depth int) error {
	if depth+1 > d.maxDepth {
		return d.errAt(ErrNestingDepthExceeded, "")
	}
	d.sink.BeginObjectLen(length, cbor.TagNone)
	for i := uint64(0); i < length; i++ {
		if err := d.readMapKey(depth + 1); err != nil {
			return err
		}
		if err := d.readValue(depth + 1); err != nil {
			return err
		}
	}
	d.sink.EndObject()
	return nil
}

// readMapKey decodes a map key, which in idiomatic MessagePack data is
// almost always a str, and pushes it via Sink.Name. A non-string key falls
// back to a short placeholder rather than a full recursive renderer, since
// MessagePack map keys are conventionally strings and the spec this
// package grew out of never exercises anything else.
func (d *decoder) readMapKey(depth int) error {
	lead, ok, err := d.src.Peek()
	if err != nil {
		return d.errAt(ErrSourceError, err.Error())
	}
	if !ok {
		return d.errAt(ErrUnexpectedEOF, "")
	}
	isStr := (lead >= 0xa0 && lead <= 0xbf) || lead == 0xd9 || lead == 0xda || lead == 0xdb
	if !isStr {
		d.sink.Name("?")
		return d.skipValue(depth)
	}
	if _, err := d.readByte(); err != nil {
		return err
	}
	var n int
	switch {
	case lead >= 0xa0 && lead <= 0xbf:
		n = int(lead & 0x1f)
	case lead == 0xd9:
		v, err := d.readUint(1)
		if err != nil {
			return err
		}
		n = int(v)
	case lead == 0xda:
		v, err := d.readUint(2)
		if err != nil {
			return err
		}
		n = int(v)
	case lead == 0xdb:
		v, err := d.readUint(4)
		if err != nil {
			return err
		}
		n = int(v)
	}
	b, err := d.readN(n)
	if err != nil {
		return err
	}
	if !validUTF8(b) {
		return d.errAt(ErrInvalidUTF8String, "")
	}
	d.sink.Name(string(b))
	return nil
}

// skipValue consumes and discards one already-peeked-at value, used only
// for the non-string-key fallback in readMapKey.
func (d *decoder) skipValue(depth int) error {
	return (&discardSink{}).drain(d, depth)
}

type discardSink struct{ cbor.BaseSink }

func (s *discardSink) drain(d *decoder, depth int) error {
	saved := d.sink
	d.sink = s
	err := d.readValue(depth)
	d.sink = saved
	return err
}

func validUTF8(b []byte) bool { return utf8.Valid(b) }

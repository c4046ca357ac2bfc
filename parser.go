package cbor

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/argon-chat/streamcbor/bytesource"
)

// Parser drives a single-step state machine over a bytesource.Source,
// reporting one semantic event at a time to a Sink. It is not
// goroutine-safe: a Parser (and any Cursor built on it) must only ever be
// driven by one goroutine at a time.
type Parser struct {
	src   bytesource.Source
	stack []frame
	tags  []wireTag

	done bool

	maxNestingDepth int
	f128Supported   bool
}

// ParserOption configures optional Parser behavior.
type ParserOption func(*Parser)

// WithMaxNestingDepth bounds container nesting depth. The default is 64.
func WithMaxNestingDepth(n int) ParserOption {
	return func(p *Parser) { p.maxNestingDepth = n }
}

// WithFloat128Support controls whether tag 0x53/0x57 typed-array elements
// are retained as raw 16-byte runs. It defaults to false: float128 has no
// native Go type, so by default those elements are dropped and the array
// is reported as empty (Len() is 0; a Cursor emits BeginArray then
// EndArray). The bytes are still consumed.
func WithFloat128Support(enabled bool) ParserOption {
	return func(p *Parser) { p.f128Supported = enabled }
}

// NewParser creates a Parser reading from src.
func NewParser(src bytesource.Source, opts ...ParserOption) *Parser {
	p := &Parser{
		src:             src,
		stack:           []frame{{mode: modeRoot}},
		maxNestingDepth: 64,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Reset rearms the parser to read a new document from src.
func (p *Parser) Reset(src bytesource.Source) {
	p.src = src
	p.stack = p.stack[:0]
	p.stack = append(p.stack, frame{mode: modeRoot})
	p.tags = p.tags[:0]
	p.done = false
}

// Restart re-arms the parser after a pause, so the next Parse call
// resumes from exactly where the sink last asked to stop. Because this
// parser never discards state on pause, Restart has nothing to do; it
// exists so callers that modeled "pause" as requiring an explicit resume
// step have one to call.
func (p *Parser) Restart() {}

// Done reports whether the single root item has been fully parsed.
func (p *Parser) Done() bool { return p.done }

// Parse drives the parser, emitting events to sink, until the document is
// fully consumed, sink asks to pause (by returning false), or an error
// occurs.
func (p *Parser) Parse(sink Sink) error {
	for {
		if p.done {
			return nil
		}
		cont, err := p.step(sink)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
}

// step performs exactly one transition of the frame at the top of the
// container stack.
func (p *Parser) step(sink Sink) (bool, error) {
	idx := len(p.stack) - 1
	switch p.stack[idx].mode {
	case modeRoot:
		p.stack[idx].mode = modeBeforeDone
		return p.readItem(sink)

	case modeBeforeDone:
		if len(p.stack) != 1 {
			return false, p.errorAt(ErrInvalidState, "expected single root frame at end of parse")
		}
		_, ok, err := p.src.Peek()
		if err != nil {
			return false, p.wrapSourceErr(err)
		}
		if ok {
			return false, p.errorAt(ErrExtraItems, "")
		}
		p.stack = p.stack[:0]
		p.done = true
		return sink.Flush(), nil

	case modeArray:
		if p.stack[idx].index < p.stack[idx].length {
			p.stack[idx].index++
			return p.readItem(sink)
		}
		p.popFrame()
		return sink.EndArray(), nil

	case modeIndefiniteArray:
		b, ok, err := p.src.Peek()
		if err != nil {
			return false, p.wrapSourceErr(err)
		}
		if !ok {
			return false, p.eofErr()
		}
		if b == breakByte {
			if _, err := p.src.ReadByte(); err != nil {
				return false, p.wrapSourceErr(err)
			}
			p.popFrame()
			return sink.EndArray(), nil
		}
		return p.readItem(sink)

	case modeMapKey:
		if p.stack[idx].index < p.stack[idx].length {
			p.stack[idx].index++
			cont, err := p.readName(sink)
			if err != nil {
				return false, err
			}
			p.stack[idx].mode = modeMapValue
			return cont, nil
		}
		p.popFrame()
		return sink.EndObject(), nil

	case modeMapValue:
		p.stack[idx].mode = modeMapKey
		return p.readItem(sink)

	case modeIndefiniteMapKey:
		b, ok, err := p.src.Peek()
		if err != nil {
			return false, p.wrapSourceErr(err)
		}
		if !ok {
			return false, p.eofErr()
		}
		if b == breakByte {
			if _, err := p.src.ReadByte(); err != nil {
				return false, p.wrapSourceErr(err)
			}
			p.popFrame()
			return sink.EndObject(), nil
		}
		cont, err := p.readName(sink)
		if err != nil {
			return false, err
		}
		p.stack[idx].mode = modeIndefiniteMapValue
		return cont, nil

	case modeIndefiniteMapValue:
		p.stack[idx].mode = modeIndefiniteMapKey
		return p.readItem(sink)

	default:
		return false, p.errorAt(ErrInvalidState, "unknown frame mode")
	}
}

// readItem accumulates any leading tags, then dispatches on the next
// item's major type.
func (p *Parser) readItem(sink Sink) (bool, error) {
	if err := p.readTags(); err != nil {
		return false, err
	}
	b, ok, err := p.src.Peek()
	if err != nil {
		return false, p.wrapSourceErr(err)
	}
	if !ok {
		return false, p.eofErr()
	}
	mt, _ := decodeInitialByte(b)
	switch mt {
	case MajorTypeUnsignedInteger:
		return p.readUnsignedInteger(sink)
	case MajorTypeNegativeInteger:
		return p.readNegativeInteger(sink)
	case MajorTypeByteString:
		return p.readByteStringItem(sink)
	case MajorTypeTextString:
		return p.readTextStringItem(sink)
	case MajorTypeArray:
		return p.readArrayItem(sink)
	case MajorTypeMap:
		return p.readMapItem(sink)
	case MajorTypeTag:
		return false, p.errorAt(ErrInvalidState, "tag not consumed by readTags")
	case MajorTypeSimpleOrFloat:
		_, ai := decodeInitialByte(b)
		return p.readSimpleOrFloat(sink, ai)
	default:
		return false, p.errorAt(ErrInvalidMajorType, "")
	}
}

// readTags consumes a (possibly empty) run of tag heads, accumulating
// their wire values. Unknown tags not recognized by any dispatch rule
// below are simply carried along and discarded once the tagged item is
// emitted.
func (p *Parser) readTags() error {
	for {
		b, ok, err := p.src.Peek()
		if err != nil {
			return p.wrapSourceErr(err)
		}
		if !ok {
			return p.eofErr()
		}
		mt, _ := decodeInitialByte(b)
		if mt != MajorTypeTag {
			return nil
		}
		v, err := p.readArgument(MajorTypeTag)
		if err != nil {
			return err
		}
		p.tags = append(p.tags, wireTag(v))
	}
}

func (p *Parser) takeLastTag() (wireTag, bool) {
	if len(p.tags) == 0 {
		return 0, false
	}
	return p.tags[len(p.tags)-1], true
}

func (p *Parser) hasTag(v wireTag) bool {
	for _, t := range p.tags {
		if t == v {
			return true
		}
	}
	return false
}

func (p *Parser) clearTags() { p.tags = p.tags[:0] }

// readArgument reads one head (tag or value), validates its major type,
// and returns its argument value.
func (p *Parser) readArgument(expect MajorType) (uint64, error) {
	b, err := p.src.ReadByte()
	if err != nil {
		return 0, p.wrapSourceErr(err)
	}
	mt, ai := decodeInitialByte(b)
	if mt != expect {
		return 0, p.errorAt(ErrInvalidMajorType, "")
	}
	return p.readArgumentAI(ai)
}

func (p *Parser) readArgumentAI(ai byte) (uint64, error) {
	switch {
	case ai < 24:
		return uint64(ai), nil
	case ai == 24:
		buf, err := p.readFixed(1)
		if err != nil {
			return 0, err
		}
		return uint64(buf[0]), nil
	case ai == 25:
		buf, err := p.readFixed(2)
		if err != nil {
			return 0, err
		}
		return uint64(binary.BigEndian.Uint16(buf)), nil
	case ai == 26:
		buf, err := p.readFixed(4)
		if err != nil {
			return 0, err
		}
		return uint64(binary.BigEndian.Uint32(buf)), nil
	case ai == 27:
		buf, err := p.readFixed(8)
		if err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint64(buf), nil
	default:
		return 0, p.errorAt(ErrInvalidCbor, "reserved additional information")
	}
}

func (p *Parser) readFixed(n int) ([]byte, error) {
	data, err := p.src.Read(n)
	if err != nil {
		return nil, p.wrapSourceErr(err)
	}
	return data, nil
}

func (p *Parser) checkDepth() error {
	// p.stack[0] is the root frame, so len(p.stack) is the depth the new
	// container would have once pushed.
	if len(p.stack) > p.maxNestingDepth {
		return p.errorAt(ErrNestingDepthExceeded, "")
	}
	return nil
}

// pushFrame installs a new container frame. If tag 256 (stringref
// namespace) was accumulated on this item, a fresh stringRefTable is
// installed for the new frame and everything nested inside it; otherwise
// the enclosing frame's table (possibly nil) is inherited.
func (p *Parser) pushFrame(mode frameMode, length uint64) {
	var tbl *stringRefTable
	if p.hasTag(wireTagStringRefNS) {
		tbl = newStringRefTable()
	} else {
		tbl = p.stack[len(p.stack)-1].stringRefs
	}
	p.clearTags()
	p.stack = append(p.stack, frame{mode: mode, length: length, stringRefs: tbl})
}

func (p *Parser) popFrame() {
	p.stack = p.stack[:len(p.stack)-1]
}

func (p *Parser) currentStringRefTable() *stringRefTable {
	return p.stack[len(p.stack)-1].stringRefs
}

func (p *Parser) maybeInsertStringRef(kind mappedStringKind, text string, data []byte) {
	tbl := p.currentStringRefTable()
	if tbl == nil {
		return
	}
	n := len(text)
	if kind == mappedBytes {
		n = len(data)
	}
	if n < minLengthForStringRef(tbl.size()) {
		return
	}
	tbl.append(mappedString{kind: kind, text: text, bytes: data})
}

func (p *Parser) readUnsignedInteger(sink Sink) (bool, error) {
	v, err := p.readArgument(MajorTypeUnsignedInteger)
	if err != nil {
		return false, err
	}
	if last, ok := p.takeLastTag(); ok && last == wireTagStringRef && p.currentStringRefTable() != nil {
		p.clearTags()
		entry, found := p.currentStringRefTable().at(v)
		if !found {
			return false, p.errorAt(ErrStringRefTooLarge, "")
		}
		if entry.kind == mappedText {
			return sink.StringValue(entry.text, TagNone), nil
		}
		return sink.ByteStringValue(entry.bytes, TagNone), nil
	}
	last, ok := p.takeLastTag()
	tag := scalarSemanticTag(last, ok)
	p.clearTags()
	return sink.Uint64Value(v, tag), nil
}

func (p *Parser) readNegativeInteger(sink Sink) (bool, error) {
	v, err := p.readArgument(MajorTypeNegativeInteger)
	if err != nil {
		return false, err
	}
	if v > math.MaxInt64 {
		return false, p.errorAt(ErrNumberTooLarge, "")
	}
	last, ok := p.takeLastTag()
	tag := scalarSemanticTag(last, ok)
	p.clearTags()
	return sink.Int64Value(-1-int64(v), tag), nil
}

func (p *Parser) readByteStringItem(sink Sink) (bool, error) {
	b, _, _ := p.src.Peek()
	_, ai := decodeInitialByte(b)
	var data []byte
	var err error
	if ai == byte(AdditionalInfoIndefiniteLength) {
		data, err = p.readIndefiniteString(MajorTypeByteString)
		if err != nil {
			return false, err
		}
	} else {
		length, lerr := p.readArgument(MajorTypeByteString)
		if lerr != nil {
			return false, lerr
		}
		data, err = p.readFixed(int(length))
		if err != nil {
			return false, err
		}
		p.maybeInsertStringRef(mappedBytes, "", data)
	}
	return p.handleByteString(sink, data)
}

func (p *Parser) handleByteString(sink Sink, data []byte) (bool, error) {
	last, ok := p.takeLastTag()
	switch {
	case ok && (last == wireTagUnsignedBignum || last == wireTagNegativeBignum):
		rendered := renderBigIntDecimal(data, last == wireTagNegativeBignum)
		p.clearTags()
		return sink.StringValue(rendered, TagBigInt), nil
	case ok && last >= wireTagTypedArrayFirst && last <= wireTagTypedArrayLast:
		ta, terr := materializeTypedArray(last, data, p.f128Supported)
		if terr != nil {
			return false, p.errorAt(terr, "")
		}
		p.clearTags()
		return sink.TypedArrayValue(ta), nil
	default:
		tag := byteSemanticTag(last, ok)
		p.clearTags()
		return sink.ByteStringValue(data, tag), nil
	}
}

func (p *Parser) readTextStringItem(sink Sink) (bool, error) {
	b, _, _ := p.src.Peek()
	_, ai := decodeInitialByte(b)
	var data []byte
	var err error
	if ai == byte(AdditionalInfoIndefiniteLength) {
		data, err = p.readIndefiniteString(MajorTypeTextString)
		if err != nil {
			return false, err
		}
	} else {
		length, lerr := p.readArgument(MajorTypeTextString)
		if lerr != nil {
			return false, lerr
		}
		data, err = p.readFixed(int(length))
		if err != nil {
			return false, err
		}
	}
	if !utf8.Valid(data) {
		return false, p.errorAt(ErrInvalidUTF8TextString, "")
	}
	if ai != byte(AdditionalInfoIndefiniteLength) {
		p.maybeInsertStringRef(mappedText, string(data), nil)
	}
	last, ok := p.takeLastTag()
	tag := textSemanticTag(last, ok)
	p.clearTags()
	return sink.StringValue(string(data), tag), nil
}

// readIndefiniteString consumes the indefinite-length start byte (already
// peeked by the caller) and every definite-length chunk up to the break,
// concatenating their payloads. Every chunk must share expect's major
// type, per RFC 8949 §3.2.3.
func (p *Parser) readIndefiniteString(expect MajorType) ([]byte, error) {
	if _, err := p.src.ReadByte(); err != nil {
		return nil, p.wrapSourceErr(err)
	}
	var buf []byte
	for {
		b, ok, err := p.src.Peek()
		if err != nil {
			return nil, p.wrapSourceErr(err)
		}
		if !ok {
			return nil, p.errorAt(ErrMissingBreak, "")
		}
		if b == breakByte {
			if _, err := p.src.ReadByte(); err != nil {
				return nil, p.wrapSourceErr(err)
			}
			return buf, nil
		}
		mt, _ := decodeInitialByte(b)
		if mt != expect {
			return nil, p.errorAt(ErrChunkMajorTypeMismatch, "")
		}
		length, err := p.readArgument(expect)
		if err != nil {
			return nil, err
		}
		chunk, err := p.readFixed(int(length))
		if err != nil {
			return nil, err
		}
		buf = append(buf, chunk...)
	}
}

func (p *Parser) readArrayItem(sink Sink) (bool, error) {
	if last, ok := p.takeLastTag(); ok && (last == wireTagDecimalFraction || last == wireTagBigFloat) {
		return p.readDecimalOrBigFloat(sink, last == wireTagBigFloat)
	}
	b, _, _ := p.src.Peek()
	_, ai := decodeInitialByte(b)
	if ai == byte(AdditionalInfoIndefiniteLength) {
		if _, err := p.src.ReadByte(); err != nil {
			return false, p.wrapSourceErr(err)
		}
		if err := p.checkDepth(); err != nil {
			return false, err
		}
		p.pushFrame(modeIndefiniteArray, 0)
		return sink.BeginArray(TagNone), nil
	}
	length, err := p.readArgument(MajorTypeArray)
	if err != nil {
		return false, err
	}
	if err := p.checkDepth(); err != nil {
		return false, err
	}
	p.pushFrame(modeArray, length)
	return sink.BeginArrayLen(length, TagNone), nil
}

func (p *Parser) readMapItem(sink Sink) (bool, error) {
	b, _, _ := p.src.Peek()
	_, ai := decodeInitialByte(b)
	if ai == byte(AdditionalInfoIndefiniteLength) {
		if _, err := p.src.ReadByte(); err != nil {
			return false, p.wrapSourceErr(err)
		}
		if err := p.checkDepth(); err != nil {
			return false, err
		}
		p.pushFrame(modeIndefiniteMapKey, 0)
		return sink.BeginObject(TagNone), nil
	}
	length, err := p.readArgument(MajorTypeMap)
	if err != nil {
		return false, err
	}
	if err := p.checkDepth(); err != nil {
		return false, err
	}
	p.pushFrame(modeMapKey, length)
	return sink.BeginObjectLen(length, TagNone), nil
}

// readDecimalOrBigFloat materializes a tag 4/5 two-element array directly
// into a single decimal-string/hex-float-string event, without pushing a
// container frame or emitting Begin/EndArray.
func (p *Parser) readDecimalOrBigFloat(sink Sink, isBigFloat bool) (bool, error) {
	p.clearTags()
	length, err := p.readArgument(MajorTypeArray)
	if err != nil {
		return false, err
	}
	kind := ErrInvalidDecimal
	if isBigFloat {
		kind = ErrInvalidBigFloat
	}
	if length != 2 {
		return false, p.errorAt(kind, "expected a 2-element [exponent, mantissa] array")
	}
	exponent, err := p.readPlainInt64(kind)
	if err != nil {
		return false, err
	}
	mantissa, err := p.readTaggedBigInt(kind)
	if err != nil {
		return false, err
	}
	if isBigFloat {
		return sink.StringValue(renderBigFloat(exponent, mantissa), TagBigFloat), nil
	}
	return sink.StringValue(renderDecimalFraction(exponent, mantissa), TagBigDec), nil
}

func (p *Parser) readPlainInt64(onMismatch error) (int64, error) {
	if err := p.readTags(); err != nil {
		return 0, err
	}
	b, ok, err := p.src.Peek()
	if err != nil {
		return 0, p.wrapSourceErr(err)
	}
	if !ok {
		return 0, p.eofErr()
	}
	mt, _ := decodeInitialByte(b)
	switch mt {
	case MajorTypeUnsignedInteger:
		v, err := p.readArgument(MajorTypeUnsignedInteger)
		if err != nil {
			return 0, err
		}
		if v > math.MaxInt64 {
			return 0, p.errorAt(ErrNumberTooLarge, "")
		}
		p.clearTags()
		return int64(v), nil
	case MajorTypeNegativeInteger:
		v, err := p.readArgument(MajorTypeNegativeInteger)
		if err != nil {
			return 0, err
		}
		if v > math.MaxInt64 {
			return 0, p.errorAt(ErrNumberTooLarge, "")
		}
		p.clearTags()
		return -1 - int64(v), nil
	default:
		return 0, p.errorAt(onMismatch, "expected an integer exponent")
	}
}

func (p *Parser) readTaggedBigInt(onMismatch error) (*big.Int, error) {
	if err := p.readTags(); err != nil {
		return nil, err
	}
	last, ok := p.takeLastTag()
	b, peeked, err := p.src.Peek()
	if err != nil {
		return nil, p.wrapSourceErr(err)
	}
	if !peeked {
		return nil, p.eofErr()
	}
	mt, ai := decodeInitialByte(b)
	switch mt {
	case MajorTypeUnsignedInteger:
		v, err := p.readArgument(MajorTypeUnsignedInteger)
		if err != nil {
			return nil, err
		}
		p.clearTags()
		return new(big.Int).SetUint64(v), nil
	case MajorTypeNegativeInteger:
		v, err := p.readArgument(MajorTypeNegativeInteger)
		if err != nil {
			return nil, err
		}
		p.clearTags()
		n := new(big.Int).SetUint64(v)
		n.Add(n, big.NewInt(1))
		n.Neg(n)
		return n, nil
	case MajorTypeByteString:
		if !ok || (last != wireTagUnsignedBignum && last != wireTagNegativeBignum) {
			return nil, p.errorAt(onMismatch, "expected an integer or bignum mantissa")
		}
		var data []byte
		if ai == byte(AdditionalInfoIndefiniteLength) {
			data, err = p.readIndefiniteString(MajorTypeByteString)
		} else {
			var length uint64
			length, err = p.readArgument(MajorTypeByteString)
			if err == nil {
				data, err = p.readFixed(int(length))
			}
		}
		if err != nil {
			return nil, err
		}
		p.clearTags()
		n := new(big.Int).SetBytes(data)
		if last == wireTagNegativeBignum {
			n.Add(n, big.NewInt(1))
			n.Neg(n)
		}
		return n, nil
	default:
		return nil, p.errorAt(onMismatch, "expected an integer or bignum mantissa")
	}
}

func (p *Parser) readSimpleOrFloat(sink Sink, ai byte) (bool, error) {
	switch ai {
	case 20, 21:
		if _, err := p.src.ReadByte(); err != nil {
			return false, p.wrapSourceErr(err)
		}
		p.clearTags()
		return sink.BoolValue(ai == 21, TagNone), nil
	case 22:
		if _, err := p.src.ReadByte(); err != nil {
			return false, p.wrapSourceErr(err)
		}
		p.clearTags()
		return sink.NullValue(TagNone), nil
	case 23:
		if _, err := p.src.ReadByte(); err != nil {
			return false, p.wrapSourceErr(err)
		}
		p.clearTags()
		return sink.NullValue(TagUndefined), nil
	case 25:
		return p.readFloat(sink, 2)
	case 26:
		return p.readFloat(sink, 4)
	case 27:
		return p.readFloat(sink, 8)
	default:
		return false, p.errorAt(ErrInvalidSimpleValue, "")
	}
}

func (p *Parser) readFloat(sink Sink, width int) (bool, error) {
	if _, err := p.src.ReadByte(); err != nil {
		return false, p.wrapSourceErr(err)
	}
	buf, err := p.readFixed(width)
	if err != nil {
		return false, err
	}
	var v float64
	switch width {
	case 2:
		v = halfBitsToFloat64(binary.BigEndian.Uint16(buf))
	case 4:
		v = float64(float32FromBits(binary.BigEndian.Uint32(buf)))
	case 8:
		v = float64FromBits(binary.BigEndian.Uint64(buf))
	}
	last, ok := p.takeLastTag()
	tag := scalarSemanticTag(last, ok)
	p.clearTags()
	return sink.DoubleValue(v, tag), nil
}

// readName decodes the next item as a map key. Text-string keys are the
// common case and are handled directly. Any other value type is legal as
// a CBOR map key, so it is rendered into a compact textual form by a
// small recursive renderer that never touches the container stack,
// keeping key decoding re-entrancy-safe without a second Parser.
func (p *Parser) readName(sink Sink) (bool, error) {
	if err := p.readTags(); err != nil {
		return false, err
	}
	b, ok, err := p.src.Peek()
	if err != nil {
		return false, p.wrapSourceErr(err)
	}
	if !ok {
		return false, p.eofErr()
	}
	mt, ai := decodeInitialByte(b)
	if mt == MajorTypeTextString {
		var data []byte
		if ai == byte(AdditionalInfoIndefiniteLength) {
			data, err = p.readIndefiniteString(MajorTypeTextString)
		} else {
			var length uint64
			length, err = p.readArgument(MajorTypeTextString)
			if err == nil {
				data, err = p.readFixed(int(length))
			}
		}
		if err != nil {
			return false, err
		}
		if !utf8.Valid(data) {
			return false, p.errorAt(ErrInvalidUTF8TextString, "")
		}
		if ai != byte(AdditionalInfoIndefiniteLength) {
			p.maybeInsertStringRef(mappedText, string(data), nil)
		}
		p.clearTags()
		return sink.Name(string(data)), nil
	}
	p.clearTags()
	rendered, err := p.renderKeyValue()
	if err != nil {
		return false, err
	}
	return sink.Name(rendered), nil
}

func (p *Parser) renderKeyValue() (string, error) {
	var sb strings.Builder
	if err := p.renderValueInto(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// renderValueInto renders the next CBOR item into sb as a compact,
// JSON-like textual form. It is used only for non-string map keys, and
// deliberately bypasses the stack/tag machinery: tags on a nested key
// value are consumed (so byte alignment stays correct) but not
// semantically interpreted.
func (p *Parser) renderValueInto(sb *strings.Builder) error {
	for {
		b, ok, err := p.src.Peek()
		if err != nil {
			return p.wrapSourceErr(err)
		}
		if !ok {
			return p.eofErr()
		}
		mt, _ := decodeInitialByte(b)
		if mt != MajorTypeTag {
			break
		}
		if _, err := p.readArgument(MajorTypeTag); err != nil {
			return err
		}
	}

	b, ok, err := p.src.Peek()
	if err != nil {
		return p.wrapSourceErr(err)
	}
	if !ok {
		return p.eofErr()
	}
	mt, ai := decodeInitialByte(b)
	switch mt {
	case MajorTypeUnsignedInteger:
		v, err := p.readArgument(MajorTypeUnsignedInteger)
		if err != nil {
			return err
		}
		sb.WriteString(strconv.FormatUint(v, 10))
		return nil
	case MajorTypeNegativeInteger:
		v, err := p.readArgument(MajorTypeNegativeInteger)
		if err != nil {
			return err
		}
		if v > math.MaxInt64 {
			return p.errorAt(ErrNumberTooLarge, "")
		}
		sb.WriteString(strconv.FormatInt(-1-int64(v), 10))
		return nil
	case MajorTypeByteString:
		data, err := p.readStringBytes(MajorTypeByteString, ai)
		if err != nil {
			return err
		}
		sb.WriteByte('"')
		sb.WriteString(hexEncode(data))
		sb.WriteByte('"')
		return nil
	case MajorTypeTextString:
		data, err := p.readStringBytes(MajorTypeTextString, ai)
		if err != nil {
			return err
		}
		if !utf8.Valid(data) {
			return p.errorAt(ErrInvalidUTF8TextString, "")
		}
		sb.WriteString(strconv.Quote(string(data)))
		return nil
	case MajorTypeArray:
		return p.renderArrayInto(sb, ai)
	case MajorTypeMap:
		return p.renderMapInto(sb, ai)
	case MajorTypeSimpleOrFloat:
		return p.renderSimpleOrFloatInto(sb, ai)
	default:
		return p.errorAt(ErrInvalidMajorType, "")
	}
}

func (p *Parser) readStringBytes(mt MajorType, ai byte) ([]byte, error) {
	if ai == byte(AdditionalInfoIndefiniteLength) {
		return p.readIndefiniteString(mt)
	}
	length, err := p.readArgument(mt)
	if err != nil {
		return nil, err
	}
	return p.readFixed(int(length))
}

func (p *Parser) renderArrayInto(sb *strings.Builder, ai byte) error {
	sb.WriteByte('[')
	if ai == byte(AdditionalInfoIndefiniteLength) {
		if _, err := p.src.ReadByte(); err != nil {
			return p.wrapSourceErr(err)
		}
		first := true
		for {
			b, ok, err := p.src.Peek()
			if err != nil {
				return p.wrapSourceErr(err)
			}
			if !ok {
				return p.errorAt(ErrMissingBreak, "")
			}
			if b == breakByte {
				p.src.ReadByte()
				break
			}
			if !first {
				sb.WriteByte(',')
			}
			first = false
			if err := p.renderValueInto(sb); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
		return nil
	}
	length, err := p.readArgument(MajorTypeArray)
	if err != nil {
		return err
	}
	for i := uint64(0); i < length; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		if err := p.renderValueInto(sb); err != nil {
			return err
		}
	}
	sb.WriteByte(']')
	return nil
}

func (p *Parser) renderMapInto(sb *strings.Builder, ai byte) error {
	sb.WriteByte('{')
	writePair := func() error {
		if err := p.renderValueInto(sb); err != nil {
			return err
		}
		sb.WriteByte(':')
		return p.renderValueInto(sb)
	}
	if ai == byte(AdditionalInfoIndefiniteLength) {
		if _, err := p.src.ReadByte(); err != nil {
			return p.wrapSourceErr(err)
		}
		first := true
		for {
			b, ok, err := p.src.Peek()
			if err != nil {
				return p.wrapSourceErr(err)
			}
			if !ok {
				return p.errorAt(ErrMissingBreak, "")
			}
			if b == breakByte {
				p.src.ReadByte()
				break
			}
			if !first {
				sb.WriteByte(',')
			}
			first = false
			if err := writePair(); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
		return nil
	}
	length, err := p.readArgument(MajorTypeMap)
	if err != nil {
		return err
	}
	for i := uint64(0); i < length; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		if err := writePair(); err != nil {
			return err
		}
	}
	sb.WriteByte('}')
	return nil
}

func (p *Parser) renderSimpleOrFloatInto(sb *strings.Builder, ai byte) error {
	switch ai {
	case 20, 21:
		if _, err := p.src.ReadByte(); err != nil {
			return p.wrapSourceErr(err)
		}
		sb.WriteString(strconv.FormatBool(ai == 21))
		return nil
	case 22:
		if _, err := p.src.ReadByte(); err != nil {
			return p.wrapSourceErr(err)
		}
		sb.WriteString("null")
		return nil
	case 23:
		if _, err := p.src.ReadByte(); err != nil {
			return p.wrapSourceErr(err)
		}
		sb.WriteString("undefined")
		return nil
	case 25, 26, 27:
		widths := map[byte]int{25: 2, 26: 4, 27: 8}
		width := widths[ai]
		if _, err := p.src.ReadByte(); err != nil {
			return p.wrapSourceErr(err)
		}
		buf, err := p.readFixed(width)
		if err != nil {
			return err
		}
		var v float64
		switch width {
		case 2:
			v = halfBitsToFloat64(binary.BigEndian.Uint16(buf))
		case 4:
			v = float64(float32FromBits(binary.BigEndian.Uint32(buf)))
		case 8:
			v = float64FromBits(binary.BigEndian.Uint64(buf))
		}
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		return nil
	default:
		return p.errorAt(ErrInvalidSimpleValue, "")
	}
}

func hexEncode(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = digits[c>>4]
		out[i*2+1] = digits[c&0xf]
	}
	return string(out)
}

func (p *Parser) errorAt(kind error, msg string) error {
	return NewParseError(kind, p.src.Position(), msg)
}

func (p *Parser) eofErr() error {
	return p.errorAt(ErrUnexpectedEOF, "")
}

func (p *Parser) wrapSourceErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, bytesource.ErrShortRead) || errors.Is(err, io.ErrUnexpectedEOF) {
		return p.eofErr()
	}
	return NewParseError(ErrSourceError, p.src.Position(), err.Error())
}

package msgpack

import (
	"testing"
	"time"

	cbor "github.com/argon-chat/streamcbor"
	"github.com/stretchr/testify/require"
	vmmsgpack "github.com/vmihailenco/msgpack/v5"
)

// recordingSink mirrors the cbor package's test sink: it records every
// event pushed to it so assertions can walk the full sequence.
type recordingSink struct {
	cbor.BaseSink
	events []cbor.Event
}

func (r *recordingSink) BeginObjectLen(length uint64, tag cbor.SemanticTag) bool {
	r.events = append(r.events, cbor.Event{Kind: cbor.EventBeginObject, Tag: tag, HasLength: true, Length: length})
	return true
}
func (r *recordingSink) EndObject() bool {
	r.events = append(r.events, cbor.Event{Kind: cbor.EventEndObject})
	return true
}
func (r *recordingSink) BeginArrayLen(length uint64, tag cbor.SemanticTag) bool {
	r.events = append(r.events, cbor.Event{Kind: cbor.EventBeginArray, Tag: tag, HasLength: true, Length: length})
	return true
}
func (r *recordingSink) EndArray() bool {
	r.events = append(r.events, cbor.Event{Kind: cbor.EventEndArray})
	return true
}
func (r *recordingSink) Name(s string) bool {
	r.events = append(r.events, cbor.Event{Kind: cbor.EventName, Text: s})
	return true
}
func (r *recordingSink) NullValue(tag cbor.SemanticTag) bool {
	r.events = append(r.events, cbor.Event{Kind: cbor.EventNull, Tag: tag})
	return true
}
func (r *recordingSink) BoolValue(b bool, tag cbor.SemanticTag) bool {
	r.events = append(r.events, cbor.Event{Kind: cbor.EventBool, Bool: b, Tag: tag})
	return true
}
func (r *recordingSink) StringValue(s string, tag cbor.SemanticTag) bool {
	r.events = append(r.events, cbor.Event{Kind: cbor.EventString, Text: s, Tag: tag})
	return true
}
func (r *recordingSink) ByteStringValue(b []byte, tag cbor.SemanticTag) bool {
	r.events = append(r.events, cbor.Event{Kind: cbor.EventByteString, Bytes: b, Tag: tag})
	return true
}
func (r *recordingSink) Int64Value(v int64, tag cbor.SemanticTag) bool {
	r.events = append(r.events, cbor.Event{Kind: cbor.EventInt64, Int: v, Tag: tag})
	return true
}
func (r *recordingSink) Uint64Value(v uint64, tag cbor.SemanticTag) bool {
	r.events = append(r.events, cbor.Event{Kind: cbor.EventUint64, Uint: v, Tag: tag})
	return true
}
func (r *recordingSink) DoubleValue(v float64, tag cbor.SemanticTag) bool {
	r.events = append(r.events, cbor.Event{Kind: cbor.EventDouble, Float: v, Tag: tag})
	return true
}

var _ cbor.Sink = (*recordingSink)(nil)

func decodeWithReference(t *testing.T, v interface{}) *recordingSink {
	t.Helper()
	data, err := vmmsgpack.Marshal(v)
	require.NoError(t, err)

	sink := &recordingSink{}
	require.NoError(t, Decode(data, sink))
	return sink
}

func TestDecodeScalarsAgainstReferenceEncoder(t *testing.T) {
	sink := decodeWithReference(t, uint64(42))
	require.Equal(t, []cbor.Event{{Kind: cbor.EventUint64, Uint: 42}}, sink.events)

	sink = decodeWithReference(t, int64(-7))
	require.Equal(t, []cbor.Event{{Kind: cbor.EventInt64, Int: -7}}, sink.events)

	sink = decodeWithReference(t, "hello")
	require.Equal(t, []cbor.Event{{Kind: cbor.EventString, Text: "hello"}}, sink.events)

	sink = decodeWithReference(t, true)
	require.Equal(t, []cbor.Event{{Kind: cbor.EventBool, Bool: true}}, sink.events)

	sink = decodeWithReference(t, 1.5)
	require.Equal(t, []cbor.Event{{Kind: cbor.EventDouble, Float: 1.5}}, sink.events)
}

func TestDecodeArrayAgainstReferenceEncoder(t *testing.T) {
	sink := decodeWithReference(t, []int{1, 2, 3})
	want := []cbor.Event{
		{Kind: cbor.EventBeginArray, HasLength: true, Length: 3},
		{Kind: cbor.EventUint64, Uint: 1},
		{Kind: cbor.EventUint64, Uint: 2},
		{Kind: cbor.EventUint64, Uint: 3},
		{Kind: cbor.EventEndArray},
	}
	require.Equal(t, want, sink.events)
}

func TestDecodeMapAgainstReferenceEncoder(t *testing.T) {
	sink := decodeWithReference(t, map[string]int{"a": 1})
	want := []cbor.Event{
		{Kind: cbor.EventBeginObject, HasLength: true, Length: 1},
		{Kind: cbor.EventName, Text: "a"},
		{Kind: cbor.EventUint64, Uint: 1},
		{Kind: cbor.EventEndObject},
	}
	require.Equal(t, want, sink.events)
}

func TestDecodeBinAgainstReferenceEncoder(t *testing.T) {
	sink := decodeWithReference(t, []byte{0x01, 0x02, 0x03})
	require.Len(t, sink.events, 1)
	require.Equal(t, cbor.EventByteString, sink.events[0].Kind)
	require.Equal(t, []byte{0x01, 0x02, 0x03}, sink.events[0].Bytes)
}

func TestDecodeNil(t *testing.T) {
	sink := &recordingSink{}
	require.NoError(t, Decode([]byte{0xc0}, sink))
	require.Equal(t, []cbor.Event{{Kind: cbor.EventNull}}, sink.events)
}

func TestDecodeTimestampExtFixext4(t *testing.T) {
	// fixext4, type -1, seconds = 1363896240 (0x514B67B0)
	data := []byte{0xd6, 0xff, 0x51, 0x4B, 0x67, 0xB0}
	sink := &recordingSink{}
	require.NoError(t, Decode(data, sink))
	require.Equal(t, []cbor.Event{{Kind: cbor.EventInt64, Int: 1363896240, Tag: cbor.TagTimestamp}}, sink.events)
}

func TestDecodeTimestampExtViaReferenceEncoder(t *testing.T) {
	when := time.Unix(1363896240, 0).UTC()
	sink := decodeWithReference(t, when)
	require.Len(t, sink.events, 1)
	require.Equal(t, cbor.TagTimestamp, sink.events[0].Tag)
	require.Equal(t, int64(1363896240), sink.events[0].Int)
}

func TestDecodeNestingDepthExceeded(t *testing.T) {
	// [[0]] as fixarrays: 0x91 0x91 0x00
	data := []byte{0x91, 0x91, 0x00}
	sink := &recordingSink{}
	err := Decode(data, sink, WithMaxNestingDepth(1))
	require.Error(t, err)
	de, ok := err.(*DecodeError)
	require.True(t, ok)
	require.Equal(t, ErrNestingDepthExceeded, de.Kind)
}

func TestDecodeUnexpectedEOF(t *testing.T) {
	sink := &recordingSink{}
	err := Decode([]byte{0x91}, sink) // fixarray(1), no payload
	require.Error(t, err)
}

func TestDecodeExtraItems(t *testing.T) {
	sink := &recordingSink{}
	err := Decode([]byte{0x01, 0x02}, sink)
	require.Error(t, err)
	de, ok := err.(*DecodeError)
	require.True(t, ok)
	require.Equal(t, ErrExtraItems, de.Kind)
}

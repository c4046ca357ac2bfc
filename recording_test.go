package cbor

// recordingSink embeds BaseSink and records every event it receives, so
// tests can assert on the full event sequence without hand-rolling a
// sink for every scenario.
type recordingSink struct {
	BaseSink
	events      []Event
	typedArrays []*TypedArray
}

func (r *recordingSink) BeginObject(tag SemanticTag) bool {
	r.events = append(r.events, Event{Kind: EventBeginObject, Tag: tag})
	return true
}

func (r *recordingSink) BeginObjectLen(length uint64, tag SemanticTag) bool {
	r.events = append(r.events, Event{Kind: EventBeginObject, Tag: tag, HasLength: true, Length: length})
	return true
}

func (r *recordingSink) EndObject() bool {
	r.events = append(r.events, Event{Kind: EventEndObject})
	return true
}

func (r *recordingSink) BeginArray(tag SemanticTag) bool {
	r.events = append(r.events, Event{Kind: EventBeginArray, Tag: tag})
	return true
}

func (r *recordingSink) BeginArrayLen(length uint64, tag SemanticTag) bool {
	r.events = append(r.events, Event{Kind: EventBeginArray, Tag: tag, HasLength: true, Length: length})
	return true
}

func (r *recordingSink) EndArray() bool {
	r.events = append(r.events, Event{Kind: EventEndArray})
	return true
}

func (r *recordingSink) Name(s string) bool {
	r.events = append(r.events, Event{Kind: EventName, Text: s})
	return true
}

func (r *recordingSink) NullValue(tag SemanticTag) bool {
	r.events = append(r.events, Event{Kind: EventNull, Tag: tag})
	return true
}

func (r *recordingSink) BoolValue(b bool, tag SemanticTag) bool {
	r.events = append(r.events, Event{Kind: EventBool, Bool: b, Tag: tag})
	return true
}

func (r *recordingSink) StringValue(s string, tag SemanticTag) bool {
	r.events = append(r.events, Event{Kind: EventString, Text: s, Tag: tag})
	return true
}

func (r *recordingSink) ByteStringValue(b []byte, tag SemanticTag) bool {
	r.events = append(r.events, Event{Kind: EventByteString, Bytes: b, Tag: tag})
	return true
}

func (r *recordingSink) Int64Value(v int64, tag SemanticTag) bool {
	r.events = append(r.events, Event{Kind: EventInt64, Int: v, Tag: tag})
	return true
}

func (r *recordingSink) Uint64Value(v uint64, tag SemanticTag) bool {
	r.events = append(r.events, Event{Kind: EventUint64, Uint: v, Tag: tag})
	return true
}

func (r *recordingSink) DoubleValue(v float64, tag SemanticTag) bool {
	r.events = append(r.events, Event{Kind: EventDouble, Float: v, Tag: tag})
	return true
}

func (r *recordingSink) TypedArrayValue(ta *TypedArray) bool {
	r.typedArrays = append(r.typedArrays, ta)
	return true
}

var _ Sink = (*recordingSink)(nil)

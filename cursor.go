package cbor

import "github.com/argon-chat/streamcbor/bytesource"

// FilterFunc decides whether an event should be surfaced to a Cursor's
// caller. Returning false skips the event (the cursor immediately
// advances again) without re-parsing it.
type FilterFunc func(Event) bool

// Cursor is a pull adapter over Parser: instead of implementing Sink,
// callers repeatedly call Next and inspect Current.
//
// Cursor implements Sink itself. Each Sink method captures its event into
// current and returns false, so every call to the underlying Parser.Parse
// advances by exactly one event.
type Cursor struct {
	parser *Parser
	filter FilterFunc

	current Event

	typedArr        *TypedArray
	typedIndex      int
	typedEndEmitted bool
}

// NewCursor creates a Cursor reading from src. A nil filter accepts every
// event.
func NewCursor(src bytesource.Source, filter FilterFunc, opts ...ParserOption) *Cursor {
	if filter == nil {
		filter = func(Event) bool { return true }
	}
	return &Cursor{parser: NewParser(src, opts...), filter: filter}
}

// Current returns the most recently accepted event.
func (c *Cursor) Current() Event { return c.current }

// Done reports whether parsing has finished and no typed-array fan-out is
// still in progress.
func (c *Cursor) Done() bool { return c.parser.Done() && c.typedArr == nil }

// Line always returns 0: this decoder works over a byte stream, not text,
// so there is no meaningful line number.
func (c *Cursor) Line() int { return 0 }

// Column returns the current byte offset into the source.
func (c *Cursor) Column() uint64 { return c.parser.src.Position() }

// Next advances to the next event accepted by the filter. It returns
// false once the document (and any in-progress typed-array fan-out) is
// exhausted.
func (c *Cursor) Next() (bool, error) {
	for {
		if c.typedArr != nil {
			ev, ok := c.stepTypedArray()
			if ok {
				c.current = ev
				if c.filter(c.current) {
					return true, nil
				}
				continue
			}
		}
		if c.parser.Done() {
			return false, nil
		}
		if err := c.parser.Parse(c); err != nil {
			return false, err
		}
		if c.parser.Done() {
			return false, nil
		}
		if c.filter(c.current) {
			return true, nil
		}
	}
}

// stepTypedArray returns the next synthetic event (one per element, then
// EndArray) for an in-progress typed-array fan-out. ok is false once
// exhausted, at which point normal parsing resumes on the next Next call.
func (c *Cursor) stepTypedArray() (Event, bool) {
	n := c.typedArr.Len()
	if c.typedIndex < n {
		ev := c.typedArr.elementEvent(c.typedIndex)
		c.typedIndex++
		return ev, true
	}
	if !c.typedEndEmitted {
		c.typedEndEmitted = true
		return Event{Kind: EventEndArray}, true
	}
	c.typedArr = nil
	c.typedIndex = 0
	c.typedEndEmitted = false
	return Event{}, false
}

// ReadTo replays the current event to sink, then drives the parser
// forward, forwarding every subsequent event to sink, until sink returns
// false or the document ends. It bridges pull-mode back to push-mode,
// e.g. to skip a subtree by handing it to a sink that returns false as
// soon as its container closes.
func (c *Cursor) ReadTo(sink Sink) error {
	if !c.dispatch(sink, c.current) {
		return nil
	}
	if c.typedArr != nil {
		for {
			ev, ok := c.stepTypedArray()
			if !ok {
				break
			}
			if !c.dispatch(sink, ev) {
				return nil
			}
		}
	}
	return c.parser.Parse(sink)
}

func (c *Cursor) dispatch(sink Sink, ev Event) bool {
	switch ev.Kind {
	case EventBeginObject:
		if ev.HasLength {
			return sink.BeginObjectLen(ev.Length, ev.Tag)
		}
		return sink.BeginObject(ev.Tag)
	case EventEndObject:
		return sink.EndObject()
	case EventBeginArray:
		if ev.HasLength {
			return sink.BeginArrayLen(ev.Length, ev.Tag)
		}
		return sink.BeginArray(ev.Tag)
	case EventEndArray:
		return sink.EndArray()
	case EventName:
		return sink.Name(ev.Text)
	case EventNull:
		return sink.NullValue(ev.Tag)
	case EventBool:
		return sink.BoolValue(ev.Bool, ev.Tag)
	case EventString:
		return sink.StringValue(ev.Text, ev.Tag)
	case EventByteString:
		return sink.ByteStringValue(ev.Bytes, ev.Tag)
	case EventInt64:
		return sink.Int64Value(ev.Int, ev.Tag)
	case EventUint64:
		return sink.Uint64Value(ev.Uint, ev.Tag)
	case EventDouble:
		return sink.DoubleValue(ev.Float, ev.Tag)
	default:
		return true
	}
}

// Sink implementation: each method captures its event and pauses.

func (c *Cursor) BeginObject(tag SemanticTag) bool {
	c.current = Event{Kind: EventBeginObject, Tag: tag}
	return false
}

func (c *Cursor) BeginObjectLen(length uint64, tag SemanticTag) bool {
	c.current = Event{Kind: EventBeginObject, Tag: tag, HasLength: true, Length: length}
	return false
}

func (c *Cursor) EndObject() bool {
	c.current = Event{Kind: EventEndObject}
	return false
}

func (c *Cursor) BeginArray(tag SemanticTag) bool {
	c.current = Event{Kind: EventBeginArray, Tag: tag}
	return false
}

func (c *Cursor) BeginArrayLen(length uint64, tag SemanticTag) bool {
	c.current = Event{Kind: EventBeginArray, Tag: tag, HasLength: true, Length: length}
	return false
}

func (c *Cursor) EndArray() bool {
	c.current = Event{Kind: EventEndArray}
	return false
}

func (c *Cursor) Name(s string) bool {
	c.current = Event{Kind: EventName, Text: s}
	return false
}

func (c *Cursor) NullValue(tag SemanticTag) bool {
	c.current = Event{Kind: EventNull, Tag: tag}
	return false
}

func (c *Cursor) BoolValue(b bool, tag SemanticTag) bool {
	c.current = Event{Kind: EventBool, Bool: b, Tag: tag}
	return false
}

func (c *Cursor) StringValue(s string, tag SemanticTag) bool {
	c.current = Event{Kind: EventString, Text: s, Tag: tag}
	return false
}

func (c *Cursor) ByteStringValue(b []byte, tag SemanticTag) bool {
	c.current = Event{Kind: EventByteString, Bytes: b, Tag: tag}
	return false
}

func (c *Cursor) Int64Value(v int64, tag SemanticTag) bool {
	c.current = Event{Kind: EventInt64, Int: v, Tag: tag}
	return false
}

func (c *Cursor) Uint64Value(v uint64, tag SemanticTag) bool {
	c.current = Event{Kind: EventUint64, Uint: v, Tag: tag}
	return false
}

func (c *Cursor) DoubleValue(v float64, tag SemanticTag) bool {
	c.current = Event{Kind: EventDouble, Float: v, Tag: tag}
	return false
}

func (c *Cursor) TypedArrayValue(ta *TypedArray) bool {
	c.typedArr = ta
	c.typedIndex = 0
	c.typedEndEmitted = false
	c.current = Event{Kind: EventBeginArray, Tag: TagNone, HasLength: true, Length: uint64(ta.Len())}
	return false
}

func (c *Cursor) Flush() bool { return false }

var _ Sink = (*Cursor)(nil)

package cbor

// Sink receives parse events pushed by Parser.Parse. Every method returns
// a bool: true to keep parsing, false to ask the parser to pause
// immediately after this call returns. A paused Parser resumes exactly
// where it left off on the next call to Parse.
type Sink interface {
	BeginObject(tag SemanticTag) bool
	BeginObjectLen(length uint64, tag SemanticTag) bool
	EndObject() bool

	BeginArray(tag SemanticTag) bool
	BeginArrayLen(length uint64, tag SemanticTag) bool
	EndArray() bool

	Name(s string) bool

	NullValue(tag SemanticTag) bool
	BoolValue(b bool, tag SemanticTag) bool
	StringValue(s string, tag SemanticTag) bool
	ByteStringValue(b []byte, tag SemanticTag) bool
	Int64Value(v int64, tag SemanticTag) bool
	Uint64Value(v uint64, tag SemanticTag) bool
	DoubleValue(v float64, tag SemanticTag) bool
	TypedArrayValue(ta *TypedArray) bool

	// Flush is called once, after the single root item has been fully
	// emitted. Its return value is otherwise unused by Parser.
	Flush() bool
}

// BaseSink implements Sink with every method returning true. Embed it to
// avoid writing out the methods you don't care about.
type BaseSink struct{}

func (BaseSink) BeginObject(SemanticTag) bool            { return true }
func (BaseSink) BeginObjectLen(uint64, SemanticTag) bool { return true }
func (BaseSink) EndObject() bool                         { return true }

func (BaseSink) BeginArray(SemanticTag) bool            { return true }
func (BaseSink) BeginArrayLen(uint64, SemanticTag) bool { return true }
func (BaseSink) EndArray() bool                         { return true }

func (BaseSink) Name(string) bool { return true }

func (BaseSink) NullValue(SemanticTag) bool             { return true }
func (BaseSink) BoolValue(bool, SemanticTag) bool       { return true }
func (BaseSink) StringValue(string, SemanticTag) bool   { return true }
func (BaseSink) ByteStringValue([]byte, SemanticTag) bool { return true }
func (BaseSink) Int64Value(int64, SemanticTag) bool     { return true }
func (BaseSink) Uint64Value(uint64, SemanticTag) bool   { return true }
func (BaseSink) DoubleValue(float64, SemanticTag) bool  { return true }
func (BaseSink) TypedArrayValue(*TypedArray) bool       { return true }

func (BaseSink) Flush() bool { return true }

var _ Sink = BaseSink{}

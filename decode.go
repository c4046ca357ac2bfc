package cbor

import "github.com/argon-chat/streamcbor/bytesource"

// Decode parses data in full, forwarding every event to sink. It is a
// convenience wrapper around NewParser + Parse for the common case of an
// in-memory buffer and a sink that never pauses.
func Decode(data []byte, sink Sink, opts ...ParserOption) error {
	p := NewParser(bytesource.NewMemorySource(data), opts...)
	return p.Parse(sink)
}

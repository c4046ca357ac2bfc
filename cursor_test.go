package cbor

import (
	"testing"

	"github.com/argon-chat/streamcbor/bytesource"
)

func TestCursorWalksArray(t *testing.T) {
	data := []byte{0x83, 0x01, 0x02, 0x03}
	c := NewCursor(bytesource.NewMemorySource(data), nil)

	var kinds []EventKind
	for {
		ok, err := c.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		kinds = append(kinds, c.Current().Kind)
	}
	want := []EventKind{EventBeginArray, EventUint64, EventUint64, EventUint64, EventEndArray}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kinds[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestCursorFilter(t *testing.T) {
	data := []byte{0x83, 0x01, 0x02, 0x03}
	onlyScalars := func(ev Event) bool {
		return ev.Kind == EventUint64
	}
	c := NewCursor(bytesource.NewMemorySource(data), onlyScalars)

	var values []uint64
	for {
		ok, err := c.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		values = append(values, c.Current().Uint)
	}
	if len(values) != 3 || values[0] != 1 || values[1] != 2 || values[2] != 3 {
		t.Fatalf("values = %v", values)
	}
}

func TestCursorTypedArrayFanOut(t *testing.T) {
	data := []byte{0xD8, 0x41, 0x44, 0x00, 0x01, 0x00, 0x02}
	c := NewCursor(bytesource.NewMemorySource(data), nil)

	var kinds []EventKind
	var uints []uint64
	for {
		ok, err := c.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		ev := c.Current()
		kinds = append(kinds, ev.Kind)
		if ev.Kind == EventUint64 {
			uints = append(uints, ev.Uint)
		}
	}
	want := []EventKind{EventBeginArray, EventUint64, EventUint64, EventEndArray}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	if len(uints) != 2 || uints[0] != 1 || uints[1] != 2 {
		t.Fatalf("uints = %v", uints)
	}
}

func TestCursorReadToForwardsRemainder(t *testing.T) {
	data := []byte{0x83, 0x01, 0x02, 0x03}
	c := NewCursor(bytesource.NewMemorySource(data), nil)

	ok, err := c.Next() // BeginArray
	if err != nil || !ok {
		t.Fatalf("Next: %v, %v", ok, err)
	}

	sink := &recordingSink{}
	if err := c.ReadTo(sink); err != nil {
		t.Fatalf("ReadTo: %v", err)
	}
	want := []Event{
		{Kind: EventBeginArray, HasLength: true, Length: 3},
		{Kind: EventUint64, Uint: 1},
		{Kind: EventUint64, Uint: 2},
		{Kind: EventUint64, Uint: 3},
		{Kind: EventEndArray},
	}
	assertEvents(t, sink.events, want)
}

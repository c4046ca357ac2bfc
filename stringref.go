package cbor

// mappedStringKind distinguishes the two payload shapes a stringref table
// entry can hold.
type mappedStringKind int

const (
	mappedText mappedStringKind = iota
	mappedBytes
)

// mappedString is one entry of a stringRefTable: either a decoded text
// string or a raw byte string, as it was first seen on the wire.
type mappedString struct {
	kind  mappedStringKind
	text  string
	bytes []byte
}

// stringRefTable is the append-only table installed by tag 256
// (stringref-namespace) and consulted by tag 25 (stringref) references,
// per the CBOR stringref extension draft. A table is shared by reference
// across all frames nested inside the namespace that installed it, so a
// reference can point at a string introduced by a sibling earlier in the
// same namespace.
type stringRefTable struct {
	entries []mappedString
}

func newStringRefTable() *stringRefTable {
	return &stringRefTable{}
}

func (t *stringRefTable) append(m mappedString) {
	t.entries = append(t.entries, m)
}

func (t *stringRefTable) size() int {
	return len(t.entries)
}

func (t *stringRefTable) at(i uint64) (mappedString, bool) {
	if i >= uint64(len(t.entries)) {
		return mappedString{}, false
	}
	return t.entries[i], true
}

// minLengthForStringRef implements the monotone eligibility step function
// for automatic stringref table insertion: a definite-length string is
// appended to the in-scope table only once its length reaches the
// threshold for the table's current size, so the reference (tag 25 plus a
// uint index) is never larger than encoding the string literally would
// have been.
func minLengthForStringRef(tableSize int) int {
	switch {
	case tableSize < 24:
		return 3
	case tableSize < 256:
		return 4
	case tableSize < 65536:
		return 5
	case tableSize < (1 << 32):
		return 7
	default:
		return 11
	}
}

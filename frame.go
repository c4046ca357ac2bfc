package cbor

// frameMode identifies what the parser is waiting for next within the
// frame at the top of its container stack.
type frameMode int

const (
	// modeRoot is the initial frame: read exactly one item, then move to
	// modeBeforeDone.
	modeRoot frameMode = iota
	// modeBeforeDone is reached once the single root item has been fully
	// emitted; the next tick flushes the sink and marks the parser done.
	modeBeforeDone

	modeArray
	modeIndefiniteArray

	modeMapKey
	modeMapValue
	modeIndefiniteMapKey
	modeIndefiniteMapValue
)

// frame is one level of the parser's container stack. length/index are
// meaningful only for the definite-length modes; for maps, length and
// index count key/value pairs, not individual items.
type frame struct {
	mode       frameMode
	length     uint64
	index      uint64
	stringRefs *stringRefTable
}

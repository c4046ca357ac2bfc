package cbor

// SemanticTag is the closed set of tag-derived annotations the parser
// attaches to a scalar event. It is not the raw wire tag number: several
// wire tags collapse to the same SemanticTag, and some wire tags (bignum,
// typed array, stringref) never reach a Sink as a tag at all because the
// parser fully absorbs them into a different event shape.
type SemanticTag int

const (
	// TagNone means no tag (or no recognized tag) applied to this value.
	TagNone SemanticTag = iota
	// TagDateTime is tag 0, an RFC 3339 date/time text string.
	TagDateTime
	// TagTimestamp is tag 1, an epoch-based date/time on an integer or float.
	TagTimestamp
	// TagURI is tag 32, a URI text string.
	TagURI
	// TagBase64URL is tag 33/21, text or bytes expected to be base64url.
	TagBase64URL
	// TagBase64 is tag 34/22, text or bytes expected to be base64.
	TagBase64
	// TagBase16 is tag 23, bytes expected to be base16 (hex).
	TagBase16
	// TagBigInt is a tag 2/3 bignum, rendered as a decimal-string event.
	TagBigInt
	// TagBigDec is a tag 4 decimal fraction, rendered as a decimal-string event.
	TagBigDec
	// TagBigFloat is a tag 5 bigfloat, rendered as a hex-float-string event.
	TagBigFloat
	// TagUndefined marks the CBOR "undefined" simple value (major 7, AI 23).
	TagUndefined
)

// String returns a short name for the tag, used in error messages and tests.
func (t SemanticTag) String() string {
	switch t {
	case TagNone:
		return "None"
	case TagDateTime:
		return "DateTime"
	case TagTimestamp:
		return "Timestamp"
	case TagURI:
		return "URI"
	case TagBase64URL:
		return "Base64URL"
	case TagBase64:
		return "Base64"
	case TagBase16:
		return "Base16"
	case TagBigInt:
		return "BigInt"
	case TagBigDec:
		return "BigDec"
	case TagBigFloat:
		return "BigFloat"
	case TagUndefined:
		return "Undefined"
	default:
		return "Unknown"
	}
}

// scalarSemanticTag maps the tag that most recently preceded an integer or
// floating-point item to a SemanticTag. Only tag 1 (epoch date/time) is
// recognized here; everything else collapses to TagNone.
func scalarSemanticTag(t wireTag, ok bool) SemanticTag {
	if ok && t == wireTagEpochDateTime {
		return TagTimestamp
	}
	return TagNone
}

// textSemanticTag maps the tag that most recently preceded a text string to
// a SemanticTag.
func textSemanticTag(t wireTag, ok bool) SemanticTag {
	if !ok {
		return TagNone
	}
	switch t {
	case wireTagDateTimeString:
		return TagDateTime
	case wireTagURI:
		return TagURI
	case wireTagBase64URLText:
		return TagBase64URL
	case wireTagBase64Text:
		return TagBase64
	default:
		return TagNone
	}
}

// byteSemanticTag maps the tag that most recently preceded a byte string to
// a SemanticTag.
func byteSemanticTag(t wireTag, ok bool) SemanticTag {
	if !ok {
		return TagNone
	}
	switch t {
	case wireTagBase64URLExpect:
		return TagBase64URL
	case wireTagBase64Expect:
		return TagBase64
	case wireTagBase16Expect:
		return TagBase16
	default:
		return TagNone
	}
}

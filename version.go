package cbor

// Version is the package's semantic version string, bumped on any change
// to the Sink, Cursor, or Parser public surface.
const Version = "0.1.0"

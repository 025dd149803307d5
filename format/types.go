package format

// CompressionType identifies how a chunk payload or a whole document is compressed.
//
// The numeric values of the region types are part of the file format and must never change.
type CompressionType uint8

const (
	CompressionGzip CompressionType = 0x1 // CompressionGzip represents gzip (RFC 1952) streams.
	CompressionZlib CompressionType = 0x2 // CompressionZlib represents zlib (RFC 1950) streams.
	CompressionNone CompressionType = 0x3 // CompressionNone represents uncompressed payloads.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 block compression.
	CompressionZstd CompressionType = 0x5 // CompressionZstd represents Zstandard. Not understood by other readers.
	CompressionS2   CompressionType = 0x6 // CompressionS2 represents S2. Not understood by other readers.

	// CompressionDeflate represents raw deflate (RFC 1951). It is only valid as a
	// document wrapping; region slots reject it.
	CompressionDeflate CompressionType = 0x7F

	// ExternalFlag is set on a slot's compression byte when the payload lives in
	// a companion file instead of inline.
	ExternalFlag CompressionType = 0x80
)

// IsExternal reports whether the external flag is set.
func (c CompressionType) IsExternal() bool {
	return c&ExternalFlag != 0
}

// Base returns the compression type with the external flag cleared.
func (c CompressionType) Base() CompressionType {
	return c &^ ExternalFlag
}

// IsRegionType reports whether c (without the external flag) may label a region slot.
func (c CompressionType) IsRegionType() bool {
	switch c.Base() {
	case CompressionGzip, CompressionZlib, CompressionNone, CompressionLZ4, CompressionZstd, CompressionS2:
		return true
	default:
		return false
	}
}

func (c CompressionType) String() string {
	name := "Unknown"
	switch c.Base() {
	case CompressionGzip:
		name = "Gzip"
	case CompressionZlib:
		name = "Zlib"
	case CompressionNone:
		name = "None"
	case CompressionLZ4:
		name = "LZ4"
	case CompressionZstd:
		name = "Zstd"
	case CompressionS2:
		name = "S2"
	case CompressionDeflate:
		name = "Deflate"
	}

	if c.IsExternal() {
		return name + "+External"
	}

	return name
}

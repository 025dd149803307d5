// Package endian provides the byte order engines used by the tag codec.
//
// The tag wire format is big-endian. Some producers write the same layout in
// little-endian order; the codec can be switched to that engine with an option.
//
//	engine := endian.GetBigEndianEngine()
//	buf = engine.AppendUint32(buf, 42)
//
// All engines are immutable and safe for concurrent use.
package endian

import "encoding/binary"

// EndianEngine combines binary.ByteOrder and binary.AppendByteOrder so one value
// can both read fixed-width integers and append them to a buffer.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetBigEndianEngine returns the big-endian engine, the default for the tag format.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// IsBigEndian reports whether engine orders bytes most significant first.
func IsBigEndian(engine EndianEngine) bool {
	var b [2]byte
	engine.PutUint16(b[:], 0x0102)

	return b[0] == 0x01
}

package tag

import "fmt"

// Kind is the one-byte discriminator that identifies a tag variant on the wire.
type Kind uint8

// Fixed kinds. Every other value is available to custom kinds.
const (
	KindEnd       Kind = 0
	KindByte      Kind = 1
	KindShort     Kind = 2
	KindInt       Kind = 3
	KindLong      Kind = 4
	KindFloat     Kind = 5
	KindDouble    Kind = 6
	KindByteArray Kind = 7
	KindString    Kind = 8
	KindList      Kind = 9
	KindCompound  Kind = 10
	KindIntArray  Kind = 11
	KindLongArray Kind = 12

	maxFixedKind = KindLongArray
)

var kindNames = [...]string{
	KindEnd:       "End",
	KindByte:      "Byte",
	KindShort:     "Short",
	KindInt:       "Int",
	KindLong:      "Long",
	KindFloat:     "Float",
	KindDouble:    "Double",
	KindByteArray: "ByteArray",
	KindString:    "String",
	KindList:      "List",
	KindCompound:  "Compound",
	KindIntArray:  "IntArray",
	KindLongArray: "LongArray",
}

// IsFixed reports whether k is one of the built-in kinds 0 through 12.
func (k Kind) IsFixed() bool {
	return k <= maxFixedKind
}

func (k Kind) String() string {
	if k.IsFixed() {
		return kindNames[k]
	}

	return fmt.Sprintf("Custom(%d)", uint8(k))
}

// minPayloadSize is the smallest number of bytes a payload of kind k can occupy.
// Custom kinds are assumed to need at least one byte.
func (k Kind) minPayloadSize() int {
	switch k {
	case KindEnd:
		return 0
	case KindByte, KindCompound:
		return 1
	case KindShort, KindString:
		return 2
	case KindInt, KindFloat, KindByteArray, KindIntArray, KindLongArray:
		return 4
	case KindList:
		return 5
	case KindLong, KindDouble:
		return 8
	default:
		return 1
	}
}

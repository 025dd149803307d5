package tag

// Tag is one node of a tag tree.
//
// The fixed kinds form a closed set of concrete types: End, Byte, Short, Int,
// Long, Float, Double, ByteArray, String, *List, *Compound, IntArray and
// LongArray. Any other implementation must satisfy Custom.
type Tag interface {
	Kind() Kind
}

// Custom is the extension point for kinds outside the fixed set.
//
// A custom tag writes and reads its own payload. The kind byte and, where
// applicable, the name are handled by the codec. Instances are created through
// the constructor registered for the kind in a Registry.
type Custom interface {
	Tag
	EncodePayload(w *Writer) error
	DecodePayload(r *Reader) error
}

// Equaler may be implemented by custom tags to provide structural equality.
// Without it, Equal compares the encoded payloads.
type Equaler interface {
	EqualTag(other Tag) bool
}

// Branch is implemented by custom tags that hold child tags, so cycle checks
// can see through them.
type Branch interface {
	Children() []Tag
}

// End terminates a compound on the wire. It is never stored inside a tree.
type End struct{}

type (
	Byte   int8
	Short  int16
	Int    int32
	Long   int64
	Float  float32
	Double float64
	String string

	ByteArray []byte
	IntArray  []int32
	LongArray []int64
)

func (End) Kind() Kind       { return KindEnd }
func (Byte) Kind() Kind      { return KindByte }
func (Short) Kind() Kind     { return KindShort }
func (Int) Kind() Kind       { return KindInt }
func (Long) Kind() Kind      { return KindLong }
func (Float) Kind() Kind     { return KindFloat }
func (Double) Kind() Kind    { return KindDouble }
func (String) Kind() Kind    { return KindString }
func (ByteArray) Kind() Kind { return KindByteArray }
func (IntArray) Kind() Kind  { return KindIntArray }
func (LongArray) Kind() Kind { return KindLongArray }

// Bool converts b to the Byte convention of 1 for true and 0 for false.
func Bool(b bool) Byte {
	if b {
		return 1
	}

	return 0
}

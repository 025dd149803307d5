package tag

import (
	"fmt"
	"math"

	"github.com/arloliu/anvil/endian"
	"github.com/arloliu/anvil/errs"
)

// Reader consumes the wire form of tags from a byte slice.
//
// Custom tags receive a Reader in DecodePayload. Every Read method fails with
// errs.ErrTruncated when the input ends early and never reads past it.
type Reader struct {
	data     []byte
	off      int
	engine   endian.EndianEngine
	registry *Registry
	depth    int
	maxDepth int
}

// Offset returns the number of bytes consumed.
func (r *Reader) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.off }

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", errs.ErrTruncated, n, r.Remaining())
	}
	b := r.data[r.off : r.off+n]
	r.off += n

	return b, nil
}

// ReadUint8 reads one unsigned byte.
func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// ReadInt8 reads one signed byte.
func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

// ReadUint16 reads a 16-bit unsigned integer in the codec byte order.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint16(b), nil
}

// ReadInt16 reads a 16-bit signed integer.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadInt32 reads a 32-bit signed integer.
func (r *Reader) ReadInt32() (int32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}

	return int32(r.engine.Uint32(b)), nil
}

// ReadInt64 reads a 64-bit signed integer.
func (r *Reader) ReadInt64() (int64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}

	return int64(r.engine.Uint64(b)), nil
}

// ReadFloat32 reads an IEEE 754 single-precision value.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadInt32()
	return math.Float32frombits(uint32(v)), err
}

// ReadFloat64 reads an IEEE 754 double-precision value.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadInt64()
	return math.Float64frombits(uint64(v)), err
}

// ReadKind reads a kind byte.
func (r *Reader) ReadKind() (Kind, error) {
	v, err := r.ReadUint8()
	return Kind(v), err
}

// ReadString reads a u16 byte length and that many bytes.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", fmt.Errorf("string of %d bytes: %w", n, err)
	}

	return string(b), nil
}

// ReadBytes returns a copy of the next n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)

	return out, nil
}

// ReadLength reads an i32 element count for elements of at least elemSize bytes.
//
// Negative counts fail with errs.ErrNegativeLength; counts that cannot fit in
// the remaining input fail with errs.ErrTruncated before anything is allocated.
func (r *Reader) ReadLength(elemSize int) (int, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", errs.ErrNegativeLength, n)
	}
	if elemSize > 0 && int64(n)*int64(elemSize) > int64(r.Remaining()) {
		return 0, fmt.Errorf("%w: %d elements of %d bytes, have %d", errs.ErrTruncated, n, elemSize, r.Remaining())
	}

	return int(n), nil
}

// Enter records one more level of container nesting.
func (r *Reader) Enter() error {
	r.depth++
	if r.depth > r.maxDepth {
		return fmt.Errorf("%w: limit %d", errs.ErrMaxDepth, r.maxDepth)
	}

	return nil
}

// Leave undoes one Enter.
func (r *Reader) Leave() { r.depth-- }

// ReadNamed reads a full tag: kind byte, name (unless End), payload.
func (r *Reader) ReadNamed() (string, Tag, error) {
	k, err := r.ReadKind()
	if err != nil {
		return "", nil, err
	}
	if k == KindEnd {
		return "", End{}, nil
	}

	name, err := r.ReadString()
	if err != nil {
		return "", nil, fmt.Errorf("name: %w", err)
	}

	t, err := r.ReadPayload(k)
	if err != nil {
		return name, nil, err
	}

	return name, t, nil
}

// ReadPayload reads the payload of a tag of kind k.
func (r *Reader) ReadPayload(k Kind) (Tag, error) {
	switch k {
	case KindEnd:
		return End{}, nil
	case KindByte:
		v, err := r.ReadInt8()
		return Byte(v), err
	case KindShort:
		v, err := r.ReadInt16()
		return Short(v), err
	case KindInt:
		v, err := r.ReadInt32()
		return Int(v), err
	case KindLong:
		v, err := r.ReadInt64()
		return Long(v), err
	case KindFloat:
		v, err := r.ReadFloat32()
		return Float(v), err
	case KindDouble:
		v, err := r.ReadFloat64()
		return Double(v), err
	case KindString:
		v, err := r.ReadString()
		return String(v), err
	case KindByteArray:
		n, err := r.ReadLength(1)
		if err != nil {
			return nil, err
		}
		v, err := r.ReadBytes(n)
		return ByteArray(v), err
	case KindIntArray:
		return r.readIntArray()
	case KindLongArray:
		return r.readLongArray()
	case KindList:
		return r.readList()
	case KindCompound:
		return r.readCompound()
	}

	ctor, ok := r.registry.Lookup(k)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", errs.ErrUnknownKind, uint8(k))
	}
	custom := ctor()
	if err := custom.DecodePayload(r); err != nil {
		return nil, fmt.Errorf("%s: %w", k, err)
	}

	return custom, nil
}

func (r *Reader) readIntArray() (Tag, error) {
	n, err := r.ReadLength(4)
	if err != nil {
		return nil, err
	}

	b, _ := r.take(n * 4)
	out := make(IntArray, n)
	for i := range out {
		out[i] = int32(r.engine.Uint32(b[i*4:]))
	}

	return out, nil
}

func (r *Reader) readLongArray() (Tag, error) {
	n, err := r.ReadLength(8)
	if err != nil {
		return nil, err
	}

	b, _ := r.take(n * 8)
	out := make(LongArray, n)
	for i := range out {
		out[i] = int64(r.engine.Uint64(b[i*8:]))
	}

	return out, nil
}

func (r *Reader) readList() (Tag, error) {
	if err := r.Enter(); err != nil {
		return nil, err
	}
	defer r.Leave()

	elem, err := r.ReadKind()
	if err != nil {
		return nil, err
	}
	n, err := r.ReadLength(elem.minPayloadSize())
	if err != nil {
		return nil, err
	}
	if elem == KindEnd && n > 0 {
		return nil, errs.Malformedf("list of End with %d elements", n)
	}

	l := &List{elem: elem, items: make([]Tag, n)}
	for i := range l.items {
		item, err := r.ReadPayload(elem)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		l.items[i] = item
	}

	return l, nil
}

func (r *Reader) readCompound() (Tag, error) {
	if err := r.Enter(); err != nil {
		return nil, err
	}
	defer r.Leave()

	c := NewCompound()
	for {
		name, t, err := r.ReadNamed()
		if err != nil {
			if name != "" {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			return nil, err
		}
		if t.Kind() == KindEnd {
			return c, nil
		}
		// Duplicate names keep the last value, in the first position.
		c.put(name, t)
	}
}

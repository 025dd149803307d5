package tag

import (
	"fmt"
	"math"

	"github.com/arloliu/anvil/endian"
	"github.com/arloliu/anvil/errs"
)

// Writer appends the wire form of tags to a byte slice.
//
// Custom tags receive a Writer in EncodePayload and use its Put methods for
// their own fields. A custom kind that nests other tags must bracket them with
// Enter and Leave so the depth guard applies.
type Writer struct {
	buf      []byte
	engine   endian.EndianEngine
	depth    int
	maxDepth int
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// PutUint8 appends one unsigned byte.
func (w *Writer) PutUint8(v uint8) { w.buf = append(w.buf, v) }

// PutInt8 appends one signed byte.
func (w *Writer) PutInt8(v int8) { w.buf = append(w.buf, byte(v)) }

// PutUint16 appends a 16-bit unsigned integer in the codec byte order.
func (w *Writer) PutUint16(v uint16) { w.buf = w.engine.AppendUint16(w.buf, v) }

// PutInt16 appends a 16-bit signed integer.
func (w *Writer) PutInt16(v int16) { w.buf = w.engine.AppendUint16(w.buf, uint16(v)) }

// PutInt32 appends a 32-bit signed integer.
func (w *Writer) PutInt32(v int32) { w.buf = w.engine.AppendUint32(w.buf, uint32(v)) }

// PutInt64 appends a 64-bit signed integer.
func (w *Writer) PutInt64(v int64) { w.buf = w.engine.AppendUint64(w.buf, uint64(v)) }

// PutFloat32 appends an IEEE 754 single-precision value.
func (w *Writer) PutFloat32(v float32) { w.buf = w.engine.AppendUint32(w.buf, math.Float32bits(v)) }

// PutFloat64 appends an IEEE 754 double-precision value.
func (w *Writer) PutFloat64(v float64) { w.buf = w.engine.AppendUint64(w.buf, math.Float64bits(v)) }

// PutBytes appends b verbatim, without a length prefix.
func (w *Writer) PutBytes(b []byte) { w.buf = append(w.buf, b...) }

// PutKind appends a kind byte.
func (w *Writer) PutKind(k Kind) { w.buf = append(w.buf, byte(k)) }

// PutString appends a u16 byte length followed by the bytes of s.
func (w *Writer) PutString(s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("%w: %d bytes", errs.ErrStringTooLong, len(s))
	}
	w.PutUint16(uint16(len(s)))
	w.buf = append(w.buf, s...)

	return nil
}

// PutLength appends an i32 element count.
func (w *Writer) PutLength(n int) error {
	if n > math.MaxInt32 {
		return fmt.Errorf("length %d exceeds int32: %w", n, errs.ErrIndexOutOfRange)
	}
	w.PutInt32(int32(n))

	return nil
}

// Enter records one more level of container nesting.
func (w *Writer) Enter() error {
	w.depth++
	if w.depth > w.maxDepth {
		return fmt.Errorf("%w: limit %d", errs.ErrMaxDepth, w.maxDepth)
	}

	return nil
}

// Leave undoes one Enter.
func (w *Writer) Leave() { w.depth-- }

// PutNamed appends a full tag: kind byte, name (unless End), payload.
func (w *Writer) PutNamed(name string, t Tag) error {
	if t == nil {
		return errs.ErrNilTag
	}

	k := t.Kind()
	w.PutKind(k)
	if k == KindEnd {
		return nil
	}
	if err := w.PutString(name); err != nil {
		return fmt.Errorf("name: %w", err)
	}

	return w.PutPayload(t)
}

// PutPayload appends the kind-specific payload of t.
func (w *Writer) PutPayload(t Tag) error {
	switch v := t.(type) {
	case End:
		return nil
	case Byte:
		w.PutInt8(int8(v))
	case Short:
		w.PutInt16(int16(v))
	case Int:
		w.PutInt32(int32(v))
	case Long:
		w.PutInt64(int64(v))
	case Float:
		w.PutFloat32(float32(v))
	case Double:
		w.PutFloat64(float64(v))
	case String:
		return w.PutString(string(v))
	case ByteArray:
		if err := w.PutLength(len(v)); err != nil {
			return err
		}
		w.PutBytes(v)
	case IntArray:
		if err := w.PutLength(len(v)); err != nil {
			return err
		}
		for _, x := range v {
			w.PutInt32(x)
		}
	case LongArray:
		if err := w.PutLength(len(v)); err != nil {
			return err
		}
		for _, x := range v {
			w.PutInt64(x)
		}
	case *List:
		return w.putList(v)
	case *Compound:
		return w.putCompound(v)
	case Custom:
		return v.EncodePayload(w)
	case nil:
		return errs.ErrNilTag
	default:
		return fmt.Errorf("%w: %s has no encoder", errs.ErrUnknownKind, t.Kind())
	}

	return nil
}

func (w *Writer) putList(l *List) error {
	if err := w.Enter(); err != nil {
		return err
	}
	defer w.Leave()

	w.PutKind(l.elem)
	if err := w.PutLength(len(l.items)); err != nil {
		return err
	}
	for i, item := range l.items {
		if err := w.PutPayload(item); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}

	return nil
}

func (w *Writer) putCompound(c *Compound) error {
	if err := w.Enter(); err != nil {
		return err
	}
	defer w.Leave()

	for i, name := range c.names {
		if err := w.PutNamed(name, c.values[i]); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	w.PutKind(KindEnd)

	return nil
}

package tag

import (
	"bytes"
	"fmt"
	"io"

	"github.com/arloliu/anvil/endian"
	"github.com/arloliu/anvil/errs"
	"github.com/arloliu/anvil/internal/options"
	"github.com/arloliu/anvil/internal/pool"
)

// DefaultMaxDepth is the default limit on nested compounds and lists.
const DefaultMaxDepth = 512

// Codec encodes and decodes tag trees.
//
// A Codec is immutable after construction and safe for concurrent use as long
// as its Registry is not modified at the same time.
type Codec struct {
	registry *Registry
	engine   endian.EndianEngine
	maxDepth int
}

// CodecOption configures a Codec.
type CodecOption = options.Option[*Codec]

// WithRegistry sets the registry used to decode custom kinds.
func WithRegistry(r *Registry) CodecOption {
	return options.New(func(c *Codec) error {
		if r == nil {
			return fmt.Errorf("nil registry: %w", errs.ErrInvalidOption)
		}
		c.registry = r

		return nil
	})
}

// WithMaxDepth sets how many compounds and lists may be nested.
func WithMaxDepth(depth int) CodecOption {
	return options.New(func(c *Codec) error {
		if depth < 1 {
			return fmt.Errorf("max depth %d: %w", depth, errs.ErrInvalidOption)
		}
		c.maxDepth = depth

		return nil
	})
}

// WithLittleEndian switches every multi-byte field to little-endian order.
func WithLittleEndian() CodecOption {
	return options.NoError(func(c *Codec) {
		c.engine = endian.GetLittleEndianEngine()
	})
}

// WithBigEndian selects big-endian order, the default.
func WithBigEndian() CodecOption {
	return options.NoError(func(c *Codec) {
		c.engine = endian.GetBigEndianEngine()
	})
}

// NewCodec returns a big-endian Codec with an empty registry and DefaultMaxDepth.
func NewCodec(opts ...CodecOption) (*Codec, error) {
	c := &Codec{
		registry: NewRegistry(),
		engine:   endian.GetBigEndianEngine(),
		maxDepth: DefaultMaxDepth,
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

var defaultCodec, _ = NewCodec()

// Registry returns the registry consulted when decoding custom kinds.
func (c *Codec) Registry() *Registry { return c.registry }

// MaxDepth returns the nesting limit.
func (c *Codec) MaxDepth() int { return c.maxDepth }

func (c *Codec) writer(buf []byte) *Writer {
	return &Writer{buf: buf, engine: c.engine, maxDepth: c.maxDepth}
}

func (c *Codec) reader(data []byte) *Reader {
	return &Reader{data: data, engine: c.engine, registry: c.registry, maxDepth: c.maxDepth}
}

// Append appends the named tag t to dst.
func (c *Codec) Append(dst []byte, name string, t Tag) ([]byte, error) {
	w := c.writer(dst)
	if err := w.PutNamed(name, t); err != nil {
		return dst, fmt.Errorf("tag: encode: %w", err)
	}

	return w.buf, nil
}

// AppendPayload appends the kind byte and payload of t to dst, without a name.
func (c *Codec) AppendPayload(dst []byte, t Tag) ([]byte, error) {
	if t == nil {
		return dst, errs.ErrNilTag
	}

	w := c.writer(dst)
	w.PutKind(t.Kind())
	if err := w.PutPayload(t); err != nil {
		return dst, fmt.Errorf("tag: encode: %w", err)
	}

	return w.buf, nil
}

// Marshal returns the wire form of the named tag t.
func (c *Codec) Marshal(name string, t Tag) ([]byte, error) {
	bb := pool.GetTagBuffer()
	defer pool.PutTagBuffer(bb)

	out, err := c.Append(bb.B, name, t)
	bb.B = out
	if err != nil {
		return nil, err
	}

	return bytes.Clone(out), nil
}

// Encode writes the wire form of the named tag t to w.
func (c *Codec) Encode(w io.Writer, name string, t Tag) error {
	bb := pool.GetTagBuffer()
	defer pool.PutTagBuffer(bb)

	out, err := c.Append(bb.B, name, t)
	bb.B = out
	if err != nil {
		return err
	}

	_, err = bb.WriteTo(w)

	return err
}

// Unmarshal decodes one named tag that must span all of data.
func (c *Codec) Unmarshal(data []byte) (string, Tag, error) {
	r := c.reader(data)
	name, t, err := r.ReadNamed()
	if err != nil {
		return "", nil, fmt.Errorf("tag: decode at offset %d: %w", r.Offset(), err)
	}
	if r.Remaining() > 0 {
		return "", nil, fmt.Errorf("tag: decode: %w: %d bytes", errs.ErrTrailingData, r.Remaining())
	}

	return name, t, nil
}

// Decode reads r to the end and decodes the named tag at its start.
// Bytes after the tag are ignored.
func (c *Codec) Decode(r io.Reader) (string, Tag, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, fmt.Errorf("tag: read: %w", err)
	}

	name, t, _, err := c.DecodePrefix(data)

	return name, t, err
}

// DecodePrefix decodes the named tag at the start of data and reports how many
// bytes it occupied.
func (c *Codec) DecodePrefix(data []byte) (string, Tag, int, error) {
	r := c.reader(data)
	name, t, err := r.ReadNamed()
	if err != nil {
		return "", nil, 0, fmt.Errorf("tag: decode at offset %d: %w", r.Offset(), err)
	}

	return name, t, r.Offset(), nil
}

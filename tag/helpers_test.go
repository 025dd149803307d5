package tag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// point is a custom kind used by the tests: two int32 coordinates.
type point struct {
	X, Z int32
}

const kindPoint Kind = 90

func (p *point) Kind() Kind { return kindPoint }

func (p *point) EncodePayload(w *Writer) error {
	w.PutInt32(p.X)
	w.PutInt32(p.Z)

	return nil
}

func (p *point) DecodePayload(r *Reader) error {
	var err error
	if p.X, err = r.ReadInt32(); err != nil {
		return err
	}
	p.Z, err = r.ReadInt32()

	return err
}

func newPoint() Custom { return &point{} }

func mustCompound(t testing.TB, kv ...any) *Compound {
	t.Helper()
	require.Zero(t, len(kv)%2)

	c := NewCompound()
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		require.True(t, ok)
		value, ok := kv[i+1].(Tag)
		require.True(t, ok)
		require.NoError(t, c.Put(name, value))
	}

	return c
}

func mustList(t testing.TB, elem Kind, items ...Tag) *List {
	t.Helper()
	l, err := NewList(elem, items...)
	require.NoError(t, err)

	return l
}

func mustCodec(t testing.TB, opts ...CodecOption) *Codec {
	t.Helper()
	c, err := NewCodec(opts...)
	require.NoError(t, err)

	return c
}

// nestCompounds returns depth compounds nested inside each other.
func nestCompounds(t testing.TB, depth int) *Compound {
	t.Helper()
	root := NewCompound()
	cur := root
	for i := 1; i < depth; i++ {
		child := NewCompound()
		require.NoError(t, cur.Put("c", child))
		cur = child
	}

	return root
}

// nestLists returns a list of lists with depth levels; the innermost holds one Int.
func nestLists(t testing.TB, depth int) *List {
	t.Helper()
	inner := mustList(t, KindInt, Int(1))
	for i := 1; i < depth; i++ {
		inner = mustList(t, KindList, inner)
	}

	return inner
}

func sampleTree(t testing.TB) *Compound {
	t.Helper()
	nested := mustCompound(t,
		"name", String("minecraft:stone"),
		"props", mustCompound(t, "axis", String("y")),
	)

	return mustCompound(t,
		"byte", Byte(-5),
		"short", Short(-30000),
		"int", Int(123456789),
		"long", Long(-9876543210123),
		"float", Float(3.25),
		"double", Double(-0.125),
		"string", String("héllo wörld"),
		"empty", String(""),
		"bytes", ByteArray{0, 1, 0xff},
		"ints", IntArray{-1, 0, 1 << 30},
		"longs", LongArray{-1 << 62, 42},
		"noBytes", ByteArray{},
		"list", mustList(t, KindCompound, nested, NewCompound()),
		"emptyList", mustList(t, KindString),
		"listOfLists", mustList(t, KindList, mustList(t, KindInt, Int(1)), mustList(t, KindLong)),
		"compound", nested,
	)
}

package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer_WriteAndGrow(t *testing.T) {
	bb := NewByteBuffer(4)

	n, err := bb.Write([]byte("abcdef"))
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.Equal(t, "abcdef", string(bb.Bytes()))

	bb.Grow(TagBufferDefaultSize * 2)
	require.GreaterOrEqual(t, cap(bb.B)-bb.Len(), TagBufferDefaultSize*2)
	require.Equal(t, "abcdef", string(bb.Bytes()))
}

func TestByteBuffer_AppendZerosClearsReusedMemory(t *testing.T) {
	bb := NewByteBuffer(16)
	_, _ = bb.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	bb.Reset()

	bb.AppendZeros(8)
	require.Equal(t, make([]byte, 8), bb.Bytes())

	bb.AppendZeros(0)
	bb.AppendZeros(-3)
	require.Equal(t, 8, bb.Len())
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(8)
	_, _ = bb.Write([]byte("region"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(6), n)
	require.Equal(t, "region", out.String())
}

func TestByteBufferPool(t *testing.T) {
	p := NewByteBufferPool(8, 32)

	bb := p.Get()
	require.NotNil(t, bb)
	require.Equal(t, 0, bb.Len())

	_, _ = bb.Write([]byte("data"))
	p.Put(bb)

	again := p.Get()
	require.Equal(t, 0, again.Len())

	big := NewByteBuffer(64)
	p.Put(big) // discarded, exceeds threshold
	p.Put(nil)
}

func TestDefaultPools(t *testing.T) {
	tb := GetTagBuffer()
	require.Equal(t, 0, tb.Len())
	PutTagBuffer(tb)

	rb := GetRegionBuffer()
	require.Equal(t, 0, rb.Len())
	PutRegionBuffer(rb)
}

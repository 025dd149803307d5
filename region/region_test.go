package region

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/anvil/errs"
	"github.com/arloliu/anvil/format"
	"github.com/arloliu/anvil/tag"
)

func chunk(t *testing.T, x, z int, payload int) *tag.Compound {
	t.Helper()

	data := make([]byte, payload)
	for i := range data {
		data[i] = byte(i*31 + x + z)
	}

	c := tag.NewCompound()
	require.NoError(t, c.Put("xPos", tag.Int(x)))
	require.NoError(t, c.Put("zPos", tag.Int(z)))
	require.NoError(t, c.Put("data", tag.ByteArray(data)))

	return c
}

func fixedClock(ts int64) Option {
	return WithClock(func() time.Time { return time.Unix(ts, 0) })
}

func parseHeader(t *testing.T, data []byte) Header {
	t.Helper()

	var h Header
	require.NoError(t, h.Parse(data))

	return h
}

type memStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}}
}

func (m *memStore) ReadExternal(cx, cz int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.files[ExternalFileName(cx, cz)]
	if !ok {
		return nil, os.ErrNotExist
	}

	return data, nil
}

func (m *memStore) WriteExternal(cx, cz int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[ExternalFileName(cx, cz)] = bytes.Clone(data)

	return nil
}

func (m *memStore) RemoveExternal(cx, cz int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, ExternalFileName(cx, cz))

	return nil
}

func TestIndex(t *testing.T) {
	require.Equal(t, 0, Index(0, 0))
	require.Equal(t, 5<<5|5, Index(5, 5))
	require.Equal(t, 1023, Index(31, 31))
	require.Equal(t, Index(1, 2), Index(33, 34))
	require.Equal(t, Index(31, 31), Index(-1, -1))
}

func TestLocation(t *testing.T) {
	loc := NewLocation(0x123456, 7)
	require.Equal(t, uint32(0x123456), loc.Offset())
	require.Equal(t, uint8(7), loc.Sectors())
	require.False(t, loc.IsEmpty())
	require.Equal(t, int64(0x123456)*SectorSize, loc.ByteOffset())
	require.True(t, Location(0).IsEmpty())
}

func TestHeader_ParseBytes(t *testing.T) {
	var h Header
	h.Locations[0] = NewLocation(2, 1)
	h.Locations[1023] = NewLocation(3, 2)
	h.Timestamps[1023] = 0xdeadbeef

	data := h.Bytes()
	require.Len(t, data, HeaderSize)
	require.Equal(t, []byte{0x00, 0x00, 0x02, 0x01}, data[0:4])
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, data[HeaderSize-4:])

	require.Equal(t, h, parseHeader(t, data))

	var short Header
	require.ErrorIs(t, short.Parse(data[:100]), errs.ErrTruncated)
}

func TestRegion_SlotStates(t *testing.T) {
	r, err := New(0, 0, fixedClock(1700000000))
	require.NoError(t, err)

	require.Nil(t, r.Get(3, 4))
	require.False(t, r.Has(3, 4))
	require.Zero(t, r.Timestamp(3, 4))
	require.Equal(t, format.CompressionZlib, r.Compression(3, 4))

	c := chunk(t, 3, 4, 10)
	require.NoError(t, r.Set(3, 4, c))
	require.Same(t, c, r.Get(3, 4))
	require.Equal(t, uint32(1700000000), r.Timestamp(3, 4))
	require.Equal(t, 1, r.Count())

	replacement := chunk(t, 3, 4, 20)
	require.NoError(t, r.Set(3, 4, replacement))
	require.Same(t, replacement, r.Get(3, 4))
	require.Equal(t, 1, r.Count())

	r.Clear(3, 4)
	require.Nil(t, r.Get(3, 4))
	require.Zero(t, r.Timestamp(3, 4))
	require.Zero(t, r.Count())

	r.Clear(3, 4)
	require.ErrorIs(t, r.Set(0, 0, nil), errs.ErrNilTag)
	require.ErrorIs(t, r.SetCompression(9, 9, format.CompressionGzip), errs.ErrIndexOutOfRange)
}

func TestRegion_Options(t *testing.T) {
	_, err := New(0, 0, WithCompression(format.CompressionDeflate))
	require.ErrorIs(t, err, errs.ErrInvalidOption)

	_, err = New(0, 0, WithCompression(format.CompressionZlib|format.ExternalFlag))
	require.ErrorIs(t, err, errs.ErrInvalidOption)

	_, err = New(0, 0, WithCodec(nil))
	require.ErrorIs(t, err, errs.ErrInvalidOption)

	_, err = New(0, 0, WithClock(nil))
	require.ErrorIs(t, err, errs.ErrInvalidOption)

	r, err := New(0, 0, WithCompression(format.CompressionLZ4))
	require.NoError(t, err)
	require.NoError(t, r.Set(1, 1, chunk(t, 1, 1, 10)))
	require.Equal(t, format.CompressionLZ4, r.Compression(1, 1))
}

func TestRegion_Empty(t *testing.T) {
	r, err := New(0, 0)
	require.NoError(t, err)

	data, err := r.Bytes()
	require.NoError(t, err)
	require.Len(t, data, HeaderSize)
	require.Equal(t, make([]byte, HeaderSize), data)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Zero(t, decoded.Count())

	decoded, err = Decode(nil)
	require.NoError(t, err)
	require.Zero(t, decoded.Count())
}

func TestRegion_TwoChunks(t *testing.T) {
	r, err := New(0, 0, WithCompression(format.CompressionNone), fixedClock(1234))
	require.NoError(t, err)

	small := chunk(t, 0, 0, 100)
	large := chunk(t, 5, 5, 5000)
	require.NoError(t, r.Set(0, 0, small))
	require.NoError(t, r.Set(5, 5, large))

	var buf bytes.Buffer
	n, err := r.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)
	require.Zero(t, n%SectorSize)
	require.Equal(t, int64(HeaderSize+3*SectorSize), n)

	h := parseHeader(t, buf.Bytes())
	require.Equal(t, NewLocation(2, 1), h.Locations[Index(0, 0)])
	require.Equal(t, NewLocation(3, 2), h.Locations[Index(5, 5)])
	require.Equal(t, uint32(1234), h.Timestamps[Index(5, 5)])

	// record framing: length counts the type byte
	rec := buf.Bytes()[2*SectorSize:]
	codec, err := tag.NewCodec()
	require.NoError(t, err)
	encoded, err := codec.Marshal("", small)
	require.NoError(t, err)
	require.Equal(t, uint32(len(encoded)+1), engine.Uint32(rec[:4]))
	require.Equal(t, byte(format.CompressionNone), rec[4])
	require.Equal(t, encoded, rec[5:5+len(encoded)])

	decoded, err := Decode(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, 2, decoded.Count())
	require.True(t, tag.Equal(small, decoded.Get(0, 0)))
	require.True(t, tag.Equal(large, decoded.Get(5, 5)))
	require.Equal(t, uint32(1234), decoded.Timestamp(0, 0))
	require.Equal(t, format.CompressionNone, decoded.Compression(5, 5))
}

func TestRegion_SectorRangesDoNotOverlap(t *testing.T) {
	compressions := []format.CompressionType{
		format.CompressionGzip,
		format.CompressionZlib,
		format.CompressionNone,
		format.CompressionLZ4,
		format.CompressionZstd,
		format.CompressionS2,
	}

	r, err := New(-1, 2)
	require.NoError(t, err)

	for i := range 200 {
		x, z := (i*7)%Width, (i*13)%Width
		require.NoError(t, r.Set(x, z, chunk(t, x, z, (i*997)%20000)))
		require.NoError(t, r.SetCompression(x, z, compressions[i%len(compressions)]))
	}

	data, err := r.Bytes()
	require.NoError(t, err)
	require.Zero(t, len(data)%SectorSize)

	h := parseHeader(t, data)
	used := make([]int, len(data)/SectorSize)
	for _, loc := range h.Locations {
		if loc.IsEmpty() {
			continue
		}
		require.GreaterOrEqual(t, loc.Offset(), uint32(2))
		for s := loc.Offset(); s < loc.Offset()+uint32(loc.Sectors()); s++ {
			require.Less(t, int(s), len(used))
			used[s]++
			require.Equal(t, 1, used[s], "sector %d claimed twice", s)
		}
	}

	decoded, err := Decode(data, WithPosition(-1, 2))
	require.NoError(t, err)
	require.Equal(t, r.Count(), decoded.Count())
	for pos, c := range r.Occupied() {
		require.True(t, tag.Equal(c, decoded.Get(pos[0], pos[1])), "chunk %v", pos)
		require.Equal(t, r.Compression(pos[0], pos[1]), decoded.Compression(pos[0], pos[1]))
	}
}

func TestRegion_RepacksAfterShrink(t *testing.T) {
	r, err := New(0, 0, WithCompression(format.CompressionNone))
	require.NoError(t, err)
	require.NoError(t, r.Set(0, 0, chunk(t, 0, 0, 3*SectorSize)))
	require.NoError(t, r.Set(1, 0, chunk(t, 1, 0, 10)))

	before, err := r.Bytes()
	require.NoError(t, err)
	require.Equal(t, NewLocation(6, 1), parseHeader(t, before).Locations[Index(1, 0)])

	r.Clear(0, 0)
	after, err := r.Bytes()
	require.NoError(t, err)
	require.Len(t, after, HeaderSize+SectorSize)
	require.Equal(t, NewLocation(2, 1), parseHeader(t, after).Locations[Index(1, 0)])
}

func TestRegion_ExternalChunk(t *testing.T) {
	store := newMemStore()
	r, err := New(1, -1, WithCompression(format.CompressionNone), WithExternalStore(store))
	require.NoError(t, err)

	huge := chunk(t, 2, 3, MaxSectors*SectorSize)
	require.NoError(t, r.Set(2, 3, huge))
	require.NoError(t, r.Set(0, 0, chunk(t, 0, 0, 10)))

	data, err := r.Bytes()
	require.NoError(t, err)
	require.Contains(t, store.files, ExternalFileName(34, -29))

	h := parseHeader(t, data)
	loc := h.Locations[Index(2, 3)]
	require.Equal(t, uint8(1), loc.Sectors())
	rec := data[loc.ByteOffset():]
	require.Equal(t, uint32(1), engine.Uint32(rec[:4]))
	require.Equal(t, byte(format.CompressionNone|format.ExternalFlag), rec[4])

	decoded, err := Decode(data, WithPosition(1, -1), WithExternalStore(store))
	require.NoError(t, err)
	require.True(t, tag.Equal(huge, decoded.Get(2, 3)))
	require.Equal(t, format.CompressionNone, decoded.Compression(2, 3))

	_, err = Decode(data, WithPosition(1, -1))
	require.ErrorIs(t, err, errs.ErrInvalidOption)

	// shrinking the chunk brings it back inline; the companion file stays
	// until pruned
	require.NoError(t, decoded.Set(2, 3, chunk(t, 2, 3, 10)))
	_, err = decoded.Bytes()
	require.NoError(t, err)
	require.Contains(t, store.files, ExternalFileName(34, -29))

	require.NoError(t, decoded.PruneExternal())
	require.NotContains(t, store.files, ExternalFileName(34, -29))
	require.NoError(t, decoded.PruneExternal())
}

func TestRegion_ChunkTooLarge(t *testing.T) {
	r, err := New(0, 0, WithCompression(format.CompressionNone))
	require.NoError(t, err)
	require.NoError(t, r.Set(0, 0, chunk(t, 0, 0, MaxSectors*SectorSize)))

	_, err = r.Bytes()
	require.ErrorIs(t, err, errs.ErrChunkTooLarge)
}

func TestRegion_ReadErrors(t *testing.T) {
	r, err := New(0, 0, WithCompression(format.CompressionNone))
	require.NoError(t, err)
	require.NoError(t, r.Set(4, 0, chunk(t, 4, 0, 10)))
	good, err := r.Bytes()
	require.NoError(t, err)

	slotOff := Index(4, 0) * 4

	mutate := func(fn func(b []byte)) []byte {
		b := bytes.Clone(good)
		fn(b)

		return b
	}

	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{
			name: "short header",
			data: good[:100],
			err:  errs.ErrTruncated,
		},
		{
			name: "offset inside header",
			data: mutate(func(b []byte) { engine.PutUint32(b[slotOff:], uint32(NewLocation(1, 1))) }),
			err:  errs.ErrCorruptLocation,
		},
		{
			name: "offset beyond end",
			data: mutate(func(b []byte) { engine.PutUint32(b[slotOff:], uint32(NewLocation(40, 1))) }),
			err:  errs.ErrCorruptLocation,
		},
		{
			name: "length exceeds sectors",
			data: mutate(func(b []byte) { engine.PutUint32(b[2*SectorSize:], SectorSize) }),
			err:  errs.ErrCorruptLocation,
		},
		{
			name: "zero length",
			data: mutate(func(b []byte) { engine.PutUint32(b[2*SectorSize:], 0) }),
			err:  errs.ErrCorruptLocation,
		},
		{
			name: "unknown compression",
			data: mutate(func(b []byte) { b[2*SectorSize+4] = 0x09 }),
			err:  errs.ErrUnknownCompression,
		},
		{
			name: "raw deflate is not a slot type",
			data: mutate(func(b []byte) { b[2*SectorSize+4] = byte(format.CompressionDeflate) }),
			err:  errs.ErrUnknownCompression,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			require.ErrorIs(t, err, tt.err)
			if tt.name != "short header" {
				require.ErrorContains(t, err, "chunk (4, 0)")
				require.ErrorIs(t, err, errs.ErrMalformed)
			}
		})
	}
}

func TestRegion_RootNotCompound(t *testing.T) {
	codec, err := tag.NewCodec()
	require.NoError(t, err)
	payload, err := codec.Marshal("", tag.Int(5))
	require.NoError(t, err)

	data := make([]byte, HeaderSize+SectorSize)
	engine.PutUint32(data[0:], uint32(NewLocation(2, 1)))
	engine.PutUint32(data[HeaderSize:], uint32(len(payload)+1))
	data[HeaderSize+4] = byte(format.CompressionNone)
	copy(data[HeaderSize+5:], payload)

	_, err = Decode(data)
	require.ErrorIs(t, err, errs.ErrNotCompound)
}

func TestRegion_CustomKindsNeedCodec(t *testing.T) {
	registry := tag.NewRegistry()
	require.NoError(t, registry.Register(200, func() tag.Custom { return &marker{} }))
	codec, err := tag.NewCodec(tag.WithRegistry(registry))
	require.NoError(t, err)

	c := tag.NewCompound()
	require.NoError(t, c.Put("m", &marker{v: 7}))

	r, err := New(0, 0, WithCodec(codec))
	require.NoError(t, err)
	require.NoError(t, r.Set(0, 0, c))
	data, err := r.Bytes()
	require.NoError(t, err)

	_, err = Decode(data)
	require.ErrorIs(t, err, errs.ErrUnknownKind)

	decoded, err := Decode(data, WithCodec(codec))
	require.NoError(t, err)
	require.True(t, tag.Equal(c, decoded.Get(0, 0)))
}

type marker struct{ v uint8 }

func (m *marker) Kind() tag.Kind { return 200 }

func (m *marker) EncodePayload(w *tag.Writer) error {
	w.PutUint8(m.v)
	return nil
}

func (m *marker) DecodePayload(r *tag.Reader) error {
	v, err := r.ReadUint8()
	m.v = v

	return err
}

func TestFileName(t *testing.T) {
	require.Equal(t, "r.-1.2.mca", FileName(-1, 2))

	rx, rz, ok := ParseFileName("/world/region/r.-1.2.mca")
	require.True(t, ok)
	require.Equal(t, -1, rx)
	require.Equal(t, 2, rz)

	for _, name := range []string{"r.1.mca", "c.1.2.mcc", "r.a.2.mca", "r.1.2.mcr"} {
		_, _, ok := ParseFileName(name)
		require.False(t, ok, name)
	}
}

func TestOpenWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName(2, 3))

	r, err := New(2, 3, WithCompression(format.CompressionNone), WithExternalStore(DirStore(dir)))
	require.NoError(t, err)
	require.NoError(t, r.Set(0, 1, chunk(t, 64, 97, 10)))
	require.NoError(t, r.Set(1, 1, chunk(t, 65, 97, MaxSectors*SectorSize)))
	require.NoError(t, WriteFile(path, r))

	require.FileExists(t, filepath.Join(dir, ExternalFileName(65, 97)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2, "temporary file left behind")

	opened, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, 2, opened.X())
	require.Equal(t, 3, opened.Z())
	require.True(t, tag.Equal(r.Get(1, 1), opened.Get(1, 1)))

	_, err = Open(filepath.Join(dir, "world.dat"))
	require.ErrorIs(t, err, errs.ErrInvalidOption)
}

func TestWriteFile_PrunesAfterRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName(0, 0))
	companion := filepath.Join(dir, ExternalFileName(1, 1))

	r, err := New(0, 0, WithCompression(format.CompressionNone), WithExternalStore(DirStore(dir)))
	require.NoError(t, err)
	huge := chunk(t, 1, 1, MaxSectors*SectorSize)
	require.NoError(t, r.Set(1, 1, huge))
	require.NoError(t, WriteFile(path, r))
	require.FileExists(t, companion)

	// serializing in memory keeps the file the region on disk still needs
	require.NoError(t, r.Set(1, 1, chunk(t, 1, 1, 10)))
	_, err = r.Bytes()
	require.NoError(t, err)
	require.FileExists(t, companion)

	opened, err := Open(path)
	require.NoError(t, err)
	require.True(t, tag.Equal(huge, opened.Get(1, 1)))

	require.NoError(t, WriteFile(path, r))
	require.NoFileExists(t, companion)

	opened, err = Open(path)
	require.NoError(t, err)
	require.True(t, tag.Equal(r.Get(1, 1), opened.Get(1, 1)))

	// a cleared slot is pruned the same way
	require.NoError(t, r.Set(1, 1, chunk(t, 1, 1, MaxSectors*SectorSize)))
	require.NoError(t, WriteFile(path, r))
	require.FileExists(t, companion)
	r.Clear(1, 1)
	require.NoError(t, WriteFile(path, r))
	require.NoFileExists(t, companion)
}

func TestWalk(t *testing.T) {
	dir := t.TempDir()
	for i := range 6 {
		r, err := New(i, -i)
		require.NoError(t, err)
		require.NoError(t, r.Set(i, i, chunk(t, i, i, 50)))
		require.NoError(t, WriteFile(filepath.Join(dir, FileName(i, -i)), r))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "level.dat"), []byte("x"), 0o600))

	var visited atomic.Int32
	err := Walk(context.Background(), dir, 2, func(_ context.Context, path string, r *Region) error {
		visited.Add(1)
		if r.Count() != 1 || r.X() != -r.Z() {
			return fmt.Errorf("unexpected region %s", path)
		}

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, int32(6), visited.Load())

	sentinel := errors.New("stop")
	err = Walk(context.Background(), dir, 1, func(context.Context, string, *Region) error {
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = Walk(ctx, dir, 0, func(context.Context, string, *Region) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func BenchmarkRegion_Bytes(b *testing.B) {
	r, err := New(0, 0)
	require.NoError(b, err)
	for i := range 256 {
		c := tag.NewCompound()
		require.NoError(b, c.Put("data", tag.ByteArray(bytes.Repeat([]byte{byte(i)}, 2048))))
		require.NoError(b, r.Set(i%Width, i/Width, c))
	}

	for b.Loop() {
		if _, err := r.Bytes(); err != nil {
			b.Fatal(err)
		}
	}
}

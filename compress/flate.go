package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"github.com/arloliu/anvil/format"
)

// Writers hold several hundred KiB of state, so they are pooled and Reset per call.
var (
	gzipWriterPool = sync.Pool{
		New: func() any {
			w, _ := gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
			return w
		},
	}
	zlibWriterPool = sync.Pool{
		New: func() any {
			w, _ := zlib.NewWriterLevel(io.Discard, zlib.DefaultCompression)
			return w
		},
	}
	flateWriterPool = sync.Pool{
		New: func() any {
			w, _ := flate.NewWriter(io.Discard, flate.DefaultCompression)
			return w
		},
	}
)

// resettableWriter is satisfied by the gzip, zlib and flate writers.
type resettableWriter interface {
	io.WriteCloser
	Reset(w io.Writer)
}

func compressWith(p *sync.Pool, name string, data []byte) ([]byte, error) {
	w, _ := p.Get().(resettableWriter)
	defer p.Put(w)

	var out bytes.Buffer
	out.Grow(len(data)/2 + 64)
	w.Reset(&out)

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("%s compression failed: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s compression failed: %w", name, err)
	}

	return out.Bytes(), nil
}

func readAllAndClose(rc io.ReadCloser, name string) ([]byte, error) {
	defer rc.Close()

	out, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%s decompression failed: %w", name, err)
	}

	return out, nil
}

// GzipCompressor implements gzip (region compression type 1).
type GzipCompressor struct{}

var _ Codec = (*GzipCompressor)(nil)

// NewGzipCompressor creates a gzip codec.
func NewGzipCompressor() GzipCompressor {
	return GzipCompressor{}
}

// Type returns format.CompressionGzip.
func (c GzipCompressor) Type() format.CompressionType {
	return format.CompressionGzip
}

// Compress writes data as a single gzip member.
func (c GzipCompressor) Compress(data []byte) ([]byte, error) {
	return compressWith(&gzipWriterPool, "gzip", data)
}

// Decompress reads a gzip stream. Concatenated members are joined.
func (c GzipCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip decompression failed: %w", err)
	}

	return readAllAndClose(r, "gzip")
}

// ZlibCompressor implements zlib (region compression type 2).
type ZlibCompressor struct{}

var _ Codec = (*ZlibCompressor)(nil)

// NewZlibCompressor creates a zlib codec.
func NewZlibCompressor() ZlibCompressor {
	return ZlibCompressor{}
}

// Type returns format.CompressionZlib.
func (c ZlibCompressor) Type() format.CompressionType {
	return format.CompressionZlib
}

// Compress writes data as a zlib stream.
func (c ZlibCompressor) Compress(data []byte) ([]byte, error) {
	return compressWith(&zlibWriterPool, "zlib", data)
}

// Decompress reads a zlib stream and verifies its checksum.
func (c ZlibCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}

	return readAllAndClose(r, "zlib")
}

// DeflateCompressor implements raw deflate without any header or checksum.
type DeflateCompressor struct{}

var _ Codec = (*DeflateCompressor)(nil)

// NewDeflateCompressor creates a raw deflate codec.
func NewDeflateCompressor() DeflateCompressor {
	return DeflateCompressor{}
}

// Type returns format.CompressionDeflate.
func (c DeflateCompressor) Type() format.CompressionType {
	return format.CompressionDeflate
}

// Compress writes data as raw deflate blocks.
func (c DeflateCompressor) Compress(data []byte) ([]byte, error) {
	return compressWith(&flateWriterPool, "deflate", data)
}

// Decompress reads raw deflate blocks.
func (c DeflateCompressor) Decompress(data []byte) ([]byte, error) {
	return readAllAndClose(flate.NewReader(bytes.NewReader(data)), "deflate")
}

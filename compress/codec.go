package compress

import (
	"fmt"

	"github.com/arloliu/anvil/errs"
	"github.com/arloliu/anvil/format"
)

// Compressor compresses a complete payload in one call.
//
// The returned slice is owned by the caller. The input is not modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor of the same algorithm.
//
// Corrupt input or input produced by another algorithm yields an error.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions and reports which algorithm it implements.
type Codec interface {
	Compressor
	Decompressor
	Type() format.CompressionType
}

// CreateCodec returns a new Codec for compressionType.
//
// The external flag is ignored; a codec always handles the base algorithm.
// target names the caller's use in the error message.
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType.Base() {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionGzip:
		return NewGzipCompressor(), nil
	case format.CompressionZlib:
		return NewZlibCompressor(), nil
	case format.CompressionDeflate:
		return NewDeflateCompressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression %#x: %w", target, uint8(compressionType), errs.ErrUnknownCompression)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone:    NewNoOpCompressor(),
	format.CompressionGzip:    NewGzipCompressor(),
	format.CompressionZlib:    NewZlibCompressor(),
	format.CompressionDeflate: NewDeflateCompressor(),
	format.CompressionLZ4:     NewLZ4Compressor(),
	format.CompressionZstd:    NewZstdCompressor(),
	format.CompressionS2:      NewS2Compressor(),
}

// GetCodec returns the shared built-in Codec for compressionType.
// Built-in codecs are stateless and safe for concurrent use.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType.Base()]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("compression %#x: %w", uint8(compressionType), errs.ErrUnknownCompression)
}

// Package compress provides the payload codecs used for tag documents and
// region chunk slots.
//
// Every codec works on whole byte slices:
//
//	type Codec interface {
//	    Compress(data []byte) ([]byte, error)
//	    Decompress(data []byte) ([]byte, error)
//	    Type() format.CompressionType
//	}
//
// # Supported Algorithms
//
//	format.CompressionGzip     gzip streams (region type 1, common document wrapping)
//	format.CompressionZlib     zlib streams (region type 2, the usual chunk compression)
//	format.CompressionNone     stored as-is (region type 3)
//	format.CompressionLZ4      LZ4 block (region type 4)
//	format.CompressionZstd     Zstandard (region type 5, extension)
//	format.CompressionS2       S2 (region type 6, extension)
//	format.CompressionDeflate  raw deflate, documents only
//
// gzip, zlib, deflate, zstd and s2 come from github.com/klauspost/compress, LZ4
// from github.com/pierrec/lz4/v4. Building with cgo and the gozstd tag switches
// Zstandard to github.com/valyala/gozstd.
//
// # Detection
//
// Detect inspects the first bytes of a document and recognises gzip and zlib
// headers. Raw deflate has no header and cannot be detected; callers that use
// it must say so.
//
// # Thread Safety
//
// All codecs are stateless values backed by sync.Pool encoders and are safe for
// concurrent use.
package compress

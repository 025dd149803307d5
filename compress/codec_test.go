package compress

import (
	"bytes"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/anvil/errs"
	"github.com/arloliu/anvil/format"
)

func generateTestData(size int) []byte {
	pattern := []byte("minecraft:stone minecraft:dirt minecraft:air ")
	data := make([]byte, size)
	for i := range data {
		data[i] = pattern[i%len(pattern)]
	}

	return data
}

func generateNoise(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte((i*31 + i*i*7 + i*i*i*3) % 256)
	}

	return data
}

var allTypes = []format.CompressionType{
	format.CompressionNone,
	format.CompressionGzip,
	format.CompressionZlib,
	format.CompressionDeflate,
	format.CompressionLZ4,
	format.CompressionZstd,
	format.CompressionS2,
}

func TestCreateCodec_RoundTrip(t *testing.T) {
	for _, ct := range allTypes {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := CreateCodec(ct, "test")
			require.NoError(t, err)
			require.Equal(t, ct, codec.Type())

			for _, data := range [][]byte{generateTestData(10000), generateNoise(5000), {0x0a, 0x00, 0x00, 0x00}} {
				compressed, err := codec.Compress(data)
				require.NoError(t, err)

				decompressed, err := codec.Decompress(compressed)
				require.NoError(t, err)
				require.Equal(t, data, decompressed)
			}
		})
	}
}

func TestCreateCodec_ExternalFlagIgnored(t *testing.T) {
	codec, err := CreateCodec(format.CompressionZlib|format.ExternalFlag, "chunk")
	require.NoError(t, err)
	require.Equal(t, format.CompressionZlib, codec.Type())
}

func TestCreateCodec_Invalid(t *testing.T) {
	_, err := CreateCodec(format.CompressionType(0x42), "chunk")
	require.ErrorIs(t, err, errs.ErrUnknownCompression)
	require.ErrorIs(t, err, errs.ErrMalformed)
	require.Contains(t, err.Error(), "chunk")
}

func TestGetCodec(t *testing.T) {
	for _, ct := range allTypes {
		codec, err := GetCodec(ct)
		require.NoError(t, err)
		require.Equal(t, ct, codec.Type())
	}

	_, err := GetCodec(format.CompressionType(0))
	require.ErrorIs(t, err, errs.ErrUnknownCompression)
}

func TestCompression_ReducesRepetitiveData(t *testing.T) {
	data := generateTestData(64 * 1024)
	for _, ct := range []format.CompressionType{format.CompressionGzip, format.CompressionZlib, format.CompressionLZ4, format.CompressionZstd, format.CompressionS2} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		compressed, err := codec.Compress(data)
		require.NoError(t, err)
		require.Less(t, len(compressed), len(data)/4, ct.String())
	}
}

func TestEmptyPayloads(t *testing.T) {
	for _, ct := range []format.CompressionType{format.CompressionNone, format.CompressionGzip, format.CompressionZlib, format.CompressionDeflate, format.CompressionLZ4} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		compressed, err := codec.Compress(nil)
		require.NoError(t, err)

		out, err := codec.Decompress(compressed)
		require.NoError(t, err)
		require.Empty(t, out, ct.String())
	}
}

func TestDecompress_Corrupt(t *testing.T) {
	garbage := []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03}
	for _, ct := range []format.CompressionType{format.CompressionGzip, format.CompressionZlib, format.CompressionZstd, format.CompressionS2} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		_, err = codec.Decompress(garbage)
		require.Error(t, err, ct.String())
	}
}

func TestLZ4_Malformed(t *testing.T) {
	codec := NewLZ4Compressor()

	_, err := codec.Decompress([]byte{0x00, 0x01})
	require.ErrorIs(t, err, errs.ErrTruncated)

	_, err = codec.Decompress([]byte{0xff, 0xff, 0xff, 0xff, 0x00})
	require.ErrorIs(t, err, errs.ErrMalformed)
}

func TestLZ4_LiteralBlock(t *testing.T) {
	for _, size := range []int{1, 14, 15, 16, 269, 270, 5000} {
		data := generateNoise(size)
		block := appendLiteralBlock(nil, data)

		out := make([]byte, size)
		n, err := lz4.UncompressBlock(block, out)
		require.NoError(t, err, "size %d", size)
		require.Equal(t, size, n)
		require.Equal(t, data, out)
	}
}

func TestDetect(t *testing.T) {
	payload := generateTestData(512)

	gz, err := NewGzipCompressor().Compress(payload)
	require.NoError(t, err)
	require.Equal(t, format.CompressionGzip, Detect(gz))

	zl, err := NewZlibCompressor().Compress(payload)
	require.NoError(t, err)
	require.Equal(t, format.CompressionZlib, Detect(zl))

	// An uncompressed compound document starts with kind 10 and a name length.
	require.Equal(t, format.CompressionNone, Detect([]byte{0x0a, 0x00, 0x00, 0x00}))
	require.Equal(t, format.CompressionNone, Detect(nil))
	require.Equal(t, format.CompressionNone, Detect([]byte{0x1f}))
}

func BenchmarkZlibCompress(b *testing.B) {
	data := generateTestData(16 * 1024)
	codec := NewZlibCompressor()

	b.SetBytes(int64(len(data)))
	for b.Loop() {
		if _, err := codec.Compress(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkZlibDecompress(b *testing.B) {
	data := generateTestData(16 * 1024)
	codec := NewZlibCompressor()
	compressed, err := codec.Compress(data)
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(data)))
	for b.Loop() {
		out, err := codec.Decompress(compressed)
		if err != nil || !bytes.Equal(out, data) {
			b.Fatal("round trip failed")
		}
	}
}

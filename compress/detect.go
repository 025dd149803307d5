package compress

import "github.com/arloliu/anvil/format"

// Detect guesses the wrapping of a document from its leading bytes.
//
// gzip is recognised by its magic number and zlib by a valid CMF/FLG pair using
// the deflate method. Anything else is reported as format.CompressionNone, which
// includes raw deflate: it has no header to recognise.
func Detect(data []byte) format.CompressionType {
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		return format.CompressionGzip
	}
	if isZlibHeader(data) {
		return format.CompressionZlib
	}

	return format.CompressionNone
}

func isZlibHeader(data []byte) bool {
	if len(data) < 2 {
		return false
	}

	cmf, flg := data[0], data[1]
	if cmf&0x0f != 8 || cmf>>4 > 7 {
		return false
	}

	return (uint16(cmf)<<8|uint16(flg))%31 == 0
}

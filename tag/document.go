package tag

import (
	"fmt"
	"io"

	"github.com/arloliu/anvil/compress"
	"github.com/arloliu/anvil/format"
	"github.com/arloliu/anvil/internal/options"
)

// documentConfig controls how ReadDocument unwraps its input.
type documentConfig struct {
	compression format.CompressionType
	detect      bool
}

// DocumentOption configures ReadDocument.
type DocumentOption = options.Option[*documentConfig]

// WithDocumentCompression states the wrapping instead of detecting it.
// It is required for raw deflate, which has no recognisable header.
func WithDocumentCompression(ct format.CompressionType) DocumentOption {
	return options.New(func(cfg *documentConfig) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return err
		}
		cfg.compression = ct
		cfg.detect = false

		return nil
	})
}

// WriteDocument writes root under name, wrapped in the stream compression ct.
// Use format.CompressionNone for a bare document.
func (c *Codec) WriteDocument(w io.Writer, name string, root Tag, ct format.CompressionType) error {
	codec, err := compress.CreateCodec(ct, "document")
	if err != nil {
		return err
	}

	raw, err := c.Marshal(name, root)
	if err != nil {
		return err
	}
	packed, err := codec.Compress(raw)
	if err != nil {
		return fmt.Errorf("tag: document: %w", err)
	}
	if _, err := w.Write(packed); err != nil {
		return fmt.Errorf("tag: document: %w", err)
	}

	return nil
}

// ReadDocument reads a whole document from r.
//
// By default gzip and zlib wrappings are detected from the leading bytes and
// anything else is decoded as uncompressed. Data that looks wrapped but fails
// to unwrap is retried as uncompressed. The root must span the decompressed
// data exactly.
func (c *Codec) ReadDocument(r io.Reader, opts ...DocumentOption) (string, Tag, format.CompressionType, error) {
	cfg := &documentConfig{detect: true}
	if err := options.Apply(cfg, opts...); err != nil {
		return "", nil, 0, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, 0, fmt.Errorf("tag: document: %w", err)
	}

	ct := cfg.compression
	if cfg.detect {
		ct = compress.Detect(data)
	}

	name, t, err := c.unwrapDocument(data, ct)
	if err != nil && cfg.detect && ct != format.CompressionNone {
		// an uncompressed root can start with bytes that look like a header
		if name, t, plainErr := c.unwrapDocument(data, format.CompressionNone); plainErr == nil {
			return name, t, format.CompressionNone, nil
		}
	}
	if err != nil {
		return "", nil, ct, err
	}

	return name, t, ct, nil
}

func (c *Codec) unwrapDocument(data []byte, ct format.CompressionType) (string, Tag, error) {
	codec, err := compress.GetCodec(ct)
	if err != nil {
		return "", nil, err
	}
	raw, err := codec.Decompress(data)
	if err != nil {
		return "", nil, fmt.Errorf("tag: document: %w", err)
	}

	return c.Unmarshal(raw)
}

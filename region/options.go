package region

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/arloliu/anvil/compress"
	"github.com/arloliu/anvil/errs"
	"github.com/arloliu/anvil/format"
	"github.com/arloliu/anvil/internal/options"
	"github.com/arloliu/anvil/tag"
)

// Option configures a Region created by New, Read, Decode or Open.
type Option = options.Option[*Region]

// WithCodec sets the tag codec used for chunk payloads. Use it to decode
// chunks containing custom kinds.
func WithCodec(codec *tag.Codec) Option {
	return options.New(func(r *Region) error {
		if codec == nil {
			return fmt.Errorf("nil codec: %w", errs.ErrInvalidOption)
		}
		r.codec = codec

		return nil
	})
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(r *Region) {
		if logger != nil {
			r.logger = logger
		}
	})
}

// WithClock sets the time source used for chunk timestamps.
func WithClock(now func() time.Time) Option {
	return options.New(func(r *Region) error {
		if now == nil {
			return fmt.Errorf("nil clock: %w", errs.ErrInvalidOption)
		}
		r.now = now

		return nil
	})
}

// WithCompression sets the compression applied to chunks stored by Set.
// The default is zlib.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(r *Region) error {
		if err := checkSlotCompression(ct); err != nil {
			return err
		}
		r.compression = ct

		return nil
	})
}

// WithExternalStore sets where oversized chunks are kept. Without a store,
// writing such a chunk fails with errs.ErrChunkTooLarge and reading a chunk
// marked external fails.
func WithExternalStore(store ExternalStore) Option {
	return options.NoError(func(r *Region) {
		r.store = store
	})
}

// WithPosition sets the region coordinates of data passed to Read or Decode.
// They are needed to name the companion files of external chunks.
func WithPosition(rx, rz int) Option {
	return options.NoError(func(r *Region) {
		r.x, r.z = rx, rz
	})
}

func checkSlotCompression(ct format.CompressionType) error {
	if ct.IsExternal() || !ct.IsRegionType() {
		return fmt.Errorf("compression %s cannot be used for a chunk: %w", ct, errs.ErrInvalidOption)
	}
	if _, err := compress.GetCodec(ct); err != nil {
		return err
	}

	return nil
}

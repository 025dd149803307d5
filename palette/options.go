package palette

import (
	"fmt"

	"github.com/arloliu/anvil/errs"
	"github.com/arloliu/anvil/internal/options"
	"github.com/arloliu/anvil/tag"
)

// Preset sizes and width floors for chunk sections.
const (
	BlockVolume  = 4096
	BiomeVolume  = 64
	BlockMinBits = 4
	BiomeMinBits = 1
)

// Default compound field names.
const (
	DefaultPaletteKey = "palette"
	DefaultDataKey    = "data"
)

const maxBits = 32

// Option configures a Container.
type Option = options.Option[*Container]

// WithLayout sets the packing layout. The default is LayoutPadded.
func WithLayout(layout Layout) Option {
	return options.New(func(c *Container) error {
		if !layout.valid() {
			return fmt.Errorf("layout %s: %w", layout, errs.ErrInvalidOption)
		}
		c.layout = layout
		c.packer = layout.Packer()

		return nil
	})
}

// WithMinBits sets the smallest index width. The default is BlockMinBits.
func WithMinBits(bits int) Option {
	return options.New(func(c *Container) error {
		if bits < 1 || bits > maxBits {
			return fmt.Errorf("min bits %d not in [1, %d]: %w", bits, maxBits, errs.ErrInvalidOption)
		}
		c.minBits = bits

		return nil
	})
}

// WithKeys sets the compound field names used by FromCompound and
// WriteCompound.
func WithKeys(paletteKey, dataKey string) Option {
	return options.New(func(c *Container) error {
		if paletteKey == "" || dataKey == "" || paletteKey == dataKey {
			return fmt.Errorf("keys %q and %q: %w", paletteKey, dataKey, errs.ErrInvalidOption)
		}
		c.paletteKey, c.dataKey = paletteKey, dataKey

		return nil
	})
}

// WithCodec sets the codec used to hash palette values.
func WithCodec(codec *tag.Codec) Option {
	return options.New(func(c *Container) error {
		if codec == nil {
			return fmt.Errorf("nil codec: %w", errs.ErrInvalidOption)
		}
		c.codec = codec

		return nil
	})
}

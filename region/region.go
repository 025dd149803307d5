package region

import (
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/arloliu/anvil/errs"
	"github.com/arloliu/anvil/format"
	"github.com/arloliu/anvil/internal/options"
	"github.com/arloliu/anvil/tag"
)

// Index returns the slot index of chunk (x, z). Absolute chunk coordinates
// are accepted; only the low five bits of each are used.
func Index(x, z int) int {
	return (z&(Width-1))<<5 | (x & (Width - 1))
}

type slot struct {
	root        *tag.Compound
	timestamp   uint32
	compression format.CompressionType
	// external records that the chunk was stored in a companion file when
	// last read or written.
	external bool
	// stale marks a companion file the last serialization no longer
	// referenced.
	stale bool
}

// Region is an in-memory region: 1024 chunk slots with their timestamps and
// compression types. The zero value is not usable; create one with New, Read,
// Decode or Open.
type Region struct {
	x, z        int
	slots       [SlotCount]slot
	codec       *tag.Codec
	logger      *slog.Logger
	now         func() time.Time
	compression format.CompressionType
	store       ExternalStore
}

// New returns an empty region at region coordinates (rx, rz).
func New(rx, rz int, opts ...Option) (*Region, error) {
	r := newRegion()
	r.x, r.z = rx, rz
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	return r, nil
}

func newRegion() *Region {
	codec, _ := tag.NewCodec()

	return &Region{
		codec:       codec,
		logger:      slog.New(slog.DiscardHandler),
		now:         time.Now,
		compression: format.CompressionZlib,
	}
}

// X returns the region x coordinate.
func (r *Region) X() int { return r.x }

// Z returns the region z coordinate.
func (r *Region) Z() int { return r.z }

// Get returns the chunk at (x, z), or nil when the slot is empty.
func (r *Region) Get(x, z int) *tag.Compound {
	return r.slots[Index(x, z)].root
}

// Has reports whether the slot at (x, z) holds a chunk.
func (r *Region) Has(x, z int) bool {
	return r.slots[Index(x, z)].root != nil
}

// Set stores c at (x, z), replacing any previous chunk, and stamps the slot
// with the current time. The slot keeps its compression type if it already
// had one, otherwise it takes the region default.
//
// The region keeps a reference to c; it is encoded when the region is written.
func (r *Region) Set(x, z int, c *tag.Compound) error {
	if c == nil {
		return fmt.Errorf("chunk (%d, %d): %w", x, z, errs.ErrNilTag)
	}

	s := &r.slots[Index(x, z)]
	if s.root == nil {
		s.compression = r.compression
	}
	s.root = c
	s.timestamp = uint32(r.now().Unix()) //nolint:gosec

	return nil
}

// Clear empties the slot at (x, z). Clearing an empty slot is a no-op.
func (r *Region) Clear(x, z int) {
	s := &r.slots[Index(x, z)]
	*s = slot{external: s.external, stale: s.stale}
}

// Timestamp returns the last modification time of the slot at (x, z) in unix
// seconds, or 0 for a slot that was never written.
func (r *Region) Timestamp(x, z int) uint32 {
	return r.slots[Index(x, z)].timestamp
}

// SetTimestamp overrides the timestamp of the slot at (x, z).
func (r *Region) SetTimestamp(x, z int, ts uint32) {
	r.slots[Index(x, z)].timestamp = ts
}

// Compression returns the compression type of the slot at (x, z). Empty
// slots report the region default.
func (r *Region) Compression(x, z int) format.CompressionType {
	s := &r.slots[Index(x, z)]
	if s.root == nil {
		return r.compression
	}

	return s.compression
}

// SetCompression changes the compression used when the chunk at (x, z) is
// next written. The slot must be occupied.
func (r *Region) SetCompression(x, z int, ct format.CompressionType) error {
	if err := checkSlotCompression(ct); err != nil {
		return err
	}

	s := &r.slots[Index(x, z)]
	if s.root == nil {
		return fmt.Errorf("chunk (%d, %d) is empty: %w", x, z, errs.ErrIndexOutOfRange)
	}
	s.compression = ct

	return nil
}

// Occupied yields the local (x, z) coordinates and chunk of every occupied
// slot in slot order.
func (r *Region) Occupied() iter.Seq2[[2]int, *tag.Compound] {
	return func(yield func([2]int, *tag.Compound) bool) {
		for i := range r.slots {
			if r.slots[i].root == nil {
				continue
			}
			if !yield([2]int{i & (Width - 1), i >> 5}, r.slots[i].root) {
				return
			}
		}
	}
}

// Count returns the number of occupied slots.
func (r *Region) Count() int {
	n := 0
	for i := range r.slots {
		if r.slots[i].root != nil {
			n++
		}
	}

	return n
}

// chunkCoords returns the absolute chunk coordinates of slot i.
func (r *Region) chunkCoords(i int) (int, int) {
	return r.x*Width + i&(Width-1), r.z*Width + i>>5
}

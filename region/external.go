package region

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ExternalStore keeps chunks too large to fit inline in a region file.
// Chunks are addressed by absolute chunk coordinates. Data is the compressed
// payload; the compression type stays in the region file.
type ExternalStore interface {
	ReadExternal(cx, cz int) ([]byte, error)
	WriteExternal(cx, cz int, data []byte) error
	// RemoveExternal deletes the companion file, if any. Removing a missing
	// entry is not an error.
	RemoveExternal(cx, cz int) error
}

// DirStore stores companion files named c.<cx>.<cz>.mcc in a directory,
// normally the one holding the region file.
type DirStore string

var _ ExternalStore = DirStore("")

// ExternalFileName returns the companion file name of chunk (cx, cz).
func ExternalFileName(cx, cz int) string {
	return fmt.Sprintf("c.%d.%d.mcc", cx, cz)
}

func (d DirStore) path(cx, cz int) string {
	return filepath.Join(string(d), ExternalFileName(cx, cz))
}

func (d DirStore) ReadExternal(cx, cz int) ([]byte, error) {
	return os.ReadFile(d.path(cx, cz))
}

func (d DirStore) WriteExternal(cx, cz int, data []byte) error {
	return os.WriteFile(d.path(cx, cz), data, 0o644) //nolint:gosec
}

func (d DirStore) RemoveExternal(cx, cz int) error {
	err := os.Remove(d.path(cx, cz))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

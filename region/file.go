package region

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arloliu/anvil/errs"
)

// FileName returns the conventional file name of region (rx, rz).
func FileName(rx, rz int) string {
	return fmt.Sprintf("r.%d.%d.mca", rx, rz)
}

// ParseFileName extracts the region coordinates from a name of the form
// r.<rx>.<rz>.mca. Any directory part is ignored.
func ParseFileName(name string) (int, int, bool) {
	parts := strings.Split(filepath.Base(name), ".")
	if len(parts) != 4 || parts[0] != "r" || parts[3] != "mca" {
		return 0, 0, false
	}

	rx, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	rz, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, false
	}

	return rx, rz, true
}

// Open reads the region file at path. The region coordinates come from the
// file name and external chunks are looked up next to the file, unless opts
// say otherwise.
func Open(path string, opts ...Option) (*Region, error) {
	rx, rz, ok := ParseFileName(path)
	if !ok {
		return nil, fmt.Errorf("region: %q is not named r.<x>.<z>.mca: %w", path, errs.ErrInvalidOption)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	defaults := []Option{WithPosition(rx, rz), WithExternalStore(DirStore(filepath.Dir(path)))}

	r, err := Read(f, info.Size(), append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return r, nil
}

// WriteFile writes r to path through a temporary file in the same directory,
// renamed over path once fully written. Companion files the new file no
// longer references are removed after the rename.
func WriteFile(path string, r *Region) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if _, err = r.WriteTo(f); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}

	if err = os.Rename(f.Name(), path); err != nil {
		return err
	}

	return r.PruneExternal()
}

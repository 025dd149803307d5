package region

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// WalkFunc is called once per region file visited by Walk.
type WalkFunc func(ctx context.Context, path string, r *Region) error

// Walk opens every r.<x>.<z>.mca file directly inside dir and calls fn with
// it. At most limit files are processed at once; limit <= 0 means no limit.
// The first error cancels the remaining files and is returned.
//
// fn runs on several goroutines. Regions are independent, but any shared
// tag.Registry must be fully configured before Walk starts.
func Walk(ctx context.Context, dir string, limit int, fn WalkFunc, opts ...Option) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, _, ok := ParseFileName(e.Name()); !ok {
			continue
		}
		if gctx.Err() != nil {
			break
		}

		path := filepath.Join(dir, e.Name())
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			r, err := Open(path, opts...)
			if err != nil {
				return err
			}

			return fn(gctx, path, r)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}

package holidays

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxConcurrency bounds parallel file reads.
const maxConcurrency = 20

// DirSource reads every *.json table in a directory.
type DirSource struct {
	dir string
}

// NewDirSource creates a source for dir. The directory must exist.
func NewDirSource(dir string) (*DirSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open holiday directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("holiday path %s is not a directory", dir)
	}
	return &DirSource{dir: dir}, nil
}

// Tables implements Source.
func (s *DirSource) Tables(ctx context.Context) ([]Table, error) {
	return readFS(ctx, os.DirFS(s.dir))
}

// readFS decodes the top-level *.json files of fsys in parallel.
// Results keep directory order.
func readFS(ctx context.Context, fsys fs.FS) ([]Table, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}

	tables := make([]Table, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := fsys.Open(name)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", name, err)
			}
			defer f.Close()

			t, err := decodeTable(name, f)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return tables, nil
}

package holidays

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
)

//go:embed tables/*.json
var embeddedTables embed.FS

// EmbeddedSource serves the tables compiled into the binary.
type EmbeddedSource struct{}

// Tables implements Source.
func (EmbeddedSource) Tables(ctx context.Context) ([]Table, error) {
	sub, err := fs.Sub(embeddedTables, "tables")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded tables: %w", err)
	}
	return readFS(ctx, sub)
}

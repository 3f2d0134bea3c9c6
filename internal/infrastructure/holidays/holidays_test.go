package holidays

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/fiscal/internal/calendar"
	"github.com/rezkam/fiscal/internal/domain"
)

type stubSource struct {
	tables []Table
	err    error
}

func (s stubSource) Tables(context.Context) ([]Table, error) {
	return s.tables, s.err
}

func writeTable(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestEmbeddedSource(t *testing.T) {
	tables, err := EmbeddedSource{}.Tables(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, tables)
	assert.Equal(t, "BR", tables[0].Jurisdiction)
	assert.Contains(t, tables[0].Dates, "2027-03-26")
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("built-in only", func(t *testing.T) {
		cal, err := Load(ctx, calendar.Brazil)
		require.NoError(t, err)
		assert.Equal(t, 2026, cal.Horizon())
		assert.True(t, cal.IsHoliday(domain.NewDate(2025, time.November, 20)))
	})

	t.Run("embedded extends horizon", func(t *testing.T) {
		cal, err := Load(ctx, calendar.Brazil, EmbeddedSource{})
		require.NoError(t, err)
		assert.Equal(t, 2027, cal.Horizon())
		assert.True(t, cal.IsHoliday(domain.NewDate(2027, time.February, 9)))
	})

	t.Run("other jurisdictions ignored", func(t *testing.T) {
		src := stubSource{tables: []Table{
			{Jurisdiction: "PT", Dates: []string{"2030-06-10"}},
			{Jurisdiction: "br", Dates: []string{"2030-01-01"}},
		}}
		cal, err := Load(ctx, calendar.Brazil, src)
		require.NoError(t, err)
		assert.False(t, cal.IsHoliday(domain.NewDate(2030, time.June, 10)))
		assert.True(t, cal.IsHoliday(domain.NewDate(2030, time.January, 1)))
	})

	t.Run("invalid date", func(t *testing.T) {
		src := stubSource{tables: []Table{{Jurisdiction: "BR", Dates: []string{"2030-13-01"}}}}
		_, err := Load(ctx, calendar.Brazil, src)
		assert.ErrorIs(t, err, domain.ErrInvalidDate)
	})

	t.Run("source error", func(t *testing.T) {
		boom := errors.New("bucket unavailable")
		_, err := Load(ctx, calendar.Brazil, stubSource{err: boom})
		assert.ErrorIs(t, err, boom)
	})
}

func TestDirSource(t *testing.T) {
	ctx := context.Background()

	t.Run("reads json files", func(t *testing.T) {
		dir := t.TempDir()
		writeTable(t, dir, "br-2028.json", `{"jurisdiction":"BR","dates":["2028-01-01","2028-12-25"]}`)
		writeTable(t, dir, "notes.txt", `not a table`)
		require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))

		src, err := NewDirSource(dir)
		require.NoError(t, err)

		tables, err := src.Tables(ctx)
		require.NoError(t, err)
		require.Len(t, tables, 1)
		assert.Equal(t, []string{"2028-01-01", "2028-12-25"}, tables[0].Dates)

		cal, err := Load(ctx, calendar.Brazil, src)
		require.NoError(t, err)
		assert.Equal(t, 2028, cal.Horizon())
	})

	t.Run("malformed table", func(t *testing.T) {
		dir := t.TempDir()
		writeTable(t, dir, "broken.json", `{"jurisdiction":`)

		src, err := NewDirSource(dir)
		require.NoError(t, err)
		_, err = src.Tables(ctx)
		assert.ErrorContains(t, err, "broken.json")
	})

	t.Run("missing jurisdiction", func(t *testing.T) {
		dir := t.TempDir()
		writeTable(t, dir, "anon.json", `{"dates":["2028-01-01"]}`)

		src, err := NewDirSource(dir)
		require.NoError(t, err)
		_, err = src.Tables(ctx)
		assert.ErrorContains(t, err, "jurisdiction is required")
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := NewDirSource(filepath.Join(t.TempDir(), "absent"))
		assert.Error(t, err)
	})

	t.Run("file instead of directory", func(t *testing.T) {
		dir := t.TempDir()
		writeTable(t, dir, "table.json", `{}`)
		_, err := NewDirSource(filepath.Join(dir, "table.json"))
		assert.ErrorContains(t, err, "not a directory")
	})
}

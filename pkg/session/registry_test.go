package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(filepath.Join(t.TempDir(), "sessions"))
}

func TestRegistryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	id := uuid.NewString()

	_, err := r.Find(ctx, id)
	require.True(t, errors.Is(err, ErrNotFound))

	rec, err := r.Create(ctx, id, testNow, "/tmp/t.jsonl")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14-session-"+id+".tmp", filepath.Base(rec.Path))
	assert.True(t, rec.Name.IsDefaultSlug())

	content, err := r.Read(rec)
	require.NoError(t, err)
	assert.Contains(t, content, PlaceholderTitle)
	assert.True(t, IsTemplate(content))

	found, err := r.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rec.Path, found.Path)

	_, err = r.Create(ctx, id, testNow, "")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestRegistryFindAfterRename(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	id := uuid.NewString()

	rec, err := r.Create(ctx, id, testNow, "")
	require.NoError(t, err)

	renamed, ok := r.Rename(rec, "Fix the flaky-upload test")
	require.True(t, ok)
	assert.Equal(t, "fix-the-flaky-upload-test", renamed.Name.Slug)
	assert.Equal(t, id, renamed.ID())
	assert.Equal(t, rec.Name.Date, renamed.Name.Date)

	_, err = os.Stat(rec.Path)
	assert.True(t, os.IsNotExist(err))

	found, err := r.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, renamed.Path, found.Path)
	assert.Equal(t, "fix-the-flaky-upload-test", found.Name.Slug)
}

func TestRegistryFindIgnoresNoise(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	id := uuid.NewString()
	require.NoError(t, os.MkdirAll(r.Dir(), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), "notes.md"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), "2025-01-01-session-bogus.tmp"), []byte("x"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(r.Dir(), "config"), 0o750))

	_, err := r.Create(ctx, id, testNow, "")
	require.NoError(t, err)

	_, err = r.Find(ctx, id)
	assert.NoError(t, err)

	_, err = r.Find(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryFindMissingDir(t *testing.T) {
	r := NewRegistry(filepath.Join(t.TempDir(), "absent"))
	_, err := r.Find(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryRenameNoOps(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	rec, err := r.Create(ctx, uuid.NewString(), testNow, "")
	require.NoError(t, err)

	tests := []struct {
		name  string
		title string
	}{
		{"placeholder", "[Set title once task is clear]"},
		{"punctuation only", "?!.,;"},
		{"same slug", "Session"},
		{"empty", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Rename(rec, tt.title)
			assert.False(t, ok)
			assert.Equal(t, rec, got)
			_, err := os.Stat(rec.Path)
			assert.NoError(t, err)
		})
	}
}

func TestRegistryRenameTargetExists(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	id := uuid.NewString()
	rec, err := r.Create(ctx, id, testNow, "")
	require.NoError(t, err)

	blocker := filepath.Join(r.Dir(), Name{Date: rec.Name.Date, Slug: "taken", ID: id}.Encode())
	require.NoError(t, os.WriteFile(blocker, []byte("other"), 0o600))

	got, ok := r.Rename(rec, "Taken")
	assert.False(t, ok)
	assert.Equal(t, rec.Path, got.Path)

	b, err := os.ReadFile(blocker)
	require.NoError(t, err)
	assert.Equal(t, "other", string(b))
}

func TestRegistryRenameMissingSource(t *testing.T) {
	r := newTestRegistry(t)
	rec := Record{
		Name: Name{Date: "2025-03-14", Slug: DefaultSlug, ID: uuid.NewString()},
	}
	rec.Path = filepath.Join(r.Dir(), rec.Name.Encode())

	got, ok := r.Rename(rec, "Something real")
	assert.False(t, ok)
	assert.Equal(t, rec, got)
}

func TestRegistryAppend(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	rec, err := r.Create(ctx, uuid.NewString(), testNow, "")
	require.NoError(t, err)

	assert.True(t, r.Append(rec, LogLine("10:00", "More work")))
	content, err := r.Read(rec)
	require.NoError(t, err)
	assert.Contains(t, content, "- **10:00** More work\n")
	assert.False(t, IsTemplate(content))
}

func TestRegistryAppendNeverCreates(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, os.MkdirAll(r.Dir(), 0o750))
	rec := Record{Name: Name{Date: "2025-03-14", Slug: DefaultSlug, ID: uuid.NewString()}}
	rec.Path = filepath.Join(r.Dir(), rec.Name.Encode())

	assert.False(t, r.Append(rec, "text"))
	_, err := os.Stat(rec.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestRegistryDelete(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	rec, err := r.Create(ctx, uuid.NewString(), testNow, "")
	require.NoError(t, err)

	assert.True(t, r.Delete(rec))
	assert.False(t, r.Delete(rec), "second delete reports failure")
}

func TestRegistryList(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)

	now := time.Now()
	timeNow = func() time.Time { return now }
	defer func() { timeNow = time.Now }()

	mk := func(age time.Duration, used bool) Record {
		rec, err := r.Create(ctx, uuid.NewString(), now.Add(-age), "")
		require.NoError(t, err)
		if used {
			require.True(t, r.Append(rec, LogLine("10:00", "real work")))
		}
		mtime := now.Add(-age)
		require.NoError(t, os.Chtimes(rec.Path, mtime, mtime))
		return rec
	}

	newest := mk(1*time.Hour, true)
	middle := mk(2*24*time.Hour, true)
	template := mk(3*time.Hour, false)
	old := mk(30*24*time.Hour, true)

	t.Run("all newest first", func(t *testing.T) {
		got := r.List(ctx, ListOptions{})
		require.Len(t, got, 4)
		assert.Equal(t, newest.ID(), got[0].ID())
		assert.Equal(t, template.ID(), got[1].ID())
		assert.Equal(t, middle.ID(), got[2].ID())
		assert.Equal(t, old.ID(), got[3].ID())
	})

	t.Run("recency window", func(t *testing.T) {
		got := r.List(ctx, ListOptions{ModifiedWithin: 7 * 24 * time.Hour})
		assert.Len(t, got, 3)
	})

	t.Run("exclude templates and identity", func(t *testing.T) {
		got := r.List(ctx, ListOptions{
			ModifiedWithin:   7 * 24 * time.Hour,
			ExcludeID:        newest.ID(),
			ExcludeTemplates: true,
		})
		require.Len(t, got, 1)
		assert.Equal(t, middle.ID(), got[0].ID())
	})

	t.Run("limit", func(t *testing.T) {
		got := r.List(ctx, ListOptions{Limit: 2})
		require.Len(t, got, 2)
		assert.Equal(t, newest.ID(), got[0].ID())
	})
}

func TestRegistryListMissingDir(t *testing.T) {
	r := NewRegistry(filepath.Join(t.TempDir(), "nope"))
	assert.Empty(t, r.List(context.Background(), ListOptions{ExcludeTemplates: true}))
}

// Package session implements the session record registry: one markdown file
// per conversation, named <date>-<slug>-<uuid>.tmp, found by its UUID even
// after the slug has been renamed.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

var (
	ErrNotFound      = errors.New("session: record not found")
	ErrAlreadyExists = errors.New("session: record already exists")
	ErrTargetExists  = errors.New("session: rename target already exists")
)

// Record is a session file on disk.
type Record struct {
	Name    Name
	Path    string
	ModTime time.Time
	Size    int64
}

// ID returns the record's immutable identity.
func (r Record) ID() string { return r.Name.ID }

// Registry reads and writes session records in a single directory.
// A Registry holds no state beyond its configuration; every call goes to disk.
type Registry struct {
	dir           string
	slugMaxLength int
}

// Option configures a Registry.
type Option func(*Registry)

// WithSlugMaxLength overrides DefaultSlugMaxLength.
func WithSlugMaxLength(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.slugMaxLength = n
		}
	}
}

// NewRegistry returns a registry over dir. The directory is not created;
// missing directories read as empty.
func NewRegistry(dir string, opts ...Option) *Registry {
	r := &Registry{dir: dir, slugMaxLength: DefaultSlugMaxLength}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the directory the registry manages.
func (r *Registry) Dir() string { return r.dir }

// Find returns the record whose filename carries id, whatever its current
// slug. It returns ErrNotFound when no entry matches.
func (r *Registry) Find(_ context.Context, id string) (Record, error) {
	if !ValidID(id) {
		return Record{}, fmt.Errorf("session: invalid id %q: %w", id, ErrNotFound)
	}
	records, err := r.scan()
	if err != nil {
		return Record{}, ErrNotFound
	}
	for _, rec := range records {
		if sameID(rec.Name.ID, id) {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

// ListOptions filters List results. Zero values disable each filter.
type ListOptions struct {
	ModifiedWithin   time.Duration // keep records modified no longer ago than this
	ExcludeID        string        // drop the record with this identity
	ExcludeTemplates bool          // drop records IsTemplate classifies as unused
	Limit            int           // cap the result count
}

// List returns records newest first. An absent or unreadable directory
// yields an empty slice.
func (r *Registry) List(_ context.Context, opts ListOptions) []Record {
	records, err := r.scan()
	if err != nil {
		return nil
	}

	cutoff := time.Time{}
	if opts.ModifiedWithin > 0 {
		cutoff = timeNow().Add(-opts.ModifiedWithin)
	}

	var out []Record
	for _, rec := range records {
		if opts.ExcludeID != "" && sameID(rec.Name.ID, opts.ExcludeID) {
			continue
		}
		if !cutoff.IsZero() && rec.ModTime.Before(cutoff) {
			continue
		}
		if opts.ExcludeTemplates {
			content, err := r.Read(rec)
			if err != nil || IsTemplate(content) {
				continue
			}
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ModTime.After(out[j].ModTime)
	})

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// Create writes a new template record for id. It returns ErrAlreadyExists
// when a record with that identity is already present under any slug.
func (r *Registry) Create(ctx context.Context, id string, now time.Time, transcript string) (Record, error) {
	if !ValidID(id) {
		return Record{}, fmt.Errorf("session: invalid id %q", id)
	}
	if _, err := r.Find(ctx, id); err == nil {
		return Record{}, ErrAlreadyExists
	}
	if err := os.MkdirAll(r.dir, 0o750); err != nil {
		return Record{}, fmt.Errorf("session: init directory %s: %w", r.dir, err)
	}

	name := Name{Date: now.Format(DateLayout), Slug: DefaultSlug, ID: id}
	path := filepath.Join(r.dir, name.Encode())
	content := NewTemplate(id, name.Date, now.Format(TimeLayout), transcript)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, os.ErrExist) {
		return Record{}, ErrAlreadyExists
	}
	if err != nil {
		return Record{}, fmt.Errorf("session: create %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		_ = os.Remove(path)
		return Record{}, fmt.Errorf("session: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return Record{}, fmt.Errorf("session: close %s: %w", path, err)
	}

	return r.stat(name, path), nil
}

// Read returns a record's content.
func (r *Registry) Read(rec Record) (string, error) {
	b, err := os.ReadFile(rec.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session: read %s: %w", rec.Path, err)
	}
	return string(b), nil
}

// Rename moves rec to the slug derived from title, keeping its date and
// identity. It reports false, with rec unchanged, when the title is a
// placeholder, the slug is empty or unchanged, or the rename fails.
func (r *Registry) Rename(rec Record, title string) (Record, bool) {
	if IsPlaceholderTitle(title) {
		return rec, false
	}
	slug := Slugify(title, r.slugMaxLength)
	if slug == "" || slug == rec.Name.Slug {
		return rec, false
	}

	next := Name{Date: rec.Name.Date, Slug: slug, ID: rec.Name.ID}
	target := filepath.Join(filepath.Dir(rec.Path), next.Encode())

	if err := renameNoReplace(rec.Path, target); err != nil {
		slog.Debug("session: rename skipped", "from", rec.Path, "to", target, "err", err)
		return rec, false
	}

	out := rec
	out.Name = next
	out.Path = target
	return out, true
}

// renameNoReplace refuses to clobber an existing target. The existence check
// and the rename are not atomic together; a concurrent creator of the same
// target would be overwritten, which single-writer records never hit.
func renameNoReplace(from, to string) error {
	if _, err := os.Lstat(to); err == nil {
		return ErrTargetExists
	}
	return os.Rename(from, to)
}

// Delete removes the record's file.
func (r *Registry) Delete(rec Record) bool {
	if err := os.Remove(rec.Path); err != nil {
		slog.Debug("session: delete failed", "path", rec.Path, "err", err)
		return false
	}
	return true
}

// Append adds text to the end of an existing record. It never creates the
// file: a missing record reports false so callers can detect it.
func (r *Registry) Append(rec Record, text string) bool {
	f, err := os.OpenFile(rec.Path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		slog.Debug("session: append target unavailable", "path", rec.Path, "err", err)
		return false
	}
	_, werr := f.WriteString(text)
	cerr := f.Close()
	return werr == nil && cerr == nil
}

// scan decodes every record filename in the directory. Entries that are not
// records are skipped.
func (r *Registry) scan() ([]Record, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("session: list %s: %w", r.dir, err)
	}
	var out []Record
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, err := Decode(e.Name())
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			slog.Debug("session: skipping unreadable record", "name", e.Name(), "err", err)
			continue
		}
		out = append(out, Record{
			Name:    name,
			Path:    filepath.Join(r.dir, e.Name()),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	return out, nil
}

func (r *Registry) stat(name Name, path string) Record {
	rec := Record{Name: name, Path: path}
	if info, err := os.Stat(path); err == nil {
		rec.ModTime = info.ModTime()
		rec.Size = info.Size()
	}
	return rec
}

var timeNow = time.Now // injected for testability

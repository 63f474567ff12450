package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/entrhq/sessionkeeper/pkg/workspace"
)

const (
	// DefaultSlug is the title slug every record starts with.
	DefaultSlug = "session"

	// DateLayout is the layout of the leading date segment.
	DateLayout = "2006-01-02"

	dateLen = len(DateLayout)
	uuidLen = 36
)

// ErrInvalidName is returned by Decode for filenames that are not session
// records.
var ErrInvalidName = errors.New("session: invalid record filename")

// Name is the identity-plus-display pair encoded in a record filename:
// <date>-<slug>-<uuid>.tmp. The slug may contain hyphens; decoding anchors
// on the fixed-width date prefix and UUID suffix instead of splitting.
type Name struct {
	Date string // creation date, YYYY-MM-DD
	Slug string // mutable human-readable part
	ID   string // canonical 8-4-4-4-12 UUID, immutable
}

// Encode renders the filename for n.
func (n Name) Encode() string {
	return n.Date + "-" + n.Slug + "-" + n.ID + workspace.SessionFileExt
}

// IsDefaultSlug reports whether the record still carries the placeholder slug.
func (n Name) IsDefaultSlug() bool {
	return n.Slug == DefaultSlug
}

// Decode parses a record filename. It never splits on hyphens: the date is
// the first ten bytes, the UUID the last thirty-six, the slug whatever lies
// between their separators.
func Decode(filename string) (Name, error) {
	if !strings.HasSuffix(filename, workspace.SessionFileExt) {
		return Name{}, fmt.Errorf("%w: %q lacks %s extension", ErrInvalidName, filename, workspace.SessionFileExt)
	}
	base := strings.TrimSuffix(filename, workspace.SessionFileExt)

	// date + '-' + slug(>=1) + '-' + uuid
	if len(base) < dateLen+1+1+1+uuidLen {
		return Name{}, fmt.Errorf("%w: %q too short", ErrInvalidName, filename)
	}

	date := base[:dateLen]
	if _, err := time.Parse(DateLayout, date); err != nil {
		return Name{}, fmt.Errorf("%w: %q has bad date: %v", ErrInvalidName, filename, err)
	}
	if base[dateLen] != '-' {
		return Name{}, fmt.Errorf("%w: %q missing separator after date", ErrInvalidName, filename)
	}

	idStart := len(base) - uuidLen
	id := base[idStart:]
	if _, err := uuid.Parse(id); err != nil {
		return Name{}, fmt.Errorf("%w: %q has bad uuid: %v", ErrInvalidName, filename, err)
	}
	if base[idStart-1] != '-' {
		return Name{}, fmt.Errorf("%w: %q missing separator before uuid", ErrInvalidName, filename)
	}

	slug := base[dateLen+1 : idStart-1]
	if slug == "" {
		return Name{}, fmt.Errorf("%w: %q has empty slug", ErrInvalidName, filename)
	}

	return Name{Date: date, Slug: slug, ID: id}, nil
}

// ValidID reports whether id is a canonical hyphenated UUID.
func ValidID(id string) bool {
	if len(id) != uuidLen {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// sameID compares two canonical UUID strings, ignoring hex case.
func sameID(a, b string) bool {
	return strings.EqualFold(a, b)
}

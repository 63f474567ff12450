// Package counter persists per-session tool-call counters and decides when a
// checkpoint milestone has been crossed.
//
// Each value lives in its own small text file under the sessions config
// directory. Writes replace the whole file through a temp file and rename;
// concurrent writers for one session are not coordinated and the last one
// wins, which at worst delays a milestone.
package counter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultInterval is the number of tool calls between milestones.
const DefaultInterval = 50

const (
	toolCountPrefix    = "tool-count-"
	lastNotifiedPrefix = "cursor-last-notified-"
	legacyOffsetPrefix = "cursor-tool-offset-"
)

// Store reads and writes counter files in one directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// ToolCountPath is the file holding the tool-call count for id.
func (s *Store) ToolCountPath(id string) string {
	return filepath.Join(s.dir, toolCountPrefix+id)
}

// LastNotifiedPath is the file holding the count at the last milestone.
func (s *Store) LastNotifiedPath(id string) string {
	return filepath.Join(s.dir, lastNotifiedPrefix+id)
}

// LegacyOffsetPath is the file the transcript-scanning counter variant used.
// It is only ever removed.
func (s *Store) LegacyOffsetPath(id string) string {
	return filepath.Join(s.dir, legacyOffsetPrefix+id)
}

// ToolCount returns the current count; absent or corrupt files read as 0.
func (s *Store) ToolCount(id string) int {
	return readInt(s.ToolCountPath(id))
}

// LastNotified returns the count at which the last milestone fired.
func (s *Store) LastNotified(id string) int {
	return readInt(s.LastNotifiedPath(id))
}

// Increment adds one to the tool-call count and returns the new value.
func (s *Store) Increment(id string) (int, error) {
	n := s.ToolCount(id) + 1
	if err := writeInt(s.ToolCountPath(id), n); err != nil {
		return 0, err
	}
	return n, nil
}

// SetLastNotified records the count a milestone fired at.
func (s *Store) SetLastNotified(id string, n int) error {
	return writeInt(s.LastNotifiedPath(id), n)
}

// Reset zeroes both counters and removes any legacy offset file. All three
// steps are attempted; the joined error reports what failed.
func (s *Store) Reset(id string) error {
	var errs []error
	if err := writeInt(s.ToolCountPath(id), 0); err != nil {
		errs = append(errs, err)
	}
	if err := writeInt(s.LastNotifiedPath(id), 0); err != nil {
		errs = append(errs, err)
	}
	if err := os.Remove(s.LegacyOffsetPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, fmt.Errorf("counter: remove legacy offset: %w", err))
	}
	return errors.Join(errs...)
}

// Milestone is the outcome of Evaluate.
type Milestone struct {
	Reached bool
	Index   int // floor(count / interval); meaningful only when Reached
	Count   int
}

// Evaluate decides whether count has moved at least one interval past
// lastNotified. Bursts that cross several boundaries at once still produce a
// single milestone, and the caller records count itself (not the boundary)
// as the new lastNotified.
func Evaluate(count, lastNotified, interval int) Milestone {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if count < lastNotified+interval {
		return Milestone{Count: count}
	}
	return Milestone{Reached: true, Index: count / interval, Count: count}
}

func readInt(path string) int {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func writeInt(path string, n int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("counter: create directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(n)), 0o600); err != nil {
		return fmt.Errorf("counter: write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("counter: atomic rename %s: %w", path, err)
	}
	return nil
}

// Package compaction hands a "context was summarized" signal from the
// pre-compaction hook to the next periodic check.
//
// The handoff is single-producer/single-consumer through one flag file per
// session. The producer overwrites any stale flag; the consumer deletes the
// flag as soon as it has been read, and again on every exit path, so a flag
// is consumed at most once even when later processing fails.
package compaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const flagPrefix = "cursor-compacted-"

// Signal is the payload carried across the process boundary.
type Signal struct {
	Timestamp          time.Time `json:"timestamp"`
	PercentUsed        float64   `json:"percent_used"`
	MessagesSummarized int       `json:"messages_summarized"`
}

// Store manages flag files in one directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path is the flag file for id.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, flagPrefix+id)
}

// Pending reports whether a flag exists for id.
func (s *Store) Pending(id string) bool {
	_, err := os.Stat(s.Path(id))
	return err == nil
}

// Write persists sig for id, replacing any earlier flag.
func (s *Store) Write(id string, sig Signal) error {
	b, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("compaction: encode signal: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("compaction: create directory: %w", err)
	}
	path := s.Path(id)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("compaction: write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("compaction: atomic rename %s: %w", path, err)
	}
	return nil
}

// Consume reads and removes the flag for id, then runs handle with the
// payload. It returns false without calling handle when no flag exists.
//
// The flag is gone when Consume returns, whatever happened: a corrupt
// payload, an error or a panic from handle. A panic is recovered and
// reported as an error.
func (s *Store) Consume(id string, handle func(Signal) error) (consumed bool, err error) {
	path := s.Path(id)
	b, readErr := os.ReadFile(path)
	if errors.Is(readErr, os.ErrNotExist) {
		return false, nil
	}

	defer func() {
		if r := recover(); r != nil {
			consumed = true
			err = fmt.Errorf("compaction: handler panic: %v", r)
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = fmt.Errorf("compaction: remove flag: %w", rmErr)
		}
	}()

	if readErr != nil {
		return true, fmt.Errorf("compaction: read flag: %w", readErr)
	}
	_ = os.Remove(path)

	var sig Signal
	if uerr := json.Unmarshal(b, &sig); uerr != nil {
		// A flag that exists still means compaction happened; carry on
		// with a zero payload.
		sig = Signal{}
		err = fmt.Errorf("compaction: decode flag: %w", uerr)
	}

	if herr := handle(sig); herr != nil {
		return true, errors.Join(err, herr)
	}
	return true, err
}

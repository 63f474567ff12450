package counter

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "0f8fad5b-d9cb-469f-a165-70867728950e"

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name         string
		count        int
		lastNotified int
		want         Milestone
	}{
		{"well below", 10, 0, Milestone{Count: 10}},
		{"one short", 49, 0, Milestone{Count: 49}},
		{"exactly first boundary", 50, 0, Milestone{Reached: true, Index: 1, Count: 50}},
		{"burst past several boundaries", 130, 50, Milestone{Reached: true, Index: 2, Count: 130}},
		{"interval measured from last notified", 170, 130, Milestone{Count: 170}},
		{"next after burst", 180, 130, Milestone{Reached: true, Index: 3, Count: 180}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.count, tt.lastNotified, DefaultInterval))
		})
	}
}

func TestEvaluateInvalidIntervalFallsBack(t *testing.T) {
	assert.True(t, Evaluate(50, 0, 0).Reached)
	assert.False(t, Evaluate(49, 0, -3).Reached)
}

// Drives the store the way the hooks do and checks that lastNotified only
// ever takes values the counter actually held.
func TestMilestoneSequence(t *testing.T) {
	s := NewStore(t.TempDir())

	check := func() (Milestone, bool) {
		m := Evaluate(s.ToolCount(testID), s.LastNotified(testID), DefaultInterval)
		if m.Reached {
			require.NoError(t, s.SetLastNotified(testID, m.Count))
		}
		return m, m.Reached
	}

	for i := 0; i < 10; i++ {
		_, err := s.Increment(testID)
		require.NoError(t, err)
	}
	_, fired := check()
	assert.False(t, fired)

	for s.ToolCount(testID) < 49 {
		_, err := s.Increment(testID)
		require.NoError(t, err)
	}
	_, fired = check()
	assert.False(t, fired)

	_, err := s.Increment(testID)
	require.NoError(t, err)
	m, fired := check()
	assert.True(t, fired)
	assert.Equal(t, 1, m.Index)
	assert.Equal(t, 50, s.LastNotified(testID))

	for s.ToolCount(testID) < 130 {
		_, err := s.Increment(testID)
		require.NoError(t, err)
	}
	fires := 0
	if _, ok := check(); ok {
		fires++
	}
	if _, ok := check(); ok {
		fires++
	}
	assert.Equal(t, 1, fires)
	assert.Equal(t, 130, s.LastNotified(testID))
}

func TestStoreMissingAndCorruptFilesReadZero(t *testing.T) {
	s := NewStore(t.TempDir())
	assert.Equal(t, 0, s.ToolCount(testID))

	require.NoError(t, os.WriteFile(s.ToolCountPath(testID), []byte("garbage"), 0o600))
	assert.Equal(t, 0, s.ToolCount(testID))

	require.NoError(t, os.WriteFile(s.ToolCountPath(testID), []byte(" 42\n"), 0o600))
	assert.Equal(t, 42, s.ToolCount(testID))
}

func TestIncrementCreatesDirectory(t *testing.T) {
	s := NewStore(t.TempDir() + "/nested/config")
	n, err := s.Increment(testID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	b, err := os.ReadFile(s.ToolCountPath(testID))
	require.NoError(t, err)
	assert.Equal(t, "1", string(b))
}

func TestReset(t *testing.T) {
	s := NewStore(t.TempDir())
	for i := 0; i < 60; i++ {
		_, err := s.Increment(testID)
		require.NoError(t, err)
	}
	require.NoError(t, s.SetLastNotified(testID, 50))
	require.NoError(t, os.WriteFile(s.LegacyOffsetPath(testID), []byte("12"), 0o600))

	require.NoError(t, s.Reset(testID))

	b, err := os.ReadFile(s.ToolCountPath(testID))
	require.NoError(t, err)
	assert.Equal(t, "0", string(b))
	assert.Equal(t, 0, s.LastNotified(testID))
	_, err = os.Stat(s.LegacyOffsetPath(testID))
	assert.True(t, os.IsNotExist(err))

	// Resetting twice is harmless.
	assert.NoError(t, s.Reset(testID))
}

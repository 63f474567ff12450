package envinfo

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubLookPath(t *testing.T, fn func(string) (string, error)) {
	t.Helper()
	orig := lookPath
	lookPath = fn
	t.Cleanup(func() { lookPath = orig })
}

func TestCollect(t *testing.T) {
	stubLookPath(t, func(name string) (string, error) {
		if name == "git" {
			return "/usr/bin/git", nil
		}
		return "", errors.New("not found")
	})

	now := time.Date(2025, 3, 14, 9, 26, 0, 0, time.UTC)
	info := Collect(context.Background(), "/work/project", now, nil)

	assert.Equal(t, "2025-03-14 (Friday)", info.Date)
	assert.Equal(t, runtime.GOOS, info.OS)
	require.Len(t, info.Tools, len(DefaultTools))
	assert.True(t, info.Tools[0].Found)
	assert.Equal(t, "/usr/bin/git", info.Tools[0].Path)
	assert.False(t, info.Tools[1].Found)

	out := info.Render()
	assert.Contains(t, out, "- Workspace: /work/project")
	assert.Contains(t, out, "- Available tools: git")
	assert.Contains(t, out, "- Not found: go, node")
}

func TestLookupTimesOut(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	stubLookPath(t, func(string) (string, error) {
		<-release
		return "/never", nil
	})

	start := time.Now()
	path, ok := lookup(context.Background(), "slow", 20*time.Millisecond)
	assert.False(t, ok)
	assert.Empty(t, path)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLookupHonorsCancelledContext(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	stubLookPath(t, func(string) (string, error) {
		<-release
		return "/never", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := lookup(ctx, "slow", time.Minute)
	assert.False(t, ok)
}

package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/sessionkeeper/pkg/workspace"
)

func testPaths(t *testing.T) workspace.Paths {
	t.Helper()
	tmp := t.TempDir()
	return workspace.ResolvePaths(filepath.Join(tmp, "project"), filepath.Join(tmp, "home"))
}

func TestEnsureSetupCreatesScaffold(t *testing.T) {
	p := testPaths(t)

	require.NoError(t, EnsureSetup(p))

	for _, dir := range []string{p.SessionsDir, p.ConfigDir, p.MemoryDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir(), dir)
	}
	for _, file := range []string{p.MemoryFile, p.PersonaFile, p.UserFile} {
		b, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.NotEmpty(t, b, file)
	}
}

func TestEnsureSetupNeverOverwrites(t *testing.T) {
	p := testPaths(t)
	require.NoError(t, EnsureSetup(p))

	require.NoError(t, os.WriteFile(p.PersonaFile, []byte("custom persona"), 0o600))
	require.NoError(t, EnsureSetup(p))

	b, err := os.ReadFile(p.PersonaFile)
	require.NoError(t, err)
	assert.Equal(t, "custom persona", string(b))
}

func TestEnsureSetupContinuesAfterFailure(t *testing.T) {
	p := testPaths(t)

	// A regular file where the persona directory should be blocks only
	// the persona document.
	require.NoError(t, os.MkdirAll(p.UserDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(p.UserDir, "persona"), []byte("x"), 0o600))

	err := EnsureSetup(p)
	assert.Error(t, err)

	_, statErr := os.Stat(p.UserFile)
	assert.NoError(t, statErr, "user profile should still be written")
	_, statErr = os.Stat(p.MemoryFile)
	assert.NoError(t, statErr, "project memory should still be written")
}

func TestLoad(t *testing.T) {
	p := testPaths(t)

	docs := Load(p)
	assert.Empty(t, docs.Persona)
	assert.Empty(t, docs.Memory)

	require.NoError(t, EnsureSetup(p))
	docs = Load(p)
	assert.Contains(t, docs.Persona, "# Soul")
	assert.Contains(t, docs.User, "# User")
	assert.Contains(t, docs.Memory, "# Project Memory")
}

func TestEnsureSetupWithoutWorkspace(t *testing.T) {
	home := t.TempDir()
	p := workspace.ResolvePaths("", home)

	require.NoError(t, EnsureSetup(p))

	_, err := os.Stat(p.PersonaFile)
	assert.NoError(t, err)
	assert.Empty(t, Load(p).Memory)
}

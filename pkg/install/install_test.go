package install

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/sessionkeeper/pkg/hook"
)

func readDoc(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func commands(t *testing.T, doc map[string]interface{}, key string) []string {
	t.Helper()
	hooks := doc["hooks"].(map[string]interface{})
	entries, _ := hooks[key].([]interface{})
	var out []string
	for _, e := range entries {
		out = append(out, e.(map[string]interface{})["command"].(string))
	}
	return out
}

func TestInstallCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".cursor", "hooks.json")

	res, err := Install(Options{HooksFile: path, Binary: "sessionkeeper"})
	require.NoError(t, err)
	assert.Len(t, res.Added, len(hook.Events))
	assert.Empty(t, res.Skipped)

	doc := readDoc(t, path)
	assert.Equal(t, float64(1), doc["version"])
	assert.Equal(t, []string{"sessionkeeper hook session-start"}, commands(t, doc, "sessionStart"))
	assert.Equal(t, []string{"sessionkeeper hook stop"}, commands(t, doc, "stop"))
	assert.Equal(t, []string{"sessionkeeper hook pre-tool-use"}, commands(t, doc, "preToolUse"))
}

func TestCommandQuotesBinary(t *testing.T) {
	tests := []struct {
		binary string
		want   string
	}{
		{"/usr/local/bin/sessionkeeper", "/usr/local/bin/sessionkeeper hook stop"},
		{"/Users/dev/Application Support/sk", "'/Users/dev/Application Support/sk' hook stop"},
		{"/opt/it's/sk", `'/opt/it'\''s/sk' hook stop`},
	}

	for _, tt := range tests {
		t.Run(tt.binary, func(t *testing.T) {
			assert.Equal(t, tt.want, Command(tt.binary, hook.EventStop))
		})
	}
}

func TestInstallQuotedBinaryIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hooks.json")
	binary := "/home/dev/my tools/sessionkeeper"

	_, err := Install(Options{HooksFile: path, Binary: binary})
	require.NoError(t, err)
	res, err := Install(Options{HooksFile: path, Binary: binary})
	require.NoError(t, err)
	assert.Empty(t, res.Added)

	assert.Equal(t, []string{"'/home/dev/my tools/sessionkeeper' hook session-start"},
		commands(t, readDoc(t, path), "sessionStart"))
}

func TestInstallIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hooks.json")

	_, err := Install(Options{HooksFile: path, Binary: "sk"})
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	res, err := Install(Options{HooksFile: path, Binary: "sk"})
	require.NoError(t, err)
	assert.Empty(t, res.Added)
	assert.Len(t, res.Skipped, len(hook.Events))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestInstallMergesJSONC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hooks.json")
	existing := `{
  // managed by the team
  "version": 1,
  "hooks": {
    "stop": [
      {"command": "./scripts/lint.sh"},
    ],
    "afterFileEdit": [{"command": "fmt"}],
  },
  "custom": true,
}`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	res, err := Install(Options{HooksFile: path, Binary: "/usr/local/bin/sessionkeeper", Events: []string{hook.EventStop}})
	require.NoError(t, err)
	assert.Equal(t, []string{"stop"}, res.Added)

	doc := readDoc(t, path)
	assert.Equal(t, true, doc["custom"])
	assert.Equal(t, []string{"./scripts/lint.sh", "/usr/local/bin/sessionkeeper hook stop"}, commands(t, doc, "stop"))
	assert.Equal(t, []string{"fmt"}, commands(t, doc, "afterFileEdit"))
	_, hasStart := doc["hooks"].(map[string]interface{})["sessionStart"]
	assert.False(t, hasStart)
}

func TestInstallErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Install(Options{Binary: "sk"})
	assert.Error(t, err)

	_, err = Install(Options{HooksFile: filepath.Join(dir, "a.json")})
	assert.Error(t, err)

	_, err = Install(Options{HooksFile: filepath.Join(dir, "b.json"), Binary: "sk", Events: []string{"bogus"}})
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"hooks": []}`), 0o644))
	_, err = Install(Options{HooksFile: bad, Binary: "sk"})
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"hooks": `), 0o644))
	_, err = Install(Options{HooksFile: broken, Binary: "sk"})
	assert.Error(t, err)
}

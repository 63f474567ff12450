package session

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameRoundTrip(t *testing.T) {
	id := uuid.NewString()
	slugs := []string{
		"session",
		"fix-login-bug",
		"a",
		"multi-part-slug-with-many-hyphens-2024-01-02",
		"ends-with-digits-12345678",
	}

	for _, slug := range slugs {
		t.Run(slug, func(t *testing.T) {
			in := Name{Date: "2025-03-14", Slug: slug, ID: id}
			out, err := Decode(in.Encode())
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestDecodeSlugThatLooksLikeUUID(t *testing.T) {
	id := "0f8fad5b-d9cb-469f-a165-70867728950e"
	decoy := "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	filename := "2025-03-14-" + decoy + "-" + id + ".tmp"

	n, err := Decode(filename)
	require.NoError(t, err)
	assert.Equal(t, id, n.ID)
	assert.Equal(t, decoy, n.Slug)
}

func TestDecodeRejects(t *testing.T) {
	id := "0f8fad5b-d9cb-469f-a165-70867728950e"
	tests := []struct {
		name     string
		filename string
	}{
		{"wrong extension", "2025-03-14-session-" + id + ".md"},
		{"no slug", "2025-03-14-" + id + ".tmp"},
		{"empty slug", "2025-03-14--" + id + ".tmp"},
		{"bad date", "2025-13-40-session-" + id + ".tmp"},
		{"non-canonical uuid", "2025-03-14-session-0f8fad5bd9cb469fa16570867728950e.tmp"},
		{"bad uuid hex", "2025-03-14-session-zf8fad5b-d9cb-469f-a165-70867728950e.tmp"},
		{"missing separator", "2025-03-14-session" + id + ".tmp"},
		{"short", "x.tmp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.filename)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidName))
		})
	}
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID(uuid.NewString()))
	assert.False(t, ValidID(""))
	assert.False(t, ValidID("not-a-uuid"))
	assert.False(t, ValidID("urn:uuid:0f8fad5b-d9cb-469f-a165-70867728950e"))
}

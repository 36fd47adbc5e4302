package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelforge-bio/modelforge/internal/model"
)

// fakeResolver accepts a fixed set of compound IDs.
type fakeResolver struct {
	known map[string]bool
}

func (f *fakeResolver) GetCompound(id string) (model.Compound, error) {
	if !f.known[id] {
		return model.Compound{}, fmt.Errorf("compound %q: not found", id)
	}
	return model.Compound{ID: id}, nil
}

const libraryYAML = `media:
  - id: glucose_minimal
    name: Glucose minimal media
    compounds:
      cpd00027: {lower: -5, upper: 100}
      cpd00007: {lower: -10, upper: 100}
      cpd00001: {lower: -100, upper: 100}
  - id: anaerobic_glucose
    name: Anaerobic glucose media
    compounds:
      cpd00027: {lower: -5, upper: 100}
      cpd00001: {lower: -100, upper: 100}
`

func writeLibrary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "media.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadPredefinedMedia(t *testing.T) {
	resolver := &fakeResolver{known: map[string]bool{
		"cpd00027": true, "cpd00007": true, "cpd00001": true,
	}}
	s := NewMediaStore()

	n, err := LoadPredefinedMedia(writeLibrary(t, libraryYAML), resolver, s)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	m, err := s.Get("glucose_minimal")
	require.NoError(t, err)
	assert.True(t, m.Predefined)
	assert.Equal(t, "Glucose minimal media", m.Name)
	assert.Equal(t, model.Bounds{Lower: -5, Upper: 100}, m.Compounds["cpd00027"])
	assert.Len(t, m.Compounds, 3)
}

func TestLoadPredefinedMedia_UnknownCompoundFailsWholeLoad(t *testing.T) {
	resolver := &fakeResolver{known: map[string]bool{"cpd00027": true}}
	s := NewMediaStore()

	_, err := LoadPredefinedMedia(writeLibrary(t, libraryYAML), resolver, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "glucose_minimal")
}

func TestLoadPredefinedMedia_MissingID(t *testing.T) {
	bad := "media:\n  - name: No ID here\n    compounds: {}\n"
	_, err := LoadPredefinedMedia(writeLibrary(t, bad), &fakeResolver{}, NewMediaStore())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no id")
}

func TestLoadPredefinedMedia_MissingFile(t *testing.T) {
	_, err := LoadPredefinedMedia(filepath.Join(t.TempDir(), "absent.yaml"), &fakeResolver{}, NewMediaStore())
	assert.Error(t, err)
}

package style

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mapbridge/internal/model"
)

func TestDefaultCatalog(t *testing.T) {
	cat := Default()
	require.NotNil(t, cat)

	assert.Equal(t, model.MapTypeNormal, cat.Fallback)
	assert.Equal(t, model.MapTypes(), cat.MapTypes())
	assert.Equal(t, "asset://styles/satellite.json", cat.Entry(model.MapTypeSatellite).URI)
}

func TestLoad_FallbackForMissingType(t *testing.T) {
	src := []byte(`
fallback: "normal"
styles: normal: uri: "https://example.com/normal.json"
`)
	cat, err := Load(src, "small.cue")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/normal.json", cat.Entry(model.MapTypeHybrid).URI)
	assert.Equal(t, []model.MapType{model.MapTypeNormal}, cat.MapTypes())
}

func TestLoad_RejectsUnknownMapType(t *testing.T) {
	src := []byte(`
fallback: "normal"
styles: {
	normal: uri: "https://example.com/normal.json"
	roads: uri: "https://example.com/roads.json"
}
`)
	_, err := Load(src, "bad.cue")
	require.Error(t, err)
}

func TestLoad_RejectsMissingFallbackEntry(t *testing.T) {
	src := []byte(`
fallback: "terrain"
styles: normal: uri: "https://example.com/normal.json"
`)
	_, err := Load(src, "bad.cue")
	require.Error(t, err)
}

func TestLoad_RejectsBadURI(t *testing.T) {
	src := []byte(`
fallback: "normal"
styles: normal: uri: "streets.json"
`)
	_, err := Load(src, "bad.cue")
	require.Error(t, err)
}

func TestLoad_SyntaxErrorHasPosition(t *testing.T) {
	_, err := Load([]byte("fallback: \n styles: {"), "broken.cue")
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "broken.cue", le.Pos.Filename())
}

func TestResolve(t *testing.T) {
	cat := Default()

	src := cat.Resolve(model.MapTypeTerrain, nil)
	assert.Equal(t, model.StyleSource{URI: "asset://styles/terrain.json"}, src)

	src = cat.Resolve(model.MapTypeNormal, &model.MapStyleOptions{JSON: `[{"featureType":"poi"}]`})
	assert.Equal(t, "asset://styles/streets.json", src.URI)
	assert.Equal(t, `[{"featureType":"poi"}]`, src.JSON)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.cue")
	require.NoError(t, os.WriteFile(path, defaultSource, 0o644))

	cat, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Styles, cat.Styles)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
}

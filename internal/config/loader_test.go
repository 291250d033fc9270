package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderLoadsScriptParamsFromJSON(t *testing.T) {
	dir := t.TempDir()
	doc := `{
		"scripts": {
			"wave": {
				"speed": 3,
				"hue": "red",
				"enabled": true,
				"intensity": 0.5,
				"tint": {"r": 255, "g": 0, "b": 0, "a": 255}
			}
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.json"), []byte(doc), 0o644))

	l := NewLoader(dir)
	profile, err := l.Load("default")
	require.NoError(t, err)

	assert.Equal(t, int64(3), profile.Int("wave", "speed", 0))
	assert.Equal(t, "red", profile.String("wave", "hue", ""))
	assert.True(t, profile.Bool("wave", "enabled", false))
	assert.InDelta(t, 0.5, profile.Float("wave", "intensity", 0), 0.0001)
	assert.Equal(t, uint32(0xFF0000FF), profile.Color("wave", "tint", 0))
}

func TestLoaderMissingFileErrors(t *testing.T) {
	l := NewLoader(t.TempDir())
	_, err := l.Load("nope")
	assert.Error(t, err)
}

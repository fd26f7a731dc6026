package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte{0x03, 0x02, 0x23, 0x07}, 0o644))
}

func TestParseShaderName(t *testing.T) {
	tests := []struct {
		path  string
		name  string
		stage ShaderStage
		ok    bool
	}{
		{"shaders/clear.frag.spv", "clear.frag", ShaderStageFragment, true},
		{"a/b/quad.vert.spv", "quad.vert", ShaderStageVertex, true},
		{"blur.comp.spv", "blur.comp", ShaderStageCompute, true},
		{"misc.spv", "misc", ShaderStageNone, true},
		{"clear.frag", "", ShaderStageNone, false},
		{"notes.txt", "", ShaderStageNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			name, stage, ok := ParseShaderName(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.stage, stage)
		})
	}
}

func TestCatalogIndexesExistingTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "clear.frag.spv"))
	writeFile(t, filepath.Join(root, "nested", "quad.vert.spv"))
	writeFile(t, filepath.Join(root, "README.md"))

	sc, err := NewShaderCatalog(root, nil)
	require.NoError(t, err)
	defer sc.Close()

	list := sc.List()
	require.Len(t, list, 2)
	assert.Equal(t, "clear.frag", list[0].Name)
	assert.Equal(t, "quad.vert", list[1].Name)

	info, ok := sc.Lookup("quad.vert")
	require.True(t, ok)
	assert.Equal(t, ShaderStageVertex, info.Stage)
	assert.Equal(t, filepath.Join(root, "nested", "quad.vert.spv"), info.Path)
	assert.False(t, info.Modified.IsZero())

	_, ok = sc.Lookup("README")
	assert.False(t, ok)
}

func TestCatalogMissingRoot(t *testing.T) {
	sc, err := NewShaderCatalog(filepath.Join(t.TempDir(), "absent"), nil)
	require.NoError(t, err)
	assert.Empty(t, sc.List())
	require.NoError(t, sc.Close())
}

func TestCatalogReportsChanges(t *testing.T) {
	root := t.TempDir()
	sc, err := NewShaderCatalog(root, nil)
	require.NoError(t, err)
	defer sc.Close()

	path := filepath.Join(root, "late.comp.spv")
	writeFile(t, path)

	select {
	case c := <-sc.Changes():
		assert.Equal(t, Updated, c.Kind)
		assert.Equal(t, "late.comp", c.Shader.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported for new shader")
	}
	assert.Eventually(t, func() bool {
		_, ok := sc.Lookup("late.comp")
		return ok
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(path))
	assert.Eventually(t, func() bool {
		_, ok := sc.Lookup("late.comp")
		return !ok
	}, 5*time.Second, 10*time.Millisecond)
}

func TestCatalogCloseIsIdempotent(t *testing.T) {
	sc, err := NewShaderCatalog(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, sc.Close())
	require.NoError(t, sc.Close())

	_, open := <-sc.Changes()
	assert.False(t, open)
}

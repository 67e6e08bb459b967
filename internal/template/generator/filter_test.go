package generator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplateFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDoNotCopySet_Matches(t *testing.T) {
	set := NewDoNotCopySet("LICENSE", "./docs/internal.md", "assets/**/*.psd", "*.bak")

	tests := []struct {
		path string
		want bool
	}{
		{path: "LICENSE", want: true},
		{path: "docs/internal.md", want: true},
		{path: "assets/raw/logo.psd", want: true},
		{path: "assets/logo.psd", want: true},
		{path: "notes.bak", want: true},
		{path: "nested/notes.bak", want: false},
		{path: "LICENSE.md", want: false},
		{path: "docs/public.md", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, set.Matches(tt.path))
		})
	}
}

func TestDoNotCopySet_AddDeduplicates(t *testing.T) {
	set := NewDoNotCopySet("a.txt", "./a.txt", "", "  ")
	set.Add("b.txt", "a.txt")

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"a.txt", "b.txt"}, set.Entries())
}

func TestDoNotCopySet_InvalidGlobMatchesExactly(t *testing.T) {
	set := NewDoNotCopySet("weird[name")
	assert.True(t, set.Matches("weird[name"))
	assert.False(t, set.Matches("weirdn"))
}

func TestListTemplateFiles(t *testing.T) {
	dir := t.TempDir()
	writeTemplateFile(t, dir, "README.md", "readme")
	writeTemplateFile(t, dir, "src/index.ts", "code")
	writeTemplateFile(t, dir, "project.config.yaml", "templateData: {}")
	writeTemplateFile(t, dir, "sub/project.config.yaml", "kept: true")
	writeTemplateFile(t, dir, ".git/HEAD", "ref")
	writeTemplateFile(t, dir, "node_modules/x/index.js", "x")
	writeTemplateFile(t, dir, "forge_modules/base.txt", "base")
	writeTemplateFile(t, dir, ".DS_Store", "finder")
	writeTemplateFile(t, dir, "src/.DS_Store", "finder")
	writeTemplateFile(t, dir, ".npmrc", "//registry.npmjs.org/:_authToken=x")
	writeTemplateFile(t, dir, ".npmrc.tmpl", "registry=x")

	files, err := ListTemplateFiles(dir)
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
		assert.True(t, filepath.IsAbs(f.AbsPath))
	}
	assert.Equal(t, []string{".npmrc.tmpl", "README.md", "src/index.ts", "sub/project.config.yaml"}, paths)
}

func TestListTemplateFiles_MissingRoot(t *testing.T) {
	_, err := ListTemplateFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

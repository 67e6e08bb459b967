package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSourceFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLocalFetcher_Fetch(t *testing.T) {
	src := t.TempDir()
	writeSourceFile(t, src, "web/README.md", "# {{.projectName}}\n")
	writeSourceFile(t, src, "web/_gitignore", "dist\n")
	writeSourceFile(t, src, "cli/main.go", "package main\n")
	writeSourceFile(t, src, ".git/HEAD", "ref: refs/heads/main\n")
	require.NoError(t, os.Symlink(filepath.Join(src, "missing"), filepath.Join(src, "dangling")))

	dest := filepath.Join(t.TempDir(), "cache", "entry")
	require.NoError(t, NewLocalFetcher().Fetch(context.Background(), src, dest, false))

	got, err := os.ReadFile(filepath.Join(dest, "web", "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# {{.projectName}}\n", string(got))
	assert.FileExists(t, filepath.Join(dest, "web", "_gitignore"))
	assert.FileExists(t, filepath.Join(dest, "cli", "main.go"))
	assert.NoDirExists(t, filepath.Join(dest, ".git"))
	assert.NoFileExists(t, filepath.Join(dest, "dangling"))
}

func TestLocalFetcher_RelativeToBaseDir(t *testing.T) {
	base := t.TempDir()
	writeSourceFile(t, base, "templates/app/a.txt", "a")

	f := NewLocalFetcher()
	f.BaseDir = base
	dest := filepath.Join(t.TempDir(), "out")
	require.NoError(t, f.Fetch(context.Background(), "./templates", dest, false))
	assert.FileExists(t, filepath.Join(dest, "app", "a.txt"))
}

func TestLocalFetcher_Errors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	tests := []struct {
		name     string
		source   string
		dest     string
		wantType ProviderErrorType
	}{
		{name: "missing", source: filepath.Join(dir, "missing"), dest: filepath.Join(t.TempDir(), "o"), wantType: ProviderNotFound},
		{name: "not a directory", source: file, dest: filepath.Join(t.TempDir(), "o"), wantType: ProviderInvalidTemplate},
		{name: "destination inside source", source: dir, dest: filepath.Join(dir, "cache"), wantType: ProviderInvalidTemplate},
		{name: "bad file URL", source: "file://remote/x", dest: filepath.Join(t.TempDir(), "o"), wantType: ProviderInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewLocalFetcher().Fetch(context.Background(), tt.source, tt.dest, false)
			var perr *ProviderError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, tt.wantType, perr.Type)
			assert.Equal(t, "local", perr.Provider)
		})
	}
}

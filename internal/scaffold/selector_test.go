package scaffold

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacogips/forge/internal/config"
	"github.com/tacogips/forge/internal/template/provider"
)

func TestSelector_ReplacesStaleCacheEntry(t *testing.T) {
	cacheDir := t.TempDir()
	source := "acme/templates"
	stale := filepath.Join(provider.CachePath(cacheDir, source), "old", "stale.txt")
	writeFile(t, filepath.Dir(filepath.Dir(stale)), "old/stale.txt", "stale")

	fetcher := &fixtureFetcher{files: map[string]string{"web/a.txt": "a"}}
	sel, err := NewSelector(fetcher, nil).Select(context.Background(), config.Options{TemplateSource: source, CacheDir: cacheDir})
	require.NoError(t, err)

	assert.Equal(t, "web", sel.Name)
	assert.Equal(t, []string{"web"}, sel.Available)
	_, statErr := os.Stat(stale)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSelector_MultipleTemplates(t *testing.T) {
	files := map[string]string{
		"web/a.txt":               "a",
		"cli/b.txt":               "b",
		"node_modules/dep/x.js":   "x",
		"forge_modules/base.txt":  "base",
		".github/workflows/c.yml": "c",
	}

	t.Run("explicit name", func(t *testing.T) {
		sel, err := NewSelector(&fixtureFetcher{files: files}, nil).Select(context.Background(),
			config.Options{TemplateSource: "s", TemplateName: "cli", CacheDir: t.TempDir()})
		require.NoError(t, err)
		assert.Equal(t, "cli", sel.Name)
		assert.Equal(t, []string{"cli", "web"}, sel.Available)
	})

	t.Run("no prompter", func(t *testing.T) {
		_, err := NewSelector(&fixtureFetcher{files: files}, nil).Select(context.Background(),
			config.Options{TemplateSource: "s", CacheDir: t.TempDir()})
		assert.ErrorIs(t, err, ErrAmbiguousTemplate)
	})

	t.Run("prompted", func(t *testing.T) {
		prompter := &scriptedPrompter{answers: map[string]any{templateChoicePrompt: "web"}}
		sel, err := NewSelector(&fixtureFetcher{files: files}, prompter).Select(context.Background(),
			config.Options{TemplateSource: "s", CacheDir: t.TempDir()})
		require.NoError(t, err)
		assert.Equal(t, "web", sel.Name)
		assert.Equal(t, []string{templateChoicePrompt}, prompter.asked)
	})

	t.Run("prompt failure", func(t *testing.T) {
		prompter := &scriptedPrompter{failOn: templateChoicePrompt}
		_, err := NewSelector(&fixtureFetcher{files: files}, prompter).Select(context.Background(),
			config.Options{TemplateSource: "s", CacheDir: t.TempDir()})
		var serr *SelectionError
		assert.True(t, errors.As(err, &serr))
	})
}

func TestSelector_Source(t *testing.T) {
	files := map[string]string{"web/a.txt": "a"}

	tests := []struct {
		name          string
		configured    string
		prompter      *scriptedPrompter
		defaultSource string
		want          string
		wantAsked     bool
		wantErr       error
	}{
		{
			name:       "configured source skips prompt",
			configured: " acme/x ",
			prompter:   &scriptedPrompter{answers: map[string]any{templateSourcePrompt: "other/y"}},
			want:       "acme/x",
		},
		{
			name:      "prompted source",
			prompter:  &scriptedPrompter{answers: map[string]any{templateSourcePrompt: " acme/prompted "}},
			want:      "acme/prompted",
			wantAsked: true,
		},
		{
			name:          "blank answer falls back to default",
			prompter:      &scriptedPrompter{answers: map[string]any{templateSourcePrompt: "  "}},
			defaultSource: "acme/default",
			want:          "acme/default",
			wantAsked:     true,
		},
		{
			name:          "prompt offers default",
			prompter:      &scriptedPrompter{answers: map[string]any{}},
			defaultSource: "acme/default",
			want:          "acme/default",
			wantAsked:     true,
		},
		{
			name:          "no prompter uses default",
			defaultSource: "acme/default",
			want:          "acme/default",
		},
		{
			name:    "no prompter and no default",
			wantErr: ErrNoTemplateSource,
		},
		{
			name:      "blank answer and no default",
			prompter:  &scriptedPrompter{answers: map[string]any{}},
			wantAsked: true,
			wantErr:   ErrNoTemplateSource,
		},
		{
			name:          "prompt failure",
			prompter:      &scriptedPrompter{failOn: templateSourcePrompt},
			defaultSource: "acme/default",
			wantAsked:     true,
			wantErr:       ErrNoTemplateSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fixtureFetcher{files: files}
			var prompter PromptProvider
			if tt.prompter != nil {
				prompter = tt.prompter
			}
			s := NewSelector(fetcher, prompter)
			s.defaultSource = tt.defaultSource

			sel, err := s.Select(context.Background(), config.Options{TemplateSource: tt.configured, CacheDir: t.TempDir()})
			if tt.prompter != nil {
				assert.Equal(t, tt.wantAsked, len(tt.prompter.asked) > 0 && tt.prompter.asked[0] == templateSourcePrompt)
			}
			if tt.wantErr != nil {
				var serr *SelectionError
				require.True(t, errors.As(err, &serr), "got %v", err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, fetcher.fetched)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel.Source)
			assert.Equal(t, []string{tt.want}, fetcher.fetched)
		})
	}
}

func TestSelector_FailedFetchRemovesCacheEntry(t *testing.T) {
	cacheDir := t.TempDir()
	source := "acme/templates"
	fetchErr := errors.New("connection reset")
	fetcher := &fixtureFetcher{files: map[string]string{"web/a.txt": "a"}, err: fetchErr, partial: true}

	_, err := NewSelector(fetcher, nil).Select(context.Background(), config.Options{TemplateSource: source, CacheDir: cacheDir})

	var serr *SelectionError
	require.True(t, errors.As(err, &serr), "got %v", err)
	assert.ErrorIs(t, err, fetchErr)
	_, statErr := os.Stat(provider.CachePath(cacheDir, source))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(cacheDir)
	assert.NoError(t, statErr)
}

func TestListTemplateDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b/x", "")
	writeFile(t, dir, "a/x", "")
	writeFile(t, dir, ".git/HEAD", "")
	writeFile(t, dir, "file.txt", "")

	dirs, err := ListTemplateDirs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, dirs)

	_, err = ListTemplateDirs(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

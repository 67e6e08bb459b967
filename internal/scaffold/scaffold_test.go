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
	"github.com/tacogips/forge/internal/template/model"
)

// fixtureFetcher materializes a fixed file set at the requested path. With
// partial set, err is returned after the files are written.
type fixtureFetcher struct {
	files   map[string]string
	err     error
	partial bool
	fetched []string
}

func (f *fixtureFetcher) Fetch(_ context.Context, source, localPath string, _ bool) error {
	f.fetched = append(f.fetched, source)
	if f.err != nil && !f.partial {
		return f.err
	}
	for rel, content := range f.files {
		path := filepath.Join(localPath, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return err
		}
	}
	return f.err
}

// scriptedPrompter answers from a map and records what it was asked.
type scriptedPrompter struct {
	answers map[string]any
	failOn  string
	asked   []string
}

func (p *scriptedPrompter) Ask(_ context.Context, prompts []config.Prompt) (map[string]any, error) {
	out := map[string]any{}
	for _, q := range prompts {
		p.asked = append(p.asked, q.Name)
		if q.Name == p.failOn {
			return out, errors.New("interrupted")
		}
		if v, ok := p.answers[q.Name]; ok {
			out[q.Name] = v
		} else {
			out[q.Name] = q.Default
		}
	}
	return out, nil
}

type memWriter struct {
	dir  string
	tree model.FileTree
}

func (w *memWriter) Write(_ context.Context, dir string, tree model.FileTree) error {
	w.dir = dir
	w.tree = tree
	return nil
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

type harness struct {
	workDir  string
	cacheDir string
	fetcher  *fixtureFetcher
	prompter *scriptedPrompter
	writer   *memWriter
}

func newHarness(t *testing.T, files map[string]string) *harness {
	t.Helper()
	return &harness{
		workDir:  t.TempDir(),
		cacheDir: t.TempDir(),
		fetcher:  &fixtureFetcher{files: files},
		prompter: &scriptedPrompter{answers: map[string]any{}},
		writer:   &memWriter{},
	}
}

func (h *harness) scaffolder(opts ...config.ResolverOption) *Scaffolder {
	base := []config.ResolverOption{
		config.WithWorkDir(h.workDir),
		config.WithEnvPrefix(""),
		config.WithCommandRunner(nil),
	}
	res := config.NewResolver(append(base, opts...)...)
	return New(res, h.fetcher, h.prompter, h.writer)
}

func (h *harness) options() Options {
	return Options{
		ProjectName: "demo",
		TargetDir:   filepath.Join(h.workDir, "demo"),
		Options:     config.Options{CacheDir: h.cacheDir},
	}
}

func TestCreate_EndToEnd(t *testing.T) {
	h := newHarness(t, map[string]string{
		"web/project.config.yaml": `
templateData: {license: MIT, author: template}
prompts:
  - {name: useTS, type: confirm, default: false}
  - {name: tsTarget, when: .useTS, default: es2022}
doNotCopyFiles: [LICENSE]
hooks:
  beforeCreate: {doNotCopy: [CHANGELOG.md], data: {year: 2026}}
`,
		"web/README.md":        "# {{.projectName}} by {{.author}} ({{.license}}, {{.year}})\n",
		"web/_gitignore":       "node_modules\n",
		"web/pkg":              "{\"name\": \"{{kebab .projectName}}\"}\n",
		"web/tsconfig.json":    "---\nwhen: .useTS\n---\n{\"target\": \"{{.tsTarget}}\"}\n",
		"web/LICENSE":          "MIT\n",
		"web/CHANGELOG.md":     "# Changes\n",
		".github/workflow.yml": "ignored\n",
	})
	writeFile(t, h.workDir, "project.config.yaml", "templateSource: acme/templates\ntemplateData: {author: me}\n")
	h.prompter.answers["useTS"] = true

	result, err := h.scaffolder().Create(context.Background(), h.options())
	require.NoError(t, err)

	assert.Equal(t, []string{"acme/templates"}, h.fetcher.fetched)
	assert.Equal(t, "web", result.Selection.Name)
	assert.Equal(t, []string{"useTS", "tsTarget"}, h.prompter.asked)
	assert.Empty(t, result.LayerErrors)

	tree := h.writer.tree
	assert.Equal(t, []string{".gitignore", "README.md", "package.json", "tsconfig.json"}, tree.Paths())
	assert.Equal(t, "# demo by me (MIT, 2026)\n", string(tree["README.md"].Content))
	assert.Equal(t, "{\"target\": \"es2022\"}\n", string(tree["tsconfig.json"].Content))
	assert.Equal(t, "{\"name\": \"demo\"}\n", string(tree["package.json"].Content))
	assert.Equal(t, result.TargetDir, h.writer.dir)
}

func TestCreate_FalsyPromptConditionSkipsPrompt(t *testing.T) {
	h := newHarness(t, map[string]string{
		"web/project.config.yaml": "prompts:\n  - {name: useTS, type: confirm, default: false}\n  - {name: tsTarget, when: .useTS}\n",
		"web/a.txt":               "a\n",
	})
	opts := h.options()
	opts.TemplateSource = "acme/templates"

	_, err := h.scaffolder().Create(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"useTS"}, h.prompter.asked)
}

func TestCreate_PromptFailureKeepsEarlierAnswers(t *testing.T) {
	h := newHarness(t, map[string]string{
		"web/project.config.yaml": "prompts:\n  - {name: first}\n  - {name: second}\n  - {name: third}\n",
		"web/out.txt":             "{{.first}}\n",
	})
	h.prompter.answers["first"] = "kept"
	h.prompter.failOn = "second"
	opts := h.options()
	opts.TemplateSource = "acme/templates"

	result, err := h.scaffolder().Create(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, h.prompter.asked)
	require.Len(t, result.LayerErrors, 1)
	var lerr *config.LayerError
	require.True(t, errors.As(result.LayerErrors[0], &lerr))
	assert.Equal(t, config.PhasePrompts, lerr.Phase)
	assert.Equal(t, "kept\n", string(h.writer.tree["out.txt"].Content))
}

func TestCreate_HookIsolation(t *testing.T) {
	h := newHarness(t, map[string]string{
		"web/README.md": "# {{.projectName}}\n",
	})
	writeFile(t, h.workDir, "project.config.yaml", "templateSource: acme/templates\n")
	// The template layer needs a config file for its plugins to run.
	h.fetcher.files["web/project.config.yaml"] = "templateData: {}\n"

	var userRan, finishRan bool
	sc := h.scaffolder(
		config.WithPlugins(config.LayerTemplate, config.PluginFunc{ID: "failing", Fn: func(l *config.Layer) error {
			l.SetHook(config.HookBeforeCreate, func(context.Context, config.Session) error {
				panic("template hook exploded")
			})
			l.SetHook(config.HookFinishCreate, func(context.Context, config.Session) error {
				return errors.New("template finish failed")
			})
			return nil
		}}),
		config.WithPlugins(config.LayerUser, config.PluginFunc{ID: "recording", Fn: func(l *config.Layer) error {
			l.SetHook(config.HookBeforeCreate, func(_ context.Context, s config.Session) error {
				userRan = true
				s.SetData("fromUser", true)
				return nil
			})
			l.SetHook(config.HookFinishCreate, func(context.Context, config.Session) error {
				finishRan = true
				return nil
			})
			return nil
		}}),
	)

	result, err := sc.Create(context.Background(), h.options())
	require.NoError(t, err)

	assert.True(t, userRan)
	assert.True(t, finishRan)
	assert.Equal(t, true, result.Data["fromUser"])
	assert.Contains(t, h.writer.tree, "README.md")

	require.Len(t, result.LayerErrors, 2)
	var lerr *config.LayerError
	require.True(t, errors.As(result.LayerErrors[0], &lerr))
	assert.Equal(t, config.LayerTemplate, lerr.Layer)
	assert.Equal(t, "hook:beforeCreate", lerr.Phase)
	require.True(t, errors.As(result.LayerErrors[1], &lerr))
	assert.Equal(t, "hook:finishCreate", lerr.Phase)
}

func TestCreate_DryRunSkipsFinishHooks(t *testing.T) {
	h := newHarness(t, map[string]string{
		"web/project.config.yaml": "hooks:\n  finishCreate: {run: [\"git init\"]}\n",
		"web/a.txt":               "a\n",
	})
	opts := h.options()
	opts.TemplateSource = "acme/templates"
	opts.DryRun = true

	// WithCommandRunner(nil) makes any run hook fail, so no error means it was skipped.
	result, err := h.scaffolder().Create(context.Background(), opts)
	require.NoError(t, err)
	assert.Empty(t, result.LayerErrors)
}

func TestCreate_SelectionFailuresAreFatal(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		fetch   error
		tmpl    string
		source  string
		wantErr error
	}{
		{name: "no source", wantErr: ErrNoTemplateSource},
		{name: "fetch failure", source: "acme/x", fetch: errors.New("network down")},
		{name: "no template directories", source: "acme/x", files: map[string]string{"README.md": "x", ".hidden/a": "b"}, wantErr: ErrNoTemplates},
		{name: "unknown template", source: "acme/x", files: map[string]string{"web/a": "x"}, tmpl: "cli", wantErr: ErrUnknownTemplate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.files)
			h.fetcher.err = tt.fetch
			opts := h.options()
			opts.TemplateSource = tt.source
			opts.TemplateName = tt.tmpl

			_, err := h.scaffolder().Create(context.Background(), opts)
			var serr *SelectionError
			require.True(t, errors.As(err, &serr), "got %v", err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.fetch != nil {
				assert.ErrorIs(t, err, tt.fetch)
			}
			assert.Nil(t, h.writer.tree)
		})
	}
}

func TestCreate_DefaultSourceOption(t *testing.T) {
	h := newHarness(t, map[string]string{"web/README.md": "# {{.projectName}}\n"})
	sc := New(config.NewResolver(config.WithWorkDir(h.workDir), config.WithEnvPrefix(""), config.WithCommandRunner(nil)),
		h.fetcher, h.prompter, h.writer, WithDefaultSource("  acme/starters  "))

	_, err := sc.Create(context.Background(), h.options())
	require.NoError(t, err)

	assert.Equal(t, []string{"acme/starters"}, h.fetcher.fetched)
	assert.Contains(t, h.prompter.asked, templateSourcePrompt)
	assert.Equal(t, "# demo\n", string(h.writer.tree["README.md"].Content))
}

func TestCreate_TargetNotEmpty(t *testing.T) {
	h := newHarness(t, map[string]string{"web/a.txt": "a\n"})
	opts := h.options()
	opts.TemplateSource = "acme/templates"
	writeFile(t, opts.TargetDir, "existing.txt", "x")

	_, err := h.scaffolder().Create(context.Background(), opts)
	assert.ErrorIs(t, err, ErrTargetNotEmpty)

	opts.Force = true
	_, err = h.scaffolder().Create(context.Background(), opts)
	assert.NoError(t, err)
}

func TestCreate_RequiresProjectName(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.scaffolder().Create(context.Background(), Options{})
	assert.Error(t, err)
}

func TestCreate_RenderErrorsAreIsolated(t *testing.T) {
	h := newHarness(t, map[string]string{
		"web/good.txt":  "good\n",
		"web/bad.txt":   "{{.broken\n",
		"web/cycle.txt": "---\nextend: ./cycle.txt\nreplace: X\n---\nY\n",
	})
	opts := h.options()
	opts.TemplateSource = "acme/templates"

	result, err := h.scaffolder().Create(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"good.txt"}, h.writer.tree.Paths())
	assert.Len(t, result.Build.Errors, 2)
}

// Package resolver turns a template file into its final payload by applying
// front matter: the when guard, extend inheritance and replace fragments.
package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tacogips/forge/internal/logging"
	"github.com/tacogips/forge/internal/template/frontmatter"
	"github.com/tacogips/forge/internal/template/model"
	"github.com/tacogips/forge/internal/template/render"
)

// ErrBaseNotFound is wrapped when an extend target cannot be located.
var ErrBaseNotFound = errors.New("extend target not found")

// Resolver resolves template files. It holds no per-call state and is safe
// for concurrent use.
type Resolver struct {
	renderer         render.Renderer
	binaryExtensions []string
	logger           zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBinaryExtensions overrides the extensions treated as binary.
func WithBinaryExtensions(exts []string) Option {
	return func(r *Resolver) { r.binaryExtensions = exts }
}

// New creates a Resolver using renderer for all template evaluation.
func New(renderer render.Renderer, opts ...Option) *Resolver {
	r := &Resolver{
		renderer:         renderer,
		binaryExtensions: DefaultBinaryExtensions(),
		logger:           logging.GetLogger("resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve produces the payload for the template file at path.
// A nil payload means the file must not be written.
func (r *Resolver) Resolve(path string, data render.Context) (*model.Payload, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, newRenderError(path, "failed to resolve path", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, newRenderError(abs, "failed to stat template", err)
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, newRenderError(abs, "failed to read template", err)
	}

	if IsBinary(abs, content, r.binaryExtensions) {
		r.logger.Trace().Str("file", abs).Int("size", len(content)).Msg("binary file copied verbatim")
		return &model.Payload{Content: content, Binary: true, Mode: info.Mode().Perm()}, nil
	}

	text, ok, err := r.load(abs, content, data, []string{abs})
	if err != nil {
		return nil, err
	}
	if !ok {
		r.logger.Debug().Str("file", abs).Msg("suppressed by when condition")
		return nil, nil
	}

	rendered, err := r.renderer.Render(abs, text, data)
	if err != nil {
		return nil, newRenderError(abs, "failed to render template", err)
	}

	if strings.TrimSpace(rendered) == "" {
		r.logger.Debug().Str("file", abs).Msg("rendered content is blank, skipping")
		return nil, nil
	}

	return &model.Payload{Content: []byte(rendered), Mode: info.Mode().Perm()}, nil
}

// load returns the unrendered template text for the file at path after its
// own front matter has been applied. ok is false when the when guard, applied
// to the body, renders blank.
// stack holds the extend chain leading to path, path included.
func (r *Resolver) load(path string, content []byte, data render.Context, stack []string) (string, bool, error) {
	meta, body, err := frontmatter.Parse(content)
	if err != nil {
		return "", false, newRenderError(path, "failed to parse front matter", err)
	}
	body = frontmatter.NormalizeBody(body)

	// The guard covers the body: a truthy condition whose body renders
	// blank still suppresses the file before extend is looked at.
	if meta.When != "" {
		guarded, err := r.renderer.Render(path, render.WrapCondition(meta.When, body), data)
		if err != nil {
			return "", false, newRenderError(path, fmt.Sprintf("failed to evaluate when %q", meta.When), err)
		}
		if strings.TrimSpace(guarded) == "" {
			return "", false, nil
		}
	}

	text := body
	if meta.Extend != "" {
		var baseOK bool
		text, baseOK, err = r.extend(path, meta, body, data, stack)
		if err != nil || !baseOK {
			return "", false, err
		}
	} else if len(meta.Replace) > 0 {
		r.logger.Warn().Str("file", path).Msg("replace without extend has no effect")
	}

	return text, true, nil
}

// extend loads the base template named by meta.Extend and merges body into
// it. ok is false when the base template suppressed itself.
func (r *Resolver) extend(path string, meta frontmatter.Meta, body string, data render.Context, stack []string) (string, bool, error) {
	basePath, err := ResolveExtendPath(meta.Extend, filepath.Dir(path))
	if err != nil {
		return "", false, newRenderError(path, fmt.Sprintf("cannot extend %q", meta.Extend), err)
	}

	for _, visiting := range stack {
		if visiting == basePath {
			chain := append(append([]string{}, stack...), basePath)
			return "", false, &CycleError{Chain: chain}
		}
	}

	baseContent, err := os.ReadFile(basePath)
	if err != nil {
		return "", false, newRenderError(path, "failed to read extend target", err)
	}

	r.logger.Trace().Str("file", path).Str("base", basePath).Int("depth", len(stack)).Msg("extending")

	baseText, ok, err := r.load(basePath, baseContent, data, append(stack[:len(stack):len(stack)], basePath))
	if err != nil || !ok {
		return "", false, err
	}

	merged, err := applyReplace(baseText, body, meta.Replace, meta.ReplaceIsList)
	if err != nil {
		return "", false, newRenderError(path, "failed to apply replace", err)
	}
	return merged, true, nil
}

// ResolveExtendPath locates an extend target. Absolute paths are used as
// given. Paths starting with "./" or "../" are relative to dir. Other paths
// are tried relative to dir first, then under a forge_modules directory in
// dir and each of its ancestors.
func ResolveExtendPath(target, dir string) (string, error) {
	if filepath.IsAbs(target) {
		return filepath.Clean(target), nil
	}

	local := filepath.Join(dir, target)
	if isRelativeSpecifier(target) {
		return local, nil
	}
	if fileExists(local) {
		return local, nil
	}

	for current := dir; ; {
		candidate := filepath.Join(current, model.ModulesDir, target)
		if fileExists(candidate) {
			return candidate, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", fmt.Errorf("%w: %s", ErrBaseNotFound, target)
}

func isRelativeSpecifier(p string) bool {
	slashed := filepath.ToSlash(p)
	return strings.HasPrefix(slashed, "./") || strings.HasPrefix(slashed, "../")
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

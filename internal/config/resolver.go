package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tacogips/forge/internal/logging"
)

// Resolver locates and caches the user and template configuration layers.
// A Resolver is meant for one scaffold run and is not safe for concurrent use.
type Resolver struct {
	workDir   string
	envPrefix string
	runner    CommandRunner
	plugins   map[LayerKind][]Plugin
	logger    zerolog.Logger

	userResolved bool
	user         *Layer
	templates    map[string]*Layer
	template     *Layer
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithWorkDir sets the directory the user layer search starts from.
func WithWorkDir(dir string) ResolverOption {
	return func(r *Resolver) { r.workDir = dir }
}

// WithEnvPrefix sets the environment override prefix. Empty disables overrides.
func WithEnvPrefix(prefix string) ResolverOption {
	return func(r *Resolver) { r.envPrefix = prefix }
}

// WithCommandRunner sets the runner used by declarative run hooks.
func WithCommandRunner(runner CommandRunner) ResolverOption {
	return func(r *Resolver) { r.runner = runner }
}

// WithPlugins registers plugins applied to every layer of kind.
func WithPlugins(kind LayerKind, plugins ...Plugin) ResolverOption {
	return func(r *Resolver) { r.plugins[kind] = append(r.plugins[kind], plugins...) }
}

// NewResolver creates a Resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		envPrefix: DefaultEnvPrefix,
		runner:    NewShellRunner(),
		plugins:   make(map[LayerKind][]Plugin),
		templates: make(map[string]*Layer),
		logger:    logging.GetLogger("config"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveUserConfig returns the nearest user layer found by walking from the
// working directory to the filesystem root, merged with environment
// overrides. The result, including "no layer", is cached. A layer that fails
// to load is reported as a *LayerError and treated as absent.
func (r *Resolver) ResolveUserConfig() (*Layer, error) {
	if r.userResolved {
		return r.user, nil
	}
	r.userResolved = true

	start := r.workDir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, NewLayerError(LayerUser, PhaseLoad, err)
		}
		start = wd
	}
	if abs, err := filepath.Abs(start); err == nil {
		start = abs
	}

	path := FindUserConfigFile(start)
	if path == "" && !r.hasEnvOverrides() {
		r.logger.Debug().Str("from", start).Msg("no user config found")
		return nil, nil
	}

	layer, err := r.load(LayerUser, path, r.envPrefix)
	if err != nil {
		return nil, err
	}
	r.user = layer
	return layer, nil
}

// ResolveTemplateConfig returns the layer defined inside the template
// directory dir, caching it per directory. The returned layer becomes the
// active template layer.
func (r *Resolver) ResolveTemplateConfig(dir string) (*Layer, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	if layer, ok := r.templates[abs]; ok {
		r.template = layer
		return layer, nil
	}
	r.templates[abs] = nil
	r.template = nil

	path := FindConfigFile(abs)
	if path == "" {
		r.logger.Debug().Str("dir", abs).Msg("no template config found")
		return nil, nil
	}

	layer, err := r.load(LayerTemplate, path, "")
	if err != nil {
		return nil, err
	}
	r.templates[abs] = layer
	r.template = layer
	return layer, nil
}

func (r *Resolver) load(kind LayerKind, path, envPrefix string) (*Layer, error) {
	f, raw, err := LoadFile(path, envPrefix)
	if err != nil {
		lerr := NewLayerError(kind, PhaseLoad, err)
		r.logger.Error().Err(err).Str("layer", string(kind)).Str("phase", PhaseLoad).Msg("config layer ignored")
		return nil, lerr
	}

	layer := BuildLayer(kind, path, f, raw, r.runner)
	r.logger.Debug().Str("layer", string(kind)).Str("path", path).Msg("config layer loaded")

	for _, p := range r.plugins[kind] {
		if err := r.applyPlugin(p, layer); err != nil {
			r.logger.Error().Err(err).Str("layer", string(kind)).Str("phase", PhasePlugin).
				Str("plugin", p.Name()).Msg("plugin failed")
		}
	}
	return layer, nil
}

// applyPlugin runs one plugin, converting panics into errors.
func (r *Resolver) applyPlugin(p Plugin, layer *Layer) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = NewLayerError(layer.Kind, PhasePlugin, PanicError(rec))
		}
	}()
	if err := p.Apply(layer); err != nil {
		return NewLayerError(layer.Kind, PhasePlugin, err)
	}
	return nil
}

func (r *Resolver) hasEnvOverrides() bool {
	if r.envPrefix == "" {
		return false
	}
	key := envKey(r.envPrefix)
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, r.envPrefix) && key(name) != "" {
			return true
		}
	}
	return false
}

// UserLayer returns the cached user layer, or nil.
func (r *Resolver) UserLayer() *Layer { return r.user }

// TemplateLayer returns the active template layer, or nil.
func (r *Resolver) TemplateLayer() *Layer { return r.template }

// Layers returns the present layers in dispatch order: template, then user.
func (r *Resolver) Layers() []*Layer {
	var layers []*Layer
	if r.template != nil {
		layers = append(layers, r.template)
	}
	if r.user != nil {
		layers = append(layers, r.user)
	}
	return layers
}

// ApplyCLIDefaults fills options left empty by the caller. The user layer
// takes precedence over the template layer.
func (r *Resolver) ApplyCLIDefaults(opts *Options) {
	for _, layer := range []*Layer{r.user, r.template} {
		if layer == nil {
			continue
		}
		if opts.TemplateSource == "" {
			opts.TemplateSource = layer.TemplateSource
		}
		if opts.TemplateName == "" {
			opts.TemplateName = layer.TemplateName
		}
		if opts.Clone == nil && layer.CLIOptions.Clone != nil {
			clone := *layer.CLIOptions.Clone
			opts.Clone = &clone
		}
		if opts.CacheDir == "" {
			opts.CacheDir = layer.CLIOptions.CacheDir
		}
	}
}

// DoNotCopy returns the union of the layers' do-not-copy entries, template
// layer first, without duplicates.
func (r *Resolver) DoNotCopy() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, layer := range r.Layers() {
		for _, p := range layer.DoNotCopyFiles {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

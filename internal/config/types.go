package config

import (
	"context"
	"fmt"
)

// LayerKind identifies a configuration layer.
type LayerKind string

const (
	// LayerUser is the configuration found by walking up from the working directory.
	LayerUser LayerKind = "user"
	// LayerTemplate is the configuration shipped inside the chosen template directory.
	LayerTemplate LayerKind = "template"
)

// HookName is a lifecycle hook point.
type HookName string

const (
	// HookInitCreate runs before the template source is fetched.
	HookInitCreate HookName = "initCreate"
	// HookBeforeCreate runs after configuration is applied, before rendering.
	HookBeforeCreate HookName = "beforeCreate"
	// HookFinishCreate runs after the file tree is written.
	HookFinishCreate HookName = "finishCreate"
)

// HookNames returns every hook point in invocation order.
func HookNames() []HookName {
	return []HookName{HookInitCreate, HookBeforeCreate, HookFinishCreate}
}

// ParseHookName validates a hook name.
func ParseHookName(s string) (HookName, error) {
	for _, n := range HookNames() {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown hook %q", s)
}

// Session is the scaffold state a hook may read and mutate.
type Session interface {
	ProjectName() string
	TargetDir() string
	// AddDoNotCopy excludes template-relative paths or globs from the output.
	AddDoNotCopy(paths ...string)
	// SetData sets a render context value.
	SetData(key string, value any)
	// Data returns a copy of the current render context.
	Data() map[string]any
}

// HookFunc is a hook handler.
type HookFunc func(ctx context.Context, s Session) error

// Plugin extends a layer from Go code.
type Plugin interface {
	Name() string
	Apply(layer *Layer) error
}

// PluginFunc adapts a function to the Plugin interface.
type PluginFunc struct {
	ID string
	Fn func(layer *Layer) error
}

// Name implements Plugin.
func (p PluginFunc) Name() string { return p.ID }

// Apply implements Plugin.
func (p PluginFunc) Apply(layer *Layer) error { return p.Fn(layer) }

// CLIOptions are CLI option defaults a layer contributes.
type CLIOptions struct {
	Clone    *bool  `koanf:"clone"`
	CacheDir string `koanf:"cacheDir"`
}

// Prompt describes one question asked before rendering.
type Prompt struct {
	Name    string   `koanf:"name" yaml:"name"`
	Message string   `koanf:"message" yaml:"message,omitempty"`
	Type    string   `koanf:"type" yaml:"type,omitempty"`
	Default any      `koanf:"default" yaml:"default,omitempty"`
	Choices []string `koanf:"choices" yaml:"choices,omitempty"`
	// When is a condition evaluated against the answers gathered so far.
	When string `koanf:"when" yaml:"when,omitempty"`
}

// Prompt types.
const (
	PromptInput   = "input"
	PromptConfirm = "confirm"
	PromptSelect  = "select"
)

// Label returns the message shown to the user.
func (p Prompt) Label() string {
	if p.Message != "" {
		return p.Message
	}
	return p.Name
}

// HookSpec is the declarative form of a hook.
type HookSpec struct {
	// DoNotCopy is appended to the do-not-copy set.
	DoNotCopy []string `koanf:"doNotCopy"`
	// Data is merged into the render context.
	Data map[string]any `koanf:"data"`
	// Run lists shell commands executed in the target directory.
	Run []string `koanf:"run"`
}

// File is the decoded content of a configuration file.
type File struct {
	CLIOptions     CLIOptions          `koanf:"cliOptions"`
	TemplateSource string              `koanf:"templateSource"`
	TemplateName   string              `koanf:"templateName"`
	TemplateData   map[string]any      `koanf:"templateData"`
	Prompts        []Prompt            `koanf:"prompts"`
	DoNotCopyFiles []string            `koanf:"doNotCopyFiles"`
	Hooks          map[string]HookSpec `koanf:"hooks"`
}

// Layer is one resolved configuration layer.
type Layer struct {
	Kind LayerKind
	// Path is the configuration file, empty when the layer came only from
	// the environment or from plugins.
	Path           string
	CLIOptions     CLIOptions
	TemplateSource string
	TemplateName   string
	TemplateData   map[string]any
	Prompts        []Prompt
	DoNotCopyFiles []string
	Hooks          map[HookName]HookFunc
	// Raw is the merged key/value view the layer was decoded from.
	Raw map[string]any
}

// NewLayer creates an empty layer.
func NewLayer(kind LayerKind, path string) *Layer {
	return &Layer{
		Kind:         kind,
		Path:         path,
		TemplateData: make(map[string]any),
		Hooks:        make(map[HookName]HookFunc),
		Raw:          make(map[string]any),
	}
}

// Hook returns the handler registered for name, or nil. Safe on a nil layer.
func (l *Layer) Hook(name HookName) HookFunc {
	if l == nil || l.Hooks == nil {
		return nil
	}
	return l.Hooks[name]
}

// SetHook registers fn for name. A nil fn removes the hook.
func (l *Layer) SetHook(name HookName, fn HookFunc) {
	if l.Hooks == nil {
		l.Hooks = make(map[HookName]HookFunc)
	}
	if fn == nil {
		delete(l.Hooks, name)
		return
	}
	l.Hooks[name] = fn
}

// Options are the CLI options a layer may default.
type Options struct {
	TemplateSource string
	TemplateName   string
	Clone          *bool
	CacheDir       string
}

// CloneEnabled reports whether clone was requested.
func (o Options) CloneEnabled() bool {
	return o.Clone != nil && *o.Clone
}

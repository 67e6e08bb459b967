package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tacogips/forge/internal/template/model"
)

// DefaultEnvPrefix prefixes environment overrides of the user layer.
const DefaultEnvPrefix = "FORGE_"

// envKeys maps lower-cased environment suffixes to configuration keys.
var envKeys = map[string]string{
	"templatesource":      "templateSource",
	"templatename":        "templateName",
	"clioptions_clone":    "cliOptions.clone",
	"clioptions_cachedir": "cliOptions.cacheDir",
	"donotcopyfiles":      "doNotCopyFiles",
}

// envKey maps FORGE_TEMPLATESOURCE style variables to configuration keys.
// Unknown variables map to "" and are ignored by the provider.
func envKey(prefix string) func(string) string {
	return func(s string) string {
		return envKeys[strings.ToLower(strings.TrimPrefix(s, prefix))]
	}
}

// parserFor picks a koanf parser from the file extension.
func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, NewConfigErrorWithField(ConfigInvalid, path, "", "unsupported configuration format")
	}
}

// FindConfigFile returns the configuration file directly inside dir, trying
// the accepted names in priority order. It returns "" when none exists.
func FindConfigFile(dir string) string {
	for _, name := range model.ConfigFileNames() {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// FindUserConfigFile walks from start up to the filesystem root and returns
// the nearest configuration file, or "".
func FindUserConfigFile(start string) string {
	dir := filepath.Clean(start)
	for {
		if path := FindConfigFile(dir); path != "" {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadKoanf loads path (when set) and then environment overrides (when
// envPrefix is set) into one koanf instance.
func loadKoanf(path, envPrefix string) (*koanf.Koanf, error) {
	k := koanf.New(".")

	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, NewConfigErrorWithCause(ConfigInvalid, path, "failed to parse configuration", err)
		}
	}

	if envPrefix != "" {
		envK := koanf.New(".")
		if err := envK.Load(env.Provider(envPrefix, ".", envKey(envPrefix)), nil); err != nil {
			return nil, NewConfigErrorWithCause(ConfigInvalid, path, "failed to load environment overrides", err)
		}
		if len(envK.Keys()) > 0 {
			if err := k.Load(confmap.Provider(envK.All(), "."), nil); err != nil {
				return nil, NewConfigErrorWithCause(ConfigInvalid, path, "failed to merge environment overrides", err)
			}
		}
	}

	return k, nil
}

// decodeFile unmarshals k into a File.
func decodeFile(k *koanf.Koanf, path string) (*File, error) {
	var f File
	conf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &f,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &f, conf); err != nil {
		return nil, NewConfigErrorWithCause(ConfigInvalid, path, "failed to decode configuration", err)
	}
	return &f, nil
}

// LoadFile reads and validates a configuration file. envPrefix, when set,
// applies environment overrides on top of it; path may then be empty.
func LoadFile(path, envPrefix string) (*File, map[string]any, error) {
	k, err := loadKoanf(path, envPrefix)
	if err != nil {
		return nil, nil, err
	}
	f, err := decodeFile(k, path)
	if err != nil {
		return nil, nil, err
	}
	if err := Validate(f, path); err != nil {
		return nil, nil, err
	}
	return f, k.Raw(), nil
}

// Validate checks a decoded configuration file.
func Validate(f *File, path string) error {
	seen := make(map[string]struct{}, len(f.Prompts))
	for i := range f.Prompts {
		p := &f.Prompts[i]
		if p.Name == "" {
			return NewConfigErrorWithField(ConfigValidationFailed, path, "prompts", "prompt name is required")
		}
		if _, dup := seen[p.Name]; dup {
			return NewConfigErrorWithField(ConfigValidationFailed, path, "prompts."+p.Name, "duplicate prompt name")
		}
		seen[p.Name] = struct{}{}

		if p.Type == "" {
			p.Type = PromptInput
		}
		switch p.Type {
		case PromptInput, PromptConfirm:
		case PromptSelect:
			if len(p.Choices) == 0 {
				return NewConfigErrorWithField(ConfigValidationFailed, path, "prompts."+p.Name, "select prompt requires choices")
			}
		default:
			return NewConfigErrorWithField(ConfigValidationFailed, path, "prompts."+p.Name, "unknown prompt type "+p.Type)
		}
	}

	for name := range f.Hooks {
		if _, err := ParseHookName(name); err != nil {
			return NewConfigErrorWithField(ConfigValidationFailed, path, "hooks."+name, err.Error())
		}
	}
	return nil
}

// BuildLayer converts a decoded file into a layer, compiling declarative
// hooks with runner.
func BuildLayer(kind LayerKind, path string, f *File, raw map[string]any, runner CommandRunner) *Layer {
	layer := NewLayer(kind, path)
	layer.CLIOptions = f.CLIOptions
	layer.TemplateSource = f.TemplateSource
	layer.TemplateName = f.TemplateName
	for k, v := range f.TemplateData {
		layer.TemplateData[k] = v
	}
	layer.Prompts = append(layer.Prompts, f.Prompts...)
	layer.DoNotCopyFiles = append(layer.DoNotCopyFiles, f.DoNotCopyFiles...)
	for name, spec := range f.Hooks {
		hook, _ := ParseHookName(name)
		layer.SetHook(hook, CompileHook(spec, runner))
	}
	if raw != nil {
		layer.Raw = raw
	}
	return layer
}

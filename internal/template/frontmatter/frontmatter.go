// Package frontmatter splits template files into a metadata header and body.
//
// A YAML header is fenced by "---" lines and a TOML header by "+++" lines.
// Both must start on the first line of the file.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	yamlFence = "---"
	tomlFence = "+++"
)

// Meta holds the recognized front matter keys.
type Meta struct {
	// When is a boolean template expression guarding inclusion of the file.
	When string
	// Extend is the path of a base template.
	Extend string
	// Replace lists the patterns replaced in the base template.
	Replace []string
	// ReplaceIsList is false when replace was given as a single scalar pattern.
	ReplaceIsList bool
}

// HasMeta reports whether any recognized key was set.
func (m Meta) HasMeta() bool {
	return m.When != "" || m.Extend != "" || len(m.Replace) > 0
}

// rawMeta is the decoding target for both formats.
type rawMeta struct {
	When    any    `yaml:"when" toml:"when"`
	Extend  string `yaml:"extend" toml:"extend"`
	Replace any    `yaml:"replace" toml:"replace"`
}

// Parse splits input into front matter and body. Input without a header
// yields an empty Meta and the whole input as body.
func Parse(input []byte) (Meta, string, error) {
	text := strings.TrimPrefix(string(input), "\ufeff")

	fence, ok := detectFence(text)
	if !ok {
		return Meta{}, text, nil
	}

	header, body, ok := splitHeader(text, fence)
	if !ok {
		// An opening fence without a closing one is ordinary content.
		return Meta{}, text, nil
	}

	var raw rawMeta
	switch fence {
	case yamlFence:
		if err := yaml.Unmarshal([]byte(header), &raw); err != nil {
			return Meta{}, "", fmt.Errorf("invalid YAML front matter: %w", err)
		}
	case tomlFence:
		if err := toml.Unmarshal([]byte(header), &raw); err != nil {
			return Meta{}, "", fmt.Errorf("invalid TOML front matter: %w", err)
		}
	}

	meta, err := raw.normalize()
	if err != nil {
		return Meta{}, "", err
	}
	return meta, body, nil
}

// NormalizeBody trims surrounding whitespace and terminates the text with
// exactly one newline.
func NormalizeBody(body string) string {
	return strings.TrimSpace(body) + "\n"
}

func detectFence(text string) (string, bool) {
	firstLine, _, _ := strings.Cut(text, "\n")
	firstLine = strings.TrimRight(firstLine, " \t\r")
	switch firstLine {
	case yamlFence:
		return yamlFence, true
	case tomlFence:
		return tomlFence, true
	}
	return "", false
}

// splitHeader returns the text between the opening fence line and the next
// line consisting solely of the fence, and everything after that line.
func splitHeader(text, fence string) (string, string, bool) {
	_, rest, _ := strings.Cut(text, "\n")

	var header bytes.Buffer
	for {
		line, remaining, found := strings.Cut(rest, "\n")
		if strings.TrimRight(line, " \t\r") == fence {
			return header.String(), remaining, true
		}
		if !found {
			return "", "", false
		}
		header.WriteString(line)
		header.WriteByte('\n')
		rest = remaining
	}
}

func (r rawMeta) normalize() (Meta, error) {
	meta := Meta{Extend: strings.TrimSpace(r.Extend)}

	switch v := r.When.(type) {
	case nil:
	case string:
		meta.When = strings.TrimSpace(v)
	case bool:
		meta.When = fmt.Sprintf("%t", v)
	default:
		meta.When = fmt.Sprintf("%v", v)
	}

	switch v := r.Replace.(type) {
	case nil:
	case string:
		meta.Replace = []string{v}
	case []any:
		meta.ReplaceIsList = true
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return Meta{}, fmt.Errorf("replace[%d] must be a string, got %T", i, item)
			}
			meta.Replace = append(meta.Replace, s)
		}
	default:
		return Meta{}, fmt.Errorf("replace must be a string or a list of strings, got %T", v)
	}

	return meta, nil
}

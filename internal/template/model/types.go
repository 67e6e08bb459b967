package model

import (
	"io/fs"
	"path"
	"sort"
)

// Special file and directory names used by forge.
const (
	// ConfigBaseName is the base name of both the user-level and the
	// template-level configuration file.
	ConfigBaseName = "project.config"
	// ModulesDir is searched, walking upward, when resolving bare extend paths.
	ModulesDir = "forge_modules"
	// SourceHashFile is the build cache marker written to an output directory.
	SourceHashFile = ".srchash"
)

// ConfigFileNames returns the accepted configuration file names in priority order.
func ConfigFileNames() []string {
	return []string{
		ConfigBaseName + ".yaml",
		ConfigBaseName + ".yml",
		ConfigBaseName + ".toml",
	}
}

// IsConfigFile reports whether name is one of the configuration file names.
func IsConfigFile(name string) bool {
	for _, n := range ConfigFileNames() {
		if n == name {
			return true
		}
	}
	return false
}

// SkippedDirs returns directory names never descended into when listing
// template or build files.
func SkippedDirs() []string {
	return []string{".git", "node_modules", ModulesDir}
}

// IgnoredFileNames returns file base names never listed as template files.
func IgnoredFileNames() []string {
	return []string{".DS_Store", ".npmrc", "Thumbs.db"}
}

// IsIgnoredFile reports whether the base name of rel is ignored.
func IsIgnoredFile(rel string) bool {
	base := path.Base(rel)
	for _, name := range IgnoredFileNames() {
		if base == name {
			return true
		}
	}
	return false
}

// TemplateFile represents a single file discovered in a template directory.
type TemplateFile struct {
	// Path is the slash-separated path relative to the template directory.
	Path string
	// AbsPath is the absolute path on disk.
	AbsPath string
	// Mode is the file permission mode.
	Mode fs.FileMode
}

// Payload is the materialized content of one target file.
type Payload struct {
	// Content is the rendered text or the raw bytes of a binary file.
	Content []byte
	// Binary marks content that was copied without rendering.
	Binary bool
	// Mode is the permission mode carried over from the template file.
	Mode fs.FileMode
}

// FileTree maps target-relative paths to payloads.
type FileTree map[string]Payload

// Paths returns the target paths in sorted order.
func (t FileTree) Paths() []string {
	paths := make([]string, 0, len(t))
	for p := range t {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

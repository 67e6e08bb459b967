package resolver

import (
	"bytes"
	"path/filepath"
	"strings"
)

// sniffLen is how many leading bytes are inspected for NUL bytes.
const sniffLen = 8000

// DefaultBinaryExtensions returns extensions always treated as binary.
func DefaultBinaryExtensions() []string {
	return []string{
		// Images
		".png", ".jpg", ".jpeg", ".gif", ".bmp", ".ico", ".webp",
		// Archives
		".zip", ".tar", ".gz", ".bz2", ".xz", ".rar", ".7z",
		// Executables
		".exe", ".dll", ".so", ".dylib", ".bin",
		// Media
		".mp3", ".mp4", ".avi", ".mov", ".wav",
		// Documents
		".pdf", ".doc", ".docx", ".xls", ".xlsx",
		// Fonts
		".ttf", ".otf", ".woff", ".woff2", ".eot",
	}
}

// IsBinary reports whether a file must be copied verbatim.
// A file is binary when its extension is listed or its leading bytes
// contain a NUL byte.
func IsBinary(path string, content []byte, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, binaryExt := range extensions {
		if ext == binaryExt {
			return true
		}
	}

	checkLen := len(content)
	if checkLen > sniffLen {
		checkLen = sniffLen
	}
	return bytes.IndexByte(content[:checkLen], 0) != -1
}

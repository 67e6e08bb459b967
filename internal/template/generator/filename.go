package generator

import (
	"fmt"
	"path/filepath"
	"strings"
)

// packageManifestAlias is the segment name that materializes as package.json.
// Templates ship it under this alias so tooling does not treat the template
// directory itself as a package.
const packageManifestAlias = "pkg"

// TransformPath maps a slash-separated template-relative path to its target
// path. Each segment is transformed independently:
//   - "__name" becomes "_name"
//   - "_name" becomes ".name"
//   - "pkg" becomes "package.json"
//   - anything else is unchanged
func TransformPath(rel string) string {
	segments := strings.Split(filepath.ToSlash(rel), "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		out = append(out, TransformSegment(seg))
	}
	return strings.Join(out, "/")
}

// TransformSegment applies the path rules to one segment.
func TransformSegment(seg string) string {
	switch {
	case strings.HasPrefix(seg, "__"):
		return seg[1:]
	case strings.HasPrefix(seg, "_"):
		return "." + seg[1:]
	case seg == packageManifestAlias:
		return "package.json"
	default:
		return seg
	}
}

// ValidateTargetPath rejects target paths that would escape the target directory.
func ValidateTargetPath(target string) error {
	if target == "" {
		return fmt.Errorf("invalid target path: empty")
	}
	if filepath.IsAbs(target) || strings.HasPrefix(target, "/") {
		return fmt.Errorf("invalid target path: %q is absolute", target)
	}
	cleaned := filepath.Clean(filepath.FromSlash(target))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("invalid target path: %q escapes the target directory", target)
	}
	return nil
}

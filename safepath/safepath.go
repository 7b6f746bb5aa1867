// Package safepath validates the relative paths that tool inputs are
// allowed to carry. Tools address files relative to the execution
// environment's working directory and must not be able to name
// anything above it.
package safepath

import (
	"fmt"
	"path"
	"strings"
)

// CheckRelative reports an error if p is not a safe /-separated
// relative path: absolute paths, ~-prefixed paths, NUL bytes, and
// paths that normalize to an ancestor of the root (leading ..) are all
// rejected. Internal .. segments that stay inside the root, such as
// a/../b, are fine.
func CheckRelative(p string) error {
	if p == "" {
		return fmt.Errorf("empty path")
	}
	if strings.ContainsRune(p, 0) {
		return fmt.Errorf("path contains a null byte")
	}
	if strings.HasPrefix(p, "/") {
		return fmt.Errorf("path %q is absolute; paths must be relative to the working directory", p)
	}
	if strings.HasPrefix(p, "~") {
		return fmt.Errorf("path %q starts with ~; home expansion is not supported", p)
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("path %q escapes the working directory", p)
	}
	return nil
}

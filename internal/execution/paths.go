package execution

import (
	"path/filepath"
	"strings"
)

// ResolvePath resolves a user-supplied path: "~" and "~/x" expand to home, absolute paths
// are cleaned, anything else is joined to cwd.
func ResolvePath(path, cwd, home string) string {
	switch {
	case path == "~":
		return filepath.Clean(home)
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(home, path[2:])
	case filepath.IsAbs(path):
		return filepath.Clean(path)
	default:
		return filepath.Join(cwd, path)
	}
}

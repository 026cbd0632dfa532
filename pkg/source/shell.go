package source

import (
	"strings"
)

// shellEscape wraps s in single quotes, escaping embedded single quotes,
// so it is passed to the remote shell as one literal word.
func shellEscape(s string) string {
	escaped := strings.ReplaceAll(s, "'", "'\\''")
	return "'" + escaped + "'"
}

// shellCommand joins a command and its arguments into one escaped shell line.
func shellCommand(name string, args ...string) string {
	words := make([]string, 0, len(args)+1)
	words = append(words, shellEscape(name))
	for _, a := range args {
		words = append(words, shellEscape(a))
	}
	return strings.Join(words, " ")
}

// validatePath reports whether path is an absolute path made only of
// alphanumerics, dash, underscore, slash and dot, with no ".." component.
func validatePath(path string) bool {
	if path == "" || path[0] != '/' {
		return false
	}
	if strings.Contains(path, "..") {
		return false
	}
	for _, c := range path {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || c == '-' || c == '_' ||
			c == '/' || c == '.') {
			return false
		}
	}
	return true
}

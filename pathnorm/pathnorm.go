// Package pathnorm collapses dot-segments and duplicate slashes out of a
// URL path, the way a browser resolves "/a/b/../c" before issuing a
// request. Normalization is idempotent: running it twice is the same as
// running it once.
package pathnorm

import (
	"strings"

	"github.com/ygp4ph/urldetector/urlutil"
)

// Normalize decodes path, collapses "." and ".." segments and repeated
// slashes, and re-encodes the result.
func Normalize(path string) string {
	if path == "" {
		return "/"
	}

	decoded := urlutil.Decode(path)
	absolute := strings.HasPrefix(decoded, "/")
	trailingSlash := len(decoded) > 1 && strings.HasSuffix(decoded, "/")

	var stack []string
	for _, seg := range strings.Split(decoded, "/") {
		switch seg {
		case "", ".":
			// Skip: "" collapses repeated slashes, "." is a no-op segment.
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, seg)
		}
	}

	var b strings.Builder
	if absolute {
		b.WriteByte('/')
	}
	b.WriteString(strings.Join(stack, "/"))
	if trailingSlash && len(stack) > 0 {
		b.WriteByte('/')
	}

	result := b.String()
	if result == "" {
		result = "/"
	}
	return urlutil.Encode(result)
}

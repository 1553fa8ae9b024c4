package location

import (
	"net/url"
	"strings"
)

// Scheme is the fixed prefix Rekordbox uses for local file references.
const Scheme = "file://localhost/"

// Decode extracts the filename from a location reference.
// The scheme prefix is stripped if present; otherwise the whole value is
// treated as a path. Percent escapes are decoded (%2B etc. — a literal '+'
// is never treated as a space), and the segment after the last '/' is
// returned. A malformed escape sequence leaves the path undecoded rather
// than failing, matching how Rekordbox itself tolerates such values.
func Decode(reference string) string {
	path := strings.TrimPrefix(reference, Scheme)

	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}

	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		path = path[i+1:]
	}

	return path
}

// Encode builds a location reference for filename under root. Root and
// filename are joined with exactly one '/' regardless of trailing
// separators on root, and every byte outside the unreserved set
// (ALPHA / DIGIT / '-' '_' '.' '~') is percent-encoded, except '/' which
// separates path segments.
func Encode(root, filename string) string {
	path := strings.TrimRight(root, "/") + "/" + filename
	return Scheme + escapePath(path)
}

const upperhex = "0123456789ABCDEF"

// escapePath percent-encodes a path the way urllib's quote does: only
// unreserved characters and the segment separator pass through. This is
// stricter than url.PathEscape, which leaves RFC 3986 sub-delims alone.
func escapePath(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	for i := 0; i < len(path); i++ {
		c := path[i]
		if isUnreserved(c) || c == '/' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0xf])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.' || c == '~'
}

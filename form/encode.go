package form

import (
	"net/url"
	"sort"
	"strings"
)

// Encode builds a form body from an unordered map. Keys are sorted so the
// output is stable between calls.
func Encode(m map[string]string) []byte {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	encoded := make([]string, 0, len(keys))
	for _, k := range keys {
		encoded = append(encoded, EscapeComponent(k)+"="+EscapeComponent(m[k]))
	}
	return []byte(strings.Join(encoded, "&"))
}

// EscapeComponent percent-encodes s as a URI component: every byte except
// A-Z a-z 0-9 and - _ . ! ~ * ' ( ) becomes %XX, spaces included.
func EscapeComponent(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// UnescapeComponent reverses EscapeComponent. A literal '+' is kept as '+'.
func UnescapeComponent(s string) (string, error) {
	return url.PathUnescape(s)
}

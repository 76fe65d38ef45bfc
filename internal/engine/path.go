package engine

import (
	"strconv"
	"strings"
)

// Path builds JSON Pointer paths in a chain-safe way. The zero value is the
// document root.
type Path struct {
	parts []string
}

// Root returns the root path.
func Root() Path { return Path{} }

// Field appends an object member. Tokens are escaped per RFC 6901.
func (p Path) Field(name string) Path {
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return Path{parts: append(append([]string{}, p.parts...), esc)}
}

// Index appends an array position.
func (p Path) Index(i int) Path {
	return Path{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

// Pointer renders the path; the root renders as "/".
func (p Path) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

func (p Path) String() string { return p.Pointer() }

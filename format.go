package goalps

import (
	"mime"
	"sort"
	"strings"
	"sync"
)

// Media types of the supported encodings.
const (
	MediaTypeJSON = "application/alps+json"
	MediaTypeXML  = "application/alps+xml"
	MediaTypeYAML = "application/alps+yaml"
)

// Format converts documents from and to one encoding. Implementations live
// in the format/ subpackages and are made available through RegisterFormat
// (importing github.com/reoring/goalps/formats registers all of them).
type Format interface {
	// MediaType is the canonical media type of the encoding.
	MediaType() string
	// Aliases lists further media types accepted for the encoding.
	Aliases() []string
	// Decode parses one document. Errors should carry Issues.
	Decode(data []byte, opt ParseOpt) (*Document, error)
	// Encode serializes doc.
	Encode(doc *Document, opt WriteOpt) ([]byte, error)
	// Name is a short label used in logs and CLI flags ("json", "xml").
	Name() string
}

var (
	formatsMu sync.RWMutex
	formats   = map[string]Format{}
)

// RegisterFormat makes f available under its media type and aliases,
// replacing earlier registrations for the same types. Nil values are ignored.
func RegisterFormat(f Format) {
	if f == nil {
		return
	}
	formatsMu.Lock()
	defer formatsMu.Unlock()
	formats[normalizeMediaType(f.MediaType())] = f
	for _, a := range f.Aliases() {
		formats[normalizeMediaType(a)] = f
	}
}

// LookupFormat returns the format registered for mediaType. Matching ignores
// case and media type parameters such as charset.
func LookupFormat(mediaType string) (Format, bool) {
	formatsMu.RLock()
	defer formatsMu.RUnlock()
	f, ok := formats[normalizeMediaType(mediaType)]
	return f, ok
}

// MediaTypes returns the canonical media types of all registered formats.
func MediaTypes() []string {
	formatsMu.RLock()
	defer formatsMu.RUnlock()
	seen := map[string]struct{}{}
	for _, f := range formats {
		seen[f.MediaType()] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for mt := range seen {
		out = append(out, mt)
	}
	sort.Strings(out)
	return out
}

func normalizeMediaType(mt string) string {
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		return parsed
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

func lookupOrIssue(mediaType string) (Format, error) {
	f, ok := LookupFormat(mediaType)
	if !ok {
		return nil, singleIssue(CodeUnsupportedMediaType,
			"unsupported media type "+strings.TrimSpace(mediaType)+", expected one of ["+strings.Join(MediaTypes(), ", ")+"]")
	}
	return f, nil
}

package goalps

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Identifier problems
	CodeMissingID    = "missing_id"
	CodeInvalidID    = "invalid_id"
	CodeMalformedURI = "malformed_uri"
	CodeDuplicatedID = "duplicated_id"
	// Scalar field problems
	CodeInvalidName       = "invalid_name"
	CodeInvalidType       = "invalid_type"
	CodeInvalidReturnType = "invalid_return_type"
	CodeInvalidHref       = "invalid_href"
	CodeInvalidVersion    = "invalid_version"
	// Shape problems
	CodeInvalidDescriptor    = "invalid_descriptor"
	CodeInvalidDocumentation = "invalid_documentation"
	CodeInvalidLink          = "invalid_link"
	CodeInvalidExtension     = "invalid_extension"
	CodeInvalidDocument      = "invalid_document"
	// Element-stream structure
	CodeUnterminatedElement = "unterminated_element"
	CodeUnexpectedElement   = "unexpected_element"
	// Facade
	CodeUnsupportedMediaType = "unsupported_media_type"
	// Raw input (syntax, enforcement)
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
	CodeTruncated    = "truncated"
)

// Issue describes one problem found while parsing or writing a document.
type Issue struct {
	Code    string `json:"code"`           // One of the codes listed above.
	Path    string `json:"path,omitempty"` // JSON Pointer for tree formats, element path for XML.
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`   // 1-based; 0 when unknown.
	Column  int    `json:"column,omitempty"` // 1-based; 0 when unknown.
	Cause   error  `json:"-"`                // Optional: underlying error.
}

// Error formats the issue as "code at path: message (line l, column c)".
func (i Issue) Error() string {
	b := &strings.Builder{}
	b.WriteString(i.Code)
	if i.Path != "" {
		fmt.Fprintf(b, " at %s", i.Path)
	}
	if i.Message != "" {
		fmt.Fprintf(b, ": %s", i.Message)
	}
	if i.Line > 0 {
		fmt.Fprintf(b, " (line %d, column %d)", i.Line, i.Column)
	}
	return b.String()
}

// Issues is a collection of issues that implements error. Parsing is
// fail-fast, so errors returned by this package carry exactly one Issue.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss[i].Error())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the cause of the first issue.
func (iss Issues) Unwrap() error {
	if len(iss) == 0 {
		return nil
	}
	return iss[0].Cause
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// CodeOf returns the code of the first issue carried by err, or "" when err
// does not carry Issues.
func CodeOf(err error) string {
	iss, ok := AsIssues(err)
	if !ok || len(iss) == 0 {
		return ""
	}
	return iss[0].Code
}

// HasCode reports whether err carries an issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

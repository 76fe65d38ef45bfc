package goalps

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Validation rules applied to raw field values before they become model
// values. Tree codecs pass decoded values (string, json.Number, map, ...);
// the XML codec passes attribute strings. present is false when the field
// was absent altogether.

// CheckID validates a descriptor identifier.
func CheckID(v any, present bool) (string, error) {
	if !present || v == nil {
		return "", Errorf(CodeMissingID, "the 'id' property value must be a valid URI represented as a string")
	}
	s, ok := v.(string)
	if !ok {
		return "", Errorf(CodeInvalidID, "the 'id' property value must be a valid URI represented as a string but was %s", Describe(v))
	}
	if !IsURIReference(s) {
		return "", Errorf(CodeMalformedURI, "the 'id' must be a valid URI but was %q", s)
	}
	return s, nil
}

// CheckName validates a display name.
func CheckName(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", Errorf(CodeInvalidName, "the 'name' property value must be a string but was %s", Describe(v))
	}
	return s, nil
}

// CheckType validates a descriptor type, matching case-insensitively.
func CheckType(v any) (DescriptorType, error) {
	s, ok := v.(string)
	if !ok {
		return "", Errorf(CodeInvalidType, "the 'type' property value must be a string but was %s", Describe(v))
	}
	for _, t := range DescriptorTypes() {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	names := make([]string, 0, 4)
	for _, t := range DescriptorTypes() {
		names = append(names, string(t))
	}
	return "", Errorf(CodeInvalidType, "the 'type' property value must be one of %s but was %q", strings.Join(names, ", "), s)
}

// CheckReturnType validates the 'rt' value.
func CheckReturnType(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", Errorf(CodeInvalidReturnType, "the 'rt' property value must be a URI represented as a string but was %s", Describe(v))
	}
	if !IsURIReference(s) {
		return "", Errorf(CodeMalformedURI, "the 'rt' property value must be a valid URI but was %q", s)
	}
	return s, nil
}

// CheckHref validates an 'href' value of a descriptor, link, documentation
// or extension. Resolution of the target is never attempted.
func CheckHref(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", Errorf(CodeInvalidHref, "the 'href' property value must be a URI represented as a string but was %s", Describe(v))
	}
	if !IsURIReference(s) {
		return "", Errorf(CodeMalformedURI, "the 'href' property value must be a valid URI but was %q", s)
	}
	return s, nil
}

// IsURIReference reports whether s is an absolute URI or a relative
// reference. The grammar is RFC 3986 with non-ASCII runes admitted (IRI
// style); whitespace, control characters and the characters <>"{}|\^`
// are rejected, percent signs must start a two digit hex escape and at most
// one '#' may appear.
func IsURIReference(s string) bool {
	if s == "" || !utf8.ValidString(s) {
		return false
	}
	hashes := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= utf8.RuneSelf:
			// non-ASCII byte of a valid UTF-8 sequence
		case isUnreserved(c), isSubDelim(c):
		case c == ':', c == '/', c == '?', c == '[', c == ']', c == '@':
		case c == '#':
			hashes++
			if hashes > 1 {
				return false
			}
		case c == '%':
			if i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2]) {
				return false
			}
			i += 2
		default:
			return false
		}
	}
	_, err := url.Parse(s)
	return err == nil
}

func isUnreserved(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

func isSubDelim(c byte) bool {
	return strings.IndexByte("!$&'()*+,;=", c) >= 0
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// Describe renders a raw decoded value for error messages.
func Describe(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", t)
	case map[string]any:
		return "an object"
	case []any:
		return "an array"
	case bool:
		return fmt.Sprintf("boolean %t", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

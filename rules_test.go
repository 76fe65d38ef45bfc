package goalps_test

import (
	"encoding/json"
	"strings"
	"testing"

	goalps "github.com/reoring/goalps"
)

func TestIsURIReference(t *testing.T) {
	accept := []string{
		"http://e/x",
		"#search",
		"urn:x:y",
		"rel/ative?q=1",
		"http://e/%20x",
		"http://e/ü",
		"contact",
		"http://[::1]:8080/a",
	}
	for _, s := range accept {
		if !goalps.IsURIReference(s) {
			t.Errorf("expected %q to be accepted", s)
		}
	}
	reject := []string{
		"",
		"not a uri with spaces and <>",
		"http://e/%zz",
		"http://e/%2",
		"a#b#c",
		"tab\there",
		"quote\"d",
	}
	for _, s := range reject {
		if goalps.IsURIReference(s) {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestCheckID(t *testing.T) {
	cases := []struct {
		v       any
		present bool
		code    string
	}{
		{nil, false, goalps.CodeMissingID},
		{nil, true, goalps.CodeMissingID},
		{json.Number("1"), true, goalps.CodeInvalidID},
		{true, true, goalps.CodeInvalidID},
		{"", true, goalps.CodeMalformedURI},
		{"a b", true, goalps.CodeMalformedURI},
		{"http://e/x", true, ""},
	}
	for _, c := range cases {
		_, err := goalps.CheckID(c.v, c.present)
		if got := goalps.CodeOf(err); got != c.code {
			t.Errorf("CheckID(%#v, %v): got %q want %q", c.v, c.present, got, c.code)
		}
	}
}

func TestCheckType(t *testing.T) {
	for in, want := range map[string]goalps.DescriptorType{
		"semantic": goalps.Semantic, "SAFE": goalps.Safe, "Unsafe": goalps.Unsafe, "idemPotent": goalps.Idempotent,
	} {
		got, err := goalps.CheckType(in)
		if err != nil || got != want {
			t.Errorf("CheckType(%q) = %q, %v", in, got, err)
		}
	}
	_, err := goalps.CheckType("delete")
	if goalps.CodeOf(err) != goalps.CodeInvalidType {
		t.Fatalf("expected invalid_type, got %v", err)
	}
	if !strings.Contains(err.Error(), "semantic, safe, unsafe, idempotent") || !strings.Contains(err.Error(), `"delete"`) {
		t.Fatalf("message must name legal values and the offending one: %v", err)
	}
	if _, err := goalps.CheckType(1.5); goalps.CodeOf(err) != goalps.CodeInvalidType {
		t.Fatalf("non-string type must be invalid_type, got %v", err)
	}
}

func TestCheckScalars(t *testing.T) {
	if _, err := goalps.CheckName(map[string]any{}); goalps.CodeOf(err) != goalps.CodeInvalidName {
		t.Fatalf("expected invalid_name, got %v", err)
	}
	if _, err := goalps.CheckReturnType(nil); goalps.CodeOf(err) != goalps.CodeInvalidReturnType {
		t.Fatalf("expected invalid_return_type, got %v", err)
	}
	if _, err := goalps.CheckReturnType("a b"); goalps.CodeOf(err) != goalps.CodeMalformedURI {
		t.Fatalf("expected malformed_uri, got %v", err)
	}
	if _, err := goalps.CheckHref([]any{}); goalps.CodeOf(err) != goalps.CodeInvalidHref {
		t.Fatalf("expected invalid_href, got %v", err)
	}
	if s, err := goalps.CheckHref("http://unreachable.invalid/profile#x"); err != nil || s == "" {
		t.Fatalf("href targets are never resolved: %v", err)
	}
}

func TestDescribe(t *testing.T) {
	cases := map[string]any{
		"null":          nil,
		`"s"`:           "s",
		"an object":     map[string]any{},
		"an array":      []any{},
		"boolean false": false,
		"12":            json.Number("12"),
	}
	for want, v := range cases {
		if got := goalps.Describe(v); got != want {
			t.Errorf("Describe(%#v) = %q want %q", v, got, want)
		}
	}
}

package alpsyaml_test

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goalps "github.com/reoring/goalps"
	"github.com/reoring/goalps/format/alpsyaml"
)

const contacts = `
alps:
  version: "1.0"
  doc:
    format: html
    value: <p>Contacts</p>
  link:
    rel: self
    href: http://example.org/contacts
  descriptor:
    - id: contact
      type: semantic
      doc: A contact
      descriptor:
        - id: fullName
          name: name
        - id: email
    - id: search
      type: safe
      rt: "#contact"
      descriptor:
        id: query
        href: "#fullName"
    - id: remove
      type: idempotent
      link:
        rel: help
        href: http://example.org/help
  ext:
    id: x-owner
    value: team
`

func decode(t *testing.T, src string, opt ...goalps.ParseOpt) (*goalps.Document, error) {
	t.Helper()
	var o goalps.ParseOpt
	if len(opt) > 0 {
		o = opt[0]
	}
	return alpsyaml.New().Decode([]byte(src), o)
}

func TestDecode_Contacts(t *testing.T) {
	doc, err := decode(t, contacts)
	require.NoError(t, err)

	assert.Equal(t, "1.0", doc.Version)
	require.Len(t, doc.Descriptors, 3)
	assert.Equal(t, "<p>Contacts</p>", doc.Documentation[0].Content)
	assert.Equal(t, goalps.Safe, doc.Find("search").Type)
	assert.Equal(t, "#contact", doc.Find("search").ReturnType)
	assert.Same(t, doc.Find("search"), doc.Find("query").Parent())
	assert.Equal(t, "http://example.org/help", doc.Find("remove").Links[0].Href)
	assert.Equal(t, "team", doc.Extensions[0].Value)
}

func TestRoundTrip(t *testing.T) {
	doc, err := decode(t, contacts)
	require.NoError(t, err)

	for _, opt := range []goalps.WriteOpt{{}, {Pretty: true}, {Pretty: true, Verbose: true}} {
		out, err := alpsyaml.New().Encode(doc, opt)
		require.NoError(t, err)
		again, err := decode(t, string(out))
		require.NoError(t, err, "output:\n%s", out)
		assert.True(t, goalps.Equal(doc, again), "round trip with %+v changed the document:\n%s", opt, out)
	}
}

func TestEncode_Pretty(t *testing.T) {
	doc := goalps.NewDocument()
	d := goalps.NewDescriptor("a")
	d.Type = goalps.Unsafe
	doc.AddDescriptor(d)

	out, err := alpsyaml.New().Encode(doc, goalps.WriteOpt{Pretty: true})
	require.NoError(t, err)
	want := "alps:\n  version: \"1.0\"\n  descriptor:\n    id: a\n    type: unsafe\n"
	assert.Equal(t, want, string(out))
}

func TestEncode_FlowWhenNotPretty(t *testing.T) {
	doc := goalps.NewDocument()
	doc.AddDescriptor(goalps.NewDescriptor("a"))

	out, err := alpsyaml.New().Encode(doc, goalps.WriteOpt{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "{"), string(out))
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(string(out)), "\n")+1, "flow output must fit on one line: %q", out)
}

func TestNestedExtension(t *testing.T) {
	doc, err := decode(t, "alps:\n  ext:\n    id: x-meta\n    value:\n      enabled: true\n      weights: [1, 2.5]\n")
	require.NoError(t, err)
	nested, ok := doc.Extensions[0].Nested.(map[string]any)
	require.True(t, ok, "nested value: %#v", doc.Extensions[0].Nested)
	assert.Equal(t, true, nested["enabled"])
	assert.Equal(t, []any{int64(1), 2.5}, nested["weights"])

	out, err := alpsyaml.New().Encode(doc, goalps.WriteOpt{Pretty: true})
	require.NoError(t, err)
	again, err := decode(t, string(out))
	require.NoError(t, err)
	assert.True(t, goalps.Equal(doc, again), string(out))
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		name, src, code, path string
	}{
		{"empty", "", goalps.CodeParseError, "/"},
		{"syntax", "alps: [unclosed", goalps.CodeParseError, "/"},
		{"scalar-root", "just text", goalps.CodeInvalidDocument, "/"},
		{"unquoted-version", "alps:\n  version: 1.0\n", goalps.CodeInvalidVersion, "/alps/version"},
		{"numeric-id", "alps:\n  descriptor:\n    id: 42\n", goalps.CodeInvalidID, "/alps/descriptor/id"},
		{"duplicated-id", "alps:\n  descriptor:\n    - id: a\n    - id: b\n      descriptor:\n        id: a\n", goalps.CodeDuplicatedID, "/alps/descriptor/1/descriptor/id"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := decode(t, c.src)
			require.Error(t, err)
			iss, ok := goalps.AsIssues(err)
			require.True(t, ok, "error must carry issues: %v", err)
			assert.Equal(t, c.code, iss[0].Code)
			assert.Equal(t, c.path, iss[0].Path)
		})
	}
}

func TestDecode_DuplicateKeys(t *testing.T) {
	src := "alps:\n  version: \"1.0\"\n  version: \"1.1\"\n"

	_, err := decode(t, src, goalps.ParseOpt{Strictness: goalps.Strictness{OnDuplicateKey: goalps.Error}})
	require.Error(t, err)
	iss, _ := goalps.AsIssues(err)
	assert.Equal(t, goalps.CodeDuplicateKey, iss[0].Code)
	assert.Equal(t, "/alps/version", iss[0].Path)
	assert.Equal(t, 3, iss[0].Line)
	assert.Contains(t, iss[0].Message, "first at 2:3")

	var warnings []goalps.Issue
	doc, err := decode(t, src, goalps.ParseOpt{
		Strictness: goalps.Strictness{OnDuplicateKey: goalps.Warn},
		OnWarning:  func(is goalps.Issue) { warnings = append(warnings, is) },
	})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "1.1", doc.Version)
}

func TestDecode_MaxDepth(t *testing.T) {
	src := "alps:\n  descriptor:\n    id: a\n    descriptor:\n      id: b\n"
	_, err := decode(t, src, goalps.ParseOpt{MaxDepth: 3})
	require.Error(t, err)
	assert.Equal(t, goalps.CodeParseError, goalps.CodeOf(err))
	assert.Equal(t, "/alps/descriptor/descriptor", err.(goalps.Issues)[0].Path)

	_, err = decode(t, src, goalps.ParseOpt{MaxDepth: 4})
	require.NoError(t, err)
}

func TestDecode_Anchors(t *testing.T) {
	src := "alps:\n  doc: &d shared text\n  descriptor:\n    id: a\n    doc: *d\n"
	doc, err := decode(t, src)
	require.NoError(t, err)
	assert.Equal(t, "shared text", doc.Find("a").Documentation[0].Content)
}

func TestDecode_ExcessiveAliasing(t *testing.T) {
	var b strings.Builder
	b.WriteString("alps:\n  ext:\n    id: x\n    value:\n")
	b.WriteString("      a: &a [\"lol\",\"lol\",\"lol\",\"lol\",\"lol\",\"lol\",\"lol\",\"lol\",\"lol\",\"lol\"]\n")
	prev := "a"
	for _, name := range []string{"b", "c", "d", "e", "f", "g", "h", "i"} {
		refs := strings.TrimSuffix(strings.Repeat("*"+prev+",", 10), ",")
		b.WriteString("      " + name + ": &" + name + " [" + refs + "]\n")
		prev = name
	}

	done := make(chan error, 1)
	go func() {
		_, err := decode(t, b.String())
		done <- err
	}()
	select {
	case err := <-done:
		require.Error(t, err)
		assert.Equal(t, goalps.CodeParseError, goalps.CodeOf(err))
		assert.Contains(t, err.Error(), "excessive aliasing")
	case <-time.After(5 * time.Second):
		t.Fatal("alias expansion was not bounded")
	}
}

func TestDecode_SelfReferentialAnchor(t *testing.T) {
	_, err := decode(t, "alps:\n  ext:\n    id: x\n    value: &v\n      self: *v\n")
	require.Error(t, err)
	assert.Equal(t, goalps.CodeParseError, goalps.CodeOf(err))
}

func TestDecode_ModerateAliasReuse(t *testing.T) {
	var b strings.Builder
	b.WriteString("alps:\n  doc: &d shared\n  descriptor:\n")
	for i := 0; i < 80; i++ {
		b.WriteString("    - id: d" + strconv.Itoa(i) + "\n      doc: *d\n")
	}
	doc, err := decode(t, b.String())
	require.NoError(t, err)
	assert.Equal(t, "shared", doc.Find("d79").Documentation[0].Content)
}

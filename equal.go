package goalps

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
)

// Equal reports whether two documents are structurally equal. Sets
// (documentation, links, extensions, descriptors) are compared regardless of
// order, default values compare equal to their explicit form, and parent
// relations are ignored.
func Equal(a, b *Document) bool {
	if a == nil || b == nil {
		return a == b
	}
	return Fingerprint(a) == Fingerprint(b)
}

// Fingerprint renders a canonical form of doc: equal documents yield equal
// fingerprints.
func Fingerprint(doc *Document) string {
	if doc == nil {
		return ""
	}
	version := doc.Version
	if version == "" {
		version = DefaultVersion
	}
	b := &strings.Builder{}
	b.WriteString("alps(")
	b.WriteString(strconv.Quote(version))
	writeSet(b, "doc", docKeys(doc.Documentation))
	writeSet(b, "link", linkKeys(doc.Links))
	writeSet(b, "descriptor", descriptorKeys(doc.Descriptors))
	writeSet(b, "ext", extKeys(doc.Extensions))
	b.WriteString(")")
	return b.String()
}

// DescriptorFingerprint renders the canonical form of one descriptor subtree.
func DescriptorFingerprint(d *Descriptor) string {
	b := &strings.Builder{}
	b.WriteString("descriptor(")
	for _, s := range []string{d.ID, string(d.Type.Or()), d.Href, d.Name, d.ReturnType} {
		b.WriteString(strconv.Quote(s))
		b.WriteByte(',')
	}
	writeSet(b, "doc", docKeys(d.Documentation))
	writeSet(b, "link", linkKeys(d.Links))
	writeSet(b, "descriptor", descriptorKeys(d.Descriptors))
	writeSet(b, "ext", extKeys(d.Extensions))
	b.WriteString(")")
	return b.String()
}

func writeSet(b *strings.Builder, name string, keys []string) {
	sort.Strings(keys)
	b.WriteString(name)
	b.WriteByte('[')
	b.WriteString(strings.Join(keys, ";"))
	b.WriteByte(']')
}

func docKeys(docs []*Documentation) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		mt := d.MediaType
		if isDefaultMediaType(mt) {
			mt = DefaultMediaType
		}
		out = append(out, strconv.Quote(mt)+strconv.Quote(d.Href)+strconv.Quote(d.Content))
	}
	return out
}

func linkKeys(links []*Link) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, strconv.Quote(l.Rel)+strconv.Quote(l.Href))
	}
	return out
}

func extKeys(exts []*Extension) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		value, nested := e.Canonical()
		out = append(out, strconv.Quote(e.ID)+strconv.Quote(e.Href)+strconv.Quote(value)+nestedKey(nested))
	}
	return out
}

func descriptorKeys(ds []*Descriptor) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, DescriptorFingerprint(d))
	}
	return out
}

// nestedKey encodes a nested extension value canonically; map keys are sorted
// by the encoder and numbers of any Go type render identically.
func nestedKey(v any) string {
	if v == nil {
		return "-"
	}
	raw, err := gojson.Marshal(PlainValue(v))
	if err != nil {
		return strconv.Quote(err.Error())
	}
	return string(raw)
}

// PlainValue converts decoded values into plain Go values: json.Number
// becomes int64 or float64 and map[any]any becomes map[string]any.
func PlainValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = PlainValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				ks = strconv.Quote(Describe(k))
			}
			out[ks] = PlainValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = PlainValue(t[i])
		}
		return out
	default:
		return v
	}
}

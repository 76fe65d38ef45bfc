package alpsxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"unicode/utf8"

	gojson "github.com/goccy/go-json"

	goalps "github.com/reoring/goalps"
)

// elementCodes names the issue code reported for content an element cannot
// carry.
var elementCodes = map[string]string{
	elemALPS:       goalps.CodeInvalidVersion,
	elemDescriptor: goalps.CodeInvalidDescriptor,
	elemDoc:        goalps.CodeInvalidDocumentation,
	elemLink:       goalps.CodeInvalidLink,
	elemExt:        goalps.CodeInvalidExtension,
}

// writer emits the token stream of a document, mirroring the parser stack.
type writer struct {
	enc     *xml.Encoder
	verbose bool
	open    []string
}

func encode(doc *goalps.Document, opt goalps.WriteOpt) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteString(xml.Header)
	w := &writer{enc: xml.NewEncoder(buf), verbose: opt.Verbose}
	if opt.Pretty {
		w.enc.Indent("", "  ")
	}
	if err := w.document(doc); err != nil {
		return nil, err
	}
	if err := w.enc.Flush(); err != nil {
		return nil, err
	}
	if opt.Pretty {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func (w *writer) document(doc *goalps.Document) error {
	version := doc.Version
	if version == "" {
		version = goalps.DefaultVersion
	}
	start := element(elemALPS, attrVersion, version)
	if err := w.start(start); err != nil {
		return err
	}
	if err := w.docs(doc.Documentation); err != nil {
		return err
	}
	if err := w.links(doc.Links); err != nil {
		return err
	}
	for _, d := range doc.Descriptors {
		if err := w.descriptor(d); err != nil {
			return err
		}
	}
	if err := w.exts(doc.Extensions); err != nil {
		return err
	}
	return w.end(start)
}

func (w *writer) descriptor(d *goalps.Descriptor) error {
	var kv []string
	if d.ID != "" {
		kv = append(kv, attrID, d.ID)
	}
	if !d.Type.IsDefault() || w.verbose {
		kv = append(kv, attrType, string(d.Type.Or()))
	}
	if d.Href != "" {
		kv = append(kv, attrHref, d.Href)
	}
	if d.Name != "" {
		kv = append(kv, attrName, d.Name)
	}
	if d.ReturnType != "" {
		kv = append(kv, attrRT, d.ReturnType)
	}
	start := element(elemDescriptor, kv...)
	if err := w.start(start); err != nil {
		return err
	}
	if err := w.docs(d.Documentation); err != nil {
		return err
	}
	for _, c := range d.Descriptors {
		if err := w.descriptor(c); err != nil {
			return err
		}
	}
	if err := w.links(d.Links); err != nil {
		return err
	}
	if err := w.exts(d.Extensions); err != nil {
		return err
	}
	return w.end(start)
}

func (w *writer) docs(docs []*goalps.Documentation) error {
	for _, d := range docs {
		var kv []string
		if !d.IsDefaultMediaType() || w.verbose {
			mt := d.MediaType
			if mt == "" {
				mt = goalps.DefaultMediaType
			}
			kv = append(kv, attrFormat, mt)
		}
		if d.Href != "" {
			kv = append(kv, attrHref, d.Href)
		}
		if err := w.leaf(element(elemDoc, kv...), d.Content); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) links(links []*goalps.Link) error {
	for _, l := range links {
		if err := w.leaf(element(elemLink, attrRel, l.Rel, attrHref, l.Href), ""); err != nil {
			return err
		}
	}
	return nil
}

// exts writes Value as the value attribute and Nested as content: strings
// verbatim and anything else as compact JSON.
func (w *writer) exts(exts []*goalps.Extension) error {
	for _, e := range exts {
		value, nested := e.Canonical()
		kv := []string{attrID, e.ID}
		if e.Href != "" {
			kv = append(kv, attrHref, e.Href)
		}
		if value != "" {
			kv = append(kv, attrValue, value)
		}
		start := element(elemExt, kv...)
		content, err := nestedText(nested)
		if err != nil {
			return w.fail(start, "nested value of extension %q: %v", e.ID, err)
		}
		if s, ok := nested.(string); ok {
			if t := strings.TrimSpace(s); t == "" {
				return w.fail(start, "nested text of extension %q is blank", e.ID)
			} else if _, ok := structured(t); ok {
				return w.fail(start, "nested text %q of extension %q would read back as a structured value", s, e.ID)
			}
		}
		if err := w.leaf(start, content); err != nil {
			return err
		}
	}
	return nil
}

// start checks and writes a start tag.
func (w *writer) start(el xml.StartElement) error {
	for _, a := range el.Attr {
		if err := checkChars(a.Value); err != nil {
			return w.fail(el, "attribute '%s': %v", a.Name.Local, err)
		}
	}
	w.open = append(w.open, el.Name.Local)
	return w.enc.EncodeToken(el)
}

func (w *writer) end(el xml.StartElement) error {
	w.open = w.open[:len(w.open)-1]
	return w.enc.EncodeToken(el.End())
}

// leaf writes an element holding only character data.
func (w *writer) leaf(el xml.StartElement, text string) error {
	if err := checkChars(text); err != nil {
		return w.fail(el, "content: %v", err)
	}
	if err := w.start(el); err != nil {
		return err
	}
	if text != "" {
		if err := w.enc.EncodeToken(xml.CharData(text)); err != nil {
			return err
		}
	}
	return w.end(el)
}

// fail reports an issue at el, which is not yet on the open stack.
func (w *writer) fail(el xml.StartElement, format string, args ...any) error {
	at := "/" + strings.Join(append(append([]string{}, w.open...), el.Name.Local), "/")
	return goalps.AtPath(goalps.Errorf(elementCodes[el.Name.Local], format, args...), at)
}

// checkChars rejects text that XML 1.0 cannot represent. encoding/xml would
// otherwise replace such characters with U+FFFD.
func checkChars(s string) error {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				return fmt.Errorf("invalid UTF-8 at byte %d", i)
			}
		}
		if !isXMLChar(r) {
			return fmt.Errorf("character %U at byte %d is not allowed in XML", r, i)
		}
	}
	return nil
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// nestedText renders a nested extension value: strings as-is, anything else
// as compact JSON.
func nestedText(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	default:
		b, err := gojson.Marshal(goalps.PlainValue(t))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func element(name string, kv ...string) xml.StartElement {
	el := xml.StartElement{Name: xml.Name{Local: name}}
	for i := 0; i+1 < len(kv); i += 2 {
		el.Attr = append(el.Attr, xml.Attr{Name: xml.Name{Local: kv[i]}, Value: kv[i+1]})
	}
	return el
}

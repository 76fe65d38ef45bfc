package alpsxml

import (
	"bytes"
	"encoding/xml"
	"strings"

	goalps "github.com/reoring/goalps"
	eng "github.com/reoring/goalps/internal/engine"
	"github.com/reoring/goalps/internal/source"
)

// frame is an element under construction on the parser stack.
type frame interface {
	// tag is the element name the frame was opened with.
	tag() string
	// start handles a child element start.
	start(p *parser, el xml.StartElement) error
	// text handles character data directly inside the element.
	text(data []byte)
	// end handles an end tag. It reports true when the tag closes the frame
	// itself; false means the tag was consumed as nested markup.
	end(p *parser, el xml.EndElement) (bool, error)
	// attach hands the finished value to the enclosing container.
	attach(parent container)
}

// container is implemented by frames that own child elements.
type container interface {
	addDescriptor(*goalps.Descriptor)
	addDoc(*goalps.Documentation)
	addLink(*goalps.Link)
	addExt(*goalps.Extension)
}

// documentFrame is the alps root element.
type documentFrame struct {
	doc *goalps.Document
}

func (f *documentFrame) tag() string { return elemALPS }

func (f *documentFrame) start(p *parser, el xml.StartElement) error { return p.openChild(el) }

func (f *documentFrame) text([]byte) {}

func (f *documentFrame) end(p *parser, el xml.EndElement) (bool, error) { return p.closeOwn(f, el) }

func (f *documentFrame) attach(container) {}

func (f *documentFrame) addDescriptor(d *goalps.Descriptor) { f.doc.AddDescriptor(d) }
func (f *documentFrame) addDoc(d *goalps.Documentation) { f.doc.Documentation = append(f.doc.Documentation, d) }
func (f *documentFrame) addLink(l *goalps.Link) { f.doc.Links = append(f.doc.Links, l) }
func (f *documentFrame) addExt(e *goalps.Extension) { f.doc.Extensions = append(f.doc.Extensions, e) }

// descriptorFrame is a descriptor element; it was registered in the index
// when it was opened.
type descriptorFrame struct {
	d *goalps.Descriptor
}

func (f *descriptorFrame) tag() string { return elemDescriptor }

func (f *descriptorFrame) start(p *parser, el xml.StartElement) error { return p.openChild(el) }

func (f *descriptorFrame) text([]byte) {}

func (f *descriptorFrame) end(p *parser, el xml.EndElement) (bool, error) { return p.closeOwn(f, el) }

func (f *descriptorFrame) attach(parent container) { parent.addDescriptor(f.d) }

func (f *descriptorFrame) addDescriptor(d *goalps.Descriptor) { f.d.AddDescriptor(d) }
func (f *descriptorFrame) addDoc(d *goalps.Documentation) {
	f.d.Documentation = append(f.d.Documentation, d)
}
func (f *descriptorFrame) addLink(l *goalps.Link) { f.d.Links = append(f.d.Links, l) }
func (f *descriptorFrame) addExt(e *goalps.Extension) { f.d.Extensions = append(f.d.Extensions, e) }

// linkFrame is a link element. Links have no children.
type linkFrame struct {
	l *goalps.Link
}

func (f *linkFrame) tag() string { return elemLink }

func (f *linkFrame) start(p *parser, el xml.StartElement) error {
	return p.fail(goalps.CodeUnexpectedElement, p.pathWith(el.Name), "the 'link' element must be empty but contains <%s>", qname(el.Name))
}

func (f *linkFrame) text([]byte) {}

func (f *linkFrame) end(p *parser, el xml.EndElement) (bool, error) { return p.closeOwn(f, el) }

func (f *linkFrame) attach(parent container) { parent.addLink(f.l) }

// capture accumulates element content verbatim: nested tags are written
// back as markup, text inside them is re-escaped and top-level text is kept
// as decoded.
type capture struct {
	buf  bytes.Buffer
	open []string
}

func (c *capture) startNested(el xml.StartElement) {
	c.buf.WriteByte('<')
	c.buf.WriteString(qname(el.Name))
	for _, a := range el.Attr {
		c.buf.WriteByte(' ')
		c.buf.WriteString(qname(a.Name))
		c.buf.WriteString(`="`)
		_ = xml.EscapeText(&c.buf, []byte(a.Value))
		c.buf.WriteByte('"')
	}
	c.buf.WriteByte('>')
	c.open = append(c.open, qname(el.Name))
}

func (c *capture) text(data []byte) {
	if len(c.open) == 0 {
		c.buf.Write(data)
		return
	}
	_ = xml.EscapeText(&c.buf, data)
}

// endNested consumes an end tag of nested markup. It reports false when no
// nested element is open.
func (c *capture) endNested(p *parser, el xml.EndElement) (bool, error) {
	n := len(c.open)
	if n == 0 {
		return false, nil
	}
	if c.open[n-1] != qname(el.Name) {
		return true, p.fail(goalps.CodeUnexpectedElement, p.path(),
			"end tag </%s> does not match <%s>", qname(el.Name), c.open[n-1])
	}
	c.open = c.open[:n-1]
	c.buf.WriteString("</")
	c.buf.WriteString(qname(el.Name))
	c.buf.WriteByte('>')
	return true, nil
}

func (c *capture) comment(data []byte) {
	c.buf.WriteString("<!--")
	c.buf.Write(data)
	c.buf.WriteString("-->")
}

func (c *capture) content() string { return c.buf.String() }

// docFrame is a doc element.
type docFrame struct {
	d *goalps.Documentation
	capture
}

func (f *docFrame) tag() string { return elemDoc }

func (f *docFrame) start(_ *parser, el xml.StartElement) error {
	f.startNested(el)
	return nil
}

func (f *docFrame) end(p *parser, el xml.EndElement) (bool, error) {
	if nested, err := f.endNested(p, el); nested || err != nil {
		return false, err
	}
	return p.closeOwn(f, el)
}

func (f *docFrame) attach(parent container) {
	f.d.Content = f.content()
	parent.addDoc(f.d)
}

// extFrame is an ext element. See extContent for how its content maps onto
// the extension.
type extFrame struct {
	e *goalps.Extension
	capture
}

func (f *extFrame) tag() string { return elemExt }

func (f *extFrame) start(_ *parser, el xml.StartElement) error {
	f.startNested(el)
	return nil
}

func (f *extFrame) end(p *parser, el xml.EndElement) (bool, error) {
	if nested, err := f.endNested(p, el); nested || err != nil {
		return false, err
	}
	return p.closeOwn(f, el)
}

func (f *extFrame) attach(parent container) {
	f.e.Value, f.e.Nested = extContent(f.e.Value, f.content())
	parent.addExt(f.e)
}

// extContent maps ext content onto the value pair. Content holding a JSON
// object, array, number or boolean is a structured Nested. Other text fills
// an empty Value and is a string Nested otherwise. Blank content is ignored.
func extContent(value, content string) (string, any) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return value, nil
	}
	if v, ok := structured(trimmed); ok {
		return value, v
	}
	if value == "" {
		return content, nil
	}
	return value, content
}

// structured decodes s as a single JSON value other than a string or null.
func structured(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	v, err := eng.DecodeAnyFromSource(source.NewJSONBytes([]byte(s)))
	if err != nil {
		return nil, false
	}
	switch v.(type) {
	case nil, string:
		return nil, false
	}
	return v, true
}

func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

package alpsxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	goalps "github.com/reoring/goalps"
	eng "github.com/reoring/goalps/internal/engine"
)

// Element and attribute names of the stream encoding.
const (
	elemALPS       = "alps"
	elemDescriptor = "descriptor"
	elemDoc        = "doc"
	elemLink       = "link"
	elemExt        = "ext"

	attrVersion = "version"
	attrID      = "id"
	attrHref    = "href"
	attrName    = "name"
	attrType    = "type"
	attrRT      = "rt"
	attrFormat  = "format"
	attrRel     = "rel"
	attrValue   = "value"
)

// parser drives the frame stack from raw tokens. End tags are matched
// against the stack by the parser itself.
type parser struct {
	dec   *xml.Decoder
	index *eng.Index[*goalps.Descriptor]
	stack []frame
	doc   *goalps.Document
	// maxDepth bounds the frame stack; 0 means unlimited.
	maxDepth int
	// line and column of the token being handled.
	line, col int
}

func decode(data []byte, opt goalps.ParseOpt) (*goalps.Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	p := &parser{dec: dec, index: eng.NewIndex[*goalps.Descriptor](), maxDepth: opt.MaxDepth}
	return p.run()
}

func (p *parser) run() (*goalps.Document, error) {
	for {
		p.line, p.col = p.dec.InputPos()
		tok, err := p.dec.RawToken()
		if errors.Is(err, io.EOF) {
			return p.finish()
		}
		if err != nil {
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				return nil, goalps.Issues{{Code: goalps.CodeParseError, Path: p.path(), Message: se.Msg, Line: se.Line, Cause: err}}
			}
			return nil, goalps.Issues{{Code: goalps.CodeParseError, Path: p.path(), Message: err.Error(), Line: p.line, Column: p.col, Cause: err}}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := p.startElement(t); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if err := p.endElement(t); err != nil {
				return nil, err
			}
		case xml.CharData:
			if err := p.charData(t); err != nil {
				return nil, err
			}
		case xml.Comment:
			if c, ok := p.top().(interface{ comment([]byte) }); ok {
				c.comment(t)
			}
		}
	}
}

func (p *parser) finish() (*goalps.Document, error) {
	if len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		return nil, p.fail(goalps.CodeUnterminatedElement, p.path(), "element <%s> is not terminated", top.tag())
	}
	if p.doc == nil {
		return nil, p.fail(goalps.CodeInvalidDocument, "/", "the document has no <%s> root element", elemALPS)
	}
	return p.doc, nil
}

func (p *parser) top() frame {
	if n := len(p.stack); n > 0 {
		return p.stack[n-1]
	}
	return nil
}

func (p *parser) startElement(el xml.StartElement) error {
	if top := p.top(); top != nil {
		return top.start(p, el)
	}
	if p.doc != nil {
		return p.fail(goalps.CodeUnexpectedElement, "/"+qname(el.Name), "unexpected element <%s> after the root element", qname(el.Name))
	}
	if qname(el.Name) != elemALPS {
		return p.fail(goalps.CodeUnexpectedElement, "/"+qname(el.Name), "the root element must be <%s> but was <%s>", elemALPS, qname(el.Name))
	}
	p.doc = goalps.NewDocument()
	if v, ok := attr(el, attrVersion); ok {
		p.doc.Version = v
	}
	p.stack = append(p.stack, &documentFrame{doc: p.doc})
	return nil
}

func (p *parser) endElement(el xml.EndElement) error {
	top := p.top()
	if top == nil {
		return p.fail(goalps.CodeUnexpectedElement, "/"+qname(el.Name), "unexpected end tag </%s>", qname(el.Name))
	}
	closed, err := top.end(p, el)
	if err != nil || !closed {
		return err
	}
	p.stack = p.stack[:len(p.stack)-1]
	if parent, ok := p.top().(container); ok {
		top.attach(parent)
	}
	return nil
}

func (p *parser) charData(data xml.CharData) error {
	if top := p.top(); top != nil {
		top.text(data)
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if p.doc != nil {
		return p.fail(goalps.CodeUnexpectedElement, "/", "unexpected text after the root element")
	}
	return p.fail(goalps.CodeInvalidDocument, "/", "unexpected text before the root element")
}

// openChild opens a structural child of the alps or descriptor element.
func (p *parser) openChild(el xml.StartElement) error {
	var f frame
	var err error
	switch qname(el.Name) {
	case elemDescriptor:
		f, err = p.openDescriptor(el)
	case elemDoc:
		f, err = p.openDoc(el)
	case elemLink:
		f, err = p.openLink(el)
	case elemExt:
		f, err = p.openExt(el)
	default:
		return p.fail(goalps.CodeUnexpectedElement, p.pathWith(el.Name), "unexpected element <%s> in <%s>", qname(el.Name), p.top().tag())
	}
	if err != nil {
		return err
	}
	if p.maxDepth > 0 && len(p.stack)+1 > p.maxDepth {
		return p.fail(goalps.CodeParseError, p.pathWith(el.Name), "max depth %d exceeded", p.maxDepth)
	}
	p.stack = append(p.stack, f)
	return nil
}

// closeOwn checks that el closes f.
func (p *parser) closeOwn(f frame, el xml.EndElement) (bool, error) {
	if qname(el.Name) != f.tag() {
		return false, p.fail(goalps.CodeUnexpectedElement, p.path(), "end tag </%s> does not match <%s>", qname(el.Name), f.tag())
	}
	return true, nil
}

func (p *parser) openDescriptor(el xml.StartElement) (frame, error) {
	at := p.pathWith(el.Name)
	rawID, present := attr(el, attrID)
	var idValue any
	if present {
		idValue = rawID
	}
	id, err := goalps.CheckID(idValue, present)
	if err != nil {
		return nil, p.wrap(err, at)
	}
	d := goalps.NewDescriptor(id)
	if !p.index.Register(id, d) {
		return nil, p.fail(goalps.CodeDuplicatedID, at, "duplicate 'id' attribute value %s", id)
	}
	if v, ok := attr(el, attrName); ok {
		if d.Name, err = goalps.CheckName(v); err != nil {
			return nil, p.wrap(err, at)
		}
	}
	if v, ok := attr(el, attrType); ok {
		if d.Type, err = goalps.CheckType(v); err != nil {
			return nil, p.wrap(err, at)
		}
	}
	if v, ok := attr(el, attrHref); ok {
		if d.Href, err = goalps.CheckHref(v); err != nil {
			return nil, p.wrap(err, at)
		}
	}
	if v, ok := attr(el, attrRT); ok {
		if d.ReturnType, err = goalps.CheckReturnType(v); err != nil {
			return nil, p.wrap(err, at)
		}
	}
	return &descriptorFrame{d: d}, nil
}

func (p *parser) openDoc(el xml.StartElement) (frame, error) {
	d := &goalps.Documentation{MediaType: goalps.DefaultMediaType}
	if v, ok := attr(el, attrFormat); ok {
		d.MediaType = v
	}
	if v, ok := attr(el, attrHref); ok {
		href, err := goalps.CheckHref(v)
		if err != nil {
			return nil, p.wrap(err, p.pathWith(el.Name))
		}
		d.Href = href
	}
	return &docFrame{d: d}, nil
}

func (p *parser) openLink(el xml.StartElement) (frame, error) {
	at := p.pathWith(el.Name)
	rel, ok := attr(el, attrRel)
	if !ok {
		return nil, p.fail(goalps.CodeInvalidLink, at, "the 'rel' attribute is required")
	}
	rawHref, ok := attr(el, attrHref)
	if !ok {
		return nil, p.fail(goalps.CodeInvalidLink, at, "the 'href' attribute is required")
	}
	href, err := goalps.CheckHref(rawHref)
	if err != nil {
		return nil, p.wrap(err, at)
	}
	return &linkFrame{l: &goalps.Link{Rel: rel, Href: href}}, nil
}

func (p *parser) openExt(el xml.StartElement) (frame, error) {
	at := p.pathWith(el.Name)
	id, ok := attr(el, attrID)
	if !ok || id == "" {
		return nil, p.fail(goalps.CodeInvalidExtension, at, "the 'id' attribute must be a non-empty string")
	}
	e := &goalps.Extension{ID: id}
	if v, ok := attr(el, attrHref); ok {
		href, err := goalps.CheckHref(v)
		if err != nil {
			return nil, p.wrap(err, at)
		}
		e.Href = href
	}
	if v, ok := attr(el, attrValue); ok {
		e.Value = v
	}
	return &extFrame{e: e}, nil
}

// path renders the element path of the open frames, e.g. /alps/descriptor.
func (p *parser) path() string {
	if len(p.stack) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, f := range p.stack {
		b.WriteByte('/')
		b.WriteString(f.tag())
	}
	return b.String()
}

func (p *parser) pathWith(n xml.Name) string {
	if len(p.stack) == 0 {
		return "/" + qname(n)
	}
	return p.path() + "/" + qname(n)
}

func (p *parser) fail(code, path, format string, args ...any) error {
	return goalps.Issues{{Code: code, Path: path, Message: fmt.Sprintf(format, args...), Line: p.line, Column: p.col}}
}

func (p *parser) wrap(err error, path string) error {
	return goalps.AtPosition(goalps.AtPath(err, path), p.line, p.col)
}

func attr(el xml.StartElement, name string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

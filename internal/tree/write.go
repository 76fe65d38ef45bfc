package tree

import (
	goalps "github.com/reoring/goalps"
	eng "github.com/reoring/goalps/internal/engine"
)

// Write projects doc onto the tree encoding. The result is the envelope
// {"alps": {...}} with members in output order. Sets of exactly one element
// collapse to a bare value.
//
// An extension with both a Value and a Nested value fails with
// invalid_extension: the tree encoding has a single 'value' slot.
func Write(doc *goalps.Document, opt goalps.WriteOpt) (Object, error) {
	w := writer{verbose: opt.Verbose}
	path := eng.Root().Field(KeyRoot)
	body := Object{}
	version := doc.Version
	if version == "" {
		version = goalps.DefaultVersion
	}
	body.Set(KeyVersion, version)
	if len(doc.Documentation) > 0 {
		body.Set(KeyDoc, w.docs(doc.Documentation))
	}
	if len(doc.Links) > 0 {
		body.Set(KeyLink, w.links(doc.Links))
	}
	if len(doc.Descriptors) > 0 {
		v, err := w.descriptors(doc.Descriptors, path.Field(KeyDescriptor))
		if err != nil {
			return nil, err
		}
		body.Set(KeyDescriptor, v)
	}
	if len(doc.Extensions) > 0 {
		v, err := w.exts(doc.Extensions, path.Field(KeyExt))
		if err != nil {
			return nil, err
		}
		body.Set(KeyExt, v)
	}
	return Object{{Key: KeyRoot, Value: body}}, nil
}

type writer struct {
	verbose bool
}

// collapse returns the only element of a one-element set, or the set.
func collapse(items []any) any {
	if len(items) == 1 {
		return items[0]
	}
	return items
}

// memberPath addresses the i-th element of a set of n, which collapses when n is 1.
func memberPath(path eng.Path, i, n int) eng.Path {
	if n == 1 {
		return path
	}
	return path.Index(i)
}

func (w writer) descriptors(ds []*goalps.Descriptor, path eng.Path) (any, error) {
	items := make([]any, 0, len(ds))
	for i, d := range ds {
		o, err := w.descriptor(d, memberPath(path, i, len(ds)))
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return collapse(items), nil
}

func (w writer) descriptor(d *goalps.Descriptor, path eng.Path) (Object, error) {
	o := Object{}
	if d.ID != "" {
		o.Set(KeyID, d.ID)
	}
	if !d.Type.IsDefault() || w.verbose {
		o.Set(KeyType, string(d.Type.Or()))
	}
	if d.Href != "" {
		o.Set(KeyHref, d.Href)
	}
	if d.Name != "" {
		o.Set(KeyName, d.Name)
	}
	if d.ReturnType != "" {
		o.Set(KeyRT, d.ReturnType)
	}
	if len(d.Documentation) > 0 {
		o.Set(KeyDoc, w.docs(d.Documentation))
	}
	if len(d.Descriptors) > 0 {
		v, err := w.descriptors(d.Descriptors, path.Field(KeyDescriptor))
		if err != nil {
			return nil, err
		}
		o.Set(KeyDescriptor, v)
	}
	if len(d.Links) > 0 {
		o.Set(KeyLink, w.links(d.Links))
	}
	if len(d.Extensions) > 0 {
		v, err := w.exts(d.Extensions, path.Field(KeyExt))
		if err != nil {
			return nil, err
		}
		o.Set(KeyExt, v)
	}
	return o, nil
}

func (w writer) docs(docs []*goalps.Documentation) any {
	items := make([]any, 0, len(docs))
	for _, d := range docs {
		if d.IsDefaultMediaType() && d.Href == "" && !w.verbose {
			items = append(items, d.Content)
			continue
		}
		o := Object{}
		if !d.IsDefaultMediaType() || w.verbose {
			mt := d.MediaType
			if mt == "" {
				mt = goalps.DefaultMediaType
			}
			o.Set(KeyFormat, mt)
		}
		if d.Href != "" {
			o.Set(KeyHref, d.Href)
		}
		o.Set(KeyValue, d.Content)
		items = append(items, o)
	}
	return collapse(items)
}

func (w writer) links(links []*goalps.Link) any {
	items := make([]any, 0, len(links))
	for _, l := range links {
		items = append(items, Object{{Key: KeyRel, Value: l.Rel}, {Key: KeyHref, Value: l.Href}})
	}
	return collapse(items)
}

func (w writer) exts(exts []*goalps.Extension, path eng.Path) (any, error) {
	items := make([]any, 0, len(exts))
	for i, e := range exts {
		o := Object{{Key: KeyID, Value: e.ID}}
		if e.Href != "" {
			o.Set(KeyHref, e.Href)
		}
		value, nested := e.Canonical()
		switch {
		case value != "" && nested != nil:
			return nil, goalps.AtPath(goalps.Errorf(goalps.CodeInvalidExtension,
				"extension %q has both a value and a nested value", e.ID), memberPath(path, i, len(exts)).Pointer())
		case value != "":
			o.Set(KeyValue, value)
		case nested != nil:
			o.Set(KeyValue, nested)
		}
		items = append(items, o)
	}
	return collapse(items), nil
}

package tree

import (
	goalps "github.com/reoring/goalps"
	eng "github.com/reoring/goalps/internal/engine"
)

// Property names of the tree encoding.
const (
	KeyRoot       = "alps"
	KeyVersion    = "version"
	KeyDoc        = "doc"
	KeyLink       = "link"
	KeyDescriptor = "descriptor"
	KeyExt        = "ext"
	KeyID         = "id"
	KeyHref       = "href"
	KeyName       = "name"
	KeyType       = "type"
	KeyRT         = "rt"
	KeyRel        = "rel"
	KeyValue      = "value"
	KeyFormat     = "format"
)

// Parse builds a document from a decoded envelope {"alps": {...}}. Objects
// must be map[string]any and arrays []any; scalars are whatever the syntax
// decoder produced. The first problem found is returned as Issues with a JSON
// Pointer path.
func Parse(v any) (*goalps.Document, error) {
	p := &parser{index: eng.NewIndex[*goalps.Descriptor]()}
	return p.document(v)
}

type parser struct {
	index *eng.Index[*goalps.Descriptor]
}

func (p *parser) document(v any) (*goalps.Document, error) {
	env, ok := v.(map[string]any)
	if !ok {
		return nil, goalps.AtPath(goalps.Errorf(goalps.CodeInvalidDocument,
			"the document must be an object with an 'alps' property but was %s", goalps.Describe(v)), "/")
	}
	raw, present := env[KeyRoot]
	if !present {
		return nil, goalps.AtPath(goalps.Errorf(goalps.CodeInvalidDocument, "the 'alps' property is missing"), "/")
	}
	path := eng.Root().Field(KeyRoot)
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, goalps.AtPath(goalps.Errorf(goalps.CodeInvalidDocument,
			"the 'alps' property value must be an object but was %s", goalps.Describe(raw)), path.Pointer())
	}

	doc := goalps.NewDocument()
	if rv, ok := obj[KeyVersion]; ok {
		s, ok := rv.(string)
		if !ok {
			return nil, goalps.AtPath(goalps.Errorf(goalps.CodeInvalidVersion,
				"the 'version' property value must be a string but was %s", goalps.Describe(rv)), path.Field(KeyVersion).Pointer())
		}
		doc.Version = s
	}
	var err error
	if rv, ok := obj[KeyDoc]; ok {
		if doc.Documentation, err = parseDocs(rv, path.Field(KeyDoc)); err != nil {
			return nil, err
		}
	}
	if rv, ok := obj[KeyLink]; ok {
		if doc.Links, err = parseLinks(rv, path.Field(KeyLink)); err != nil {
			return nil, err
		}
	}
	if rv, ok := obj[KeyDescriptor]; ok {
		children, err := p.descriptors(rv, path.Field(KeyDescriptor))
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			doc.AddDescriptor(c)
		}
	}
	if rv, ok := obj[KeyExt]; ok {
		if doc.Extensions, err = parseExts(rv, path.Field(KeyExt)); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// descriptors accepts a single object or an array of objects.
func (p *parser) descriptors(v any, path eng.Path) ([]*goalps.Descriptor, error) {
	switch t := v.(type) {
	case map[string]any:
		d, err := p.descriptor(t, path)
		if err != nil {
			return nil, err
		}
		return []*goalps.Descriptor{d}, nil
	case []any:
		out := make([]*goalps.Descriptor, 0, len(t))
		for i, item := range t {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, goalps.AtPath(goalps.Errorf(goalps.CodeInvalidDescriptor,
					"the 'descriptor' property must be an object or an array of objects but was %s", goalps.Describe(item)), path.Index(i).Pointer())
			}
			d, err := p.descriptor(obj, path.Index(i))
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
		return out, nil
	default:
		return nil, goalps.AtPath(goalps.Errorf(goalps.CodeInvalidDescriptor,
			"the 'descriptor' property must be an object or an array of objects but was %s", goalps.Describe(v)), path.Pointer())
	}
}

func (p *parser) descriptor(obj map[string]any, path eng.Path) (*goalps.Descriptor, error) {
	rawID, present := obj[KeyID]
	id, err := goalps.CheckID(rawID, present)
	if err != nil {
		at := path
		if present {
			at = path.Field(KeyID)
		}
		return nil, goalps.AtPath(err, at.Pointer())
	}
	d := goalps.NewDescriptor(id)
	if !p.index.Register(id, d) {
		return nil, goalps.AtPath(goalps.Errorf(goalps.CodeDuplicatedID, "duplicate 'id' property value %s", id), path.Field(KeyID).Pointer())
	}

	if rv, ok := obj[KeyName]; ok {
		if d.Name, err = goalps.CheckName(rv); err != nil {
			return nil, goalps.AtPath(err, path.Field(KeyName).Pointer())
		}
	}
	if rv, ok := obj[KeyType]; ok {
		if d.Type, err = goalps.CheckType(rv); err != nil {
			return nil, goalps.AtPath(err, path.Field(KeyType).Pointer())
		}
	}
	if rv, ok := obj[KeyDoc]; ok {
		if d.Documentation, err = parseDocs(rv, path.Field(KeyDoc)); err != nil {
			return nil, err
		}
	}
	if rv, ok := obj[KeyLink]; ok {
		if d.Links, err = parseLinks(rv, path.Field(KeyLink)); err != nil {
			return nil, err
		}
	}
	if rv, ok := obj[KeyHref]; ok {
		if d.Href, err = goalps.CheckHref(rv); err != nil {
			return nil, goalps.AtPath(err, path.Field(KeyHref).Pointer())
		}
	}
	if rv, ok := obj[KeyRT]; ok {
		if d.ReturnType, err = goalps.CheckReturnType(rv); err != nil {
			return nil, goalps.AtPath(err, path.Field(KeyRT).Pointer())
		}
	}
	if rv, ok := obj[KeyDescriptor]; ok {
		children, err := p.descriptors(rv, path.Field(KeyDescriptor))
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			d.AddDescriptor(c)
		}
	}
	if rv, ok := obj[KeyExt]; ok {
		if d.Extensions, err = parseExts(rv, path.Field(KeyExt)); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// each applies fn to a single value or to every element of an array.
func each(v any, path eng.Path, fn func(any, eng.Path) error) error {
	if arr, ok := v.([]any); ok {
		for i, item := range arr {
			if err := fn(item, path.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}
	return fn(v, path)
}

func parseDocs(v any, path eng.Path) ([]*goalps.Documentation, error) {
	var out []*goalps.Documentation
	err := each(v, path, func(item any, at eng.Path) error {
		switch t := item.(type) {
		case string:
			out = append(out, &goalps.Documentation{Content: t, MediaType: goalps.DefaultMediaType})
			return nil
		case map[string]any:
			doc := &goalps.Documentation{MediaType: goalps.DefaultMediaType}
			for _, f := range []struct {
				key string
				dst *string
			}{{KeyValue, &doc.Content}, {KeyFormat, &doc.MediaType}} {
				rv, ok := t[f.key]
				if !ok {
					continue
				}
				s, ok := rv.(string)
				if !ok {
					return goalps.AtPath(goalps.Errorf(goalps.CodeInvalidDocumentation,
						"the '%s' property value must be a string but was %s", f.key, goalps.Describe(rv)), at.Field(f.key).Pointer())
				}
				*f.dst = s
			}
			if rv, ok := t[KeyHref]; ok {
				href, err := goalps.CheckHref(rv)
				if err != nil {
					return goalps.AtPath(err, at.Field(KeyHref).Pointer())
				}
				doc.Href = href
			}
			out = append(out, doc)
			return nil
		default:
			return goalps.AtPath(goalps.Errorf(goalps.CodeInvalidDocumentation,
				"the 'doc' property must be a string, an object or an array of those but was %s", goalps.Describe(item)), at.Pointer())
		}
	})
	return out, err
}

func parseLinks(v any, path eng.Path) ([]*goalps.Link, error) {
	var out []*goalps.Link
	err := each(v, path, func(item any, at eng.Path) error {
		obj, ok := item.(map[string]any)
		if !ok {
			return goalps.AtPath(goalps.Errorf(goalps.CodeInvalidLink,
				"the 'link' property must be an object or an array of objects but was %s", goalps.Describe(item)), at.Pointer())
		}
		rawRel, ok := obj[KeyRel]
		rel, isString := rawRel.(string)
		if !ok || !isString {
			return goalps.AtPath(goalps.Errorf(goalps.CodeInvalidLink,
				"the 'rel' property value must be a string but was %s", goalps.Describe(rawRel)), at.Field(KeyRel).Pointer())
		}
		rawHref, ok := obj[KeyHref]
		if !ok {
			return goalps.AtPath(goalps.Errorf(goalps.CodeInvalidLink, "the 'href' property is required"), at.Pointer())
		}
		href, err := goalps.CheckHref(rawHref)
		if err != nil {
			return goalps.AtPath(err, at.Field(KeyHref).Pointer())
		}
		out = append(out, &goalps.Link{Rel: rel, Href: href})
		return nil
	})
	return out, err
}

func parseExts(v any, path eng.Path) ([]*goalps.Extension, error) {
	var out []*goalps.Extension
	err := each(v, path, func(item any, at eng.Path) error {
		obj, ok := item.(map[string]any)
		if !ok {
			return goalps.AtPath(goalps.Errorf(goalps.CodeInvalidExtension,
				"the 'ext' property must be an object or an array of objects but was %s", goalps.Describe(item)), at.Pointer())
		}
		rawID, ok := obj[KeyID]
		id, isString := rawID.(string)
		if !ok || !isString || id == "" {
			return goalps.AtPath(goalps.Errorf(goalps.CodeInvalidExtension,
				"the 'id' property value must be a non-empty string but was %s", goalps.Describe(rawID)), at.Field(KeyID).Pointer())
		}
		ext := &goalps.Extension{ID: id}
		if rv, ok := obj[KeyHref]; ok {
			href, err := goalps.CheckHref(rv)
			if err != nil {
				return goalps.AtPath(err, at.Field(KeyHref).Pointer())
			}
			ext.Href = href
		}
		if rv, ok := obj[KeyValue]; ok && rv != nil {
			if s, ok := rv.(string); ok {
				ext.Value = s
			} else {
				ext.Nested = rv
			}
		}
		out = append(out, ext)
		return nil
	})
	return out, err
}

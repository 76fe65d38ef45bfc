// Package alpsjson implements the application/alps+json encoding.
//
// Decoding streams tokens from goccy/go-json through the engine enforcement
// wrapper (duplicate keys, depth), materializes a generic value and hands it
// to the tree codec. Encoding renders the ordered tree without reordering
// keys.
package alpsjson

import (
	"bytes"

	gojson "github.com/goccy/go-json"

	goalps "github.com/reoring/goalps"
	eng "github.com/reoring/goalps/internal/engine"
	"github.com/reoring/goalps/internal/source"
	"github.com/reoring/goalps/internal/tree"
)

// Format is the JSON encoding. The zero value is ready to use.
type Format struct{}

// New returns the JSON format.
func New() Format { return Format{} }

func (Format) Name() string      { return "json" }
func (Format) MediaType() string { return goalps.MediaTypeJSON }
func (Format) Aliases() []string { return []string{"application/json"} }

// Decode parses one JSON document.
func (Format) Decode(data []byte, opt goalps.ParseOpt) (*goalps.Document, error) {
	src := eng.WrapWithEnforcement(source.NewJSONBytes(data), opt.EnforceOptions())
	v, err := eng.DecodeAnyFromSource(src)
	if err != nil {
		line, col := position(data, src.Location())
		return nil, goalps.AtPosition(goalps.Normalize(err), line, col)
	}
	return tree.Parse(v)
}

// Encode writes doc as JSON, indented by two spaces when opt.Pretty is set.
func (Format) Encode(doc *goalps.Document, opt goalps.WriteOpt) ([]byte, error) {
	root, err := tree.Write(doc, opt)
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if err := writeValue(buf, root); err != nil {
		return nil, goalps.Errorf(goalps.CodeInvalidDocument, "encode json: %v", err)
	}
	if !opt.Pretty {
		return buf.Bytes(), nil
	}
	out := &bytes.Buffer{}
	if err := gojson.Indent(out, buf.Bytes(), "", "  "); err != nil {
		return nil, goalps.Errorf(goalps.CodeInvalidDocument, "indent json: %v", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case tree.Object:
		buf.WriteByte('{')
		for i, m := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeScalar(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeValue(buf, m.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case []any:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		return writeScalar(buf, v)
	}
}

// writeScalar encodes leaves and nested extension values. Markup in
// documentation stays readable: '<', '>' and '&' are not escaped.
func writeScalar(buf *bytes.Buffer, v any) error {
	b, err := gojson.MarshalNoEscape(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	if offset < 0 {
		return 0, 0
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col := 1, 1
	for _, c := range data[:offset] {
		if c == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

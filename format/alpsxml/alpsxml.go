// Package alpsxml implements the application/alps+xml encoding.
//
// Decoding is event driven: raw tokens from encoding/xml are dispatched to
// the top of an explicit stack of element frames, and each finished frame is
// attached to its parent. Content of doc and ext elements is captured
// verbatim, surrounding whitespace and nested markup included.
package alpsxml

import (
	goalps "github.com/reoring/goalps"
)

// Format is the XML encoding. The zero value is ready to use.
type Format struct{}

// New returns the XML format.
func New() Format { return Format{} }

func (Format) Name() string      { return "xml" }
func (Format) MediaType() string { return goalps.MediaTypeXML }
func (Format) Aliases() []string { return []string{"application/xml", "text/xml"} }

// Decode parses one XML document.
func (Format) Decode(data []byte, opt goalps.ParseOpt) (*goalps.Document, error) {
	return decode(data, opt)
}

// Encode writes doc as XML, indented by two spaces when opt.Pretty is set.
func (Format) Encode(doc *goalps.Document, opt goalps.WriteOpt) ([]byte, error) {
	out, err := encode(doc, opt)
	if err != nil {
		if _, ok := goalps.AsIssues(err); ok {
			return nil, err
		}
		return nil, goalps.Errorf(goalps.CodeInvalidDocument, "encode xml: %v", err)
	}
	return out, nil
}

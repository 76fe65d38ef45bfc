// Package goalps parses, validates and serializes ALPS profile documents.
//
// A profile is a tree of typed descriptors with documentation, links and
// extensions. The same in-memory Document is read from and written to every
// registered encoding:
//
// - application/alps+json: the tree encoding (package format/alpsjson)
// - application/alps+xml: the element-stream encoding (package format/alpsxml)
// - application/alps+yaml: a YAML syntax of the tree encoding (package format/alpsyaml)
//
// Design policy:
// - Keep the model, validation rules and facade in the root package; codecs
// live under format/ and register themselves through package formats.
// - Parsing is fail fast: errors carry exactly one Issue (code, path,
// message, position).
// - Descriptor identifiers are unique across the whole document, checked
// while the tree is being built.
//
// Typical usage:
//
//	import _ "github.com/reoring/goalps/formats"
//
//	doc, err := goalps.Parse(data, goalps.MediaTypeJSON)
//	if err != nil {
//		log.Println(goalps.CodeOf(err), err)
//	}
//	out, err := goalps.Write(doc, goalps.MediaTypeXML, goalps.WriteOpt{Pretty: true})
package goalps

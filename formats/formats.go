// Package formats registers every bundled encoding with the goalps facade.
//
// Import it for its side effect:
//
//	import _ "github.com/reoring/goalps/formats"
package formats

import (
	goalps "github.com/reoring/goalps"
	"github.com/reoring/goalps/format/alpsjson"
	"github.com/reoring/goalps/format/alpsxml"
	"github.com/reoring/goalps/format/alpsyaml"
)

func init() {
	goalps.RegisterFormat(alpsjson.New())
	goalps.RegisterFormat(alpsxml.New())
	goalps.RegisterFormat(alpsyaml.New())
}

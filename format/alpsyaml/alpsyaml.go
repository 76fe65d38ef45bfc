// Package alpsyaml implements application/alps+yaml, a YAML syntax of the
// tree encoding. Documents decode to the same generic value as JSON and go
// through the same tree codec.
package alpsyaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	goalps "github.com/reoring/goalps"
	eng "github.com/reoring/goalps/internal/engine"
	"github.com/reoring/goalps/internal/tree"
)

// Format is the YAML encoding. The zero value is ready to use.
type Format struct{}

// New returns the YAML format.
func New() Format { return Format{} }

func (Format) Name() string      { return "yaml" }
func (Format) MediaType() string { return goalps.MediaTypeYAML }
func (Format) Aliases() []string { return []string{"application/yaml", "text/yaml", "application/x-yaml"} }

// Decode parses the first YAML document of data.
func (Format) Decode(data []byte, opt goalps.ParseOpt) (*goalps.Document, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, goalps.AtPath(goalps.Errorf(goalps.CodeParseError, "empty input"), "/")
		}
		return nil, goalps.Issues{{Code: goalps.CodeParseError, Path: "/", Message: err.Error(), Cause: err}}
	}
	r := &strictReader{opt: opt}
	v, err := r.value(&root, eng.Root(), 0)
	if err != nil {
		return nil, err
	}
	return tree.Parse(v)
}

// strictReader converts a node tree into JSON-like values (map[string]any,
// []any, string, int64, float64, bool, nil) applying the duplicate key policy
// and depth limit. Alias expansion is bounded the way yaml.v3 bounds it when
// decoding into Go values.
type strictReader struct {
	opt goalps.ParseOpt

	decodeCount int
	aliasCount  int
	aliasDepth  int
	expanding   map[*yaml.Node]bool
}

// The allowed share of nodes produced by alias expansion shrinks from 99% to
// 10% as the document grows between these node counts.
const (
	aliasRatioRangeLow  = 400000
	aliasRatioRangeHigh = 4000000
	aliasRatioRange     = float64(aliasRatioRangeHigh - aliasRatioRangeLow)
)

func allowedAliasRatio(decodeCount int) float64 {
	switch {
	case decodeCount <= aliasRatioRangeLow:
		return 0.99
	case decodeCount >= aliasRatioRangeHigh:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(decodeCount-aliasRatioRangeLow)/aliasRatioRange)
	}
}

func (r *strictReader) value(n *yaml.Node, path eng.Path, depth int) (any, error) {
	r.decodeCount++
	if r.aliasDepth > 0 {
		r.aliasCount++
	}
	if r.aliasCount > 100 && r.decodeCount > 1000 &&
		float64(r.aliasCount)/float64(r.decodeCount) > allowedAliasRatio(r.decodeCount) {
		return nil, nodeIssue(n, path, "document contains excessive aliasing")
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return r.value(n.Content[0], path, depth)
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, nil
		}
		if r.expanding[n.Alias] {
			return nil, nodeIssue(n, path, fmt.Sprintf("anchor '%s' value contains itself", n.Value))
		}
		if r.expanding == nil {
			r.expanding = map[*yaml.Node]bool{}
		}
		r.expanding[n.Alias] = true
		r.aliasDepth++
		v, err := r.value(n.Alias, path, depth)
		r.aliasDepth--
		delete(r.expanding, n.Alias)
		return v, err
	case yaml.MappingNode:
		if err := r.enter(n, path, depth); err != nil {
			return nil, err
		}
		m := make(map[string]any, len(n.Content)/2)
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			key := k.Value
			if pos, dup := first[key]; dup {
				issue := goalps.Issue{
					Code:    goalps.CodeDuplicateKey,
					Path:    path.Field(key).Pointer(),
					Message: fmt.Sprintf("key '%s' duplicated (first at %d:%d)", key, pos[0], pos[1]),
					Line:    k.Line,
					Column:  k.Column,
				}
				switch r.opt.Strictness.OnDuplicateKey {
				case goalps.Error:
					return nil, goalps.Issues{issue}
				case goalps.Warn:
					if r.opt.OnWarning != nil {
						r.opt.OnWarning(issue)
					}
				}
			} else {
				first[key] = [2]int{k.Line, k.Column}
			}
			val, err := r.value(v, path.Field(key), depth+1)
			if err != nil {
				return nil, err
			}
			m[key] = val
		}
		return m, nil
	case yaml.SequenceNode:
		if err := r.enter(n, path, depth); err != nil {
			return nil, err
		}
		arr := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := r.value(c, path.Index(i), depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalar(n), nil
	default:
		return nil, nil
	}
}

// enter checks the depth limit for a container starting at n.
func (r *strictReader) enter(n *yaml.Node, path eng.Path, depth int) error {
	if r.opt.MaxDepth > 0 && depth+1 > r.opt.MaxDepth {
		return nodeIssue(n, path, fmt.Sprintf("max depth %d exceeded", r.opt.MaxDepth))
	}
	return nil
}

func nodeIssue(n *yaml.Node, path eng.Path, msg string) error {
	return goalps.Issues{{
		Code:    goalps.CodeParseError,
		Path:    path.Pointer(),
		Message: msg,
		Line:    n.Line,
		Column:  n.Column,
	}}
}

func scalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return i
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return f
		}
	}
	return n.Value
}

// Encode writes doc as YAML. Pretty output uses block style with two space
// indentation; otherwise the document is rendered in flow style.
func (Format) Encode(doc *goalps.Document, opt goalps.WriteOpt) ([]byte, error) {
	obj, err := tree.Write(doc, opt)
	if err != nil {
		return nil, err
	}
	root, err := toNode(obj)
	if err != nil {
		return nil, goalps.Errorf(goalps.CodeInvalidDocument, "encode yaml: %v", err)
	}
	if !opt.Pretty {
		root.Style = yaml.FlowStyle
	}
	buf := &bytes.Buffer{}
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, goalps.Errorf(goalps.CodeInvalidDocument, "encode yaml: %v", err)
	}
	if err := enc.Close(); err != nil {
		return nil, goalps.Errorf(goalps.CodeInvalidDocument, "encode yaml: %v", err)
	}
	return buf.Bytes(), nil
}

func toNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case tree.Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range t {
			val, err := toNode(m.Value)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Key}, val)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t {
			val, err := toNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, val)
		}
		return n, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(goalps.PlainValue(v)); err != nil {
			return nil, err
		}
		return n, nil
	}
}

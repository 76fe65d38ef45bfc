package goalps

// DescriptorType classifies a descriptor.
type DescriptorType string

const (
	// Semantic describes a state element such as a field or a resource.
	Semantic DescriptorType = "semantic"
	// Safe describes a read-only transition.
	Safe DescriptorType = "safe"
	// Unsafe describes a non-idempotent state-changing transition.
	Unsafe DescriptorType = "unsafe"
	// Idempotent describes an idempotent state-changing transition.
	Idempotent DescriptorType = "idempotent"
)

// DefaultDescriptorType applies when a descriptor carries no type.
const DefaultDescriptorType = Semantic

// DescriptorTypes lists the legal descriptor types, default first.
func DescriptorTypes() []DescriptorType {
	return []DescriptorType{Semantic, Safe, Unsafe, Idempotent}
}

// IsDefault reports whether t is the default type (the empty value counts).
func (t DescriptorType) IsDefault() bool { return t == "" || t == DefaultDescriptorType }

// Or returns t, or the default type when t is empty.
func (t DescriptorType) Or() DescriptorType {
	if t == "" {
		return DefaultDescriptorType
	}
	return t
}

// DefaultVersion is the profile version assumed when a document omits it.
const DefaultVersion = "1.0"

// DefaultMediaType is the documentation format assumed when none is given.
const DefaultMediaType = "text"

// Document is the root of a profile. It has no identifier of its own.
type Document struct {
	Version       string
	Documentation []*Documentation
	Links         []*Link
	Descriptors   []*Descriptor
	Extensions    []*Extension
}

// NewDocument returns an empty document with the default version.
func NewDocument() *Document { return &Document{Version: DefaultVersion} }

// AddDescriptor attaches a top-level descriptor. Its Parent stays nil.
func (d *Document) AddDescriptor(child *Descriptor) {
	child.parent = nil
	d.Descriptors = append(d.Descriptors, child)
}

// Walk visits every descriptor depth-first, parents before children, and
// stops at the first false returned by fn.
func (d *Document) Walk(fn func(*Descriptor) bool) {
	for _, c := range d.Descriptors {
		if !c.walk(fn) {
			return
		}
	}
}

// Find returns the descriptor with the given id anywhere in the tree.
func (d *Document) Find(id string) *Descriptor {
	var found *Descriptor
	d.Walk(func(x *Descriptor) bool {
		if x.ID == id {
			found = x
			return false
		}
		return true
	})
	return found
}

// Descriptor is a named, typed node of the profile tree.
type Descriptor struct {
	ID            string
	Href          string
	Name          string
	Type          DescriptorType
	ReturnType    string
	Documentation []*Documentation
	Links         []*Link
	Extensions    []*Extension
	Descriptors   []*Descriptor

	// parent is a lookup aid only; ownership flows through Descriptors.
	parent *Descriptor
}

// NewDescriptor returns a descriptor with the given id and the default type.
func NewDescriptor(id string) *Descriptor {
	return &Descriptor{ID: id, Type: DefaultDescriptorType}
}

// AddDescriptor attaches child as a nested descriptor of d.
func (d *Descriptor) AddDescriptor(child *Descriptor) {
	child.parent = d
	d.Descriptors = append(d.Descriptors, child)
}

// Parent returns the enclosing descriptor, or nil for top-level descriptors.
func (d *Descriptor) Parent() *Descriptor { return d.parent }

func (d *Descriptor) walk(fn func(*Descriptor) bool) bool {
	if !fn(d) {
		return false
	}
	for _, c := range d.Descriptors {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// Documentation is a human readable block attached to a document or descriptor.
type Documentation struct {
	Content   string
	MediaType string
	Href      string
}

// IsDefaultMediaType reports whether the media type is the plain-text default.
func (d *Documentation) IsDefaultMediaType() bool { return isDefaultMediaType(d.MediaType) }

func isDefaultMediaType(mt string) bool {
	return mt == "" || mt == DefaultMediaType || mt == "text/plain"
}

// Link is a typed hyperlink.
type Link struct {
	Rel  string
	Href string
}

// Extension carries vendor specific data. Value is the plain string form and
// Nested holds a structured value. A string Nested with no Value denotes the
// same extension as that string in Value; see Canonical.
type Extension struct {
	ID     string
	Href   string
	Value  string
	Nested any
}

// Canonical returns the value pair every encoding and Equal agree on: a
// string Nested moves into an empty Value and an empty string Nested is
// dropped.
func (e *Extension) Canonical() (string, any) {
	value, nested := e.Value, e.Nested
	if s, ok := nested.(string); ok {
		switch {
		case s == "":
			nested = nil
		case value == "":
			value, nested = s, nil
		}
	}
	return value, nested
}

// Package tree projects documents from and to the tree encoding: a generic
// hierarchical value (objects, arrays, scalars) shared by the JSON and YAML
// syntaxes.
package tree

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Object is an object whose members keep insertion order. Writers render
// members in this order.
type Object []Member

// Set appends a member.
func (o *Object) Set(key string, value any) { *o = append(*o, Member{Key: key, Value: value}) }

// Get returns the value of the first member named key.
func (o Object) Get(key string) (any, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Keys lists member keys in order.
func (o Object) Keys() []string {
	out := make([]string, len(o))
	for i, m := range o {
		out[i] = m.Key
	}
	return out
}

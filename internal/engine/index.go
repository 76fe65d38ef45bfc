package engine

// Index maps absolute identifiers to the values registered under them. It is
// created for one parse call and dropped with it; it never owns its values.
type Index[T any] struct {
	byID map[string]T
}

// NewIndex returns an empty index.
func NewIndex[T any]() *Index[T] {
	return &Index[T]{byID: make(map[string]T)}
}

// Register records v under id. It returns false, leaving the index untouched,
// when id is already taken.
func (x *Index[T]) Register(id string, v T) bool {
	if _, taken := x.byID[id]; taken {
		return false
	}
	x.byID[id] = v
	return true
}

// Lookup returns the value registered under id.
func (x *Index[T]) Lookup(id string) (T, bool) {
	v, ok := x.byID[id]
	return v, ok
}

// Len returns the number of registered identifiers.
func (x *Index[T]) Len() int { return len(x.byID) }

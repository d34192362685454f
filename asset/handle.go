package asset

// Handle is a typed reference to an asset of type T.
type Handle[T any] struct {
	id ID
}

// NewHandle wraps id in a typed handle.
func NewHandle[T any](id ID) Handle[T] {
	return Handle[T]{id: id}
}

// ID returns the asset identity.
func (h Handle[T]) ID() ID {
	return h.id
}

// Weak returns the bare identity of the asset, without the type.
func (h Handle[T]) Weak() ID {
	return h.id
}

// IsNil reports whether the handle refers to no asset.
func (h Handle[T]) IsNil() bool {
	return h.id.IsNil()
}

// String returns the identity string.
func (h Handle[T]) String() string {
	return h.id.String()
}

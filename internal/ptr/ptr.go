package ptr

// Ref returns a pointer to the value passed as argument.
//
// Used for the nullable fields of persisted records such as LibraryEntry.LastUsed.
func Ref[T any](v T) *T {
	return &v
}

// Deref returns the value p points to or fallback when p is nil.
func Deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// Clone returns a pointer to a copy of *p so that records copied between sessions don't share state.
func Clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

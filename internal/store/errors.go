package store

import "errors"

// ErrNotFound indicates an id that resolves to no live entity. Returned
// unwrapped-comparable via errors.Is; callers map it to their own surface.
var ErrNotFound = errors.New("not found")

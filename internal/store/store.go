// Package store holds the session-scoped state: the models built during
// this session and the media they can be evaluated against. State lives
// in memory for the lifetime of the process; persistence across restarts
// is out of scope.
package store

import "errors"

// ErrNotFound is returned when a requested model or media does not exist.
var ErrNotFound = errors.New("store: not found")

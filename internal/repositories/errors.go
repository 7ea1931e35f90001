package repositories

import "errors"

// ErrNotFound is returned (wrapped) by every repository when a record does
// not exist. Callers match it with errors.Is.
var ErrNotFound = errors.New("record not found")

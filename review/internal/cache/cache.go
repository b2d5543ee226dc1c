package cache

import "errors"

// ErrNotFound is returned on a cache miss.
var ErrNotFound = errors.New("not found")

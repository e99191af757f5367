package cache

import "errors"

// ErrCorruptEntry indicates a stored value could not be decoded.
var ErrCorruptEntry = errors.New("corrupt cache entry")

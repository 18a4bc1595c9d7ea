package store

import (
	"errors"
	"fmt"
)

// ErrWriteFailed is returned by stores configured to reject writes.
var ErrWriteFailed = errors.New("store: write failed")

// Backend names accepted by OpenBackend.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// OpenBackend opens the KV named by backend at path.
func OpenBackend(backend, path string) (KV, error) {
	switch backend {
	case "", BackendSQLite:
		return Open(path)
	case BackendBadger:
		return OpenBadger(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

package storage

import "fmt"

// NewStore opens the run-history backend named by kind. sqlitePath is used
// only by the sqlite backend.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported run store %q: want memory or sqlite", kind)
	}
}

// CloseIfSupported releases backends that hold a database handle.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}

//go:build !sqlite

package storage

import "errors"

// ErrSQLiteUnavailable is returned for the sqlite backend in builds without
// the sqlite tag.
var ErrSQLiteUnavailable = errors.New("sqlite run store unavailable: rebuild stackgpctl with -tags sqlite")

func newSQLiteStore(_ string) (Store, error) {
	return nil, ErrSQLiteUnavailable
}

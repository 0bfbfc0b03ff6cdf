//go:build !sqlite

package storage

import (
	"errors"
	"strings"
	"testing"
)

func TestNewStoreSQLiteRequiresBuildTag(t *testing.T) {
	_, err := NewStore("sqlite", "runs.db")
	if !errors.Is(err, ErrSQLiteUnavailable) {
		t.Fatalf("expected ErrSQLiteUnavailable, got=%v", err)
	}
	if !strings.Contains(err.Error(), "-tags sqlite") {
		t.Fatalf("expected build hint in error, got=%v", err)
	}
}

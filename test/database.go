package test

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

// TmpFile returns the path for a database file unique to the test. The
// file lives in the test's temporary directory and is removed with it.
func TmpFile(t *testing.T) string {
	t.Helper()

	return filepath.Join(t.TempDir(), uuid.NewString()+".db")
}

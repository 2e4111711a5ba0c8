package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/efficiency/internal/db"
	"github.com/stretchr/testify/require"
)

// NewTestDB returns a migrated in-memory database holding empty timer slots
// and an empty journal. It is closed with the test.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenDB(":memory:")
	require.NoError(t, err, "opening test database")
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func NewTestUoW(conn *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(conn)
}

// Package sqlite implements the persistent stores over a single-file
// SQLite database accessed through bun.
package sqlite

import (
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Open returns a managed bun handle for the given database file. The
// handle is opened once at startup and shared by all requests; a single
// writer connection serializes SQLite writes.
func Open(path string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+path+"?cache=shared")
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(1)
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// OpenInMemory returns a throwaway in-memory database for tests.
func OpenInMemory() (*bun.DB, error) {
	return Open(":memory:")
}

package mapper

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Supported driver names for Open.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Open connects to dsn with the named driver and wraps it in a bun.DB using
// the matching dialect.
func Open(driver, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	switch driver {
	case DriverSQLite:
		// an in-memory database lives only as long as its connection
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case DriverPostgres:
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		sqldb.Close()
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

var schema = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS tbl_dept (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			dept_name VARCHAR(255) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tbl_employee (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			last_name VARCHAR(255) NOT NULL,
			gender CHAR(1),
			email VARCHAR(255),
			d_id INTEGER REFERENCES tbl_dept(id)
		)`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS tbl_dept (
			id SERIAL PRIMARY KEY,
			dept_name VARCHAR(255) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tbl_employee (
			id SERIAL PRIMARY KEY,
			last_name VARCHAR(255) NOT NULL,
			gender CHAR(1),
			email VARCHAR(255),
			d_id INTEGER REFERENCES tbl_dept(id)
		)`,
	},
}

// CreateSchema creates tbl_dept and tbl_employee if they do not exist.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	driver := DriverSQLite
	if db.Dialect().Name() == dialect.PG {
		driver = DriverPostgres
	}
	for _, stmt := range schema[driver] {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

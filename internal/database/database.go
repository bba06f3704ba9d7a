package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

const defaultSQLitePath = "file:elite-decor.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// DB is a *sql.DB that knows which placeholder style its driver wants.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects to PostgreSQL for postgres:// URLs and to SQLite otherwise.
// An empty url opens the local SQLite file; ":memory:" opens a private
// in-memory database.
func Open(ctx context.Context, url string) (*DB, error) {
	driver, dsn, dialect := resolve(url)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect == SQLite {
		// One connection keeps an in-memory database alive and serialises
		// writers on the file.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

func resolve(url string) (driver, dsn string, dialect Dialect) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgres", url, Postgres
	case url == "":
		return "sqlite", defaultSQLitePath, SQLite
	default:
		return "sqlite", strings.TrimPrefix(url, "sqlite://"), SQLite
	}
}

// Rebind rewrites ? placeholders to $1..$n for PostgreSQL.
func (d *DB) Rebind(query string) string {
	if d.Dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Package sqlstore maps departments, employees and reviews to relational
// tables. A Store is one session: it owns an identity map per table so that a
// row is represented by a single object for as long as the session lives.
//
// A Store is not safe for concurrent use.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hr_reviews/internal/adapters/observability"
	"hr_reviews/internal/domain"
)

type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite3"
)

// ParseDialect maps a database/sql driver name to a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch Dialect(driver) {
	case MySQL, SQLite:
		return Dialect(driver), nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

func (d Dialect) primaryKey() string {
	if d == MySQL {
		return "INTEGER PRIMARY KEY AUTO_INCREMENT"
	}
	return "INTEGER PRIMARY KEY"
}

// StaleRefPolicy decides what materialising a row whose referenced parent is
// gone does.
type StaleRefPolicy string

const (
	// StaleRefsStrict fails the read with a validation error.
	StaleRefsStrict StaleRefPolicy = "strict"
	// StaleRefsTolerate keeps the row and logs a warning.
	StaleRefsTolerate StaleRefPolicy = "tolerate"
)

func ParseStaleRefPolicy(s string) (StaleRefPolicy, error) {
	switch StaleRefPolicy(s) {
	case "", StaleRefsStrict:
		return StaleRefsStrict, nil
	case StaleRefsTolerate:
		return StaleRefsTolerate, nil
	}
	return "", fmt.Errorf("unknown stale reference policy %q", s)
}

type Option func(*Store)

func WithLogger(l zerolog.Logger) Option { return func(s *Store) { s.log = l } }

func WithStaleRefs(p StaleRefPolicy) Option { return func(s *Store) { s.staleRefs = p } }

type Store struct {
	db        *sql.DB
	dialect   Dialect
	log       zerolog.Logger
	staleRefs StaleRefPolicy

	departments *Departments
	employees   *Employees
	reviews     *Reviews
}

// New wraps an open handle. Every statement runs in autocommit mode.
func New(db *sql.DB, d Dialect, opts ...Option) *Store {
	s := &Store{db: db, dialect: d, log: log.Logger, staleRefs: StaleRefsStrict}
	for _, o := range opts {
		o(s)
	}
	s.departments = &Departments{s: s, cache: newIdentityMap[domain.Department]("departments")}
	s.employees = &Employees{s: s, cache: newIdentityMap[domain.Employee]("employees")}
	s.reviews = &Reviews{s: s, cache: newIdentityMap[domain.Review]("reviews")}
	return s
}

// Open opens a handle for the dialect. SQLite is pinned to one connection so
// that ":memory:" databases survive between statements.
func Open(d Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(string(d), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d, err)
	}
	if d == SQLite {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func (s *Store) Departments() *Departments { return s.departments }
func (s *Store) Employees() *Employees { return s.employees }
func (s *Store) Reviews() *Reviews { return s.reviews }

// CreateSchema creates all tables, parents first.
func (s *Store) CreateSchema(ctx context.Context) error {
	if err := s.departments.CreateTable(ctx); err != nil {
		return err
	}
	if err := s.employees.CreateTable(ctx); err != nil {
		return err
	}
	return s.reviews.CreateTable(ctx)
}

// DropSchema drops all tables, children first.
func (s *Store) DropSchema(ctx context.Context) error {
	if err := s.reviews.DropTable(ctx); err != nil {
		return err
	}
	if err := s.employees.DropTable(ctx); err != nil {
		return err
	}
	return s.departments.DropTable(ctx)
}

// Reset empties every identity map. Objects handed out earlier keep their IDs
// but are no longer shared with later reads.
func (s *Store) Reset() {
	s.departments.cache.clear()
	s.employees.cache.clear()
	s.reviews.cache.clear()
}

func (s *Store) exec(ctx context.Context, table, op, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := s.db.ExecContext(ctx, query, args...)
	observability.ObserveStatement(table, op, err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, table, err)
	}
	return res, nil
}

// queryAll runs query and hands every row to scan. scan must not issue
// statements of its own: SQLite runs on a single connection and the result
// set holds it until queryAll returns.
func (s *Store) queryAll(ctx context.Context, table, op, query string, scan func(*sql.Rows) error, args ...any) error {
	start := time.Now()
	err := func() error {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			if err := scan(rows); err != nil {
				return err
			}
		}
		return rows.Err()
	}()
	observability.ObserveStatement(table, op, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, table, err)
	}
	return nil
}

func (s *Store) exists(ctx context.Context, table, query string, id int64) (bool, error) {
	found := false
	err := s.queryAll(ctx, table, "exists", query, func(rows *sql.Rows) error {
		found = true
		return nil
	}, id)
	return found, err
}

func (s *Store) insert(ctx context.Context, table, query string, args ...any) (int64, error) {
	res, err := s.exec(ctx, table, "insert", query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert %s: last insert id: %w", table, err)
	}
	return id, nil
}

// Package sqldoc stores documents as JSON rows of a single SQL table. It
// supports Postgres (jsonb) and SQLite (json1) through Dialect.
package sqldoc

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/kotche/carrot-notes/internal/docstore"
)

const table = "documents"

//go:embed migrations
var migrationsFS embed.FS

type Store struct {
	db      *sql.DB
	dialect Dialect
}

func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	db, err := sql.Open(dialect.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dialect.Name, err)
	}
	db.SetMaxOpenConns(dialect.maxOpenConns)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", dialect.Name, err)
	}

	return New(db, dialect), nil
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies the embedded schema migrations for the store's dialect.
func (s *Store) Migrate() error {
	src, err := iofs.New(migrationsFS, s.dialect.migrations)
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	driver, err := s.dialect.migrator(s.db)
	if err != nil {
		return fmt.Errorf("failed to init migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, s.dialect.Name, driver)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}

	if err = m.Up(); !errors.Is(err, migrate.ErrNoChange) && err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

func (s *Store) Query(ctx context.Context, collection string, where docstore.Where) ([]docstore.Document, error) {
	query, args, err := s.dialect.selectQuery(collection, where)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var (
			doc  docstore.Document
			data []byte
		)
		if err = rows.Scan(&doc.ID, &data); err != nil {
			return nil, fmt.Errorf("failed to scan %s document: %w", collection, err)
		}
		if err = json.Unmarshal(data, &doc.Data); err != nil {
			return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, doc.ID, err)
		}
		docs = append(docs, doc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", collection, err)
	}

	return docs, nil
}

func (s *Store) Insert(ctx context.Context, collection string, data docstore.Data) (string, error) {
	id, err := docstore.NewID()
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	query, args, err := s.dialect.builder().
		Insert(table).
		Columns("collection", "id", "data").
		Values(collection, id, string(payload)).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build query: %w", err)
	}

	if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", collection, err)
	}

	return id, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Data) error {
	query, args, err := s.dialect.updateQuery(collection, id, fields)
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if affected == 0 {
		return docstore.ErrNotFound
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	query, args, err := s.dialect.builder().
		Delete(table).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}

	return nil
}

func (d Dialect) selectQuery(collection string, where docstore.Where) (string, []any, error) {
	queryBuilder := d.builder().
		Select("id", "data").
		From(table).
		Where(squirrel.Eq{"collection": collection})

	fields := make([]string, 0, len(where))
	for field := range where {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		expr, err := d.field(field)
		if err != nil {
			return "", nil, err
		}
		queryBuilder = queryBuilder.Where(expr+" = ?", d.value(where[field]))
	}

	return queryBuilder.OrderBy("inserted_at", "id").ToSql()
}

func (d Dialect) updateQuery(collection, id string, fields docstore.Data) (string, []any, error) {
	patch, err := json.Marshal(fields)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode fields: %w", err)
	}

	return d.builder().
		Update(table).
		Set("data", squirrel.Expr(d.mergeExpr, string(patch))).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		ToSql()
}

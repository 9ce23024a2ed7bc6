package sqldoc

import (
	"database/sql"
	"fmt"
	"regexp"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Dialect describes how documents are stored in one SQL engine.
type Dialect struct {
	Name         string
	driverName   string
	placeholder  squirrel.PlaceholderFormat
	// fieldFormat extracts a top-level JSON field as a scalar.
	fieldFormat  string
	// mergeExpr merges a JSON object parameter into data.
	mergeExpr    string
	boolValue    func(bool) any
	// maxOpenConns of 0 leaves the pool unlimited.
	maxOpenConns int
	migrations   string
	migrator     func(db *sql.DB) (database.Driver, error)
}

var (
	Postgres = Dialect{
		Name:        "postgres",
		driverName:  "postgres",
		placeholder: squirrel.Dollar,
		fieldFormat: "data->>'%s'",
		mergeExpr:   "data || ?::jsonb",
		boolValue: func(b bool) any {
			if b {
				return "true"
			}
			return "false"
		},
		migrations: "migrations/postgres",
		migrator: func(db *sql.DB) (database.Driver, error) {
			return postgres.WithInstance(db, &postgres.Config{})
		},
	}

	SQLite = Dialect{
		Name:        "sqlite",
		driverName:  "sqlite",
		placeholder: squirrel.Question,
		fieldFormat: "json_extract(data, '$.%s')",
		mergeExpr:   "json_patch(data, ?)",
		boolValue: func(b bool) any {
			if b {
				return 1
			}
			return 0
		},
		// One writer at a time, otherwise parallel updates fail with SQLITE_BUSY.
		maxOpenConns: 1,
		migrations:   "migrations/sqlite",
		migrator: func(db *sql.DB) (database.Driver, error) {
			return sqlite.WithInstance(db, &sqlite.Config{})
		},
	}
)

func DialectByName(name string) (Dialect, error) {
	switch name {
	case Postgres.Name:
		return Postgres, nil
	case SQLite.Name:
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unknown sql dialect %q", name)
	}
}

func (d Dialect) field(name string) (string, error) {
	if !fieldName.MatchString(name) {
		return "", fmt.Errorf("invalid document field name %q", name)
	}
	return fmt.Sprintf(d.fieldFormat, name), nil
}

func (d Dialect) value(v any) any {
	if b, ok := v.(bool); ok {
		return d.boolValue(b)
	}
	return v
}

func (d Dialect) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.placeholder)
}

package portfolio

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/eringen/portfolio/logger"
)

const (
	dialectSQLite   = "sqlite"
	dialectPostgres = "postgres"
)

// dialectOf picks the SQL dialect from a database URL. Anything that is not
// a postgres URL is treated as a SQLite file path.
func dialectOf(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return dialectPostgres
	}
	return dialectSQLite
}

// openDB opens dsn with the driver of its dialect. SQLite files get their
// directory created and per-connection pragmas: WAL for concurrent readers,
// a busy timeout so writers wait instead of failing with SQLITE_BUSY.
func openDB(dsn string) (*sql.DB, string, error) {
	dialect := dialectOf(dsn)
	if dialect == dialectPostgres {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, "", err
		}
		return db, dialect, nil
	}

	if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
		return nil, "", err
	}
	db, err := sql.Open("sqlite", "file:"+dsn+
		"?_pragma=journal_mode(WAL)"+
		"&_pragma=busy_timeout(5000)"+
		"&_pragma=synchronous(NORMAL)"+
		"&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, "", err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	return db, dialect, nil
}

// Migrate applies every pending schema migration to the database at dsn.
func Migrate(dsn string, log logger.Logger) error {
	return withMigrator(dsn, log, func(m *migrate.Migrate) error {
		return m.Up()
	})
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(dsn string, steps int, log logger.Logger) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be > 0, got %d", steps)
	}
	return withMigrator(dsn, log, func(m *migrate.Migrate) error {
		return m.Steps(-steps)
	})
}

// withMigrator runs fn against a migrator on its own connection; closing the
// migrator closes that connection too.
func withMigrator(dsn string, log logger.Logger, fn func(*migrate.Migrate) error) error {
	db, dialect, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	src, err := iofs.New(migrationFiles, "migrations/"+dialect)
	if err != nil {
		db.Close()
		return fmt.Errorf("load migrations: %w", err)
	}

	var driver database.Driver
	switch dialect {
	case dialectPostgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	}
	if err != nil {
		db.Close()
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dialect, driver)
	if err != nil {
		driver.Close()
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := fn(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	log.Info("migrations complete",
		logger.String("dialect", dialect),
		logger.Int("version", int(version)),
		logger.Bool("dirty", dirty))
	return nil
}

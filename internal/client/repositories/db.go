// Package repositories bootstraps the local SQLite database: it opens the
// file, applies the embedded goose migrations and exposes the repositories
// built on top of it.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/syncdraft/internal/client/migrations"
	"github.com/dmitrijs2005/syncdraft/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/syncdraft/internal/filex"
)

// Repositories groups the repositories sharing one database handle.
type Repositories struct {
	DB       *sql.DB
	Metadata *metadata.SQLiteRepository
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// InitDatabase opens (creating if needed) the SQLite database at dsn and
// migrates it to the latest schema.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Open creates the database directory when needed, then runs InitDatabase
// and builds the repositories.
func Open(ctx context.Context, dsn string) (*Repositories, error) {
	path, err := filex.EnsureParentDir(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare database directory: %w", err)
	}

	db, err := InitDatabase(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Repositories{DB: db, Metadata: metadata.NewSQLiteRepository(db)}, nil
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

package snapcheck

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Mode selects the access strategy for a store handle.
type Mode string

const (
	// ModeExclusive pins a single dedicated connection.
	ModeExclusive Mode = "exclusive"

	// ModePooled routes operations through a pool capped at one connection.
	ModePooled Mode = "pooled"
)

// CacheMode selects whether connections naming the same in-memory store
// observe one logical dataset or independent private ones.
type CacheMode string

const (
	CachePrivate CacheMode = "private"
	CacheShared  CacheMode = "shared"
)

// Driver is the embedded store contract both access strategies implement.
// Every operation is fatal on error; the workflow has no retries.
type Driver interface {
	// ExecBatch runs one or more statements synchronously to completion.
	// Their effects are visible to subsequent reads on the same driver.
	ExecBatch(ctx context.Context, batch string) error

	// QueryRows runs a scan and decodes the result set in result order.
	QueryRows(ctx context.Context, query string) ([]Row, error)

	// Catalog lists table names from the store's system catalog.
	Catalog(ctx context.Context) ([]string, error)

	// ExportTo snapshots the entire live store into a new standalone file
	// at path. The destination must not exist: ExportTo fails with
	// ErrTargetExists rather than overwrite.
	ExportTo(ctx context.Context, path string) error

	// Close releases every underlying connection. The driver must not be
	// used afterwards.
	Close() error
}

// Target names an in-memory store or a file path to open.
type Target struct {
	// Path is a filesystem path. Empty means an in-memory store.
	Path string

	// Name identifies an in-memory store when Cache is CacheShared, so
	// that independent handles can observe the same dataset.
	Name string

	Cache CacheMode
}

// FileTarget opens an existing database file.
func FileTarget(path string) Target {
	return Target{Path: path}
}

// MemoryTarget opens a private in-memory store. Each physical connection to
// a private target is its own empty database, which is why the exclusive
// driver pins one connection and the pool is capped at one.
func MemoryTarget() Target {
	return Target{Cache: CachePrivate}
}

// SharedMemoryTarget opens a named in-memory store with a shared cache:
// every handle using the same name sees one logical dataset for as long as
// at least one connection stays open.
func SharedMemoryTarget(name string) Target {
	return Target{Name: name, Cache: CacheShared}
}

// dsn builds the go-sqlite3 connection string for the target.
func (t Target) dsn() string {
	if t.Path != "" {
		return "file:" + t.Path
	}
	if t.Cache == CacheShared {
		name := t.Name
		if name == "" {
			name = "snapcheck"
		}
		return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	}
	return ":memory:"
}

// vacuumInto builds the export statement. The destination is embedded as a
// SQL string literal, so single quotes are doubled.
func vacuumInto(path string) string {
	return fmt.Sprintf("VACUUM INTO '%s'", strings.ReplaceAll(path, "'", "''"))
}

// checkExportTarget enforces the no-overwrite policy shared by both drivers.
func checkExportTarget(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrTargetExists, path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat export target %s: %w", path, err)
	}
	return nil
}

// rowQuerier is the subset of database/sql shared by *sql.Conn and *sql.DB.
type rowQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// scanRows decodes a two-column result set into Rows, preserving result
// order.
func scanRows(ctx context.Context, q rowQuerier, query string) ([]Row, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// scanNames decodes a single-column result set of names.
func scanNames(ctx context.Context, q rowQuerier, query string) ([]string, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate names: %w", err)
	}
	return out, nil
}

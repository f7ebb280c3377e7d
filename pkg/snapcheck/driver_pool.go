package snapcheck

import (
	"context"
	"database/sql"
	"fmt"
)

// PoolDriver serves the workflow through a database/sql pool capped at one
// connection. The cap keeps a private in-memory store alive between
// operations, and demonstrates that a capacity-1 pool behaves identically
// to an exclusive connection for this workload.
type PoolDriver struct {
	db *sql.DB
}

// OpenPool establishes a pooled handle to the target. maxConns below 1 is
// treated as 1.
func OpenPool(ctx context.Context, target Target, maxConns int) (*PoolDriver, error) {
	if maxConns < 1 {
		maxConns = 1
	}

	db, err := sql.Open("sqlite3", target.dsn())
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", target.dsn(), err)
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	// The pool must never recycle its connection: for a private in-memory
	// target the store dies with the connection.
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %q: %w", target.dsn(), err)
	}

	return &PoolDriver{db: db}, nil
}

func (d *PoolDriver) ExecBatch(ctx context.Context, batch string) error {
	if d.db == nil {
		return ErrDriverClosed
	}
	if _, err := d.db.ExecContext(ctx, batch); err != nil {
		return fmt.Errorf("exec batch: %w", err)
	}
	return nil
}

func (d *PoolDriver) QueryRows(ctx context.Context, query string) ([]Row, error) {
	if d.db == nil {
		return nil, ErrDriverClosed
	}
	return scanRows(ctx, d.db, query)
}

func (d *PoolDriver) Catalog(ctx context.Context) ([]string, error) {
	if d.db == nil {
		return nil, ErrDriverClosed
	}
	return scanNames(ctx, d.db, catalogQuery)
}

func (d *PoolDriver) ExportTo(ctx context.Context, path string) error {
	if d.db == nil {
		return ErrDriverClosed
	}
	if err := checkExportTarget(path); err != nil {
		return err
	}
	if _, err := d.db.ExecContext(ctx, vacuumInto(path)); err != nil {
		return fmt.Errorf("export to %s: %w", path, err)
	}
	return nil
}

// Close releases every pool member. Close is idempotent.
func (d *PoolDriver) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

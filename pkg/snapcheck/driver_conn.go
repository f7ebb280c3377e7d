package snapcheck

import (
	"context"
	"database/sql"
	"fmt"
)

// ConnDriver serves the workflow over one dedicated connection. Pinning is
// load-bearing for private in-memory targets: database/sql hands out fresh
// connections on demand, and each fresh connection to ":memory:" is a
// brand-new empty store.
type ConnDriver struct {
	db   *sql.DB
	conn *sql.Conn
}

// OpenConn establishes an exclusive handle to the target.
func OpenConn(ctx context.Context, target Target) (*ConnDriver, error) {
	db, err := sql.Open("sqlite3", target.dsn())
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", target.dsn(), err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %q: %w", target.dsn(), err)
	}

	return &ConnDriver{db: db, conn: conn}, nil
}

func (d *ConnDriver) ExecBatch(ctx context.Context, batch string) error {
	if d.conn == nil {
		return ErrDriverClosed
	}
	if _, err := d.conn.ExecContext(ctx, batch); err != nil {
		return fmt.Errorf("exec batch: %w", err)
	}
	return nil
}

func (d *ConnDriver) QueryRows(ctx context.Context, query string) ([]Row, error) {
	if d.conn == nil {
		return nil, ErrDriverClosed
	}
	return scanRows(ctx, d.conn, query)
}

func (d *ConnDriver) Catalog(ctx context.Context) ([]string, error) {
	if d.conn == nil {
		return nil, ErrDriverClosed
	}
	return scanNames(ctx, d.conn, catalogQuery)
}

func (d *ConnDriver) ExportTo(ctx context.Context, path string) error {
	if d.conn == nil {
		return ErrDriverClosed
	}
	if err := checkExportTarget(path); err != nil {
		return err
	}
	if _, err := d.conn.ExecContext(ctx, vacuumInto(path)); err != nil {
		return fmt.Errorf("export to %s: %w", path, err)
	}
	return nil
}

// Close releases the pinned connection and the handle behind it. Close is
// idempotent.
func (d *ConnDriver) Close() error {
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil

	if cerr := d.db.Close(); cerr != nil && err == nil {
		err = cerr
	}
	d.db = nil
	return err
}

package snapcheck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConnDriverSeedAndScan(t *testing.T) {
	ctx := context.Background()

	drv, err := OpenConn(ctx, MemoryTarget())
	if err != nil {
		t.Fatalf("OpenConn failed: %v", err)
	}
	defer drv.Close()

	if err := drv.ExecBatch(ctx, seedBatch); err != nil {
		t.Fatalf("ExecBatch failed: %v", err)
	}

	rows, err := drv.QueryRows(ctx, selectAll)
	if err != nil {
		t.Fatalf("QueryRows failed: %v", err)
	}
	if err := VerifyRows(PhaseLive, rows, SeedRows()); err != nil {
		t.Errorf("seeded rows do not match: %v", err)
	}
}

func TestPoolDriverSeedAndScan(t *testing.T) {
	ctx := context.Background()

	drv, err := OpenPool(ctx, MemoryTarget(), 1)
	if err != nil {
		t.Fatalf("OpenPool failed: %v", err)
	}
	defer drv.Close()

	if err := drv.ExecBatch(ctx, seedBatch); err != nil {
		t.Fatalf("ExecBatch failed: %v", err)
	}

	rows, err := drv.QueryRows(ctx, selectAll)
	if err != nil {
		t.Fatalf("QueryRows failed: %v", err)
	}
	if err := VerifyRows(PhaseLive, rows, SeedRows()); err != nil {
		t.Errorf("seeded rows do not match: %v", err)
	}
}

func TestPoolDriverKeepsStoreAliveAcrossOperations(t *testing.T) {
	ctx := context.Background()

	drv, err := OpenPool(ctx, MemoryTarget(), 1)
	if err != nil {
		t.Fatalf("OpenPool failed: %v", err)
	}
	defer drv.Close()

	if err := drv.ExecBatch(ctx, seedBatch); err != nil {
		t.Fatalf("ExecBatch failed: %v", err)
	}

	// A capacity-1 pool reuses its single connection, so the private
	// in-memory store must survive repeated operations.
	for i := 0; i < 5; i++ {
		rows, err := drv.QueryRows(ctx, selectAll)
		if err != nil {
			t.Fatalf("QueryRows %d failed: %v", i, err)
		}
		if len(rows) != 2 {
			t.Fatalf("QueryRows %d: expected 2 rows, got %d", i, len(rows))
		}
	}
}

func TestSharedCacheSecondHandleSeesRows(t *testing.T) {
	ctx := context.Background()
	target := SharedMemoryTarget("sharedcache-driver-test")

	pool, err := OpenPool(ctx, target, 1)
	if err != nil {
		t.Fatalf("OpenPool failed: %v", err)
	}
	defer pool.Close()

	if err := pool.ExecBatch(ctx, seedBatch); err != nil {
		t.Fatalf("ExecBatch failed: %v", err)
	}

	// An independent handle to the same shared-cache name observes the
	// same logical dataset.
	second, err := OpenConn(ctx, target)
	if err != nil {
		t.Fatalf("OpenConn on shared target failed: %v", err)
	}
	defer second.Close()

	rows, err := second.QueryRows(ctx, selectAll)
	if err != nil {
		t.Fatalf("QueryRows on second handle failed: %v", err)
	}
	if err := VerifyRows(PhaseLive, rows, SeedRows()); err != nil {
		t.Errorf("second handle rows do not match: %v", err)
	}

	tables, err := second.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog on second handle failed: %v", err)
	}
	if err := VerifyCatalog(tables); err != nil {
		t.Errorf("second handle catalog: %v", err)
	}
}

func TestExportRoundTrip(t *testing.T) {
	ctx := context.Background()

	drv, err := OpenConn(ctx, MemoryTarget())
	if err != nil {
		t.Fatalf("OpenConn failed: %v", err)
	}
	defer drv.Close()

	if err := drv.ExecBatch(ctx, seedBatch); err != nil {
		t.Fatalf("ExecBatch failed: %v", err)
	}

	live, err := drv.QueryRows(ctx, selectAll)
	if err != nil {
		t.Fatalf("QueryRows failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "snapshot.db")
	if err := drv.ExportTo(ctx, path); err != nil {
		t.Fatalf("ExportTo failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("exported file missing: %v", err)
	}

	if err := drv.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	fileDrv, err := OpenConn(ctx, FileTarget(path))
	if err != nil {
		t.Fatalf("OpenConn on exported file failed: %v", err)
	}
	defer fileDrv.Close()

	tables, err := fileDrv.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog failed: %v", err)
	}
	if err := VerifyCatalog(tables); err != nil {
		t.Errorf("exported catalog: %v", err)
	}

	persisted, err := fileDrv.QueryRows(ctx, selectAll)
	if err != nil {
		t.Fatalf("QueryRows on exported file failed: %v", err)
	}
	if err := VerifyRows(PhasePersisted, persisted, live); err != nil {
		t.Errorf("exported rows do not match live rows: %v", err)
	}
}

func TestExportToRejectsExistingTarget(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "existing.db")
	if err := os.WriteFile(path, []byte("not a database"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	drv, err := OpenConn(ctx, MemoryTarget())
	if err != nil {
		t.Fatalf("OpenConn failed: %v", err)
	}
	defer drv.Close()

	if err := drv.ExecBatch(ctx, seedBatch); err != nil {
		t.Fatalf("ExecBatch failed: %v", err)
	}

	err = drv.ExportTo(ctx, path)
	if !errors.Is(err, ErrTargetExists) {
		t.Fatalf("expected ErrTargetExists, got %v", err)
	}

	// The pre-existing file is untouched.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "not a database" {
		t.Errorf("existing file was modified")
	}
}

func TestDriverUseAfterClose(t *testing.T) {
	ctx := context.Background()

	conn, err := OpenConn(ctx, MemoryTarget())
	if err != nil {
		t.Fatalf("OpenConn failed: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	if err := conn.ExecBatch(ctx, seedBatch); !errors.Is(err, ErrDriverClosed) {
		t.Errorf("expected ErrDriverClosed from conn driver, got %v", err)
	}

	pool, err := OpenPool(ctx, MemoryTarget(), 1)
	if err != nil {
		t.Fatalf("OpenPool failed: %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := pool.QueryRows(ctx, selectAll); !errors.Is(err, ErrDriverClosed) {
		t.Errorf("expected ErrDriverClosed from pool driver, got %v", err)
	}
}

func TestVacuumIntoEscapesQuotes(t *testing.T) {
	got := vacuumInto("/tmp/it's.db")
	want := "VACUUM INTO '/tmp/it''s.db'"
	if got != want {
		t.Errorf("vacuumInto: expected %q, got %q", want, got)
	}
}

func TestTargetDSN(t *testing.T) {
	if dsn := MemoryTarget().dsn(); dsn != ":memory:" {
		t.Errorf("memory target dsn: got %q", dsn)
	}
	if dsn := SharedMemoryTarget("probe").dsn(); dsn != "file:probe?mode=memory&cache=shared" {
		t.Errorf("shared memory target dsn: got %q", dsn)
	}
	if dsn := FileTarget("/tmp/x.db").dsn(); dsn != "file:/tmp/x.db" {
		t.Errorf("file target dsn: got %q", dsn)
	}
}

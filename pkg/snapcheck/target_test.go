package snapcheck

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProvisionTarget(t *testing.T) {
	path, err := ProvisionTarget(t.TempDir())
	if err != nil {
		t.Fatalf("ProvisionTarget failed: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("provisioned path should not exist, stat returned %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("parent directory should exist: %v", err)
	}

	// The path must be usable as a new file.
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Errorf("provisioned path not writable: %v", err)
	}
}

func TestProvisionTargetCreatesParent(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "a", "b")

	path, err := ProvisionTarget(parent)
	if err != nil {
		t.Fatalf("ProvisionTarget failed: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("parent directory should have been created: %v", err)
	}
}

func TestProvisionTargetUniquePerRun(t *testing.T) {
	dir := t.TempDir()

	a, err := ProvisionTarget(dir)
	if err != nil {
		t.Fatalf("first ProvisionTarget failed: %v", err)
	}
	b, err := ProvisionTarget(dir)
	if err != nil {
		t.Fatalf("second ProvisionTarget failed: %v", err)
	}
	if a == b {
		t.Errorf("expected unique targets, both runs got %q", a)
	}
}

func TestProvisionTargetFailsOnBadParent(t *testing.T) {
	// A regular file where the parent directory should be is a fatal
	// provisioning error.
	parent := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(parent, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := ProvisionTarget(parent); err == nil {
		t.Error("expected error for file in place of parent dir, got nil")
	}
}

func TestProvisionTargetFile(t *testing.T) {
	path, err := ProvisionTargetFile(t.TempDir())
	if err != nil {
		t.Fatalf("ProvisionTargetFile failed: %v", err)
	}

	// The placeholder must not be left behind: export requires an absent
	// destination.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("placeholder should have been removed, stat returned %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("parent directory should exist: %v", err)
	}
}

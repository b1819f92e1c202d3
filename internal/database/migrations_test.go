package database

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPendingMigrationsSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "notes.txt", "010_c.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := PendingMigrations(dir)
	if err != nil {
		t.Fatalf("PendingMigrations() error = %v", err)
	}
	want := []string{"001_a.sql", "002_b.sql", "010_c.sql"}
	if len(files) != len(want) {
		t.Fatalf("files = %v", files)
	}
	for i, f := range files {
		if filepath.Base(f) != want[i] {
			t.Fatalf("files[%d] = %s, want %s", i, filepath.Base(f), want[i])
		}
	}
}

func TestRepositoryMigrationsPresent(t *testing.T) {
	files, err := PendingMigrations(filepath.Join("..", "..", "migrations"))
	if err != nil {
		t.Fatalf("PendingMigrations() error = %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no migrations found")
	}
}

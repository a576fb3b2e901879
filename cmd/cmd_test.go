package cmd

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TANGOCHO_LOG_FILE", "-")
	t.Setenv("TANGOCHO_LOG_LEVEL", "error")
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeLegacyDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "legacy.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE words (id INTEGER PRIMARY KEY, jp TEXT, en TEXT, progression INTEGER, my BOOLEAN)`,
		`INSERT INTO words (id, jp, en, progression, my) VALUES
			(1, '犬', 'dog', 0, 0),
			(2, '猫', 'cat', 2, 1),
			(3, '鳥', 'bird', 1, 0),
			(4, '魚', NULL, 1, 0),
			(120, '山', 'mountain', 2, 0)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "tangocho ") {
		t.Errorf("output = %q", out)
	}
}

func TestMigrateThenStats(t *testing.T) {
	legacy := writeLegacyDB(t)
	db := filepath.Join(t.TempDir(), "tangocho.db")

	out, err := execute(t, "migrate", "--db", db, "--from", legacy, "--batch", "2", "--dry-run=false")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "Migrated 4 of 5 words.") {
		t.Errorf("migrate output = %q", out)
	}
	if !strings.Contains(out, "word 4:") {
		t.Errorf("expected skipped word 4 in %q", out)
	}

	out, err = execute(t, "sets", "--db", db)
	if err != nil {
		t.Fatalf("sets: %v", err)
	}
	if !strings.Contains(out, "Words") || !strings.Contains(out, "2") {
		t.Errorf("sets output = %q", out)
	}

	out, err = execute(t, "stats", "--db", db)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	// Set 1 holds dog, cat and bird; only cat has recall mastered.
	for _, want := range []string{"33.3%", "100.0%", "All", "50.0%", "mastered"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestMigrateDryRun(t *testing.T) {
	legacy := writeLegacyDB(t)
	db := filepath.Join(t.TempDir(), "tangocho.db")

	out, err := execute(t, "migrate", "--db", db, "--from", legacy, "--dry-run")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "Would migrate 4 of 5 words.") {
		t.Errorf("output = %q", out)
	}

	out, err = execute(t, "stats", "--db", db)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "No words yet") {
		t.Errorf("dry run wrote words: %q", out)
	}
}

func TestMigrateMissingLegacyFile(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tangocho.db")
	_, err := execute(t, "migrate", "--db", db, "--from", filepath.Join(t.TempDir(), "nope.db"), "--dry-run=false")
	if err == nil {
		t.Error("expected an error for a missing legacy database")
	}
}

package cookies

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	base := t.TempDir()
	s, err := NewStore(filepath.Join(base, "cookies"), filepath.Join(base, "cookies.txt"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestUploadAndResolve(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Upload("session.txt", strings.NewReader("# Netscape HTTP Cookie File\n"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if !strings.HasPrefix(rec.Name, "session_") {
		t.Errorf("expected timestamped name, got %q", rec.Name)
	}

	path, err := s.Resolve(rec.Name)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if path != rec.Path {
		t.Errorf("Resolve path = %q, want %q", path, rec.Path)
	}
}

func TestUploadRejectsBadInput(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Upload("cookies.json", strings.NewReader("data")); !errors.Is(err, ErrBadExtension) {
		t.Errorf("expected ErrBadExtension, got %v", err)
	}

	if _, err := s.Upload("empty.txt", strings.NewReader("")); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("expected ErrEmptyFile, got %v", err)
	}

	// the rejected empty file must not linger on disk
	if records := s.List(); len(records) != 0 {
		t.Errorf("expected empty store, got %d records", len(records))
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Upload("acct.txt", strings.NewReader("cookie data"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := s.Delete(rec.Name); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := s.Resolve(rec.Name); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := s.Delete("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown name, got %v", err)
	}
}

func TestListOrderAndDefault(t *testing.T) {
	s := newTestStore(t)

	if err := os.WriteFile(s.DefaultPath(), []byte("default cookies"), 0644); err != nil {
		t.Fatal(err)
	}

	older, err := s.Upload("older.txt", strings.NewReader("a"))
	if err != nil {
		t.Fatal(err)
	}
	// uploads are ordered by mod time, push the first one back
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older.Path, past, past); err != nil {
		t.Fatal(err)
	}

	newer, err := s.Upload("newer.txt", strings.NewReader("b"))
	if err != nil {
		t.Fatal(err)
	}

	records := s.List()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Name != DefaultName || records[0].Uploaded {
		t.Errorf("expected default record first, got %+v", records[0])
	}
	if records[1].Name != newer.Name {
		t.Errorf("expected newest upload second, got %q", records[1].Name)
	}
	if records[2].Name != older.Name {
		t.Errorf("expected oldest upload last, got %q", records[2].Name)
	}
}

func TestSweepExpired(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Upload("stale.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}

	expired := time.Now().Add(-25 * time.Hour)
	if err := os.Chtimes(rec.Path, expired, expired); err != nil {
		t.Fatal(err)
	}

	if records := s.List(); len(records) != 0 {
		t.Errorf("expected expired record swept, got %d records", len(records))
	}

	if _, err := os.Stat(rec.Path); !os.IsNotExist(err) {
		t.Error("expected expired file removed from disk")
	}
}

func TestDefaultNeverExpires(t *testing.T) {
	s := newTestStore(t)

	if err := os.WriteFile(s.DefaultPath(), []byte("d"), 0644); err != nil {
		t.Fatal(err)
	}
	ancient := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(s.DefaultPath(), ancient, ancient); err != nil {
		t.Fatal(err)
	}

	records := s.List()
	if len(records) != 1 || records[0].Name != DefaultName {
		t.Fatalf("expected default record to survive, got %+v", records)
	}
}

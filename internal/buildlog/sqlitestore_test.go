package buildlog

import (
	"path/filepath"
	"testing"
	"time"
)

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)

func tempStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "builds.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLogRunAndEntries(t *testing.T) {
	s := tempStore(t)

	run := Run{
		OutDir:   "assets/generated",
		Duration: 1500 * time.Millisecond,
		OK:       true,
		Files: []FileRecord{
			{Output: "icon-192.png", Width: 192, Height: 192, BytesRaw: 40000, BytesFinal: 12000},
			{Output: "splash.png", Width: 1242, Height: 2436, BytesRaw: 900000, BytesFinal: 300000},
		},
	}
	if err := s.LogRun(run); err != nil {
		t.Fatalf("LogRun: %v", err)
	}

	entries, err := s.Entries(0)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	got := entries[0]
	if !got.OK || got.OutDir != "assets/generated" {
		t.Errorf("run = %+v", got)
	}
	if got.Duration != 1500*time.Millisecond {
		t.Errorf("Duration = %v, want 1.5s", got.Duration)
	}
	if len(got.Files) != 2 {
		t.Fatalf("len(Files) = %d, want 2", len(got.Files))
	}
	if got.Files[0].Output != "icon-192.png" || got.Files[0].BytesFinal != 12000 {
		t.Errorf("file 0 = %+v", got.Files[0])
	}
	if got.Files[1].Width != 1242 || got.Files[1].Height != 2436 {
		t.Errorf("file 1 = %+v", got.Files[1])
	}
}

func TestLogFailedRun(t *testing.T) {
	s := tempStore(t)

	run := Run{
		OutDir:     "out",
		OK:         false,
		FailedPath: "assets/splash.svg",
		Error:      "resvg render assets/splash.svg: exit status 1",
		Files:      []FileRecord{{Output: "icon-1024.png", Width: 1024, Height: 1024}},
	}
	if err := s.LogRun(run); err != nil {
		t.Fatal(err)
	}

	entries, _ := s.Entries(0)
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].OK {
		t.Error("OK = true, want false")
	}
	if entries[0].FailedPath != "assets/splash.svg" {
		t.Errorf("FailedPath = %q", entries[0].FailedPath)
	}
	if len(entries[0].Files) != 1 {
		t.Errorf("failed run should keep its partial file records, got %d", len(entries[0].Files))
	}
}

func TestEntriesNewestFirst(t *testing.T) {
	s := tempStore(t)

	for _, dir := range []string{"first", "second", "third"} {
		if err := s.LogRun(Run{OutDir: dir, OK: true}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := s.Entries(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	if entries[0].OutDir != "third" || entries[2].OutDir != "first" {
		t.Errorf("order = %q, %q, %q", entries[0].OutDir, entries[1].OutDir, entries[2].OutDir)
	}
}

func TestEntriesDayWindow(t *testing.T) {
	s := tempStore(t)

	old := Run{Timestamp: time.Now().AddDate(0, 0, -10), OutDir: "old", OK: true}
	recent := Run{OutDir: "recent", OK: true}
	if err := s.LogRun(old); err != nil {
		t.Fatal(err)
	}
	if err := s.LogRun(recent); err != nil {
		t.Fatal(err)
	}

	entries, err := s.Entries(7)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1", len(entries))
	}
	if entries[0].OutDir != "recent" {
		t.Errorf("entry = %q, want recent", entries[0].OutDir)
	}
}

func TestClean(t *testing.T) {
	s := tempStore(t)

	if err := s.LogRun(Run{Timestamp: time.Now().AddDate(0, 0, -30), OutDir: "old", OK: true}); err != nil {
		t.Fatal(err)
	}
	if err := s.LogRun(Run{OutDir: "new", OK: true}); err != nil {
		t.Fatal(err)
	}

	n, err := s.Clean(7)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if n != 1 {
		t.Errorf("Clean removed %d, want 1", n)
	}

	entries, _ := s.Entries(0)
	if len(entries) != 1 || entries[0].OutDir != "new" {
		t.Errorf("entries after clean = %+v", entries)
	}
}

func TestClear(t *testing.T) {
	s := tempStore(t)

	if err := s.LogRun(Run{OutDir: "x", OK: true, Files: []FileRecord{{Output: "a.png", Width: 1, Height: 1}}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	entries, _ := s.Entries(0)
	if len(entries) != 0 {
		t.Errorf("len = %d, want 0 after clear", len(entries))
	}
}

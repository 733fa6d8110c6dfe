package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRoundPercent(t *testing.T) {
	testCases := []struct {
		part, total int
		want        int
	}{
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{3, 8, 38}, // 37.5 rounds up
		{0, 5, 0},
		{5, 5, 100},
		{1, 0, 0},
	}
	for _, tc := range testCases {
		if got := RoundPercent(tc.part, tc.total); got != tc.want {
			t.Errorf("RoundPercent(%d, %d) = %d, want %d", tc.part, tc.total, got, tc.want)
		}
	}
}

func TestContainsString(t *testing.T) {
	opts := []string{"A. Paris", "B. Rome"}
	if !ContainsString(opts, "B. Rome") {
		t.Error("expected B. Rome to be found")
	}
	if ContainsString(opts, "Rome") {
		t.Error("membership must be exact, label prefix included")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("new"), 0644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("content = %q, want %q", got, "new")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file to remain, found %d entries", len(entries))
	}
}

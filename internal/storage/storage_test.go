package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{"simple", "abc/file.mp4", "abc/file.mp4", false},
		{"leading slash", "/abc/file.mp4", "abc/file.mp4", false},
		{"backslashes", `abc\file.mp4`, "abc/file.mp4", false},
		{"dot prefix", "./abc/file.mp4", "abc/file.mp4", false},
		{"traversal", "../etc/passwd", "", true},
		{"nested traversal", "abc/../../etc", "", true},
		{"parent only", "..", "", true},
		{"empty", "  ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sanitizeKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("sanitizeKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("sanitizeKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestSaveAndPath(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	key, err := store.Save(context.Background(), "Trình bày.vtt", strings.NewReader("WEBVTT\n"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !strings.HasSuffix(key, "/Trinh bay.vtt") {
		t.Errorf("key = %q", key)
	}

	path, err := store.Path(key)
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "WEBVTT\n" {
		t.Errorf("stored content = %q, %v", data, err)
	}

	other, err := store.Save(context.Background(), "Trình bày.vtt", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	if other == key {
		t.Error("two uploads with the same name share a key")
	}
}

func TestPathErrors(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.Path("missing/file.mp4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing key error = %v, want ErrNotFound", err)
	}
	if _, err := store.Path("../outside"); err == nil {
		t.Error("traversal key should be rejected")
	}
}

func TestSaveCancelled(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Save(ctx, "a.mp4", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore(" "); err == nil {
		t.Error("empty base path should fail")
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Intro", "Intro"},
		{"Crème brûlée", "Creme brulee"},
		{"a/b\\c:d", "a_b_c_d"},
		{"  spaced   out  ", "spaced out"},
		{"../../etc/passwd", "etc_passwd"},
		{"???", "untitled"},
		{"", "untitled"},
		{"Tiếng Việt", "Tieng Viet"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := SanitizeName(strings.Repeat("x", 500))
	if len([]rune(long)) != maxNameRunes {
		t.Errorf("long name has %d runes", len([]rune(long)))
	}
}

func TestReservePath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Clips")

	first, err := ReservePath(dir, "intro", ".mp4")
	if err != nil {
		t.Fatal(err)
	}
	if first != filepath.Join(dir, "intro.mp4") {
		t.Errorf("first = %q", first)
	}
	if info, err := os.Stat(first); err != nil || info.Size() != 0 {
		t.Fatalf("reserved file not created empty: %v", err)
	}

	second, err := ReservePath(dir, "intro", ".mp4")
	if err != nil {
		t.Fatal(err)
	}
	if second != filepath.Join(dir, "intro_1.mp4") {
		t.Errorf("second = %q", second)
	}
}

func TestReservePathConcurrentCallersGetDistinctNames(t *testing.T) {
	dir := t.TempDir()
	const n = 16

	paths := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := ReservePath(dir, "clip", ".mp4")
			if err != nil {
				t.Error(err)
				return
			}
			paths <- p
		}()
	}
	wg.Wait()
	close(paths)

	seen := make(map[string]bool)
	for p := range paths {
		if seen[p] {
			t.Errorf("path %q handed out twice", p)
		}
		seen[p] = true
	}
	if len(seen) != n {
		t.Errorf("reserved %d paths, want %d", len(seen), n)
	}
}

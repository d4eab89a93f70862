package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxNameRunes  = 120
	maxCollisions = 1000
	fallbackName  = "untitled"
)

// SanitizeName turns free text into a portable file name: accents are
// folded, path separators and control characters become "_", and runs of
// separators collapse.
func SanitizeName(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	lastSep := false
	for _, r := range folded {
		ok := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_' || r == ' '
		if !ok {
			r = '_'
		}
		sep := r == '_' || r == ' '
		if sep && lastSep {
			continue
		}
		lastSep = sep
		b.WriteRune(r)
	}

	out := strings.Trim(b.String(), " ._-")
	if rs := []rune(out); len(rs) > maxNameRunes {
		out = strings.TrimRight(string(rs[:maxNameRunes]), " ._-")
	}
	if out == "" {
		return fallbackName
	}
	return out
}

// ReservePath claims dir/base+ext, or dir/base_N+ext for the first N that
// is free, by creating it as an empty file. Existing files are never chosen,
// and two callers never get the same path. The caller overwrites the file
// and removes it if nothing is written.
func ReservePath(dir, base, ext string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}

	base = SanitizeName(base)
	for i := 0; i < maxCollisions; i++ {
		name := base
		if i > 0 {
			name += "_" + strconv.Itoa(i)
		}
		candidate := filepath.Join(dir, name+ext)
		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("storage: reserve %s: %w", candidate, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("storage: reserve %s: %w", candidate, err)
		}
		return candidate, nil
	}
	return "", fmt.Errorf("storage: no free name for %s%s in %s", base, ext, dir)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package visualize

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// DirSurface writes each image as a PNG file named after its title.
type DirSurface struct {
	Dir   string
	seen  map[string]int
	Paths []string
}

// NewDirSurface creates dir if needed.
func NewDirSurface(dir string) (*DirSurface, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating images directory %s: %w", dir, err)
	}
	return &DirSurface{Dir: dir, seen: map[string]int{}}, nil
}

// Show writes img to <Dir>/<sanitized title>.png. A title seen before in
// this surface gets a _2, _3, ... suffix.
func (s *DirSurface) Show(title string, img image.Image) error {
	if s.seen == nil {
		s.seen = map[string]int{}
	}
	base := sanitize(title)
	s.seen[base]++
	if n := s.seen[base]; n > 1 {
		base = fmt.Sprintf("%s_%d", base, n)
	}
	path := filepath.Join(s.Dir, base+".png")

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.Paths = append(s.Paths, path)
	return nil
}

// sanitize keeps letters, digits, '-' and '.', and folds every other run of
// characters into a single '_'.
func sanitize(title string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "_.")
	if out == "" {
		return "untitled"
	}
	return out
}

package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// Index maps lowercase texture stems to filesystem paths.
// Formats carrying alpha (PNG, TGA) take priority over JPEG for the same stem.
type Index struct {
	entries map[string]string // stem.lower() → full path
}

var extPriority = map[string]int{
	".jpg":  1,
	".jpeg": 1,
	".tga":  2,
	".png":  3,
}

// BuildIndex scans dir and its subdirectories for texture files.
func BuildIndex(dir string) *Index {
	idx := &Index{entries: make(map[string]string)}
	if dir == "" {
		return idx
	}

	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		prio, ok := extPriority[ext]
		if !ok {
			return nil
		}
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

		existing, exists := idx.entries[stem]
		if !exists || prio > extPriority[strings.ToLower(filepath.Ext(existing))] {
			idx.entries[stem] = path
		}
		return nil
	})

	return idx
}

// ResolvePath returns the filesystem path for a texture name, or ("", false).
func (idx *Index) ResolvePath(texName string) (string, bool) {
	// Strip path prefix (e.g., "Materials\\bricks.png" → "bricks")
	texName = strings.ReplaceAll(texName, "\\", "/")
	base := filepath.Base(texName)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	path, ok := idx.entries[stem]
	return path, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}

package roster

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Saved is a roster file found in a roster directory.
type Saved struct {
	Name string
	Path string
}

// ScanDir lists roster files directly inside dir, sorted by name. A missing
// directory yields no rosters and no error.
func ScanDir(dir string) ([]Saved, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []Saved
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := FormatFor(e.Name()); err != nil {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		out = append(out, Saved{Name: name, Path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Find returns the saved roster called name, if any.
func Find(dir, name string) (Saved, bool, error) {
	all, err := ScanDir(dir)
	if err != nil {
		return Saved{}, false, err
	}
	for _, s := range all {
		if s.Name == name {
			return s, true, nil
		}
	}
	return Saved{}, false, nil
}

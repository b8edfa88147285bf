package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Loader reads profiles from a directory of .txt files. The file stem is the
// profile ID.
type Loader struct {
	dir string
}

// NewLoader creates a Loader for dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// LoadAll parses every *.txt file in the directory, keyed by profile ID.
func (l *Loader) LoadAll() (map[string]*Profile, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read profile dir: %w", err)
	}

	profiles := make(map[string]*Profile)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		p, err := l.Load(filepath.Join(l.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		profiles[p.ID] = p
	}
	return profiles, nil
}

// Load parses a single profile file.
func (l *Loader) Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	id := strings.TrimSuffix(filepath.Base(path), ".txt")
	p, err := Parse(id, string(data))
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Parse builds a typed Profile from raw file content.
func Parse(id, content string) (*Profile, error) {
	return fromSections(id, parseSections(content))
}

// IDs returns the profile IDs of m in sorted order.
func IDs(m map[string]*Profile) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Package preset stores named tree filters in a TOML file.
package preset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/timeline"
	"github.com/alexanderramin/wbs/internal/treestate"
)

// ErrNotFound is returned when no preset has the requested name.
var ErrNotFound = errors.New("preset not found")

// Preset is a saved filter. Empty fields do not constrain.
type Preset struct {
	Name     string   `toml:"name"`
	Statuses []string `toml:"statuses,omitempty"`
	Assignee string   `toml:"assignee,omitempty"`
	Due      string   `toml:"due,omitempty"`
	Search   string   `toml:"search,omitempty"`
}

// Filter converts the preset into a treestate filter evaluated at now.
func (p Preset) Filter(now time.Time) (treestate.Filter, error) {
	f := treestate.Filter{Assignee: p.Assignee, Search: p.Search, Now: now}
	for _, raw := range p.Statuses {
		s, err := domain.ParseStatus(raw)
		if err != nil {
			return treestate.Filter{}, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		f.Statuses = append(f.Statuses, s)
	}
	bucket, err := timeline.ParseBucket(p.Due)
	if err != nil {
		return treestate.Filter{}, fmt.Errorf("preset %q: %w", p.Name, err)
	}
	f.Bucket = bucket
	return f, nil
}

func (p Preset) validate() error {
	if p.Name == "" {
		return fmt.Errorf("preset name is required")
	}
	_, err := p.Filter(time.Time{})
	return err
}

type presetFile struct {
	Presets []Preset `toml:"preset"`
}

// Store reads and writes presets at a fixed path. A missing file holds no
// presets.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// List returns every preset sorted by name.
func (s *Store) List() ([]Preset, error) {
	file, err := s.load()
	if err != nil {
		return nil, err
	}
	out := append([]Preset(nil), file.Presets...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) Get(name string) (Preset, error) {
	file, err := s.load()
	if err != nil {
		return Preset{}, err
	}
	for _, p := range file.Presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Save adds p, replacing any preset with the same name.
func (s *Store) Save(p Preset) error {
	if err := p.validate(); err != nil {
		return err
	}
	file, err := s.load()
	if err != nil {
		return err
	}
	replaced := false
	for i := range file.Presets {
		if file.Presets[i].Name == p.Name {
			file.Presets[i] = p
			replaced = true
		}
	}
	if !replaced {
		file.Presets = append(file.Presets, p)
	}
	return s.write(file)
}

func (s *Store) Delete(name string) error {
	file, err := s.load()
	if err != nil {
		return err
	}
	kept := file.Presets[:0]
	for _, p := range file.Presets {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(file.Presets) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	file.Presets = kept
	return s.write(file)
}

func (s *Store) load() (*presetFile, error) {
	var file presetFile
	if _, err := toml.DecodeFile(s.path, &file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &file, nil
		}
		return nil, fmt.Errorf("parsing presets: %w", err)
	}
	return &file, nil
}

// write replaces the file via rename so a failed encode never truncates it.
func (s *Store) write(file *presetFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating presets directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".presets-*.toml")
	if err != nil {
		return fmt.Errorf("creating presets file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(file); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding presets: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing presets: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing presets file: %w", err)
	}
	return nil
}

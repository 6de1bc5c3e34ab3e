// Package roster reads and writes attendee roster files (YAML or JSON).
package roster

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/meetcost/internal/model"
)

// Format is a roster file encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Entry is one attendee in a roster file. Exactly one of Hourly, Yearly, or
// Role should supply the rate; Hourly wins when several are set.
type Entry struct {
	Name   string   `yaml:"name" json:"name"`
	Role   string   `yaml:"role,omitempty" json:"role,omitempty"`
	Hourly *float64 `yaml:"hourly,omitempty" json:"hourly,omitempty"`
	Yearly *float64 `yaml:"yearly,omitempty" json:"yearly,omitempty"`
}

// File is the on-disk roster document.
type File struct {
	Attendees []Entry `yaml:"attendees" json:"attendees"`
}

// PresetFunc looks up the hourly rate for a role name.
type PresetFunc func(role string) (float64, bool)

// ErrUnknownFormat is returned for files without a .yaml, .yml, or .json extension.
var ErrUnknownFormat = errors.New("unknown roster format")

// FormatFor picks a format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Parse decodes a roster document. Unknown fields are rejected.
func Parse(r io.Reader, format Format) (File, error) {
	var f File
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return f, fmt.Errorf("decoding json roster: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return f, fmt.Errorf("decoding yaml roster: %w", err)
		}
	default:
		return f, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return f, nil
}

// Resolve turns roster entries into attendees with fresh IDs. A role is
// looked up through presets when no explicit rate is given.
func Resolve(f File, annualHours float64, presets PresetFunc) ([]model.Attendee, error) {
	if annualHours <= 0 {
		return nil, fmt.Errorf("annual hours must be positive, got %v", annualHours)
	}

	out := make([]model.Attendee, 0, len(f.Attendees))
	for i, e := range f.Attendees {
		rate, err := entryRate(e, annualHours, presets)
		if err != nil {
			return nil, fmt.Errorf("attendee %d (%q): %w", i+1, e.Name, err)
		}
		name := strings.TrimSpace(e.Name)
		if name == "" {
			name = fmt.Sprintf("Attendee %d", i+1)
		}
		out = append(out, model.Attendee{
			ID:   uuid.NewString(),
			Name: name,
			Rate: model.Parsed(rate),
		})
	}
	return out, nil
}

func entryRate(e Entry, annualHours float64, presets PresetFunc) (float64, error) {
	switch {
	case e.Hourly != nil:
		if *e.Hourly < 0 || math.IsNaN(*e.Hourly) {
			return 0, fmt.Errorf("hourly rate must be non-negative, got %v", *e.Hourly)
		}
		return *e.Hourly, nil
	case e.Yearly != nil:
		if *e.Yearly < 0 || math.IsNaN(*e.Yearly) {
			return 0, fmt.Errorf("yearly salary must be non-negative, got %v", *e.Yearly)
		}
		return *e.Yearly / annualHours, nil
	case e.Role != "":
		if presets == nil {
			return 0, fmt.Errorf("no rate presets to resolve role %q", e.Role)
		}
		v, ok := presets(e.Role)
		if !ok {
			return 0, fmt.Errorf("unknown role %q", e.Role)
		}
		return v, nil
	default:
		return 0, errors.New("needs hourly, yearly, or role")
	}
}

// FromAttendees builds a roster document. Rates are committed first; with
// yearly set, each entry carries a yearly salary instead of an hourly rate.
func FromAttendees(attendees []model.Attendee, yearly bool, annualHours float64) File {
	f := File{Attendees: make([]Entry, 0, len(attendees))}
	for _, a := range attendees {
		v, _ := a.Rate.Commit().Value()
		e := Entry{Name: a.Name}
		if yearly {
			y := math.Round(v * annualHours)
			e.Yearly = &y
		} else {
			h := math.Round(v*100) / 100
			e.Hourly = &h
		}
		f.Attendees = append(f.Attendees, e)
	}
	return f
}

// Encode writes a roster document.
func Encode(w io.Writer, f File, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ReadFile parses the roster at path, picking the format from its extension.
func ReadFile(path string) (File, error) {
	format, err := FormatFor(path)
	if err != nil {
		return File{}, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user on purpose
	if err != nil {
		return File{}, fmt.Errorf("reading roster: %w", err)
	}
	return Parse(bytes.NewReader(data), format)
}

// WriteFile encodes f to path, creating parent directories.
func WriteFile(path string, f File) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating roster dir: %w", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, f, format); err != nil {
		return fmt.Errorf("encoding roster: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

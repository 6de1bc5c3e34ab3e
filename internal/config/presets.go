package config

import (
	"sort"
	"strings"
)

// DefaultPresets maps role names to typical hourly rates. They seed the
// role picker when adding an attendee.
var DefaultPresets = map[string]float64{
	"manager":       80,
	"senior-dev":    90,
	"junior-dev":    45,
	"designer":      70,
	"product-owner": 85,
	"director":      120,
	"contractor":    100,
	"intern":        25,
}

// NormalizeRoleName lowercases a role and joins words with dashes.
// e.g., "Senior Dev" -> "senior-dev"
func NormalizeRoleName(raw string) string {
	fields := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	})
	return strings.Join(fields, "-")
}

// Presets merges user presets over the defaults.
func (c Config) Presets() map[string]float64 {
	out := make(map[string]float64, len(DefaultPresets)+len(c.RolePresets))
	for k, v := range DefaultPresets {
		out[k] = v
	}
	for k, v := range c.RolePresets {
		if v < 0 {
			continue
		}
		out[NormalizeRoleName(k)] = v
	}
	return out
}

// LookupPreset returns the hourly rate for a role, normalizing the name first.
func (c Config) LookupPreset(role string) (float64, bool) {
	v, ok := c.Presets()[NormalizeRoleName(role)]
	return v, ok
}

// PresetNames returns the known role names sorted by rate, then name.
func (c Config) PresetNames() []string {
	presets := c.Presets()
	names := make([]string, 0, len(presets))
	for k := range presets {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		if presets[names[i]] != presets[names[j]] {
			return presets[names[i]] < presets[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// RoleTitle turns a normalized role back into a display name.
// e.g., "senior-dev" -> "Senior Dev"
func RoleTitle(role string) string {
	parts := strings.Split(NormalizeRoleName(role), "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

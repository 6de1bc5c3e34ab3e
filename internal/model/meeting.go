package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultTargetMinutes is the target duration used before anything is saved.
const DefaultTargetMinutes = 60

// MaxTargetMinutes bounds typed and decoded targets.
const MaxTargetMinutes = 100_000

// TargetDuration is the estimated meeting length in minutes, or empty.
type TargetDuration struct {
	Minutes int
	Set     bool
}

// Target returns a set target duration.
func Target(minutes int) TargetDuration {
	if minutes < 0 {
		minutes = 0
	}
	return TargetDuration{Minutes: minutes, Set: true}
}

// NoTarget is the empty target duration.
var NoTarget = TargetDuration{}

// Value returns the minutes, with an empty target counting as 0.
func (d TargetDuration) Value() int {
	if !d.Set {
		return 0
	}
	return d.Minutes
}

// ParseTarget reads a target typed by a user: whole minutes, or "" / "none"
// to clear it.
func ParseTarget(text string) (TargetDuration, error) {
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, "none") {
		return NoTarget, nil
	}
	m, err := strconv.Atoi(text)
	if err != nil || m <= 0 {
		return NoTarget, fmt.Errorf("target must be whole minutes or \"none\", got %q", text)
	}
	if m > MaxTargetMinutes {
		return NoTarget, fmt.Errorf("target must be at most %d minutes, got %d", MaxTargetMinutes, m)
	}
	return Target(m), nil
}

// MarshalJSON encodes a set target as a number and an empty one as "".
func (d TargetDuration) MarshalJSON() ([]byte, error) {
	if !d.Set {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Minutes)
}

// UnmarshalJSON accepts a whole number of minutes in 0..MaxTargetMinutes,
// "", or null.
func (d *TargetDuration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		*d = NoTarget
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decoding target duration: %w", err)
	}
	if v != math.Trunc(v) || v < 0 || v > MaxTargetMinutes {
		return fmt.Errorf("target duration %s is not whole minutes in 0..%d", data, MaxTargetMinutes)
	}
	*d = Target(int(v))
	return nil
}

// MeetingRecord is a finished meeting kept in history.
type MeetingRecord struct {
	ID            string    `json:"id" yaml:"id"`
	EndedAt       time.Time `json:"ended_at" yaml:"ended_at"`
	ElapsedSecs   int64     `json:"elapsed_secs" yaml:"elapsed_secs"`
	Attendees     int       `json:"attendees" yaml:"attendees"`
	HourlyRate    float64   `json:"hourly_rate" yaml:"hourly_rate"`
	TotalCost     float64   `json:"total_cost" yaml:"total_cost"`
	TargetMinutes int       `json:"target_minutes,omitempty" yaml:"target_minutes,omitempty"`
}

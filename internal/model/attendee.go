// Package model defines domain types for meetcost attendees and meetings.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// completeDecimal matches a fully typed non-negative decimal ("12", "10.5", ".5").
// In-progress input like "12." does not match.
var completeDecimal = regexp.MustCompile(`^(\d+(\.\d+)?|\.\d+)$`)

// Rate is an attendee's hourly rate. It is either Parsed (a committed number)
// or Raw (text the user is still typing).
type Rate struct {
	raw    string
	value  float64
	parsed bool
}

// Parsed returns a committed rate. Negative and non-finite values become 0.
func Parsed(v float64) Rate {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return Rate{value: v, parsed: true}
}

// Raw returns an uncommitted rate holding the text as typed.
func Raw(s string) Rate {
	return Rate{raw: s}
}

// IsParsed reports whether the rate holds a committed number.
func (r Rate) IsParsed() bool { return r.parsed }

// Text returns the raw text for an uncommitted rate, or "" for a parsed one.
func (r Rate) Text() string { return r.raw }

// Value returns the committed number and true, or 0 and false for a raw rate.
func (r Rate) Value() (float64, bool) {
	if !r.parsed {
		return 0, false
	}
	return r.value, true
}

// Effective is the hourly amount this rate contributes to aggregation.
// Empty, in-progress, and unparsable raw text all count as 0.
func (r Rate) Effective() float64 {
	if r.parsed {
		return r.value
	}
	if !completeDecimal.MatchString(r.raw) {
		return 0
	}
	v, err := strconv.ParseFloat(r.raw, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// Commit resolves the rate to a parsed number, rounded to cents.
// Raw text is read leniently here: "12." commits to 12.
func (r Rate) Commit() Rate {
	if r.parsed {
		return r
	}
	s := strings.TrimSuffix(strings.TrimSpace(r.raw), ".")
	if s == "" {
		return Parsed(0)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Parsed(0)
	}
	return Parsed(math.Round(v*100) / 100)
}

// Equal compares two rates by tag and content.
func (r Rate) Equal(o Rate) bool {
	if r.parsed != o.parsed {
		return false
	}
	if r.parsed {
		return r.value == o.value
	}
	return r.raw == o.raw
}

// String renders the rate the way an input box would show it.
func (r Rate) String() string {
	if !r.parsed {
		return r.raw
	}
	if r.value == math.Trunc(r.value) {
		return strconv.FormatFloat(r.value, 'f', 0, 64)
	}
	return strconv.FormatFloat(r.value, 'f', 2, 64)
}

// MarshalJSON encodes a parsed rate as a number and a raw rate as a string.
func (r Rate) MarshalJSON() ([]byte, error) {
	if r.parsed {
		return json.Marshal(r.value)
	}
	return json.Marshal(r.raw)
}

// UnmarshalJSON accepts a number (Parsed) or a string (Raw).
func (r *Rate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Raw("")
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding rate text: %w", err)
		}
		*r = Raw(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decoding rate: %w", err)
	}
	*r = Parsed(v)
	return nil
}

// Attendee is a meeting participant.
type Attendee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rate Rate   `json:"rate"`
}

// DefaultAttendees is the sample roster used when nothing has been saved yet.
func DefaultAttendees() []Attendee {
	return []Attendee{
		{ID: "1", Name: "Manager", Rate: Parsed(80)},
		{ID: "2", Name: "Senior Dev", Rate: Parsed(90)},
		{ID: "3", Name: "Junior Dev", Rate: Parsed(45)},
	}
}

// EqualAttendees compares two attendee lists by value, in order.
func EqualAttendees(a, b []Attendee) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Name != b[i].Name || !a[i].Rate.Equal(b[i].Rate) {
			return false
		}
	}
	return true
}

package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/theirongolddev/meetcost/internal/meeting"
	"github.com/theirongolddev/meetcost/internal/model"
)

func TestFindAttendee(t *testing.T) {
	list := []model.Attendee{
		{ID: "1", Name: "Manager", Rate: model.Parsed(80)},
		{ID: "3f2a9c1e-0000-4000-8000-000000000001", Name: "Ana", Rate: model.Parsed(60)},
		{ID: "b7", Name: "ana ", Rate: model.Parsed(40)},
	}

	if a, err := findAttendee(list, "1"); err != nil || a.Name != "Manager" {
		t.Fatalf("by id: %+v %v", a, err)
	}
	if a, err := findAttendee(list, "manager"); err != nil || a.ID != "1" {
		t.Fatalf("by name: %+v %v", a, err)
	}
	if a, err := findAttendee(list, "3f2a9c1e"); err != nil || a.Name != "Ana" {
		t.Fatalf("by short id: %+v %v", a, err)
	}
	if _, err := findAttendee(list, "Ana"); !errors.Is(err, errAmbiguousName) {
		t.Fatalf("duplicate names should be ambiguous, got %v", err)
	}
	if _, err := findAttendee(list, "nobody"); !errors.Is(err, meeting.ErrAttendeeNotFound) {
		t.Fatalf("missing: %v", err)
	}
}

func TestParseHourly(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"90", 90, false},
		{" 12.349 ", 12.35, false},
		{"12.", 12, false},
		{"0", 0, false},
		{"-5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		r, err := parseHourly(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseHourly(%q) err = %v", tt.in, err)
			continue
		}
		if tt.wantErr {
			continue
		}
		if v, ok := r.Value(); !ok || v != tt.want {
			t.Errorf("parseHourly(%q) = %+v, want %v", tt.in, r, tt.want)
		}
	}
}

func TestAttendeeTable(t *testing.T) {
	list := []model.Attendee{
		{ID: "1", Name: "Manager", Rate: model.Parsed(80)},
		{ID: "2", Name: "Dev", Rate: model.Raw("")},
	}
	tbl := attendeeTable(2000, "$", 3600, list)

	if got := len(tbl.Headers); got != 6 {
		t.Fatalf("headers = %v", tbl.Headers)
	}
	if got := tbl.Rows[0]; got[3] != "$160,000" || got[4] != "100.0%" || got[5] != "$80.00" {
		t.Fatalf("manager row = %v", got)
	}
	if got := tbl.Rows[1][3]; got != "-" {
		t.Fatalf("empty rate yearly = %q, want -", got)
	}
	total := tbl.Rows[len(tbl.Rows)-1]
	if total[1] != "Total" || !strings.HasPrefix(total[2], "$80.00") {
		t.Fatalf("total row = %v", total)
	}

	if n := len(attendeeTable(2000, "$", 0, list).Headers); n != 5 {
		t.Fatalf("no cost column without elapsed, got %d headers", n)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("3f2a9c1e-0000-4000"); got != "3f2a9c1e" {
		t.Fatalf("shortID = %q", got)
	}
	if got := shortID("2"); got != "2" {
		t.Fatalf("shortID = %q", got)
	}
}

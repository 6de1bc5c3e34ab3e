package cli

import "testing"

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{3.5833, "$3.58"},
		{215, "$215.00"},
		{1234.5, "$1,234.50"},
		{1234567.891, "$1,234,567.89"},
		{-12.5, "-$12.50"},
	}
	for _, c := range cases {
		if got := FormatCurrency(c.in, ""); got != c.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", c.in, got, c.want)
		}
	}
	if got := FormatCurrency(10, "€"); got != "€10.00" {
		t.Errorf("custom symbol = %q", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	cases := map[int64]string{
		0:     "00:00",
		59:    "00:59",
		125:   "02:05",
		3600:  "1:00:00",
		3725:  "1:02:05",
		36000: "10:00:00",
		-5:    "00:00",
	}
	for in, want := range cases {
		if got := FormatElapsed(in); got != want {
			t.Errorf("FormatElapsed(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatRate(t *testing.T) {
	if got := FormatRate(215, "$"); got != "$215.00/hr" {
		t.Fatalf("FormatRate = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[int64]string{0: "0", 999: "999", 1000: "1,000", 150000: "150,000", -1234: "-1,234"}
	for in, want := range cases {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(250, 215, "$"); got != "+$35.00" {
		t.Fatalf("over = %q", got)
	}
	if got := FormatDelta(100, 215, "$"); got != "-$115.00" {
		t.Fatalf("under = %q", got)
	}
}

func TestFormatMinutes(t *testing.T) {
	if FormatMinutes(0) != "none" || FormatMinutes(90) != "1h 30m" {
		t.Fatalf("FormatMinutes = %q, %q", FormatMinutes(0), FormatMinutes(90))
	}
}

package model

import (
	"encoding/json"
	"testing"
)

func TestRateEffective(t *testing.T) {
	cases := []struct {
		name string
		rate Rate
		want float64
	}{
		{"parsed", Parsed(80), 80},
		{"empty raw", Raw(""), 0},
		{"complete raw", Raw("10.5"), 10.5},
		{"leading dot", Raw(".5"), 0.5},
		{"trailing dot", Raw("12."), 0},
		{"garbage", Raw("abc"), 0},
		{"negative raw", Raw("-5"), 0},
		{"nan raw", Raw("NaN"), 0},
		{"negative parsed", Parsed(-3), 0},
	}
	for _, tc := range cases {
		if got := tc.rate.Effective(); got != tc.want {
			t.Errorf("%s: Effective() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRateCommit(t *testing.T) {
	if got, _ := Raw("12.").Commit().Value(); got != 12 {
		t.Fatalf("Commit(12.) = %v, want 12", got)
	}
	if got, _ := Raw("").Commit().Value(); got != 0 {
		t.Fatalf("Commit(\"\") = %v, want 0", got)
	}
	if got, _ := Raw("10.556").Commit().Value(); got != 10.56 {
		t.Fatalf("Commit(10.556) = %v, want 10.56", got)
	}
	if !Raw("7").Commit().IsParsed() {
		t.Fatal("committed rate should be parsed")
	}
}

func TestRateString(t *testing.T) {
	if got := Parsed(80).String(); got != "80" {
		t.Errorf("Parsed(80).String() = %q", got)
	}
	if got := Parsed(10.5).String(); got != "10.50" {
		t.Errorf("Parsed(10.5).String() = %q", got)
	}
	if got := Raw("10.").String(); got != "10." {
		t.Errorf("Raw(10.).String() = %q", got)
	}
}

func TestRateJSONKeepsTag(t *testing.T) {
	in := []Attendee{
		{ID: "a", Name: "Ada", Rate: Parsed(72.25)},
		{ID: "b", Name: "Bo", Rate: Raw("12.")},
		{ID: "c", Name: "Cy", Rate: Raw("")},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"id":"a","name":"Ada","rate":72.25},{"id":"b","name":"Bo","rate":"12."},{"id":"c","name":"Cy","rate":""}]`
	if string(data) != want {
		t.Fatalf("marshal = %s\nwant %s", data, want)
	}

	var out []Attendee
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if !EqualAttendees(in, out) {
		t.Fatalf("round trip mismatch: %+v vs %+v", in, out)
	}
}

func TestTargetDurationJSON(t *testing.T) {
	data, _ := json.Marshal(Target(45))
	if string(data) != "45" {
		t.Fatalf("Target(45) = %s", data)
	}
	data, _ = json.Marshal(NoTarget)
	if string(data) != `""` {
		t.Fatalf("NoTarget = %s", data)
	}

	var d TargetDuration
	if err := json.Unmarshal([]byte(`""`), &d); err != nil || d.Set {
		t.Fatalf("decode empty: %+v, %v", d, err)
	}
	if err := json.Unmarshal([]byte(`90`), &d); err != nil || d != Target(90) {
		t.Fatalf("decode 90: %+v, %v", d, err)
	}
	if err := json.Unmarshal([]byte(`{}`), &d); err == nil {
		t.Fatal("expected error for object")
	}
	for _, in := range []string{`7.5`, `-3`, `1e300`, `100001`} {
		d = Target(90)
		if err := json.Unmarshal([]byte(in), &d); err == nil {
			t.Fatalf("decode %s: expected error, got %+v", in, d)
		}
	}
	if err := json.Unmarshal([]byte(`100000`), &d); err != nil || d != Target(MaxTargetMinutes) {
		t.Fatalf("decode max: %+v, %v", d, err)
	}
}

func TestParseTarget(t *testing.T) {
	for _, in := range []string{"", "  ", "none", "NONE"} {
		d, err := ParseTarget(in)
		if err != nil || d.Set {
			t.Fatalf("ParseTarget(%q) = %+v, %v", in, d, err)
		}
	}
	d, err := ParseTarget(" 45 ")
	if err != nil || d != Target(45) {
		t.Fatalf("ParseTarget(45) = %+v, %v", d, err)
	}
	d, err = ParseTarget("100000")
	if err != nil || d != Target(MaxTargetMinutes) {
		t.Fatalf("ParseTarget(max) = %+v, %v", d, err)
	}
	for _, in := range []string{"0", "-5", "1.5", "soon", "100001", "200000000000000000"} {
		if _, err := ParseTarget(in); err == nil {
			t.Fatalf("ParseTarget(%q) should fail", in)
		}
	}
}

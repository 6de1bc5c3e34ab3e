package pipeline

import (
	"math"
	"testing"

	"github.com/theirongolddev/meetcost/internal/model"
)

func sampleAttendees() []model.Attendee {
	return []model.Attendee{
		{ID: "1", Name: "Manager", Rate: model.Parsed(80)},
		{ID: "2", Name: "Senior Dev", Rate: model.Parsed(90)},
		{ID: "3", Name: "Junior Dev", Rate: model.Parsed(45)},
	}
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestAggregateRate_SumsEffectiveRates(t *testing.T) {
	attendees := append(sampleAttendees(),
		model.Attendee{ID: "4", Name: "Typing", Rate: model.Raw("12.")},
		model.Attendee{ID: "5", Name: "Empty", Rate: model.Raw("")},
		model.Attendee{ID: "6", Name: "Junk", Rate: model.Raw("abc")},
		model.Attendee{ID: "7", Name: "Half", Rate: model.Raw("10.5")},
	)

	got := AggregateRate(attendees)
	if got != 225.5 {
		t.Fatalf("AggregateRate = %v, want 225.5", got)
	}
	if AggregateRate(nil) != 0 {
		t.Fatal("AggregateRate(nil) should be 0")
	}
}

func TestProject_Scenarios(t *testing.T) {
	p := ProjectAttendees(sampleAttendees(), 60, model.Target(60))

	if p.HourlyRate != 215 {
		t.Fatalf("HourlyRate = %v, want 215", p.HourlyRate)
	}
	if p.CostPerSecond != 215.0/3600 {
		t.Fatalf("CostPerSecond = %v, want %v", p.CostPerSecond, 215.0/3600)
	}
	if !almostEqual(p.CurrentCost, 3.58, 0.005) {
		t.Fatalf("CurrentCost = %v, want ~3.58", p.CurrentCost)
	}
	if !almostEqual(p.ProjectedCost, 215, 1e-9) {
		t.Fatalf("ProjectedCost = %v, want 215", p.ProjectedCost)
	}
	if !almostEqual(p.ProgressPercent, 100.0/60, 1e-9) {
		t.Fatalf("ProgressPercent = %v, want %v", p.ProgressPercent, 100.0/60)
	}
	if !almostEqual(p.PerMinute, 215.0/60, 1e-9) {
		t.Fatalf("PerMinute = %v", p.PerMinute)
	}
}

func TestProject_ProgressCapsAndEmptyTarget(t *testing.T) {
	p := Project(100, 7200, model.Target(30))
	if p.ProgressPercent != 100 {
		t.Fatalf("ProgressPercent = %v, want 100", p.ProgressPercent)
	}

	p = Project(100, 600, model.NoTarget)
	if p.ProgressPercent != 0 || p.ProjectedCost != 0 {
		t.Fatalf("empty target: progress=%v projected=%v, want 0/0", p.ProgressPercent, p.ProjectedCost)
	}

	p = Project(100, 600, model.Target(0))
	if p.ProgressPercent != 0 {
		t.Fatalf("zero target progress = %v, want 0", p.ProgressPercent)
	}

	// minutes*60 would overflow int here.
	p = Project(100, 600, model.TargetDuration{Minutes: 200000000000000000, Set: true})
	if p.ProgressPercent < 0 || p.ProgressPercent > 1e-9 {
		t.Fatalf("huge target progress = %v, want tiny non-negative", p.ProgressPercent)
	}
}

func TestProject_CostMonotoneInElapsed(t *testing.T) {
	prev := -1.0
	for e := int64(0); e < 500; e++ {
		c := Project(215, e, model.NoTarget).CurrentCost
		if c < prev {
			t.Fatalf("cost decreased at %ds: %v < %v", e, c, prev)
		}
		prev = c
	}
}

func TestLookupRealityCheck(t *testing.T) {
	got, ok := LookupRealityCheck(DefaultRealityChecks, 120)
	if !ok || got.Label != "New mechanical keyboard" {
		t.Fatalf("120 -> %+v (ok=%v), want New mechanical keyboard", got, ok)
	}

	if _, ok := LookupRealityCheck(DefaultRealityChecks, 9.99); ok {
		t.Fatal("cost below smallest threshold should have no bucket")
	}

	got, _ = LookupRealityCheck(DefaultRealityChecks, 10)
	if got.Threshold != 10 {
		t.Fatalf("threshold is inclusive: got %v", got.Threshold)
	}

	got, _ = LookupRealityCheck(DefaultRealityChecks, 1e9)
	if got.Label != "Used car" {
		t.Fatalf("huge cost -> %q, want Used car", got.Label)
	}
}

func TestLookupRealityCheck_Monotone(t *testing.T) {
	prev := -1.0
	for cost := 0.0; cost < 6000; cost += 7.5 {
		got, ok := LookupRealityCheck(DefaultRealityChecks, cost)
		th := -1.0
		if ok {
			th = got.Threshold
		}
		if th < prev {
			t.Fatalf("threshold dropped at cost %v: %v < %v", cost, th, prev)
		}
		prev = th
	}
}

func TestSortRealityChecks(t *testing.T) {
	in := []RealityCheck{{Threshold: 50, Label: "b"}, {Threshold: 5, Label: "a"}}
	out := SortRealityChecks(in)
	if out[0].Label != "a" || out[1].Label != "b" {
		t.Fatalf("sorted = %+v", out)
	}
	if in[0].Label != "b" {
		t.Fatal("SortRealityChecks must not modify its input")
	}
}

func TestTierFor(t *testing.T) {
	cases := map[float64]CostTier{
		0: TierLow, 99.99: TierLow, 100: TierMid, 499: TierMid,
		500: TierHigh, 999: TierHigh, 1000: TierCritical, 1e6: TierCritical,
	}
	for cost, want := range cases {
		if got := TierFor(cost); got != want {
			t.Errorf("TierFor(%v) = %v, want %v", cost, got, want)
		}
	}
}

func TestSanitizeHourlyInput(t *testing.T) {
	cases := map[string]string{
		"$12.50/hr": "12.50",
		"1.2.3":     "1.23",
		"10.555":    "10.55",
		"12.":       "12.",
		"":          "",
		"abc":       "",
	}
	for in, want := range cases {
		r := SanitizeHourlyInput(in)
		if r.IsParsed() || r.Text() != want {
			t.Errorf("SanitizeHourlyInput(%q) = %+v, want Raw(%q)", in, r, want)
		}
	}
}

func TestYearlyRoundTrip(t *testing.T) {
	r, ok := ApplyYearlyInput(model.Parsed(10), "150,000", DefaultAnnualHours)
	if !ok {
		t.Fatal("complete yearly input should apply")
	}
	if v, _ := r.Value(); v != 75 {
		t.Fatalf("hourly = %v, want 75", v)
	}
	y, ok := YearlyFor(r, DefaultAnnualHours)
	if !ok || y != 150000 {
		t.Fatalf("YearlyFor = %d (ok=%v), want 150000", y, ok)
	}

	r, _ = ApplyYearlyInput(model.Parsed(10), "150001", DefaultAnnualHours)
	if y, _ := YearlyFor(r, DefaultAnnualHours); y != 150001 {
		t.Fatalf("yearly view diverged: %d", y)
	}
}

func TestApplyYearlyInput_InProgress(t *testing.T) {
	cur := model.Parsed(42)
	for _, in := range []string{"90000.", "90000.5", "1.2.3"} {
		r, ok := ApplyYearlyInput(cur, in, DefaultAnnualHours)
		if ok || !r.Equal(cur) {
			t.Errorf("ApplyYearlyInput(%q) = %+v, %v; want unchanged", in, r, ok)
		}
	}

	r, ok := ApplyYearlyInput(cur, "", DefaultAnnualHours)
	if !ok || r.IsParsed() || r.Text() != "" {
		t.Fatalf("empty yearly should clear the rate, got %+v", r)
	}
	if _, ok := YearlyFor(r, DefaultAnnualHours); ok {
		t.Fatal("empty rate has no yearly value")
	}
}

func TestYearlyFor_CustomMultiplier(t *testing.T) {
	y, _ := YearlyFor(model.Parsed(50), 1800)
	if y != 90000 {
		t.Fatalf("YearlyFor(50, 1800) = %d, want 90000", y)
	}
	r, _ := ApplyYearlyInput(model.Raw(""), "90000", 1800)
	if v, _ := r.Value(); v != 50 {
		t.Fatalf("hourly = %v, want 50", v)
	}
}

func TestAggregateShares(t *testing.T) {
	shares := AggregateShares(sampleAttendees(), 3600)
	if len(shares) != 3 {
		t.Fatalf("len = %d", len(shares))
	}
	if shares[0].Name != "Senior Dev" || shares[2].Name != "Junior Dev" {
		t.Fatalf("order = %s, %s, %s", shares[0].Name, shares[1].Name, shares[2].Name)
	}
	if shares[0].Cost != 90 {
		t.Fatalf("Senior Dev cost = %v, want 90", shares[0].Cost)
	}
	sum := 0.0
	for _, s := range shares {
		sum += s.SharePercent
	}
	if !almostEqual(sum, 100, 1e-9) {
		t.Fatalf("shares sum to %v", sum)
	}
}

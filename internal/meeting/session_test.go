package meeting

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/theirongolddev/meetcost/internal/model"
	"github.com/theirongolddev/meetcost/internal/pipeline"
)

func quietOptions() Options {
	return Options{Logger: log.New(io.Discard)}
}

type failingStorage struct{ *MemStorage }

func (f *failingStorage) Set(string, string) error { return errors.New("disk full") }

func TestLoad_DefaultsWhenEmpty(t *testing.T) {
	s := Load(NewMemStorage(), quietOptions())

	if !model.EqualAttendees(s.Attendees(), model.DefaultAttendees()) {
		t.Fatalf("attendees = %+v, want defaults", s.Attendees())
	}
	if s.Target() != model.Target(60) {
		t.Fatalf("target = %+v, want 60", s.Target())
	}
	if s.Running() || s.Elapsed() != 0 {
		t.Fatal("new session should be stopped at 0")
	}
}

func TestLoad_MalformedFallsBackPerKey(t *testing.T) {
	st := NewMemStorage()
	_ = st.Set(KeyAttendees, "{not json")
	_ = st.Set(KeyTargetDuration, "45")

	var buf bytes.Buffer
	s := Load(st, Options{Logger: log.New(&buf)})

	if !model.EqualAttendees(s.Attendees(), model.DefaultAttendees()) {
		t.Fatal("malformed attendees should fall back to defaults")
	}
	if s.Target() != model.Target(45) {
		t.Fatalf("target = %+v, want 45", s.Target())
	}
	if !strings.Contains(buf.String(), "ignoring saved attendees") {
		t.Fatalf("expected a warning, log = %q", buf.String())
	}

	for _, raw := range []string{"7.5", "-10", "1e300"} {
		_ = st.Set(KeyTargetDuration, raw)
		s = Load(st, quietOptions())
		if s.Target() != model.Target(model.DefaultTargetMinutes) {
			t.Fatalf("saved target %s loaded as %+v, want the default", raw, s.Target())
		}
	}
}

func TestPersistReloadRoundTrip(t *testing.T) {
	st := NewMemStorage()
	s := Load(st, quietOptions())

	a := s.AddAttendee("Designer", nil)
	if err := s.SetHourlyInput(a.ID, "12."); err != nil {
		t.Fatal(err)
	}
	s.SetTarget(model.NoTarget)

	reloaded := Load(st, quietOptions())
	if !model.EqualAttendees(reloaded.Attendees(), s.Attendees()) {
		t.Fatalf("reloaded attendees = %+v, want %+v", reloaded.Attendees(), s.Attendees())
	}
	if reloaded.Target() != model.NoTarget {
		t.Fatalf("reloaded target = %+v, want empty", reloaded.Target())
	}

	raw, _, _ := st.Get(KeyTargetDuration)
	if raw != `""` {
		t.Fatalf("empty target persisted as %q", raw)
	}
	got, _ := reloaded.Attendee(a.ID)
	if got.Rate.IsParsed() || got.Rate.Text() != "12." {
		t.Fatalf("raw rate not kept: %+v", got.Rate)
	}
}

func TestAddAttendee_Defaults(t *testing.T) {
	s := Load(NewMemStorage(), quietOptions())
	a := s.AddAttendee("", nil)
	if a.Name != "Attendee 4" {
		t.Fatalf("name = %q, want Attendee 4", a.Name)
	}
	if v, ok := a.Rate.Value(); !ok || v != DefaultRate {
		t.Fatalf("rate = %+v, want %d", a.Rate, DefaultRate)
	}
	if a.ID == "" || a.ID == "1" {
		t.Fatalf("id = %q", a.ID)
	}
}

func TestRemoveAndRename(t *testing.T) {
	s := Load(NewMemStorage(), quietOptions())
	if err := s.RenameAttendee("2", "Staff Dev"); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveAttendee("1"); err != nil {
		t.Fatal(err)
	}
	list := s.Attendees()
	if len(list) != 2 || list[0].Name != "Staff Dev" {
		t.Fatalf("attendees = %+v", list)
	}
	if err := s.RemoveAttendee("nope"); !errors.Is(err, ErrAttendeeNotFound) {
		t.Fatalf("err = %v, want ErrAttendeeNotFound", err)
	}
	if s.Projection().HourlyRate != 135 {
		t.Fatalf("rate = %v, want 135", s.Projection().HourlyRate)
	}
}

func TestHourlyAndYearlyInput(t *testing.T) {
	s := Load(NewMemStorage(), quietOptions())

	_ = s.SetHourlyInput("1", "12.")
	if s.Projection().HourlyRate != 135 {
		t.Fatalf("in-progress rate should count 0, aggregate = %v", s.Projection().HourlyRate)
	}
	y, ok, _ := s.Yearly("1")
	if !ok || y != 24000 {
		t.Fatalf("yearly = %d (ok=%v), want 24000", y, ok)
	}
	_ = s.CommitRate("1")
	if s.Projection().HourlyRate != 147 {
		t.Fatalf("committed aggregate = %v, want 147", s.Projection().HourlyRate)
	}

	applied, err := s.SetYearlyInput("2", "200000")
	if err != nil || !applied {
		t.Fatalf("applied=%v err=%v", applied, err)
	}
	a, _ := s.Attendee("2")
	if v, _ := a.Rate.Value(); v != 100 {
		t.Fatalf("hourly from yearly = %v, want 100", v)
	}

	applied, _ = s.SetYearlyInput("2", "90000.")
	if applied {
		t.Fatal("in-progress yearly input should not apply")
	}
}

func TestAdjustTargetClamps(t *testing.T) {
	s := Load(NewMemStorage(), quietOptions())
	s.SetTarget(model.Target(10))
	if got := s.AdjustTarget(-20); got.Minutes != MinTargetMinutes {
		t.Fatalf("target = %d, want %d", got.Minutes, MinTargetMinutes)
	}
	s.SetTarget(model.Target(238))
	if got := s.AdjustTarget(5); got.Minutes != MaxTargetMinutes {
		t.Fatalf("target = %d, want %d", got.Minutes, MaxTargetMinutes)
	}
}

func TestCostMonotoneWhileRunningConstantWhileStopped(t *testing.T) {
	s := Load(NewMemStorage(), quietOptions())
	_, gen := s.Toggle()

	prev := s.Projection().CurrentCost
	for i := 0; i < 60; i++ {
		s.Tick(gen)
		c := s.Projection().CurrentCost
		if c < prev {
			t.Fatalf("cost decreased: %v < %v", c, prev)
		}
		prev = c
	}
	if got := s.Projection().CurrentCost; got < 3.58 || got > 3.59 {
		t.Fatalf("cost after 60s = %v, want ~3.58", got)
	}

	s.Toggle()
	for i := 0; i < 10; i++ {
		s.Tick(gen)
	}
	if s.Projection().CurrentCost != prev {
		t.Fatal("cost changed while stopped")
	}
}

func TestResetRecordsHistory(t *testing.T) {
	st := NewMemStorage()
	when := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	opts := quietOptions()
	opts.History = st
	opts.Now = func() time.Time { return when }
	s := Load(st, opts)

	if _, ok := s.Reset(); ok {
		t.Fatal("reset at 0s should not record")
	}

	_, gen := s.Toggle()
	for i := 0; i < 90; i++ {
		s.Tick(gen)
	}
	rec, ok := s.Reset()
	if !ok {
		t.Fatal("expected a record")
	}
	if s.Elapsed() != 0 || s.Running() {
		t.Fatal("reset should stop and zero the timer")
	}
	if rec.ElapsedSecs != 90 || rec.Attendees != 3 || rec.HourlyRate != 215 || !rec.EndedAt.Equal(when) {
		t.Fatalf("record = %+v", rec)
	}
	if len(st.Meetings()) != 1 {
		t.Fatalf("history has %d meetings, want 1", len(st.Meetings()))
	}
}

func TestFinishIsIdempotent(t *testing.T) {
	st := NewMemStorage()
	opts := quietOptions()
	opts.History = st
	s := Load(st, opts)

	_, gen := s.Toggle()
	s.Tick(gen)
	s.Finish()
	s.Finish()
	s.Reset()
	if n := len(st.Meetings()); n != 1 {
		t.Fatalf("recorded %d times, want 1", n)
	}
}

func TestPersistErrIsKept(t *testing.T) {
	s := Load(&failingStorage{NewMemStorage()}, quietOptions())
	s.SetTarget(model.Target(30))
	if s.PersistErr() == nil {
		t.Fatal("expected PersistErr after a failing write")
	}
	if s.Target() != model.Target(30) {
		t.Fatal("in-memory state should still change")
	}
}

func TestSnapshot_RealityCheck(t *testing.T) {
	s := Load(NewMemStorage(), Options{
		Logger:        log.New(io.Discard),
		RealityChecks: []pipeline.RealityCheck{{Threshold: 1, Label: "coffee"}, {Threshold: 0, Label: "nothing"}},
	})
	snap := s.Snapshot()
	if snap.RealityCheck == nil || snap.RealityCheck.Label != "nothing" {
		t.Fatalf("reality check = %+v", snap.RealityCheck)
	}
	if snap.Tier != pipeline.TierLow || len(snap.Shares) != 3 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestSettingsApplyLive(t *testing.T) {
	s := Load(NewMemStorage(), quietOptions())
	s.SetAnnualHours(1000)
	s.SetDefaultRate(75)
	s.SetAnnualHours(-1)

	y, ok, err := s.Yearly("1")
	if err != nil || !ok || y != 80000 {
		t.Fatalf("Yearly = %d %v %v, want 80000", y, ok, err)
	}
	a := s.AddAttendee("", nil)
	if v, _ := a.Rate.Value(); v != 75 || s.DefaultRate() != 75 {
		t.Fatalf("new attendee rate = %+v", a.Rate)
	}
}

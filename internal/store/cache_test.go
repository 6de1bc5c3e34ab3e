package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/meetcost/internal/model"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "meetcost.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestKV(t *testing.T) {
	db := openTemp(t)

	if _, ok, err := db.Get("attendees"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	if err := db.Set("attendees", `[{"id":"1"}]`); err != nil {
		t.Fatal(err)
	}
	if err := db.Set("attendees", `[]`); err != nil {
		t.Fatal(err)
	}
	v, ok, err := db.Get("attendees")
	if err != nil || !ok || v != "[]" {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}
	if err := db.Delete("attendees"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := db.Get("attendees"); ok {
		t.Fatal("key survived Delete")
	}
}

func TestKV_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meetcost.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Set("target-duration", `""`); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()
	if v, ok, _ := db.Get("target-duration"); !ok || v != `""` {
		t.Fatalf("after reopen: %q ok=%v", v, ok)
	}
}

func TestMeetings(t *testing.T) {
	db := openTemp(t)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		rec := model.MeetingRecord{
			ID:          id,
			EndedAt:     base.Add(time.Duration(i) * time.Hour),
			ElapsedSecs: int64(600 * (i + 1)),
			Attendees:   3,
			HourlyRate:  215,
			TotalCost:   215 * float64(600*(i+1)) / 3600,
		}
		if err := db.SaveMeeting(rec); err != nil {
			t.Fatalf("SaveMeeting: %v", err)
		}
	}

	n, err := db.MeetingCount()
	if err != nil || n != 3 {
		t.Fatalf("count = %d, %v", n, err)
	}

	list, err := db.ListMeetings(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "c" || list[1].ID != "b" {
		t.Fatalf("list = %+v", list)
	}
	if !list[0].EndedAt.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("ended_at = %v", list[0].EndedAt)
	}

	if err := db.DeleteMeeting("c"); err != nil {
		t.Fatal(err)
	}
	all, _ := db.ListMeetings(0)
	if len(all) != 2 {
		t.Fatalf("after delete: %d", len(all))
	}
}

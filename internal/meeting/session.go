// Package meeting owns the live meeting session: the attendee roster, the
// target duration, the timer, and their persistence.
package meeting

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/theirongolddev/meetcost/internal/logging"
	"github.com/theirongolddev/meetcost/internal/model"
	"github.com/theirongolddev/meetcost/internal/pipeline"
)

// Persisted keys.
const (
	KeyAttendees      = "attendees"
	KeyTargetDuration = "target-duration"
)

// Target slider bounds, in minutes.
const (
	MinTargetMinutes = 5
	MaxTargetMinutes = 240
)

// DefaultRate is the hourly rate given to a new attendee.
const DefaultRate = 50

// ErrAttendeeNotFound is returned when no attendee has the given ID.
var ErrAttendeeNotFound = errors.New("attendee not found")

// Storage is a string key/value host for persisted session state.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// HistoryStore records finished meetings.
type HistoryStore interface {
	SaveMeeting(rec model.MeetingRecord) error
}

// Options tunes a Session. Zero values pick defaults.
type Options struct {
	DefaultRate   float64
	AnnualHours   float64
	RealityChecks []pipeline.RealityCheck
	History       HistoryStore
	Logger        *log.Logger
	Now           func() time.Time
}

// Session is one meeting in progress. It is not safe for concurrent use;
// callers that share it across goroutines must serialize access.
type Session struct {
	store     Storage
	opts      Options
	attendees []model.Attendee
	target    model.TargetDuration
	timer     Timer

	loaded     bool
	recorded   bool
	persistErr error
}

// Load builds a session from store. Missing keys take the defaults; malformed
// values are logged and replaced by the defaults for that key.
func Load(store Storage, opts Options) *Session {
	if opts.DefaultRate <= 0 {
		opts.DefaultRate = DefaultRate
	}
	if opts.AnnualHours <= 0 {
		opts.AnnualHours = pipeline.DefaultAnnualHours
	}
	if len(opts.RealityChecks) == 0 {
		opts.RealityChecks = pipeline.DefaultRealityChecks
	} else {
		opts.RealityChecks = pipeline.SortRealityChecks(opts.RealityChecks)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Session{
		store:     store,
		opts:      opts,
		attendees: model.DefaultAttendees(),
		target:    model.Target(model.DefaultTargetMinutes),
	}

	if raw, ok := s.read(KeyAttendees); ok {
		var list []model.Attendee
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			opts.Logger.Warn("ignoring saved attendees", "err", err)
		} else {
			if list == nil {
				list = []model.Attendee{}
			}
			s.attendees = list
		}
	}

	if raw, ok := s.read(KeyTargetDuration); ok {
		var d model.TargetDuration
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			opts.Logger.Warn("ignoring saved target duration", "err", err)
		} else {
			s.target = d
		}
	}

	s.loaded = true
	return s
}

func (s *Session) read(key string) (string, bool) {
	if s.store == nil {
		return "", false
	}
	raw, ok, err := s.store.Get(key)
	if err != nil {
		s.opts.Logger.Warn("reading saved state", "key", key, "err", err)
		return "", false
	}
	return raw, ok
}

// PersistErr returns the most recent persistence failure, if any.
func (s *Session) PersistErr() error { return s.persistErr }

// AnnualHours is the hourly-to-yearly multiplier in use.
func (s *Session) AnnualHours() float64 { return s.opts.AnnualHours }

// RealityChecks returns the threshold table in use, ascending.
func (s *Session) RealityChecks() []pipeline.RealityCheck { return s.opts.RealityChecks }

// SetAnnualHours changes the hourly-to-yearly multiplier. Stored hourly rates
// are untouched; only the yearly view moves.
func (s *Session) SetAnnualHours(hours float64) {
	if hours > 0 {
		s.opts.AnnualHours = hours
	}
}

// DefaultRate is the hourly rate new attendees start with.
func (s *Session) DefaultRate() float64 { return s.opts.DefaultRate }

// SetDefaultRate changes the rate given to attendees added later.
func (s *Session) SetDefaultRate(rate float64) {
	if rate > 0 {
		s.opts.DefaultRate = rate
	}
}

func (s *Session) persistAttendees() {
	if !s.loaded || s.store == nil {
		return
	}
	data, err := json.Marshal(s.attendees)
	if err == nil {
		err = s.store.Set(KeyAttendees, string(data))
	}
	s.notePersist(KeyAttendees, err)
}

func (s *Session) persistTarget() {
	if !s.loaded || s.store == nil {
		return
	}
	data, err := json.Marshal(s.target)
	if err == nil {
		err = s.store.Set(KeyTargetDuration, string(data))
	}
	s.notePersist(KeyTargetDuration, err)
}

func (s *Session) notePersist(key string, err error) {
	if err != nil {
		err = fmt.Errorf("saving %s: %w", key, err)
		s.opts.Logger.Warn("persist failed", "key", key, "err", err)
	}
	s.persistErr = err
}

// Attendees returns a copy of the roster in order.
func (s *Session) Attendees() []model.Attendee {
	out := make([]model.Attendee, len(s.attendees))
	copy(out, s.attendees)
	return out
}

func (s *Session) index(id string) (int, error) {
	for i, a := range s.attendees {
		if a.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrAttendeeNotFound, id)
}

// Attendee returns the attendee with the given ID.
func (s *Session) Attendee(id string) (model.Attendee, error) {
	i, err := s.index(id)
	if err != nil {
		return model.Attendee{}, err
	}
	return s.attendees[i], nil
}

// AddAttendee appends an attendee with a fresh ID. An empty name becomes
// "Attendee N"; a nil rate takes the default rate.
func (s *Session) AddAttendee(name string, rate *model.Rate) model.Attendee {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Attendee %d", len(s.attendees)+1)
	}
	r := model.Parsed(s.opts.DefaultRate)
	if rate != nil {
		r = *rate
	}
	a := model.Attendee{ID: uuid.NewString(), Name: name, Rate: r}
	s.attendees = append(s.attendees, a)
	s.persistAttendees()
	return a
}

// RemoveAttendee drops the attendee with the given ID.
func (s *Session) RemoveAttendee(id string) error {
	i, err := s.index(id)
	if err != nil {
		return err
	}
	s.attendees = append(s.attendees[:i], s.attendees[i+1:]...)
	s.persistAttendees()
	return nil
}

// RenameAttendee changes an attendee's display name. Empty names are allowed.
func (s *Session) RenameAttendee(id, name string) error {
	i, err := s.index(id)
	if err != nil {
		return err
	}
	s.attendees[i].Name = name
	s.persistAttendees()
	return nil
}

// SetRate replaces an attendee's rate.
func (s *Session) SetRate(id string, r model.Rate) error {
	i, err := s.index(id)
	if err != nil {
		return err
	}
	s.attendees[i].Rate = r
	s.persistAttendees()
	return nil
}

// SetHourlyInput stores sanitized hourly text as typed, uncommitted.
func (s *Session) SetHourlyInput(id, text string) error {
	return s.SetRate(id, pipeline.SanitizeHourlyInput(text))
}

// CommitRate resolves an attendee's typed rate to a number.
func (s *Session) CommitRate(id string) error {
	i, err := s.index(id)
	if err != nil {
		return err
	}
	if s.attendees[i].Rate.IsParsed() {
		return nil
	}
	return s.SetRate(id, s.attendees[i].Rate.Commit())
}

// SetYearlyInput rewrites an attendee's hourly rate from yearly text. It
// reports false when the text was still in progress and nothing changed.
func (s *Session) SetYearlyInput(id, text string) (bool, error) {
	i, err := s.index(id)
	if err != nil {
		return false, err
	}
	r, ok := pipeline.ApplyYearlyInput(s.attendees[i].Rate, text, s.opts.AnnualHours)
	if !ok {
		return false, nil
	}
	return true, s.SetRate(id, r)
}

// Yearly returns the yearly view of an attendee's rate.
func (s *Session) Yearly(id string) (int64, bool, error) {
	a, err := s.Attendee(id)
	if err != nil {
		return 0, false, err
	}
	y, ok := pipeline.YearlyFor(a.Rate, s.opts.AnnualHours)
	return y, ok, nil
}

// ReplaceAttendees swaps the whole roster.
func (s *Session) ReplaceAttendees(list []model.Attendee) {
	s.attendees = make([]model.Attendee, len(list))
	copy(s.attendees, list)
	for i := range s.attendees {
		if s.attendees[i].ID == "" {
			s.attendees[i].ID = uuid.NewString()
		}
	}
	s.persistAttendees()
}

// Target returns the target duration.
func (s *Session) Target() model.TargetDuration { return s.target }

// SetTarget replaces the target duration.
func (s *Session) SetTarget(d model.TargetDuration) {
	s.target = d
	s.persistTarget()
}

// AdjustTarget moves the target by delta minutes, clamped to the slider range.
func (s *Session) AdjustTarget(delta int) model.TargetDuration {
	m := s.target.Value() + delta
	if m < MinTargetMinutes {
		m = MinTargetMinutes
	}
	if m > MaxTargetMinutes {
		m = MaxTargetMinutes
	}
	s.SetTarget(model.Target(m))
	return s.target
}

// Toggle starts or pauses the timer and returns the generation ticks must carry.
func (s *Session) Toggle() (TimerState, uint64) {
	return s.timer.Toggle()
}

// Tick applies one second if gen is current and the timer is running.
func (s *Session) Tick(gen uint64) bool {
	if s.timer.Tick(gen) {
		s.recorded = false
		return true
	}
	return false
}

// Running reports whether the timer is running.
func (s *Session) Running() bool { return s.timer.Running() }

// Elapsed returns elapsed seconds.
func (s *Session) Elapsed() int64 { return s.timer.Elapsed() }

// Generation returns the current tick generation.
func (s *Session) Generation() uint64 { return s.timer.Generation() }

// Finish records the meeting into history if any time has elapsed and it
// has not already been recorded at this elapsed count.
func (s *Session) Finish() (model.MeetingRecord, bool) {
	elapsed := s.timer.Elapsed()
	if elapsed <= 0 || s.recorded {
		return model.MeetingRecord{}, false
	}
	p := s.Projection()
	rec := model.MeetingRecord{
		ID:            uuid.NewString(),
		EndedAt:       s.opts.Now().UTC(),
		ElapsedSecs:   elapsed,
		Attendees:     len(s.attendees),
		HourlyRate:    p.HourlyRate,
		TotalCost:     p.CurrentCost,
		TargetMinutes: s.target.Value(),
	}
	s.recorded = true
	if s.opts.History != nil {
		if err := s.opts.History.SaveMeeting(rec); err != nil {
			s.opts.Logger.Warn("recording meeting", "err", err)
		}
	}
	return rec, true
}

// Reset records the meeting, then stops the timer and zeroes elapsed.
func (s *Session) Reset() (model.MeetingRecord, bool) {
	rec, ok := s.Finish()
	s.timer.Reset()
	s.recorded = false
	return rec, ok
}

// Projection computes the cost figures at the current elapsed time.
func (s *Session) Projection() pipeline.Projection {
	return pipeline.ProjectAttendees(s.attendees, s.timer.Elapsed(), s.target)
}

// Snapshot is a read-only view of the session for rendering.
type Snapshot struct {
	Attendees    []model.Attendee
	Target       model.TargetDuration
	State        TimerState
	Elapsed      int64
	Projection   pipeline.Projection
	Shares       []pipeline.AttendeeShare
	RealityCheck *pipeline.RealityCheck
	Tier         pipeline.CostTier
}

// Snapshot captures everything derived from the current state.
func (s *Session) Snapshot() Snapshot {
	p := s.Projection()
	snap := Snapshot{
		Attendees:  s.Attendees(),
		Target:     s.target,
		State:      s.timer.State(),
		Elapsed:    s.timer.Elapsed(),
		Projection: p,
		Shares:     pipeline.AggregateShares(s.attendees, s.timer.Elapsed()),
		Tier:       pipeline.TierFor(p.CurrentCost),
	}
	if rc, ok := pipeline.LookupRealityCheck(s.opts.RealityChecks, p.CurrentCost); ok {
		snap.RealityCheck = &rc
	}
	return snap
}

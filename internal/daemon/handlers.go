package daemon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/theirongolddev/meetcost/internal/meeting"
	"github.com/theirongolddev/meetcost/internal/model"
	"github.com/theirongolddev/meetcost/internal/pipeline"
)

// AttendeeView is an attendee as served over HTTP.
type AttendeeView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Rate       model.Rate `json:"rate"`
	HourlyRate float64    `json:"hourly_rate"`
	Yearly     *int64     `json:"yearly,omitempty"`
}

type addAttendeeRequest struct {
	Name   string      `json:"name"`
	Rate   *model.Rate `json:"rate,omitempty"`
	Yearly *string     `json:"yearly,omitempty"`
}

type updateAttendeeRequest struct {
	Name   *string     `json:"name,omitempty"`
	Rate   *model.Rate `json:"rate,omitempty"`
	Yearly *string     `json:"yearly,omitempty"`
	Commit bool        `json:"commit,omitempty"`
}

type resetResponse struct {
	Recorded *model.MeetingRecord `json:"recorded,omitempty"`
	Snapshot Snapshot             `json:"snapshot"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeMutationError(w http.ResponseWriter, err error) {
	if errors.Is(err, meeting.ErrAttendeeNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleListAttendees(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	list := s.session.Attendees()
	hours := s.session.AnnualHours()
	s.mu.RUnlock()

	views := make([]AttendeeView, 0, len(list))
	for _, a := range list {
		v := AttendeeView{ID: a.ID, Name: a.Name, Rate: a.Rate, HourlyRate: a.Rate.Effective()}
		if y, ok := pipeline.YearlyFor(a.Rate, hours); ok {
			v.Yearly = &y
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Service) handleToggle(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.mutate(EventState, func(m *meeting.Session) error {
		m.Toggle()
		return nil
	})
	if err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Service) handleReset(w http.ResponseWriter, _ *http.Request) {
	var resp resetResponse
	snap, err := s.mutate(EventReset, func(m *meeting.Session) error {
		if rec, ok := m.Reset(); ok {
			resp.Recorded = &rec
		}
		return nil
	})
	if err != nil {
		writeMutationError(w, err)
		return
	}
	resp.Snapshot = snap
	writeJSON(w, http.StatusOK, resp)
}

// handleTarget accepts {"target": 45} or {"target": ""} to clear it.
func (s *Service) handleTarget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Target json.RawMessage `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(bytes.TrimSpace(req.Target)) == 0 {
		writeError(w, http.StatusBadRequest, "body must be {\"target\": minutes or \"\"}")
		return
	}
	var d model.TargetDuration
	if err := json.Unmarshal(req.Target, &d); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.mutate(EventTarget, func(m *meeting.Session) error {
		m.SetTarget(d)
		return nil
	})
	if err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Service) handleAddAttendee(w http.ResponseWriter, r *http.Request) {
	var req addAttendeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Rate != nil && req.Yearly != nil {
		writeError(w, http.StatusBadRequest, "set rate or yearly, not both")
		return
	}

	var added model.Attendee
	_, err := s.mutate(EventRoster, func(m *meeting.Session) error {
		rate := req.Rate
		if rate != nil && !rate.IsParsed() {
			r := pipeline.SanitizeHourlyInput(rate.Text())
			rate = &r
		}
		if req.Yearly != nil {
			r, err := yearlyRate(model.Parsed(m.DefaultRate()), *req.Yearly, m.AnnualHours())
			if err != nil {
				return err
			}
			rate = &r
		}
		added = m.AddAttendee(req.Name, rate)
		return nil
	})
	if err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// handleUpdateAttendee builds the whole change before applying it, so a
// rejected request leaves the attendee untouched.
func (s *Service) handleUpdateAttendee(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req updateAttendeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Rate != nil && req.Yearly != nil {
		writeError(w, http.StatusBadRequest, "set rate or yearly, not both")
		return
	}

	var updated model.Attendee
	_, err := s.mutate(EventRoster, func(m *meeting.Session) error {
		cur, err := m.Attendee(id)
		if err != nil {
			return err
		}
		next := cur
		if req.Name != nil {
			next.Name = *req.Name
		}
		if req.Rate != nil {
			next.Rate = *req.Rate
			if !next.Rate.IsParsed() {
				next.Rate = pipeline.SanitizeHourlyInput(next.Rate.Text())
			}
		}
		if req.Yearly != nil {
			if next.Rate, err = yearlyRate(cur.Rate, *req.Yearly, m.AnnualHours()); err != nil {
				return err
			}
		}
		if req.Commit && !next.Rate.IsParsed() {
			next.Rate = next.Rate.Commit()
		}

		if next.Name != cur.Name {
			if err := m.RenameAttendee(id, next.Name); err != nil {
				return err
			}
		}
		if next.Rate != cur.Rate {
			if err := m.SetRate(id, next.Rate); err != nil {
				return err
			}
		}
		updated = next
		return nil
	})
	if err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// yearlyRate converts yearly text to an hourly rate, rejecting text that is
// still being typed.
func yearlyRate(current model.Rate, text string, annualHours float64) (model.Rate, error) {
	r, ok := pipeline.ApplyYearlyInput(current, text, annualHours)
	if !ok {
		return current, fmt.Errorf("yearly value %q is incomplete", text)
	}
	return r, nil
}

func (s *Service) handleDeleteAttendee(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	snap, err := s.mutate(EventRoster, func(m *meeting.Session) error {
		return m.RemoveAttendee(id)
	})
	if err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

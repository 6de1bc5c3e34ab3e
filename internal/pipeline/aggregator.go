// Package pipeline turns attendee rates and elapsed time into meeting costs.
package pipeline

import (
	"sort"

	"github.com/theirongolddev/meetcost/internal/model"
)

// AggregateRate sums every attendee's effective hourly rate.
// Empty or unparsable rates contribute 0; it never fails.
func AggregateRate(attendees []model.Attendee) float64 {
	total := 0.0
	for _, a := range attendees {
		total += a.Rate.Effective()
	}
	return total
}

// AttendeeShare is one attendee's slice of the running cost.
type AttendeeShare struct {
	ID           string
	Name         string
	HourlyRate   float64
	Cost         float64
	SharePercent float64
}

// AggregateShares splits the cost of elapsedSecs across attendees,
// most expensive first. Ties keep roster order.
func AggregateShares(attendees []model.Attendee, elapsedSecs int64) []AttendeeShare {
	total := AggregateRate(attendees)

	shares := make([]AttendeeShare, 0, len(attendees))
	for _, a := range attendees {
		rate := a.Rate.Effective()
		s := AttendeeShare{
			ID:         a.ID,
			Name:       a.Name,
			HourlyRate: rate,
			Cost:       float64(elapsedSecs) * rate / 3600,
		}
		if total > 0 {
			s.SharePercent = rate / total * 100
		}
		shares = append(shares, s)
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].HourlyRate > shares[j].HourlyRate
	})
	return shares
}

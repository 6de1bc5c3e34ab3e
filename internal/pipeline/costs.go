package pipeline

import (
	"math"

	"github.com/theirongolddev/meetcost/internal/model"
)

// Projection holds the derived cost figures for one instant of a meeting.
type Projection struct {
	HourlyRate      float64
	CostPerSecond   float64
	PerMinute       float64
	CurrentCost     float64
	ProjectedCost   float64
	ProgressPercent float64
	ElapsedSecs     int64
	TargetMinutes   int
}

// Project computes running and projected cost from an aggregate hourly rate,
// the elapsed seconds, and the target duration (empty counts as 0).
func Project(hourlyRate float64, elapsedSecs int64, target model.TargetDuration) Projection {
	if elapsedSecs < 0 {
		elapsedSecs = 0
	}
	minutes := target.Value()
	perSecond := hourlyRate / 3600

	p := Projection{
		HourlyRate:    hourlyRate,
		CostPerSecond: perSecond,
		PerMinute:     hourlyRate / 60,
		CurrentCost:   float64(elapsedSecs) * perSecond,
		ProjectedCost: float64(minutes) * 60 * perSecond,
		ElapsedSecs:   elapsedSecs,
		TargetMinutes: minutes,
	}
	if minutes > 0 {
		p.ProgressPercent = math.Min(100, float64(elapsedSecs)/(float64(minutes)*60)*100)
	}
	return p
}

// ProjectAttendees is Project over the aggregate rate of attendees.
func ProjectAttendees(attendees []model.Attendee, elapsedSecs int64, target model.TargetDuration) Projection {
	return Project(AggregateRate(attendees), elapsedSecs, target)
}

// CostTier is the cosmetic severity band for a running cost.
type CostTier int

// Cost tiers, cheapest first.
const (
	TierLow CostTier = iota
	TierMid
	TierHigh
	TierCritical
)

func (t CostTier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMid:
		return "mid"
	case TierHigh:
		return "high"
	default:
		return "critical"
	}
}

// TierFor bands a cost: under 100 low, under 500 mid, under 1000 high.
func TierFor(cost float64) CostTier {
	switch {
	case cost < 100:
		return TierLow
	case cost < 500:
		return TierMid
	case cost < 1000:
		return TierHigh
	default:
		return TierCritical
	}
}

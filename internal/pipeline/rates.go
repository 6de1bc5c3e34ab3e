package pipeline

import (
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/meetcost/internal/model"
)

// DefaultAnnualHours converts an hourly rate to a yearly salary
// (52 weeks at roughly 38.5 hours, rounded to a flat 2000).
const DefaultAnnualHours = 2000

// SanitizeHourlyInput cleans text typed into an hourly rate box: only digits
// and one '.', at most two fraction digits. The result stays Raw until Commit.
func SanitizeHourlyInput(text string) model.Rate {
	val := keepDecimalChars(text)

	parts := strings.Split(val, ".")
	if len(parts) > 2 {
		val = parts[0] + "." + strings.Join(parts[1:], "")
		parts = []string{parts[0], strings.Join(parts[1:], "")}
	}
	if len(parts) == 2 && len(parts[1]) > 2 {
		val = parts[0] + "." + parts[1][:2]
	}
	return model.Raw(val)
}

// YearlyFor returns the yearly salary matching an hourly rate, rounded to a
// whole amount. Raw text is read the way Commit reads it. An empty raw rate
// has no yearly value and reports false.
func YearlyFor(r model.Rate, annualHours float64) (int64, bool) {
	if !r.IsParsed() && r.Text() == "" {
		return 0, false
	}
	v, _ := r.Commit().Value()
	return int64(math.Round(v * annualHours)), true
}

// ApplyYearlyInput rewrites an hourly rate from text typed into the yearly
// box. It reports false when the text is still being typed ("90000." or
// "90000.5"), in which case the rate is left alone.
func ApplyYearlyInput(current model.Rate, text string, annualHours float64) (model.Rate, bool) {
	if annualHours <= 0 {
		annualHours = DefaultAnnualHours
	}

	clean := keepDecimalChars(text)
	if clean == "" {
		return model.Raw(""), true
	}

	if idx := strings.IndexByte(clean, '.'); idx >= 0 {
		frac := clean[idx+1:]
		if strings.Contains(frac, ".") {
			return current, false
		}
		if len(frac) < 2 {
			return current, false
		}
	}

	yearly, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return current, false
	}
	yearly = math.Round(yearly*100) / 100
	return model.Parsed(yearly / annualHours), true
}

func keepDecimalChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if (c >= '0' && c <= '9') || c == '.' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

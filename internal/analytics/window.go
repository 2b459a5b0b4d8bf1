package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/mwalther/diametrics/internal/models"
)

// ErrValidation marks malformed or inconsistent caller input. The boundary
// distinguishes it from engine faults and rejects the request without retry.
var ErrValidation = errors.New("validation error")

// Named window tokens resolved relative to the current UTC time.
const (
	WindowDay     = "day"
	WindowWeek    = "week"
	WindowMonth   = "month"
	Window3Months = "3months"
	WindowCustom  = "custom"
)

// WindowQuery carries the time-window parameters of a request. Explicit
// datetime bounds take precedence over date-only bounds and over the token.
type WindowQuery struct {
	Window        string
	StartDate     *time.Time // date-only, expanded to start of day UTC
	EndDate       *time.Time // date-only, expanded to end of day UTC
	StartDateTime *time.Time // timezone-aware, used verbatim
	EndDateTime   *time.Time
}

// ResolveWindow maps a window query onto a concrete [start, end] interval.
// Pure function of the query and the supplied current time.
func ResolveWindow(now time.Time, q WindowQuery) (models.TimeWindow, error) {
	if q.StartDateTime != nil || q.EndDateTime != nil {
		w := models.TimeWindow{}
		if q.StartDateTime != nil {
			w.Start = q.StartDateTime.UTC()
		}
		if q.EndDateTime != nil {
			w.End = q.EndDateTime.UTC()
		}
		return w, nil
	}

	now = now.UTC()
	switch q.Window {
	case WindowDay:
		return dayRange(now, now), nil
	case WindowWeek:
		return dayRange(now.AddDate(0, 0, -6), now), nil
	case WindowMonth:
		return dayRange(now.AddDate(0, 0, -29), now), nil
	case Window3Months:
		return dayRange(now.AddDate(0, 0, -89), now), nil
	case WindowCustom:
		if q.StartDate == nil || q.EndDate == nil {
			return models.TimeWindow{}, fmt.Errorf("%w: custom window requires both start_date and end_date", ErrValidation)
		}
		return dayRange(*q.StartDate, *q.EndDate), nil
	}

	// Anything else falls through to the plain date bounds; absent dates
	// leave that side unbounded.
	w := models.TimeWindow{}
	if q.StartDate != nil {
		w.Start = startOfDay(*q.StartDate)
	}
	if q.EndDate != nil {
		w.End = endOfDay(*q.EndDate)
	}
	return w, nil
}

// dayRange builds an inclusive window spanning whole days.
func dayRange(start, end time.Time) models.TimeWindow {
	return models.TimeWindow{Start: startOfDay(start), End: endOfDay(end)}
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, time.UTC)
}

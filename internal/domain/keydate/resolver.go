package keydate

import (
	"fmt"
	"time"

	"github.com/turtacn/DealRadar/pkg/errors"
)

// Resolve turns the definition into its concrete occurrence (and optional
// range end) relative to the reference instant now.
//
// Anchor rules:
//   - A fixed anchor is absolute and returned as-is; a past fixed date is a
//     valid, expected outcome, not an error.
//   - A recurring anchor resolves to (month, day) in now's year; if that
//     date is strictly before now it advances one year, so a recurring
//     anchor never resolves to the past.
//
// End rules, when a range is declared:
//   - An absolute end date is used as-is.
//   - A recurring end anchor resolves in the occurrence's year, advancing
//     one year when it precedes the occurrence, which handles ranges that
//     span a year boundary (Dec 20 open, Jan 6 close).
//
// A definition with neither anchor form fails with
// ErrCodeMalformedDateDefinition rather than producing a null date silently.
func (d *Definition) Resolve(now time.Time) (time.Time, *time.Time, error) {
	var occurrence time.Time

	switch {
	case d.HasFixedAnchor():
		occurrence = atMidnightUTC(*d.FixedDate)
	case d.HasRecurringAnchor():
		occurrence = dateUTC(now.Year(), d.RecurringMonth, d.RecurringDay)
		if occurrence.Before(now) {
			occurrence = dateUTC(now.Year()+1, d.RecurringMonth, d.RecurringDay)
		}
	default:
		return time.Time{}, nil, errors.New(
			errors.ErrCodeMalformedDateDefinition,
			fmt.Sprintf("key date %q has neither a fixed nor a recurring anchor", d.Name),
		).WithDetail("id=" + d.ID.String())
	}

	var end *time.Time
	switch {
	case d.EndDate != nil:
		e := atMidnightUTC(*d.EndDate)
		end = &e
	case d.RecurringEndMonth != 0 && d.RecurringEndDay != 0:
		e := dateUTC(occurrence.Year(), d.RecurringEndMonth, d.RecurringEndDay)
		if e.Before(occurrence) {
			e = dateUTC(occurrence.Year()+1, d.RecurringEndMonth, d.RecurringEndDay)
		}
		end = &e
	}

	return occurrence, end, nil
}

// dateUTC builds midnight UTC for the given calendar date.
func dateUTC(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// atMidnightUTC truncates an instant to its UTC calendar date.
func atMidnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

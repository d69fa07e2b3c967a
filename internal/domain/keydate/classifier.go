package keydate

import "time"

// day is the unit for countdown arithmetic.
const day = 24 * time.Hour

// DaysUntil returns ceil((occurrence - now) / 24h).  Occurrences are
// midnight-anchored, so today's occurrence reports 0 (the day has started)
// and tomorrow's reports 1; anything further past reports a negative value.
func DaysUntil(occurrence, now time.Time) int {
	diff := occurrence.Sub(now)
	days := int(diff / day)
	if diff%day > 0 {
		days++
	}
	return days
}

// Classify maps a resolved occurrence to its countdown and urgency band
// relative to the reference instant now.
//
// Precedence is evaluated in a fixed order, first match wins:
// active → past → red → yellow → blue → none.  The ordering is load-bearing:
// a definition inside an active range reports active even when its countdown
// also satisfies the red threshold, because range occupancy is operationally
// more informative than a countdown.
func Classify(occurrence time.Time, end *time.Time, now time.Time, t Thresholds) (daysUntil int, isActiveRange bool, urgency Urgency) {
	daysUntil = DaysUntil(occurrence, now)

	// Ranges with no end date are never "active", only upcoming or past.
	isActiveRange = end != nil && !now.Before(occurrence) && !now.After(*end)

	switch {
	case isActiveRange:
		urgency = UrgencyActive
	case daysUntil <= 0:
		urgency = UrgencyPast
	case daysUntil <= t.RedDays:
		urgency = UrgencyRed
	case daysUntil <= t.YellowDays:
		urgency = UrgencyYellow
	case daysUntil <= t.BlueDays:
		urgency = UrgencyBlue
	default:
		urgency = UrgencyNone
	}
	return daysUntil, isActiveRange, urgency
}

// ResolveAndClassify runs the full resolver → classifier pipeline for one
// definition, producing its ephemeral projection.
func ResolveAndClassify(def *Definition, now time.Time) (*Resolved, error) {
	occurrence, end, err := def.Resolve(now)
	if err != nil {
		return nil, err
	}
	daysUntil, active, urgency := Classify(occurrence, end, now, def.Thresholds)
	return &Resolved{
		Definition:    *def,
		Occurrence:    occurrence,
		OccurrenceEnd: end,
		DaysUntil:     daysUntil,
		IsActiveRange: active,
		Urgency:       urgency,
	}, nil
}

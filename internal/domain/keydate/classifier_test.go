package keydate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultThresholds() Thresholds {
	return Thresholds{RedDays: 7, YellowDays: 30, BlueDays: 90}
}

func TestDaysUntil(t *testing.T) {
	now := fixedNow()

	tests := []struct {
		name   string
		target time.Time
		want   int
	}{
		{"later today", time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC), 1},
		{"tomorrow midnight", time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC), 1},
		{"exactly now", now, 0},
		{"this morning midnight", time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), 0},
		{"a week out", time.Date(2026, time.March, 17, 0, 0, 0, 0, time.UTC), 7},
		{"yesterday", time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntil(tt.target, now))
		})
	}
}

func TestClassifyUrgencyBands(t *testing.T) {
	now := fixedNow()
	th := defaultThresholds()

	tests := []struct {
		name string
		occ  time.Time
		want Urgency
	}{
		{"inside red", now.AddDate(0, 0, 3), UrgencyRed},
		{"red boundary", now.Add(7 * day), UrgencyRed},
		{"inside yellow", now.AddDate(0, 0, 20), UrgencyYellow},
		{"inside blue", now.AddDate(0, 0, 60), UrgencyBlue},
		{"beyond all thresholds", now.AddDate(0, 0, 120), UrgencyNone},
		{"already past", now.AddDate(0, 0, -5), UrgencyPast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, active, urgency := Classify(tt.occ, nil, now, th)
			assert.False(t, active)
			assert.Equal(t, tt.want, urgency)
		})
	}
}

func TestClassifyActiveRangeDominatesCountdown(t *testing.T) {
	now := fixedNow()
	start := now.AddDate(0, 0, -2)
	end := now.AddDate(0, 0, 2)

	_, active, urgency := Classify(start, &end, now, defaultThresholds())
	assert.True(t, active)
	assert.Equal(t, UrgencyActive, urgency, "active wins even though countdown is negative")
}

func TestClassifyRangeBoundariesInclusive(t *testing.T) {
	now := fixedNow()
	th := defaultThresholds()

	start := now
	end := now.AddDate(0, 0, 10)
	_, active, _ := Classify(start, &end, now, th)
	assert.True(t, active, "range start is inclusive")

	start = now.AddDate(0, 0, -10)
	end = now
	_, active, _ = Classify(start, &end, now, th)
	assert.True(t, active, "range end is inclusive")
}

func TestClassifyPastRangeNotActive(t *testing.T) {
	now := fixedNow()
	start := now.AddDate(0, 0, -20)
	end := now.AddDate(0, 0, -10)

	_, active, urgency := Classify(start, &end, now, defaultThresholds())
	assert.False(t, active)
	assert.Equal(t, UrgencyPast, urgency)
}

func TestResolveAndClassifyPipeline(t *testing.T) {
	now := fixedNow()
	def := &Definition{
		Name:       "grant deadline",
		Type:       DateTypeDeadline,
		FixedDate:  datePtr(2026, time.March, 15),
		Thresholds: defaultThresholds(),
	}

	r, err := ResolveAndClassify(def, now)
	require.NoError(t, err)
	assert.Equal(t, 5, r.DaysUntil)
	assert.Equal(t, UrgencyRed, r.Urgency)
	assert.False(t, r.IsActiveRange)
	assert.Equal(t, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), r.Occurrence)
}

func TestResolveAndClassifyMalformedDefinition(t *testing.T) {
	_, err := ResolveAndClassify(&Definition{Name: "no anchor"}, fixedNow())
	require.Error(t, err)
}

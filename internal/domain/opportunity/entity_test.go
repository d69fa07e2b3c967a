package opportunity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageIsValid(t *testing.T) {
	for _, s := range Stages {
		assert.True(t, s.IsValid())
	}
	assert.False(t, Stage("archived").IsValid())
	assert.False(t, Stage("").IsValid())
}

func TestDisplayProjectType(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"research", "Research Agreement"},
		{"senior_design", "Senior Design"},
		{"consulting", "Consulting Engagement"},
		{"workforce", "Workforce Training"},
		{"membership", "Alliance Membership"},
		{"tbd", "TBD"},
		{"does_not_fit", "Does Not Fit"},
		{"something_new", "something_new"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayProjectType(tt.code))
	}
}

func TestOpportunityValue(t *testing.T) {
	assert.Equal(t, 50000.0, (&Opportunity{EstimatedValue: "50000"}).Value())
	assert.Equal(t, 12500.5, (&Opportunity{EstimatedValue: "12500.5"}).Value())
	assert.Equal(t, 0.0, (&Opportunity{EstimatedValue: ""}).Value())
	assert.Equal(t, 0.0, (&Opportunity{EstimatedValue: "about 50k"}).Value())
}

func TestOpportunityHasValue(t *testing.T) {
	assert.True(t, (&Opportunity{EstimatedValue: "50000"}).HasValue())
	assert.False(t, (&Opportunity{}).HasValue())
	assert.False(t, (&Opportunity{EstimatedValue: "n/a"}).HasValue())
}

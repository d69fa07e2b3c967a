package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New(ErrCodeOpportunityNotFound, "opportunity 42 not found")
	assert.Equal(t, "[OPP_001] opportunity 42 not found", e.Error())

	withDetail := e.WithDetail("id=42")
	assert.Equal(t, "[OPP_001] opportunity 42 not found: id=42", withDetail.Error())
	// WithDetail must not mutate the receiver.
	assert.Empty(t, e.Detail)
}

func TestWrap_NilPassthrough(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeDatabaseError, "query failed"))
}

func TestWrap_PreservesCodeWhenUnknown(t *testing.T) {
	inner := New(ErrCodeRuleNotFound, "rule gone")
	wrapped := Wrap(inner, ErrCodeUnknown, "while evaluating alerts")
	assert.Equal(t, ErrCodeRuleNotFound, wrapped.Code)
	assert.True(t, IsNotFound(wrapped))
}

func TestIsNotFound_CoversDomainCodes(t *testing.T) {
	assert.True(t, IsNotFound(New(ErrCodeNotFound, "x")))
	assert.True(t, IsNotFound(New(ErrCodeOpportunityNotFound, "x")))
	assert.True(t, IsNotFound(New(ErrCodeRuleNotFound, "x")))
	assert.False(t, IsNotFound(New(ErrCodeConflict, "x")))
	assert.False(t, IsNotFound(nil))
}

func TestIsMalformedDateDefinition_ThroughChain(t *testing.T) {
	inner := New(ErrCodeMalformedDateDefinition, "no anchor")
	outer := fmt.Errorf("resolving row: %w", inner)
	assert.True(t, IsMalformedDateDefinition(outer))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, ErrCodeUnknown, GetCode(fmt.Errorf("plain")))
	assert.Equal(t, ErrCodeValidation, GetCode(Validation("bad input")))
}

func TestHTTPStatusForCode(t *testing.T) {
	assert.Equal(t, 404, HTTPStatusForCode(ErrCodeOpportunityNotFound))
	assert.Equal(t, 503, HTTPStatusForCode(ErrCodeStorageUnavailable))
	assert.Equal(t, 500, HTTPStatusForCode(ErrorCode("NOPE_999")))
	assert.True(t, IsClientError(ErrCodeRuleNotFound))
	assert.True(t, IsServerError(ErrCodeMalformedDateDefinition))
}

package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeValidation         ErrorCode = "COMMON_005"
	ErrCodeSerialization      ErrorCode = "COMMON_006"
	ErrCodeDatabaseError      ErrorCode = "COMMON_007"
	ErrCodeStorageUnavailable ErrorCode = "COMMON_008"
	ErrCodeMessageQueueError  ErrorCode = "COMMON_009"
	ErrCodeUnknown            ErrorCode = "COMMON_000"

	// CodeOK is the sentinel returned by GetCode for a nil error.
	CodeOK ErrorCode = "OK"
)

// Key-date module error codes.
const (
	// ErrCodeMalformedDateDefinition marks a key-date row that has neither a
	// fixed_date nor a (recurring_month, recurring_day) anchor.  Callers skip
	// the row and continue; the skip must be logged.
	ErrCodeMalformedDateDefinition ErrorCode = "KD_001"
	ErrCodeKeyDateNotFound         ErrorCode = "KD_002"
)

// Opportunity module error codes.
const (
	ErrCodeOpportunityNotFound ErrorCode = "OPP_001"
	ErrCodeInvalidStage        ErrorCode = "OPP_002"
)

// Communication-rule module error codes.
const (
	ErrCodeRuleNotFound         ErrorCode = "RULE_001"
	ErrCodeRuleConditionInvalid ErrorCode = "RULE_002"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeStorageUnavailable: http.StatusServiceUnavailable,
	ErrCodeMessageQueueError:  http.StatusInternalServerError,

	ErrCodeMalformedDateDefinition: http.StatusInternalServerError,
	ErrCodeKeyDateNotFound:         http.StatusNotFound,

	ErrCodeOpportunityNotFound: http.StatusNotFound,
	ErrCodeInvalidStage:        http.StatusBadRequest,

	ErrCodeRuleNotFound:         http.StatusNotFound,
	ErrCodeRuleConditionInvalid: http.StatusBadRequest,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeStorageUnavailable: "storage unavailable",
	ErrCodeMessageQueueError:  "message queue error",

	ErrCodeMalformedDateDefinition: "key date has neither a fixed nor a recurring anchor",
	ErrCodeKeyDateNotFound:         "key date not found",

	ErrCodeOpportunityNotFound: "opportunity not found",
	ErrCodeInvalidStage:        "invalid pipeline stage",

	ErrCodeRuleNotFound:         "communication rule not found",
	ErrCodeRuleConditionInvalid: "invalid trigger condition payload",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

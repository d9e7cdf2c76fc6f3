package llm

import (
	"errors"
	"net/http"
	"strings"
)

// Outcome is the classified result of one credential/model attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeQuotaExceeded
	OutcomeModelUnavailable
	OutcomeMalformed
	OutcomeOther
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeQuotaExceeded:
		return "quota_exceeded"
	case OutcomeModelUnavailable:
		return "model_unavailable"
	case OutcomeMalformed:
		return "malformed_response"
	default:
		return "other"
	}
}

var (
	quotaMarkers    = []string{"429", "quota", "resource_exhausted", "rate limit", "rate_limit", "too many requests"}
	notFoundMarkers = []string{"404", "not found", "not_found", "is not supported for generatecontent"}
)

// Classify maps an attempt error to an Outcome. Typed errors are checked
// first; anything else falls back to matching well-known markers in the
// error text.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}

	var malformed *MalformedResponseError
	if errors.As(err, &malformed) {
		return OutcomeMalformed
	}

	var status *StatusError
	if errors.As(err, &status) {
		switch {
		case status.StatusCode == http.StatusTooManyRequests:
			return OutcomeQuotaExceeded
		case status.StatusCode == http.StatusNotFound:
			return OutcomeModelUnavailable
		case strings.EqualFold(status.Status, "RESOURCE_EXHAUSTED"):
			return OutcomeQuotaExceeded
		case strings.EqualFold(status.Status, "NOT_FOUND"):
			return OutcomeModelUnavailable
		}
	}

	switch {
	case errors.Is(err, ErrQuotaExceeded):
		return OutcomeQuotaExceeded
	case errors.Is(err, ErrModelUnavailable):
		return OutcomeModelUnavailable
	}

	msg := strings.ToLower(err.Error())
	if containsAny(msg, quotaMarkers) {
		return OutcomeQuotaExceeded
	}
	if containsAny(msg, notFoundMarkers) {
		return OutcomeModelUnavailable
	}
	return OutcomeOther
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

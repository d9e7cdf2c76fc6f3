package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"nil", nil, OutcomeSuccess},
		{"status 429", &StatusError{StatusCode: 429}, OutcomeQuotaExceeded},
		{"status 404", &StatusError{StatusCode: 404}, OutcomeModelUnavailable},
		{"resource exhausted status", &StatusError{StatusCode: 400, Status: "RESOURCE_EXHAUSTED"}, OutcomeQuotaExceeded},
		{"wrapped status", fmt.Errorf("call: %w", &StatusError{StatusCode: 429}), OutcomeQuotaExceeded},
		{"malformed", &MalformedResponseError{Reason: "bad json"}, OutcomeMalformed},
		{"wrapped malformed", fmt.Errorf("decode: %w", &MalformedResponseError{Reason: "x"}), OutcomeMalformed},
		{"quota sentinel", fmt.Errorf("x: %w", ErrQuotaExceeded), OutcomeQuotaExceeded},
		{"model sentinel", fmt.Errorf("x: %w", ErrModelUnavailable), OutcomeModelUnavailable},
		{"quota text", errors.New("Error 429: You exceeded your current quota"), OutcomeQuotaExceeded},
		{"rate limit text", errors.New("Rate limit reached for requests"), OutcomeQuotaExceeded},
		{"not found text", errors.New("models/foo is not found for API version v1beta"), OutcomeModelUnavailable},
		{"unsupported text", errors.New("model is not supported for generateContent"), OutcomeModelUnavailable},
		{"server error", &StatusError{StatusCode: 500, Message: "internal"}, OutcomeOther},
		{"network", errors.New("dial tcp: connection refused"), OutcomeOther},
		{"deadline", context.DeadlineExceeded, OutcomeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestAttemptError_Is(t *testing.T) {
	err := &AttemptError{Credential: "k1", Model: "m", Outcome: OutcomeQuotaExceeded, Err: errors.New("boom")}

	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.NotErrorIs(t, err, ErrModelUnavailable)
	assert.Contains(t, err.Error(), "quota_exceeded")
}

func TestExhaustedError(t *testing.T) {
	cause := &StatusError{Provider: "gemini", StatusCode: 404, Message: "gone"}
	err := &ExhaustedError{
		Attempts: 4,
		Last:     &AttemptError{Credential: "k2", Model: "m-b", Outcome: OutcomeModelUnavailable, Err: cause},
	}

	assert.ErrorIs(t, err, ErrProviderExhausted)
	assert.ErrorIs(t, err, ErrModelUnavailable)

	var status *StatusError
	assert.ErrorAs(t, err, &status)
	assert.Equal(t, 404, status.StatusCode)
	assert.Contains(t, err.Error(), "after 4 attempts")
}

func TestMalformedResponseError(t *testing.T) {
	err := &MalformedResponseError{Raw: "not json", Reason: "no object"}
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Equal(t, "malformed response: no object", err.Error())
}

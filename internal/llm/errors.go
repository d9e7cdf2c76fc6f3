package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredentials is returned before any network attempt when the
	// credential source is empty.
	ErrNoCredentials = errors.New("no API credentials configured")

	// ErrProviderExhausted is matched by the terminal error returned once every
	// credential/model pair has failed.
	ErrProviderExhausted = errors.New("all providers exhausted")

	ErrQuotaExceeded    = errors.New("quota exceeded")
	ErrModelUnavailable = errors.New("model unavailable")
	ErrMalformed        = errors.New("malformed response")
)

// StatusError is a provider failure reduced to what classification needs.
// Provider clients wrap their SDK errors in it so the orchestrator never
// depends on a specific SDK's error types.
type StatusError struct {
	Provider   string
	StatusCode int
	Status     string
	Message    string
	Err        error
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s: HTTP %d %s: %s", e.Provider, e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error { return e.Err }

// MalformedResponseError is returned by decoders when model output does not
// satisfy the expected contract. Raw holds the full output for diagnostics.
type MalformedResponseError struct {
	Raw    string
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformed }

// AttemptError records the failure of a single credential/model pair.
type AttemptError struct {
	Credential string // masked
	Model      string
	Outcome    Outcome
	Err        error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("attempt %s/%s (%s): %v", e.Credential, e.Model, e.Outcome, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// Is lets callers match the classified outcome with the sentinel errors even
// when the underlying provider error carries no such marker.
func (e *AttemptError) Is(target error) bool {
	switch target {
	case ErrQuotaExceeded:
		return e.Outcome == OutcomeQuotaExceeded
	case ErrModelUnavailable:
		return e.Outcome == OutcomeModelUnavailable
	case ErrMalformed:
		return e.Outcome == OutcomeMalformed
	}
	return false
}

// ExhaustedError is the terminal failure of an orchestration call.
type ExhaustedError struct {
	Attempts int
	Last     *AttemptError
	// Interrupted is set when the call stopped early because its context
	// ended (budget elapsed or caller cancelled).
	Interrupted error
}

func (e *ExhaustedError) Error() string {
	msg := fmt.Sprintf("%s after %d attempts", ErrProviderExhausted, e.Attempts)
	if e.Interrupted != nil {
		msg += fmt.Sprintf(" (stopped: %v)", e.Interrupted)
	}
	if e.Last != nil {
		msg += ": " + e.Last.Error()
	}
	return msg
}

func (e *ExhaustedError) Is(target error) bool { return target == ErrProviderExhausted }

func (e *ExhaustedError) Unwrap() []error {
	var errs []error
	if e.Last != nil {
		errs = append(errs, e.Last)
	}
	if e.Interrupted != nil {
		errs = append(errs, e.Interrupted)
	}
	return errs
}

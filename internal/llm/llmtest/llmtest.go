// Package llmtest provides a scripted, in-memory llm.Factory for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/abdulachik/whatif/internal/llm"
)

// Reply is the scripted result of one credential/model pair.
type Reply struct {
	Text string
	Err  error
}

// Call records one Complete invocation.
type Call struct {
	Credential string
	Model      string
	Request    llm.Request
}

// Script is a deterministic llm.Factory. Replies are looked up by
// credential and model; pairs without a reply return Default, or an error
// when Default is nil.
type Script struct {
	mu      sync.Mutex
	replies map[string][]Reply
	calls   []Call

	// Default answers pairs without a scripted reply.
	Default *Reply
}

// NewScript creates an empty script.
func NewScript() *Script {
	return &Script{replies: make(map[string][]Reply)}
}

// NewStaticScript creates a script that answers every pair with text.
func NewStaticScript(text string) *Script {
	s := NewScript()
	s.Default = &Reply{Text: text}
	return s
}

// On queues replies for a credential/model pair. Queued replies are consumed
// in order; the last one repeats once the queue is drained.
func (s *Script) On(credential, model string, replies ...Reply) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := credential + "|" + model
	s.replies[key] = append(s.replies[key], replies...)
	return s
}

// Factory returns an llm.Factory backed by the script.
func (s *Script) Factory() llm.Factory {
	return func(credential, model string) (llm.Completer, error) {
		return &completer{script: s, credential: credential, model: model}, nil
	}
}

// Calls returns every recorded call in order.
func (s *Script) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Pairs returns "credential|model" for every recorded call in order.
func (s *Script) Pairs() []string {
	calls := s.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Credential + "|" + c.Model
	}
	return out
}

// LastRequest returns the most recent request, or a zero Request.
func (s *Script) LastRequest() llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.calls) == 0 {
		return llm.Request{}
	}
	return s.calls[len(s.calls)-1].Request
}

func (s *Script) next(credential, model string, req llm.Request) Reply {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{Credential: credential, Model: model, Request: req})

	key := credential + "|" + model
	queue := s.replies[key]
	switch {
	case len(queue) > 1:
		s.replies[key] = queue[1:]
		return queue[0]
	case len(queue) == 1:
		return queue[0]
	case s.Default != nil:
		return *s.Default
	default:
		return Reply{Err: fmt.Errorf("llmtest: no reply scripted for %s/%s", credential, model)}
	}
}

type completer struct {
	script     *Script
	credential string
	model      string
}

func (c *completer) Complete(ctx context.Context, req llm.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r := c.script.next(c.credential, c.model, req)
	return r.Text, r.Err
}

// Quota returns a provider error classified as quota exhaustion.
func Quota() error {
	return &llm.StatusError{Provider: "test", StatusCode: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota exceeded"}
}

// NotFound returns a provider error classified as an unavailable model.
func NotFound() error {
	return &llm.StatusError{Provider: "test", StatusCode: 404, Status: "NOT_FOUND", Message: "model not found"}
}

// Identity is a Shuffle function that keeps the configured order, for
// tests that assert on attempt order.
func Identity(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

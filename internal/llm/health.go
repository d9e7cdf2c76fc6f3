package llm

import (
	"sync"
	"time"
)

// ModelStatus is the last observed state of one provider/model pair.
type ModelStatus struct {
	Healthy     bool      `json:"healthy"`
	LastCheck   time.Time `json:"last_check"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	LastOutcome Outcome   `json:"-"`
	Message     string    `json:"message,omitempty"`
}

// Health tracks the outcome of the most recent attempt per model. It is an
// observer only; the orchestrator never skips a model because of it.
type Health struct {
	mu     sync.RWMutex
	models map[string]*ModelStatus
	now    func() time.Time
}

// NewHealth creates a new health tracker.
func NewHealth() *Health {
	return &Health{
		models: make(map[string]*ModelStatus),
		now:    time.Now,
	}
}

// HealthKey is the key a model is tracked under.
func HealthKey(p Provider, model string) string {
	return string(p) + "/" + model
}

// Record stores the outcome of one attempt. err is ignored on success.
func (h *Health) Record(key string, outcome Outcome, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	status, exists := h.models[key]
	if !exists {
		status = &ModelStatus{}
		h.models[key] = status
	}

	now := h.now()
	status.LastCheck = now
	status.LastOutcome = outcome
	if outcome == OutcomeSuccess {
		status.Healthy = true
		status.LastSuccess = now
		status.Message = "ok"
		return
	}

	// A malformed answer still means the model is reachable.
	status.Healthy = outcome == OutcomeMalformed
	status.Message = outcome.String()
	if err != nil {
		status.Message = err.Error()
	}
}

// Status returns a copy of one model's status, or nil if never attempted.
func (h *Health) Status(key string) *ModelStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if status, exists := h.models[key]; exists {
		cp := *status
		return &cp
	}
	return nil
}

// All returns copies of every tracked status.
func (h *Health) All() map[string]*ModelStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make(map[string]*ModelStatus, len(h.models))
	for key, status := range h.models {
		cp := *status
		result[key] = &cp
	}
	return result
}

// AnyHealthy reports whether at least one model answered on its last
// attempt. With nothing attempted yet the pool is assumed usable.
func (h *Health) AnyHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.models) == 0 {
		return true
	}
	for _, status := range h.models {
		if status.Healthy {
			return true
		}
	}
	return false
}

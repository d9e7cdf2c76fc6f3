// Package simulation drives a what-if life run: it validates input, asks the
// narrator for chapters, folds stat deltas and persists the session. A step
// that fails to generate leaves the stored session untouched.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abdulachik/whatif/internal/story"
)

var (
	ErrNotFound     = errors.New("simulation not found")
	ErrComplete     = errors.New("simulation complete")
	ErrFinished     = errors.New("letter already written")
	ErrNoChapters   = errors.New("simulation has no chapters yet")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("simulation was changed by another request")
)

const minBirthYear = 1900

// Narrator generates story content. *story.Generator implements it.
type Narrator interface {
	StartChapter(ctx context.Context, name string, age int, profile story.Profile, choice story.Choice) (story.Chapter, error)
	ContinueChapter(ctx context.Context, name string, age int, stats story.Stats, lastChoice string, history []story.Chapter) (story.Chapter, error)
	GenerateLetter(ctx context.Context, name string, birthYear int, history []story.Chapter, stats story.Stats) (string, error)
}

// Store persists sessions. GetSession returns ErrNotFound for unknown IDs.
// SaveSession returns ErrConflict when s.Version no longer matches the stored
// revision, and advances s.Version on success.
type Store interface {
	SaveSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	ListSessions(ctx context.Context, limit int) ([]*Session, error)
}

// StartInput is what a user provides to begin a simulation.
type StartInput struct {
	Name      string        `json:"name"`
	BirthYear int           `json:"birth_year"`
	Profile   story.Profile `json:"profile"`
	Choice    story.Choice  `json:"choice"`
}

// Validate checks the input against the current year. Stored simulations
// need a name to be listed by.
func (in StartInput) Validate(now time.Time) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return in.ValidateUnnamed(now)
}

// ValidateUnnamed checks everything but the name. An empty name is narrated
// as an anonymous wanderer.
func (in StartInput) ValidateUnnamed(now time.Time) error {
	if in.BirthYear < minBirthYear || in.BirthYear > now.Year() {
		return fmt.Errorf("%w: birth year %d out of range", ErrInvalidInput, in.BirthYear)
	}
	if in.Profile.Sun == "" {
		return fmt.Errorf("%w: profile is required", ErrInvalidInput)
	}
	if err := in.Choice.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// Manager runs simulations.
type Manager struct {
	narrator Narrator
	store    Store
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
	locks    keyedMutex
}

// NewManager creates a manager.
func NewManager(narrator Narrator, store Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		narrator: narrator,
		store:    store,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Start validates the input, generates the first chapter and stores a new
// session.
func (m *Manager) Start(ctx context.Context, in StartInput) (*Session, error) {
	now := m.now()
	if err := in.Validate(now); err != nil {
		return nil, err
	}

	age := now.Year() - in.BirthYear
	ch, err := m.narrator.StartChapter(ctx, in.Name, age, in.Profile, in.Choice)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:        m.newID(),
		Name:      strings.TrimSpace(in.Name),
		BirthYear: in.BirthYear,
		Profile:   in.Profile,
		Choice:    in.Choice,
		Stats:     ApplyDelta(BaseStats(), ch.StatsChange),
		Chapters:  []story.Chapter{ch},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.SaveSession(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	m.logger.Info("simulation started", "id", s.ID, "category", in.Choice.Category, "age", age)
	return s, nil
}

// Advance generates the next chapter in response to the user's decision.
// An empty decision lets the story flow without one.
func (m *Manager) Advance(ctx context.Context, id, decision string) (*Session, error) {
	if n := len([]rune(decision)); n > story.MaxChoiceLength {
		return nil, fmt.Errorf("%w: decision is %d characters, max %d", ErrInvalidInput, n, story.MaxChoiceLength)
	}

	unlock := m.locks.lock(id)
	defer unlock()

	s, err := m.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Finished() {
		return nil, ErrFinished
	}
	if s.Complete() {
		return nil, ErrComplete
	}
	current := s.Current()
	if current == nil {
		return nil, ErrNoChapters
	}

	ch, err := m.narrator.ContinueChapter(ctx, s.Name, current.Age, s.Stats, decision, s.Chapters)
	if err != nil {
		return nil, err
	}

	next := *s
	next.Chapters = append(append([]story.Chapter(nil), s.Chapters...), ch)
	next.Stats = ApplyDelta(s.Stats, ch.StatsChange)
	next.UpdatedAt = m.now()
	if err := m.store.SaveSession(ctx, &next); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	m.logger.Info("simulation advanced", "id", id, "chapters", len(next.Chapters), "stats", next.Stats)
	return &next, nil
}

// Finish writes the closing letter.
func (m *Manager) Finish(ctx context.Context, id string) (*Session, error) {
	unlock := m.locks.lock(id)
	defer unlock()

	s, err := m.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Finished() {
		return nil, ErrFinished
	}
	if len(s.Chapters) == 0 {
		return nil, ErrNoChapters
	}

	letter, err := m.narrator.GenerateLetter(ctx, s.Name, s.BirthYear, s.Chapters, s.Stats)
	if err != nil {
		return nil, err
	}

	next := *s
	next.Letter = letter
	next.UpdatedAt = m.now()
	if err := m.store.SaveSession(ctx, &next); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	m.logger.Info("simulation finished", "id", id, "chapters", len(next.Chapters))
	return &next, nil
}

// Get returns a stored session.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	return m.store.GetSession(ctx, id)
}

// List returns the most recently updated sessions.
func (m *Manager) List(ctx context.Context, limit int) ([]*Session, error) {
	return m.store.ListSessions(ctx, limit)
}

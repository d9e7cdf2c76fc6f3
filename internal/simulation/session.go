package simulation

import (
	"time"

	"github.com/abdulachik/whatif/internal/story"
)

const (
	// MaxChapters is the number of chapters after which a simulation only
	// accepts the final letter.
	MaxChapters = 5

	// BaseStat is the value every stat starts from before the first chapter.
	BaseStat = 50

	minStat = 0
	maxStat = 100
)

// Session is one alternate-life run.
type Session struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	BirthYear int             `json:"birth_year"`
	Profile   story.Profile   `json:"profile"`
	Choice    story.Choice    `json:"choice"`
	Stats     story.Stats     `json:"stats"`
	Chapters  []story.Chapter `json:"chapters"`
	Letter    string          `json:"letter,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Version is the stored revision this value was read at. Zero means the
	// session has never been saved.
	Version int `json:"version"`
}

// Current returns the latest chapter, or nil before the first one.
func (s *Session) Current() *story.Chapter {
	if len(s.Chapters) == 0 {
		return nil
	}
	return &s.Chapters[len(s.Chapters)-1]
}

// Complete reports whether no more chapters may be generated.
func (s *Session) Complete() bool {
	return len(s.Chapters) >= MaxChapters || s.Letter != ""
}

// Finished reports whether the closing letter exists.
func (s *Session) Finished() bool {
	return s.Letter != ""
}

// ApplyDelta folds a chapter's delta into stats, clamping each value into
// [0,100].
func ApplyDelta(stats story.Stats, delta story.StatsChange) story.Stats {
	return story.Stats{
		Happiness: Clamp(stats.Happiness + delta.Happiness),
		Money:     Clamp(stats.Money + delta.Money),
		Health:    Clamp(stats.Health + delta.Health),
	}
}

// BaseStats returns the starting stats.
func BaseStats() story.Stats {
	return story.Stats{Happiness: BaseStat, Money: BaseStat, Health: BaseStat}
}

// Clamp bounds a stat value into [0,100].
func Clamp(v int) int {
	return min(max(v, minStat), maxStat)
}

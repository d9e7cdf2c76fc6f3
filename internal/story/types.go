// Package story turns a life choice into structured chapters and a closing
// letter by prompting a generative model through an llm.Orchestrator.
package story

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxChoiceLength is the longest accepted choice text, in characters.
const MaxChoiceLength = 280

// ErrInvalidChoice is returned for a choice that must not reach a prompt.
var ErrInvalidChoice = errors.New("invalid choice")

// Category is the area of life a pivotal choice belongs to.
type Category string

const (
	CategoryLove      Category = "love"
	CategoryCareer    Category = "career"
	CategoryLocation  Category = "location"
	CategoryEducation Category = "education"
	CategoryRisk      Category = "risk"
)

// Categories lists every valid category.
var Categories = []Category{CategoryLove, CategoryCareer, CategoryLocation, CategoryEducation, CategoryRisk}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Choice is the pivotal "what if" decision a simulation starts from.
type Choice struct {
	Category Category `json:"category"`
	Text     string   `json:"text"`
}

// Validate checks the category and that the text is 1..MaxChoiceLength
// characters after trimming.
func (c Choice) Validate() error {
	if !c.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidChoice, c.Category)
	}
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return fmt.Errorf("%w: text is empty", ErrInvalidChoice)
	}
	if n := utf8.RuneCountInString(c.Text); n > MaxChoiceLength {
		return fmt.Errorf("%w: text is %d characters, max %d", ErrInvalidChoice, n, MaxChoiceLength)
	}
	return nil
}

// Profile is the astrological profile computed from birth data. Rising is
// empty when the birth time is unknown.
type Profile struct {
	Sun     string `json:"sun"`
	Moon    string `json:"moon"`
	Mercury string `json:"mercury"`
	Venus   string `json:"venus"`
	Mars    string `json:"mars"`
	Rising  string `json:"rising,omitempty"`
}

// Stats are the three tracked life statistics, each in [0,100].
type Stats struct {
	Happiness int `json:"happiness"`
	Money     int `json:"money"`
	Health    int `json:"health"`
}

// StatsChange is a signed delta emitted by a chapter. It is never clamped
// here; folding it into Stats is the caller's job.
type StatsChange struct {
	Happiness int `json:"happiness"`
	Money     int `json:"money"`
	Health    int `json:"health"`
}

// MiniChoice is the decision offered at the end of a chapter.
type MiniChoice struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Chapter is one narrative episode covering a few years of the alternate
// life. A nil MiniChoice means the story moves on without a decision.
type Chapter struct {
	Title       string      `json:"title"`
	Period      string      `json:"period"`
	Age         int         `json:"age"`
	StoryText   string      `json:"story_text"`
	StatsChange StatsChange `json:"stats_change"`
	MiniChoice  *MiniChoice `json:"mini_choice,omitempty"`
}

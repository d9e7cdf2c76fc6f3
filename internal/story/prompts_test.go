package story

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testProfile = Profile{Sun: "Leo", Moon: "Pisces", Mercury: "Virgo", Venus: "Cancer", Mars: "Aries"}

func TestBuildStartPrompt(t *testing.T) {
	prompt := BuildStartPrompt("Deniz", 28, testProfile, Choice{Category: CategoryCareer, Text: "Move to Berlin"})

	assert.Contains(t, prompt, "User: Deniz")
	assert.Contains(t, prompt, "Current age: 28")
	assert.Contains(t, prompt, "Sun Leo")
	assert.Contains(t, prompt, "Mars Aries")
	assert.Contains(t, prompt, "Rising Unknown")
	assert.Contains(t, prompt, "Category: career")
	assert.Contains(t, prompt, `"Move to Berlin"`)
	assert.Contains(t, prompt, "first 1-2 years")

	t.Run("blank name falls back", func(t *testing.T) {
		prompt := BuildStartPrompt("  ", 20, testProfile, Choice{Category: CategoryLove, Text: "x"})
		assert.Contains(t, prompt, "User: Wanderer")
	})

	t.Run("known rising", func(t *testing.T) {
		p := testProfile
		p.Rising = "Virgo"
		assert.Contains(t, BuildStartPrompt("A", 20, p, Choice{Category: CategoryRisk, Text: "x"}), "Rising Virgo")
	})
}

func TestBuildContinuePrompt(t *testing.T) {
	stats := Stats{Happiness: 15, Money: 90, Health: 50}

	t.Run("includes state and decision", func(t *testing.T) {
		prompt := BuildContinuePrompt("Deniz", 31, stats, "Take the job", "[Age 30]: You landed.")
		assert.Contains(t, prompt, "Age: 31")
		assert.Contains(t, prompt, "Happiness 15, Money 90, Health 50")
		assert.Contains(t, prompt, "[Age 30]: You landed.")
		assert.Contains(t, prompt, "Last user decision: Take the job")
		assert.Contains(t, prompt, "NEXT 2-3 years")
	})

	t.Run("empty decision lets it flow", func(t *testing.T) {
		prompt := BuildContinuePrompt("Deniz", 31, stats, "", "")
		assert.Contains(t, prompt, "Last user decision: Let it flow.")
	})
}

func TestBuildFinalLetterPrompt(t *testing.T) {
	prompt := BuildFinalLetterPrompt("Deniz", 1996, "[Age 28]: a\n[Age 31]: b", Stats{Happiness: 70, Money: 20, Health: 60})

	assert.Contains(t, prompt, "Birth year: 1996")
	assert.Contains(t, prompt, "Happiness 70, Money 20, Health 60")
	assert.Contains(t, prompt, "[Age 28]: a\n[Age 31]: b")
	assert.Contains(t, prompt, `"Other Deniz"`)
	assert.Contains(t, prompt, "Do not use JSON")
}

func TestLetterSystemPrompt(t *testing.T) {
	assert.True(t, strings.HasPrefix(LetterSystemPrompt, SystemPrompt))
	assert.True(t, strings.HasSuffix(LetterSystemPrompt, LetterOverride))
}

func TestHistorySummary(t *testing.T) {
	chapters := []Chapter{
		{Age: 25, StoryText: "one"},
		{Age: 27, StoryText: "two"},
		{Age: 30, StoryText: "three"},
	}

	assert.Equal(t, "[Age 25]: one\n[Age 27]: two\n[Age 30]: three", HistorySummary(chapters))
	assert.Equal(t, "[Age 27]: two\n[Age 30]: three", HistorySummary(Recent(chapters, 2)))
	assert.Equal(t, "", HistorySummary(nil))
	assert.Len(t, Recent(chapters[:1], 2), 1)
	assert.Nil(t, Recent(chapters, 0))
}

func TestChoiceValidate(t *testing.T) {
	tests := []struct {
		name    string
		choice  Choice
		wantErr bool
	}{
		{"valid", Choice{Category: CategoryLove, Text: "Say yes"}, false},
		{"exactly max", Choice{Category: CategoryRisk, Text: strings.Repeat("a", MaxChoiceLength)}, false},
		{"multibyte at max", Choice{Category: CategoryRisk, Text: strings.Repeat("ş", MaxChoiceLength)}, false},
		{"too long", Choice{Category: CategoryRisk, Text: strings.Repeat("a", MaxChoiceLength+1)}, true},
		{"empty text", Choice{Category: CategoryLove, Text: "   "}, true},
		{"unknown category", Choice{Category: "fame", Text: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.choice.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidChoice)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

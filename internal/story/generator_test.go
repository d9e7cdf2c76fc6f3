package story

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/whatif/internal/llm"
	"github.com/abdulachik/whatif/internal/llm/llmtest"
)

func newTestGenerator(t *testing.T, script *llmtest.Script, creds ...string) *Generator {
	t.Helper()
	orch, err := llm.New(llm.Config{
		Provider:    llm.ProviderGemini,
		Credentials: llm.StaticCredentials(creds),
		Models:      []string{"m-a", "m-b"},
		Factory:     script.Factory(),
		Shuffle:     llmtest.Identity,
	})
	require.NoError(t, err)
	return NewGenerator(orch, nil)
}

func TestGenerator_StartChapter(t *testing.T) {
	t.Run("quota then fenced success", func(t *testing.T) {
		script := llmtest.NewScript().
			On("k1", "m-a", llmtest.Reply{Err: llmtest.Quota()}).
			On("k1", "m-b", llmtest.Reply{Text: "```json\n" + sampleChapter + "\n```"})
		g := newTestGenerator(t, script, "k1", "k2")

		ch, err := g.StartChapter(context.Background(), "Deniz", 25, testProfile, Choice{Category: CategoryCareer, Text: "Quit"})
		require.NoError(t, err)
		assert.Equal(t, "X", ch.Title)
		assert.Equal(t, StatsChange{Happiness: 5, Money: -3}, ch.StatsChange)
		assert.Equal(t, []string{"k1|m-a", "k1|m-b"}, script.Pairs())

		req := script.LastRequest()
		assert.Equal(t, SystemPrompt, req.System)
		assert.Equal(t, llm.FormatJSON, req.Format)
		assert.Contains(t, req.Prompt, "Category: career")
	})

	t.Run("exhaustion surfaces provider exhausted", func(t *testing.T) {
		script := llmtest.NewScript()
		script.Default = &llmtest.Reply{Err: llmtest.NotFound()}
		g := newTestGenerator(t, script, "k1", "k2")

		_, err := g.StartChapter(context.Background(), "Deniz", 25, testProfile, Choice{Category: CategoryCareer, Text: "Quit"})
		assert.ErrorIs(t, err, llm.ErrProviderExhausted)
		assert.ErrorIs(t, err, llm.ErrModelUnavailable)
		assert.Len(t, script.Calls(), 4)
	})

	t.Run("no credentials", func(t *testing.T) {
		script := llmtest.NewStaticScript(sampleChapter)
		g := newTestGenerator(t, script)

		_, err := g.StartChapter(context.Background(), "Deniz", 25, testProfile, Choice{Category: CategoryCareer, Text: "Quit"})
		assert.ErrorIs(t, err, llm.ErrNoCredentials)
		assert.Empty(t, script.Calls())
	})
}

func TestGenerator_ContinueChapter(t *testing.T) {
	script := llmtest.NewStaticScript(sampleChapter)
	g := newTestGenerator(t, script, "k1")

	history := []Chapter{
		{Age: 25, StoryText: "oldest"},
		{Age: 27, StoryText: "middle"},
		{Age: 29, StoryText: "latest"},
	}
	_, err := g.ContinueChapter(context.Background(), "Deniz", 29, Stats{Happiness: 50, Money: 50, Health: 50}, "Stay", history)
	require.NoError(t, err)

	prompt := script.LastRequest().Prompt
	assert.NotContains(t, prompt, "oldest")
	assert.Contains(t, prompt, "[Age 27]: middle\n[Age 29]: latest")
	assert.Contains(t, prompt, "Last user decision: Stay")
}

func TestGenerator_GenerateLetter(t *testing.T) {
	script := llmtest.NewStaticScript("```\nDear other me,\nit was worth it.\n```")
	g := newTestGenerator(t, script, "k1")

	history := []Chapter{
		{Age: 25, StoryText: "oldest"},
		{Age: 27, StoryText: "middle"},
		{Age: 29, StoryText: "latest"},
	}
	letter, err := g.GenerateLetter(context.Background(), "Deniz", 1999, history, Stats{Happiness: 80, Money: 10, Health: 55})
	require.NoError(t, err)
	assert.Equal(t, "Dear other me,\nit was worth it.", letter)

	req := script.LastRequest()
	assert.Equal(t, LetterSystemPrompt, req.System)
	assert.Equal(t, llm.FormatText, req.Format)
	assert.Contains(t, req.Prompt, "[Age 25]: oldest")
	assert.Contains(t, req.Prompt, "[Age 29]: latest")
}

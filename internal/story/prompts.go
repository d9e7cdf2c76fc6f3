package story

import (
	"fmt"
	"strings"
)

// SystemPrompt is the shared system instruction for every phase.
const SystemPrompt = `You are the "Inner Voice" of the user inside WhatIf.life, a parallel-universe life simulator.
Your job: take one pivotal "what if" choice the user regrets not making and show them the alternate life that follows from it.

IDENTITY AND TONE:
- Cinematic, slightly teasing, sometimes melancholic, but wise in the end. Narrate like the voice-over of a prestige drama.
- Use the user's birth chart as CHARACTER ANALYSIS, not decoration (e.g. "Your Virgo rising made you overthink this offer until it was gone").

RULES:
1. Tell the story in the second person ("you").
2. Never be boring. Events move fast but never feel disconnected.
3. Stats (happiness, money, health) must change consistently with the story.
4. CONTINUITY: every chapter is a logical continuation of earlier events and of the user's last decision. Never contradict or forget what already happened.
5. LANGUAGE: write in the language the user's choice is written in.

OUTPUT FORMAT:
Always return exactly one valid JSON object. Do not wrap it in a markdown code block.

Required JSON structure:
{
  "title": "Chapter title (e.g. The Great Break)",
  "period": "Year range (e.g. 2024 - 2026)",
  "age": 25,
  "story_text": "The story goes here... (300-400 characters)",
  "stats_change": {
    "happiness": 10,
    "money": -5,
    "health": 0
  },
  "mini_choice": {
    "question": "A critical moment arrives...",
    "options": ["Take the risk and keep going", "Step back"]
  }
}`

// LetterOverride is appended to SystemPrompt for the letter phase.
const LetterOverride = "\nIMPORTANT: Return ONLY the raw text of the letter. No JSON."

// LetterSystemPrompt is the system instruction for the letter phase.
const LetterSystemPrompt = SystemPrompt + LetterOverride

const (
	defaultName   = "Wanderer"
	unknownRising = "Unknown"
	letItFlow     = "Let it flow."
)

// BuildStartPrompt renders the opening chapter prompt.
func BuildStartPrompt(name string, age int, profile Profile, choice Choice) string {
	if strings.TrimSpace(name) == "" {
		name = defaultName
	}
	rising := profile.Rising
	if rising == "" {
		rising = unknownRising
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User: %s\n", name)
	fmt.Fprintf(&b, "Current age: %d\n", age)
	fmt.Fprintf(&b, "Birth chart: Sun %s, Moon %s, Rising %s, Mercury %s, Mars %s, Venus %s.\n\n",
		profile.Sun, profile.Moon, rising, profile.Mercury, profile.Mars, profile.Venus)
	b.WriteString("BREAKING POINT (the choice):\n")
	fmt.Fprintf(&b, "Category: %s\n", choice.Category)
	fmt.Fprintf(&b, "Detail: %q\n\n", choice.Text)
	b.WriteString("TASK:\n")
	b.WriteString("Start the simulation at the moment this choice is made. Tell the first 1-2 years.\n")
	b.WriteString("Show how the user's astrological traits (especially the Sun and Mars) shape their first steps on this new path.\n")
	b.WriteString("Open with either great excitement or great disappointment.\n")
	return b.String()
}

// BuildContinuePrompt renders the prompt for the next chapter. An empty
// lastChoice means the user let events take their course.
func BuildContinuePrompt(name string, age int, stats Stats, lastChoice, recentSummary string) string {
	decision := lastChoice
	if strings.TrimSpace(decision) == "" {
		decision = letItFlow
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User: %s\n", name)
	fmt.Fprintf(&b, "Age: %d\n", age)
	fmt.Fprintf(&b, "Current state: Happiness %d, Money %d, Health %d.\n\n", stats.Happiness, stats.Money, stats.Health)
	b.WriteString("Previous events:\n")
	b.WriteString(recentSummary)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Last user decision: %s\n\n", decision)
	b.WriteString("TASK:\n")
	b.WriteString("Simulate the NEXT 2-3 years of this life.\n")
	fmt.Fprintf(&b, "- VERY IMPORTANT: open the chapter directly with the consequences of the user's last decision (%q).\n", decision)
	b.WriteString("- Was it a good or a bad call? How did it change the character's life?\n")
	b.WriteString("- If any stat is very low (0-20) or very high (80-100), reflect it dramatically in the story.\n")
	b.WriteString("- Advance the age.\n")
	return b.String()
}

// BuildFinalLetterPrompt renders the prompt for the closing letter from the
// alternate self.
func BuildFinalLetterPrompt(name string, birthYear int, fullSummary string, stats Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User: %s\n", name)
	fmt.Fprintf(&b, "Birth year: %d\n", birthYear)
	fmt.Fprintf(&b, "Final stats: Happiness %d, Money %d, Health %d.\n\n", stats.Happiness, stats.Money, stats.Health)
	b.WriteString("Whole story so far:\n")
	b.WriteString(fullSummary)
	b.WriteString("\n\n")
	b.WriteString("TASK: Write a \"Letter from the Future\".\n")
	fmt.Fprintf(&b, "Author: the \"Other %s\" who lived this alternate timeline.\n", name)
	fmt.Fprintf(&b, "Recipient: the real-world %s.\n\n", name)
	b.WriteString("Tone: deeply emotional, accepting, wise.\n")
	b.WriteString("Theme: \"Make peace with your what-ifs.\"\n\n")
	b.WriteString("Content:\n")
	b.WriteString("- A greeting (Dear other me...)\n")
	b.WriteString("- An honest confession of how this life turned out.\n")
	b.WriteString("- A life lesson that refers to the stats and to what happened.\n")
	b.WriteString("- A farewell.\n\n")
	b.WriteString("Return only the text of the letter. Do not use JSON.\n")
	return b.String()
}

// HistorySummary renders chapters as "[Age N]: story" lines.
func HistorySummary(chapters []Chapter) string {
	lines := make([]string, len(chapters))
	for i, ch := range chapters {
		lines[i] = fmt.Sprintf("[Age %d]: %s", ch.Age, ch.StoryText)
	}
	return strings.Join(lines, "\n")
}

// Recent returns at most the last n chapters.
func Recent(chapters []Chapter, n int) []Chapter {
	if n <= 0 {
		return nil
	}
	if len(chapters) <= n {
		return chapters
	}
	return chapters[len(chapters)-n:]
}

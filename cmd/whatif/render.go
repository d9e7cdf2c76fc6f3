package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abdulachik/whatif/internal/simulation"
	"github.com/abdulachik/whatif/internal/story"
)

var (
	titleColor  = lipgloss.Color("#F780FF")
	periodColor = lipgloss.Color("#6272A4")
	textColor   = lipgloss.Color("#E9E9F4")
	choiceColor = lipgloss.Color("#8BE9FD")
	upColor     = lipgloss.Color("#50FA7B")
	downColor   = lipgloss.Color("#FF5555")

	titleStyle  = lipgloss.NewStyle().Foreground(titleColor).Bold(true)
	periodStyle = lipgloss.NewStyle().Foreground(periodColor).Italic(true)
	textStyle   = lipgloss.NewStyle().Foreground(textColor).Width(80)
	choiceStyle = lipgloss.NewStyle().Foreground(choiceColor).Italic(true)
	letterStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(titleColor).
			Padding(1, 2).
			Width(80)
)

func renderChapter(n int, ch story.Chapter, stats story.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", titleStyle.Render(fmt.Sprintf("Chapter %d: %s", n, ch.Title)))
	fmt.Fprintf(&b, "%s\n\n", periodStyle.Render(fmt.Sprintf("%s, age %d", ch.Period, ch.Age)))
	fmt.Fprintf(&b, "%s\n\n", textStyle.Render(ch.StoryText))
	fmt.Fprintf(&b, "Happiness %s  Money %s  Health %s\n",
		renderStat(stats.Happiness, ch.StatsChange.Happiness),
		renderStat(stats.Money, ch.StatsChange.Money),
		renderStat(stats.Health, ch.StatsChange.Health),
	)
	if ch.MiniChoice != nil {
		fmt.Fprintf(&b, "\n%s\n", choiceStyle.Render(ch.MiniChoice.Question))
		for i, opt := range ch.MiniChoice.Options {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, opt)
		}
	}
	return b.String()
}

func renderStat(value, delta int) string {
	switch {
	case delta > 0:
		return fmt.Sprintf("%d %s", value, lipgloss.NewStyle().Foreground(upColor).Render(fmt.Sprintf("(+%d)", delta)))
	case delta < 0:
		return fmt.Sprintf("%d %s", value, lipgloss.NewStyle().Foreground(downColor).Render(fmt.Sprintf("(%d)", delta)))
	default:
		return fmt.Sprintf("%d", value)
	}
}

func renderLetter(letter string) string {
	return letterStyle.Render(letter)
}

func renderSession(s *simulation.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", titleStyle.Render(fmt.Sprintf("%s: %s", s.Name, s.Choice.Text)))
	fmt.Fprintf(&b, "%s\n\n", periodStyle.Render(fmt.Sprintf("id %s, %d/%d chapters", s.ID, len(s.Chapters), simulation.MaxChapters)))

	stats := simulation.BaseStats()
	for i, ch := range s.Chapters {
		stats = simulation.ApplyDelta(stats, ch.StatsChange)
		b.WriteString(renderChapter(i+1, ch, stats))
		b.WriteString("\n")
	}
	if s.Letter != "" {
		b.WriteString(renderLetter(s.Letter))
		b.WriteString("\n")
	}
	return b.String()
}

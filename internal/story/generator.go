package story

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdulachik/whatif/internal/llm"
)

// recentChapters is how much history the continue prompt carries.
const recentChapters = 2

// Generator produces chapters and letters. Every call is a single stateless
// request; all continuity comes from the arguments.
type Generator struct {
	orch   *llm.Orchestrator
	logger *slog.Logger
}

// NewGenerator creates a generator on top of an orchestrator.
func NewGenerator(orch *llm.Orchestrator, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{orch: orch, logger: logger}
}

// StartChapter generates the first chapter of a simulation.
func (g *Generator) StartChapter(ctx context.Context, name string, age int, profile Profile, choice Choice) (Chapter, error) {
	req := llm.Request{
		System: SystemPrompt,
		Prompt: BuildStartPrompt(name, age, profile, choice),
		Format: llm.FormatJSON,
		Params: llm.DefaultParams(),
	}

	ch, err := llm.Run(ctx, g.orch, req, DecodeChapter)
	if err != nil {
		return Chapter{}, fmt.Errorf("start chapter: %w", err)
	}
	g.logger.Debug("chapter generated", "phase", "start", "title", ch.Title, "age", ch.Age)
	return ch, nil
}

// ContinueChapter generates the next chapter. history may be the full
// history; only the most recent chapters are sent.
func (g *Generator) ContinueChapter(ctx context.Context, name string, age int, stats Stats, lastChoice string, history []Chapter) (Chapter, error) {
	summary := HistorySummary(Recent(history, recentChapters))
	req := llm.Request{
		System: SystemPrompt,
		Prompt: BuildContinuePrompt(name, age, stats, lastChoice, summary),
		Format: llm.FormatJSON,
		Params: llm.DefaultParams(),
	}

	ch, err := llm.Run(ctx, g.orch, req, DecodeChapter)
	if err != nil {
		return Chapter{}, fmt.Errorf("continue chapter: %w", err)
	}
	g.logger.Debug("chapter generated", "phase", "continue", "title", ch.Title, "age", ch.Age)
	return ch, nil
}

// GenerateLetter writes the closing letter from the full history.
func (g *Generator) GenerateLetter(ctx context.Context, name string, birthYear int, history []Chapter, stats Stats) (string, error) {
	req := llm.Request{
		System: LetterSystemPrompt,
		Prompt: BuildFinalLetterPrompt(name, birthYear, HistorySummary(history), stats),
		Format: llm.FormatText,
		Params: llm.DefaultParams(),
	}

	letter, err := llm.Run(ctx, g.orch, req, DecodeLetter)
	if err != nil {
		return "", fmt.Errorf("final letter: %w", err)
	}
	g.logger.Debug("letter generated", "length", len(letter))
	return letter, nil
}

// Package textproc builds the derived views of a transcript: LLM-backed
// summary and task extraction, local full-text formatting, and pure text
// statistics.
package textproc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/voicehub/voice-gateway/internal/guard"
	"github.com/voicehub/voice-gateway/internal/inference"
)

// speakerMarker is how labeled transcripts tag an utterance; Stats counts
// occurrences to estimate the number of speakers.
const speakerMarker = "**Говорящий"

// readingWordsPerMinute drives the estimated reading time in Stats.
const readingWordsPerMinute = 200

// Result is the outcome of one LLM-backed operation.
type Result struct {
	Content      string
	Model        string
	Provider     string
	InputTokens  int
	OutputTokens int
}

// TextStats describes a transcript without any external calls.
type TextStats struct {
	Characters           int
	Words                int
	Lines                int
	SpeakersDetected     int
	EstimatedReadingMins int
	WithinLimits         bool
}

// Processor shapes prompts for the completion gateway and interprets its
// answers. All gateway input passes through the size guard first; the
// gateway itself never truncates.
type Processor struct {
	guard       *guard.Guard
	gateway     *inference.Gateway
	model       string
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

func New(g *guard.Guard, gw *inference.Gateway, model string, temperature float64, maxTokens int, logger *slog.Logger) *Processor {
	return &Processor{
		guard:       g,
		gateway:     gw,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// Summarize produces a role-organized summary of the labeled transcript.
func (p *Processor) Summarize(ctx context.Context, text string) (*Result, error) {
	p.logger.Info("generating summary", "chars", utf8.RuneCountInString(text))
	return p.callGateway(ctx, summarySystem, fmt.Sprintf(summaryPrompt, p.guard.CheckText(text)))
}

// ExtractTasks pulls action items and their assignees out of the transcript.
func (p *Processor) ExtractTasks(ctx context.Context, text string) (*Result, error) {
	p.logger.Info("extracting tasks", "chars", utf8.RuneCountInString(text))
	return p.callGateway(ctx, tasksSystem, fmt.Sprintf(tasksPrompt, p.guard.CheckText(text)))
}

// FormatFull wraps the already labeled transcript for display. It never
// calls the completion gateway.
func (p *Processor) FormatFull(text string) *Result {
	return &Result{
		Content: fmt.Sprintf("%s\n\n%s\n\n%s", fullTextHeader, text, fullTextFooter),
	}
}

// Stats computes transcript statistics. Pure function, recomputed on demand.
func (p *Processor) Stats(text string) TextStats {
	words := len(strings.Fields(text))
	reading := words / readingWordsPerMinute
	if reading < 1 {
		reading = 1
	}
	return TextStats{
		Characters:           utf8.RuneCountInString(text),
		Words:                words,
		Lines:                len(strings.Split(text, "\n")),
		SpeakersDetected:     strings.Count(text, speakerMarker),
		EstimatedReadingMins: reading,
		WithinLimits:         utf8.RuneCountInString(text) <= p.guard.MaxTextChars,
	}
}

func (p *Processor) callGateway(ctx context.Context, system, prompt string) (*Result, error) {
	req := &inference.Request{
		Messages: []inference.Message{
			{Role: inference.RoleSystem, Content: system},
			{Role: inference.RoleUser, Content: prompt},
		},
		Model:       p.model,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	}

	resp, err := p.gateway.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Result{
		Content:      resp.Content,
		Model:        resp.Model,
		Provider:     resp.Provider,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}, nil
}

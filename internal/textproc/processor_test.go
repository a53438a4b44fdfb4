package textproc

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicehub/voice-gateway/internal/guard"
	"github.com/voicehub/voice-gateway/internal/inference"
)

// recordingClient captures the request so tests can inspect the prompt.
type recordingClient struct {
	lastReq *inference.Request
	calls   int
}

func (r *recordingClient) Name() string { return "fake" }

func (r *recordingClient) Complete(ctx context.Context, req *inference.Request) (*inference.Response, error) {
	r.calls++
	r.lastReq = req
	return &inference.Response{
		Content:      "generated",
		Model:        req.Model,
		Provider:     "fake",
		InputTokens:  100,
		OutputTokens: 50,
	}, nil
}

func newTestProcessor(client inference.Client, maxTextChars int) (*Processor, *guard.Guard) {
	g := guard.New(1024, maxTextChars)
	gw := inference.NewGateway([]inference.Client{client}, inference.GatewayConfig{MaxAttempts: 1}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return New(g, gw, "test-model", 0.2, 1500, slog.New(slog.NewTextHandler(io.Discard, nil))), g
}

func TestSummarizeBuildsPromptAndShapesResult(t *testing.T) {
	client := &recordingClient{}
	p, _ := newTestProcessor(client, 4000)

	res, err := p.Summarize(context.Background(), "**Говорящий 1** [00:00]: привет")
	require.NoError(t, err)

	assert.Equal(t, "generated", res.Content)
	assert.Equal(t, "fake", res.Provider)
	assert.Equal(t, "test-model", res.Model)
	assert.Equal(t, 100, res.InputTokens)
	assert.Equal(t, 50, res.OutputTokens)

	require.Len(t, client.lastReq.Messages, 2)
	assert.Equal(t, inference.RoleSystem, client.lastReq.Messages[0].Role)
	assert.Contains(t, client.lastReq.Messages[0].Content, "сводки")
	assert.Equal(t, inference.RoleUser, client.lastReq.Messages[1].Role)
	assert.Contains(t, client.lastReq.Messages[1].Content, "привет")
	assert.Equal(t, 0.2, client.lastReq.Temperature)
	assert.Equal(t, 1500, client.lastReq.MaxTokens)
}

func TestExtractTasksUsesTaskPrompt(t *testing.T) {
	client := &recordingClient{}
	p, _ := newTestProcessor(client, 4000)

	_, err := p.ExtractTasks(context.Background(), "нужно сделать отчет")
	require.NoError(t, err)
	assert.Contains(t, client.lastReq.Messages[1].Content, "ЗАДАЧИ И ДЕЙСТВИЯ")
	assert.Contains(t, client.lastReq.Messages[1].Content, "нужно сделать отчет")
}

func TestOversizedInputTruncatedBeforePrompt(t *testing.T) {
	client := &recordingClient{}
	p, _ := newTestProcessor(client, 500)

	_, err := p.Summarize(context.Background(), strings.Repeat("б", 2000))
	require.NoError(t, err)
	assert.Contains(t, client.lastReq.Messages[1].Content, guard.TruncationMarker)
}

func TestFormatFullNeverCallsGateway(t *testing.T) {
	client := &recordingClient{}
	p, _ := newTestProcessor(client, 4000)

	res := p.FormatFull("**Говорящий 1** [00:00]: привет")
	assert.Contains(t, res.Content, "ПОЛНАЯ ТРАНСКРИПЦИЯ")
	assert.Contains(t, res.Content, "привет")
	assert.Contains(t, res.Content, "Возможны неточности")
	assert.Equal(t, 0, client.calls)
}

func TestStats(t *testing.T) {
	p, _ := newTestProcessor(&recordingClient{}, 4000)

	text := "**Говорящий 1** [00:00]: привет мир\n\n**Говорящий 2** [00:05]: здравствуйте"
	stats := p.Stats(text)

	assert.Equal(t, 2, stats.SpeakersDetected)
	assert.Equal(t, 3, stats.Lines)
	assert.Equal(t, 9, stats.Words)
	assert.Equal(t, 1, stats.EstimatedReadingMins)
	assert.True(t, stats.WithinLimits)
}

func TestStatsOverLimit(t *testing.T) {
	p, _ := newTestProcessor(&recordingClient{}, 10)
	stats := p.Stats("this text is longer than ten characters")
	assert.False(t, stats.WithinLimits)
}

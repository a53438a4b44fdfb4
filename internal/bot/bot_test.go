package bot

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicehub/voice-gateway/internal/channel"
	"github.com/voicehub/voice-gateway/internal/diarize"
	"github.com/voicehub/voice-gateway/internal/guard"
	"github.com/voicehub/voice-gateway/internal/inference"
	"github.com/voicehub/voice-gateway/internal/session"
	"github.com/voicehub/voice-gateway/internal/textproc"
	"github.com/voicehub/voice-gateway/internal/transcribe"
)

type fakeAdapter struct {
	mu       sync.Mutex
	sent     []*channel.Response
	voice    []byte
	incoming chan *channel.Message
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{voice: []byte("fake-ogg"), incoming: make(chan *channel.Message, 10)}
}

func (f *fakeAdapter) Start(ctx context.Context) error { return nil }
func (f *fakeAdapter) Stop() error                     { close(f.incoming); return nil }
func (f *fakeAdapter) Name() string                    { return "fake" }
func (f *fakeAdapter) IsEnabled() bool                 { return true }

func (f *fakeAdapter) SendMessage(userID string, resp *channel.Response) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, resp)
	return nil
}

func (f *fakeAdapter) DownloadVoice(ctx context.Context, v *channel.Voice) ([]byte, error) {
	return f.voice, nil
}

func (f *fakeAdapter) Incoming() <-chan *channel.Message { return f.incoming }

func (f *fakeAdapter) messages() []*channel.Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*channel.Response(nil), f.sent...)
}

type fakeWhisper struct{}

func (fakeWhisper) Transcribe(ctx context.Context, data []byte, filename string) (*transcribe.ProviderResponse, error) {
	return &transcribe.ProviderResponse{
		Text:     "привет мир",
		Language: "ru",
		Duration: 3.5,
		Segments: []diarize.Segment{{Start: 0, End: 3.5, Text: "привет мир"}},
	}, nil
}

type fakeCompletion struct{}

func (fakeCompletion) Name() string { return "fake-llm" }

func (fakeCompletion) Complete(ctx context.Context, req *inference.Request) (*inference.Response, error) {
	return &inference.Response{Content: "краткая сводка", Model: req.Model, Provider: "fake-llm"}, nil
}

func newTestBot(t *testing.T) (*Bot, *session.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := guard.New(1024*1024, 4000)
	tr := transcribe.New(g, fakeWhisper{}, diarize.NewLabeler(2.0), logger)
	gw := inference.NewGateway([]inference.Client{fakeCompletion{}}, inference.GatewayConfig{MaxAttempts: 1}, logger)
	proc := textproc.New(g, gw, "m", 0.2, 100, logger)
	store := session.NewStore()
	return New(tr, proc, store, 4000, logger), store
}

func voiceMessage(userID string) *channel.Message {
	return &channel.Message{
		ID:      "1",
		Channel: "fake",
		UserID:  userID,
		Voice:   &channel.Voice{FileID: "f1", Filename: "voice_f1.ogg", Duration: 3},
	}
}

func TestVoiceMessageRecordsSessionAndOffersActions(t *testing.T) {
	b, store := newTestBot(t)
	adapter := newFakeAdapter()

	b.handle(context.Background(), adapter, voiceMessage("42"))

	sess, ok := store.Get("42")
	require.True(t, ok)
	assert.Equal(t, "привет мир", sess.RawText)
	assert.Contains(t, sess.CurrentText, "**Говорящий 1**")
	assert.Equal(t, int64(1), sess.Processed)

	sent := adapter.messages()
	require.Len(t, sent, 2, "processing notice plus confirmation")
	assert.Contains(t, sent[0].Content, "Обрабатываю")
	assert.Contains(t, sent[1].Content, "распознано")
	assert.Len(t, sent[1].Buttons, 4)
}

func TestActionWithoutSession(t *testing.T) {
	b, _ := newTestBot(t)
	adapter := newFakeAdapter()

	b.handle(context.Background(), adapter, &channel.Message{UserID: "99", Action: channel.ActionSummary})

	sent := adapter.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, noSessionText, sent[0].Content)
}

func TestSummaryAction(t *testing.T) {
	b, _ := newTestBot(t)
	adapter := newFakeAdapter()
	b.handle(context.Background(), adapter, voiceMessage("42"))

	b.handle(context.Background(), adapter, &channel.Message{UserID: "42", Action: channel.ActionSummary})

	sent := adapter.messages()
	last := sent[len(sent)-1]
	assert.Contains(t, last.Content, "ОБЩАЯ СВОДКА")
	assert.Contains(t, last.Content, "краткая сводка")
	assert.Len(t, last.Buttons, 4, "first chunk of a reply carries the action keyboard")
}

func TestFullTextActionStaysLocal(t *testing.T) {
	b, _ := newTestBot(t)
	adapter := newFakeAdapter()
	b.handle(context.Background(), adapter, voiceMessage("42"))

	b.handle(context.Background(), adapter, &channel.Message{UserID: "42", Action: channel.ActionFullText})

	sent := adapter.messages()
	last := sent[len(sent)-1]
	assert.Contains(t, last.Content, "ПОЛНАЯ ТРАНСКРИПЦИЯ")
	assert.Contains(t, last.Content, "привет мир")
}

func TestStatsAction(t *testing.T) {
	b, _ := newTestBot(t)
	adapter := newFakeAdapter()
	b.handle(context.Background(), adapter, voiceMessage("42"))

	b.handle(context.Background(), adapter, &channel.Message{UserID: "42", Action: channel.ActionStats})

	sent := adapter.messages()
	last := sent[len(sent)-1]
	assert.Contains(t, last.Content, "СТАТИСТИКА ТЕКСТА")
	assert.Contains(t, last.Content, "Сегментов: 1")
}

func TestCommands(t *testing.T) {
	b, _ := newTestBot(t)

	cases := map[string]string{
		"/start":  "Добро пожаловать",
		"/help":   "Справка",
		"/stats":  "Статистика вашей сессии",
		"unknown": "Отправьте голосовое сообщение",
	}
	for content, want := range cases {
		adapter := newFakeAdapter()
		b.handle(context.Background(), adapter, &channel.Message{UserID: "1", Content: content})
		sent := adapter.messages()
		require.Len(t, sent, 1, "command %q", content)
		assert.Contains(t, sent[0].Content, want)
	}
}

func TestLongReplyIsChunked(t *testing.T) {
	b, store := newTestBot(t)
	b.maxMsgLen = 200
	adapter := newFakeAdapter()

	// Store a transcript long enough that the full-text reply needs chunking.
	long := strings.TrimRight(strings.Repeat("**Говорящий 1** [00:00]: реплика\n", 40), "\n")
	store.RecordTranscription("42", &transcribe.Result{Text: long, LabeledText: long}, time.Now())

	b.handle(context.Background(), adapter, &channel.Message{UserID: "42", Action: channel.ActionFullText})

	sent := adapter.messages()
	require.Greater(t, len(sent), 1, "long content must be split into several messages")
	for i, resp := range sent {
		assert.LessOrEqual(t, len(resp.Content), 200)
		if i == 0 {
			assert.NotEmpty(t, resp.Buttons)
		} else {
			assert.Empty(t, resp.Buttons)
		}
	}
}

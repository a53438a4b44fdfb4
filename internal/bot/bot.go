// Package bot runs the update loop: it consumes normalized messages from the
// channel adapters, drives the transcription pipeline and the derived-view
// operations, and chunks everything going back out.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/voicehub/voice-gateway/internal/channel"
	"github.com/voicehub/voice-gateway/internal/chunker"
	"github.com/voicehub/voice-gateway/internal/guard"
	"github.com/voicehub/voice-gateway/internal/metrics"
	"github.com/voicehub/voice-gateway/internal/session"
	"github.com/voicehub/voice-gateway/internal/textproc"
	"github.com/voicehub/voice-gateway/internal/transcribe"
)

// Bot wires adapters to the core pipeline. Each inbound update is handled in
// its own goroutine so one user's slow provider call never blocks another's.
type Bot struct {
	transcriber *transcribe.Transcriber
	processor   *textproc.Processor
	store       *session.Store
	maxMsgLen   int
	logger      *slog.Logger
}

func New(t *transcribe.Transcriber, p *textproc.Processor, s *session.Store, maxMsgLen int, logger *slog.Logger) *Bot {
	if maxMsgLen <= 0 {
		maxMsgLen = chunker.DefaultMaxLength
	}
	return &Bot{transcriber: t, processor: p, store: s, maxMsgLen: maxMsgLen, logger: logger}
}

// Run starts the enabled adapters and processes their updates until ctx is
// canceled.
func (b *Bot) Run(ctx context.Context, adapters []channel.Adapter) error {
	started := 0
	for _, a := range adapters {
		if !a.IsEnabled() {
			continue
		}
		if err := a.Start(ctx); err != nil {
			return fmt.Errorf("failed to start %s adapter: %w", a.Name(), err)
		}
		b.logger.Info("channel adapter started", "channel", a.Name())
		started++
		go b.consume(ctx, a)
	}
	if started == 0 {
		return fmt.Errorf("no channel adapters enabled")
	}

	<-ctx.Done()
	for _, a := range adapters {
		if a.IsEnabled() {
			if err := a.Stop(); err != nil {
				b.logger.Warn("adapter stop failed", "channel", a.Name(), "error", err)
			}
		}
	}
	return nil
}

func (b *Bot) consume(ctx context.Context, adapter channel.Adapter) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-adapter.Incoming():
			if !ok {
				return
			}
			go b.handle(ctx, adapter, msg)
		}
	}
}

func (b *Bot) handle(ctx context.Context, adapter channel.Adapter, msg *channel.Message) {
	switch {
	case msg.Voice != nil:
		b.handleVoice(ctx, adapter, msg)
	case msg.Action != "":
		b.handleAction(ctx, adapter, msg)
	default:
		b.handleCommand(adapter, msg)
	}
}

func (b *Bot) handleVoice(ctx context.Context, adapter channel.Adapter, msg *channel.Message) {
	b.send(adapter, msg.UserID, &channel.Response{Content: processingText})

	data, err := adapter.DownloadVoice(ctx, msg.Voice)
	if err != nil {
		b.logger.Error("voice download failed", "channel", adapter.Name(), "user", msg.UserID, "error", err)
		b.send(adapter, msg.UserID, &channel.Response{Content: genericErrorText(err)})
		return
	}

	payload := &guard.AudioPayload{Data: data, Filename: msg.Voice.Filename}
	result, err := b.transcriber.Transcribe(ctx, payload)
	if err != nil {
		b.logger.Error("transcription failed", "channel", adapter.Name(), "user", msg.UserID, "error", err)
		b.send(adapter, msg.UserID, &channel.Response{Content: transcriptionErrorText(err)})
		return
	}

	b.store.RecordTranscription(msg.UserID, result, time.Now())
	metrics.ActiveSessions.Set(float64(b.store.Len()))

	duration := msg.Voice.Duration
	if duration == 0 {
		duration = int(result.Duration)
	}
	b.send(adapter, msg.UserID, &channel.Response{
		Content: transcribedText(duration, float64(len(data))/1024, len([]rune(result.LabeledText))),
		Buttons: channel.ActionButtons(),
	})
	b.logger.Info("voice message processed", "channel", adapter.Name(), "user", msg.UserID)
}

// handleAction serves a derived view of the user's last transcription. The
// session lookup happens here, before any provider call: without an active
// transcription the user just gets a hint to send a voice message.
func (b *Bot) handleAction(ctx context.Context, adapter channel.Adapter, msg *channel.Message) {
	sess, ok := b.store.Get(msg.UserID)
	if !ok || !sess.HasText() {
		b.send(adapter, msg.UserID, &channel.Response{Content: noSessionText})
		return
	}

	var content string
	switch msg.Action {
	case channel.ActionSummary:
		result, err := b.processor.Summarize(ctx, sess.CurrentText)
		if err != nil {
			content = summaryErrorText(err)
			break
		}
		content = fmt.Sprintf("📊 **ОБЩАЯ СВОДКА**\n\n%s", result.Content)
	case channel.ActionTasks:
		result, err := b.processor.ExtractTasks(ctx, sess.CurrentText)
		if err != nil {
			content = tasksErrorText(err)
			break
		}
		content = result.Content
	case channel.ActionFullText:
		content = b.processor.FormatFull(sess.CurrentText).Content
	case channel.ActionStats:
		stats := b.processor.Stats(sess.CurrentText)
		content = textStatsText(stats, sess.Duration, len(sess.Segments))
	default:
		b.logger.Warn("unknown action", "action", msg.Action, "user", msg.UserID)
		content = noSessionText
	}

	for i, chunk := range chunker.Split(content, b.maxMsgLen) {
		resp := &channel.Response{Content: chunk}
		if i == 0 {
			resp.Buttons = channel.ActionButtons()
		}
		b.send(adapter, msg.UserID, resp)
	}
	b.logger.Info("action completed", "action", msg.Action, "channel", adapter.Name(), "user", msg.UserID)
}

func (b *Bot) handleCommand(adapter channel.Adapter, msg *channel.Message) {
	switch strings.TrimSpace(msg.Content) {
	case "/start":
		b.send(adapter, msg.UserID, &channel.Response{Content: welcomeText})
	case "/help":
		b.send(adapter, msg.UserID, &channel.Response{Content: helpText})
	case "/stats":
		sess, _ := b.store.Get(msg.UserID)
		b.send(adapter, msg.UserID, &channel.Response{Content: sessionStatsText(sess)})
	case "":
		// Non-text updates (stickers, photos) fall through silently.
	default:
		b.send(adapter, msg.UserID, &channel.Response{Content: fallbackText})
	}
}

func (b *Bot) send(adapter channel.Adapter, userID string, resp *channel.Response) {
	if err := adapter.SendMessage(userID, resp); err != nil {
		b.logger.Error("send failed", "channel", adapter.Name(), "user", userID, "error", err)
		return
	}
	metrics.OutboundChunks.Inc()
}

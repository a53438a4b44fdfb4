// Package transcribe turns a voice recording into speaker-labeled text. It
// validates the payload size, calls the remote speech-to-text provider once
// (audio re-upload is expensive, so no internal retry) and runs the pause
// heuristic over the returned segments.
package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/voicehub/voice-gateway/internal/diarize"
	"github.com/voicehub/voice-gateway/internal/guard"
	"github.com/voicehub/voice-gateway/internal/metrics"
)

// DefaultPrompt primes the provider for multi-speaker Russian speech.
const DefaultPrompt = "Это голосовое сообщение на русском языке. Пожалуйста, транскрибируйте с указанием говорящих, если их несколько."

// Provider is the remote speech-to-text call.
type Provider interface {
	Transcribe(ctx context.Context, data []byte, filename string) (*ProviderResponse, error)
}

// Result is the outcome of one successful transcription. It is handed to the
// session store and read-only afterwards.
type Result struct {
	Text        string
	LabeledText string
	Segments    []diarize.Segment
	Language    string
	Duration    float64
}

// AudioInfo describes a payload without touching the network.
type AudioInfo struct {
	SizeBytes    int
	SizeMB       float64
	WithinLimits bool
}

// Transcriber wires the size guard, the provider and the speaker labeler.
type Transcriber struct {
	guard    *guard.Guard
	provider Provider
	labeler  *diarize.Labeler
	logger   *slog.Logger
}

func New(g *guard.Guard, provider Provider, labeler *diarize.Labeler, logger *slog.Logger) *Transcriber {
	return &Transcriber{guard: g, provider: provider, labeler: labeler, logger: logger}
}

// Transcribe converts the payload to labeled text. Oversized payloads are
// rejected before any network call.
func (t *Transcriber) Transcribe(ctx context.Context, payload *guard.AudioPayload) (*Result, error) {
	if err := t.guard.CheckAudio(payload); err != nil {
		metrics.TranscriptionsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	t.logger.Info("starting transcription", "filename", payload.Filename, "size_bytes", payload.Size())

	vr, err := t.provider.Transcribe(ctx, payload.Data, payload.Filename)
	if err != nil {
		metrics.TranscriptionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	labeled, _ := t.labeler.Label(vr.Segments, vr.Text)

	t.logger.Info("transcription completed", "chars", len(vr.Text), "segments", len(vr.Segments), "language", vr.Language)
	metrics.TranscriptionsTotal.WithLabelValues("ok").Inc()

	return &Result{
		Text:        vr.Text,
		LabeledText: labeled,
		Segments:    vr.Segments,
		Language:    vr.Language,
		Duration:    vr.Duration,
	}, nil
}

// Info reports size facts about a payload against the configured ceiling.
func (t *Transcriber) Info(payload *guard.AudioPayload) AudioInfo {
	size := payload.Size()
	return AudioInfo{
		SizeBytes:    size,
		SizeMB:       math.Round(float64(size)/(1024*1024)*100) / 100,
		WithinLimits: size <= t.guard.MaxAudioBytes,
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voicehub/voice-gateway/internal/bot"
	"github.com/voicehub/voice-gateway/internal/channel"
	"github.com/voicehub/voice-gateway/internal/channel/discord"
	"github.com/voicehub/voice-gateway/internal/channel/telegram"
	"github.com/voicehub/voice-gateway/internal/config"
	"github.com/voicehub/voice-gateway/internal/diarize"
	"github.com/voicehub/voice-gateway/internal/guard"
	"github.com/voicehub/voice-gateway/internal/inference"
	"github.com/voicehub/voice-gateway/internal/logging"
	"github.com/voicehub/voice-gateway/internal/maintenance"
	"github.com/voicehub/voice-gateway/internal/session"
	"github.com/voicehub/voice-gateway/internal/textproc"
	"github.com/voicehub/voice-gateway/internal/transcribe"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.Configure(cfg.Logging.Level)
	logger := logging.WithComponent("main")
	logger.Info("starting voice gateway", "version", version)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sizeGuard := guard.New(cfg.Limits.MaxAudioBytes(), cfg.Limits.MaxTextLength)
	labeler := diarize.NewLabeler(cfg.Diarization.PauseThreshold)

	prompt := cfg.Transcription.Prompt
	if prompt == "" {
		prompt = transcribe.DefaultPrompt
	}
	whisper, err := transcribe.NewWhisperClient(&transcribe.WhisperConfig{
		BaseURL:  cfg.Transcription.BaseURL,
		APIKey:   cfg.Transcription.APIKey,
		Model:    cfg.Transcription.Model,
		Language: cfg.Transcription.Language,
		Prompt:   prompt,
		Timeout:  cfg.Transcription.GetTimeout(),
	})
	if err != nil {
		logger.Error("failed to create transcription client", "error", err)
		os.Exit(1)
	}
	transcriber := transcribe.New(sizeGuard, whisper, labeler, logging.WithComponent("transcribe"))

	providers, err := buildProviders(cfg)
	if err != nil {
		logger.Error("failed to create completion providers", "error", err)
		os.Exit(1)
	}
	gateway := inference.NewGateway(providers, inference.GatewayConfig{
		AttemptTimeout: cfg.Completion.GetTimeout(),
		MaxAttempts:    cfg.Completion.MaxRetries,
		RetryDelay:     cfg.Completion.GetRetryDelay(),
	}, logging.WithComponent("inference"))
	logger.Info("completion gateway ready", "providers", gateway.Providers())

	processor := textproc.New(sizeGuard, gateway,
		cfg.Completion.Model, cfg.Completion.GetTemperature(), cfg.Completion.MaxTokens,
		logging.WithComponent("textproc"))

	store := session.NewStore()

	maint := maintenance.New(store, logging.WithComponent("maintenance"))
	maint.Start()
	defer maint.Stop()

	go serveMetrics(cfg, logger)

	adapters := []channel.Adapter{}
	if cfg.Channels.Telegram.Enabled {
		adapters = append(adapters, telegram.NewTelegramAdapter(cfg.Channels.Telegram.Token))
	}
	if cfg.Channels.Discord.Enabled {
		adapters = append(adapters, discord.NewDiscordAdapter(cfg.Channels.Discord.Token))
	}

	b := bot.New(transcriber, processor, store, cfg.Limits.MaxMessageLength, logging.WithComponent("bot"))
	if err := b.Run(ctx, adapters); err != nil {
		logger.Error("bot stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// buildProviders assembles the ordered provider list for the gateway:
// primary first when configured, then the secondary when fallback is on.
func buildProviders(cfg *config.Config) ([]inference.Client, error) {
	var providers []inference.Client
	if cfg.Completion.Primary.Configured() {
		c, err := inference.NewOpenAIClient(&inference.OpenAIConfig{
			Name:    cfg.Completion.Primary.Name,
			BaseURL: cfg.Completion.Primary.BaseURL,
			APIKey:  cfg.Completion.Primary.APIKey,
			Headers: cfg.Completion.Primary.Headers,
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, c)
	}
	if cfg.FallbackAllowed() {
		c, err := inference.NewOpenAIClient(&inference.OpenAIConfig{
			Name:    cfg.Completion.Secondary.Name,
			BaseURL: cfg.Completion.Secondary.BaseURL,
			APIKey:  cfg.Completion.Secondary.APIKey,
			Headers: cfg.Completion.Secondary.Headers,
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, c)
	}
	return providers, nil
}

func serveMetrics(cfg *config.Config, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server failed", "error", err)
	}
}

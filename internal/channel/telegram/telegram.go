// Package telegram adapts the Telegram Bot API (long polling) to the
// channel.Adapter interface, including voice file download and inline action
// keyboards.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/voicehub/voice-gateway/internal/channel"
)

type TelegramAdapter struct {
	bot        *tgbotapi.BotAPI
	token      string
	incoming   chan *channel.Message
	httpClient *http.Client
}

func NewTelegramAdapter(token string) *TelegramAdapter {
	return &TelegramAdapter{
		token:      token,
		incoming:   make(chan *channel.Message, 100),
		httpClient: &http.Client{},
	}
}

func (t *TelegramAdapter) Name() string {
	return "telegram"
}

func (t *TelegramAdapter) IsEnabled() bool {
	return t.token != ""
}

func (t *TelegramAdapter) Start(ctx context.Context) error {
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return err
	}
	t.bot = bot
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.bot.GetUpdatesChan(u)
	// Only the forwarding goroutine closes incoming, once the updates
	// channel has drained, so Stop never races an in-flight send.
	go func() {
		defer close(t.incoming)
		for update := range updates {
			if msg := t.normalize(update); msg != nil {
				t.incoming <- msg
			}
		}
	}()
	return nil
}

// normalize maps a raw update onto a channel.Message. Voice notes and audio
// files both count as voice payloads; callback queries become actions and
// are acknowledged right away so the client stops its spinner.
func (t *TelegramAdapter) normalize(update tgbotapi.Update) *channel.Message {
	if update.CallbackQuery != nil {
		cq := update.CallbackQuery
		_, _ = t.bot.Request(tgbotapi.NewCallback(cq.ID, ""))
		return &channel.Message{
			ID:       cq.ID,
			Channel:  t.Name(),
			UserID:   strconv.FormatInt(cq.Message.Chat.ID, 10),
			Action:   cq.Data,
			Metadata: map[string]string{"from_id": strconv.FormatInt(cq.From.ID, 10)},
		}
	}

	if update.Message == nil {
		return nil
	}
	m := update.Message
	msg := &channel.Message{
		ID:        strconv.Itoa(m.MessageID),
		Channel:   t.Name(),
		UserID:    strconv.FormatInt(m.Chat.ID, 10),
		Content:   m.Text,
		Metadata:  map[string]string{"from_id": strconv.FormatInt(m.From.ID, 10)},
		Timestamp: int64(m.Date),
	}
	switch {
	case m.Voice != nil:
		msg.Voice = &channel.Voice{
			FileID:   m.Voice.FileID,
			Filename: fmt.Sprintf("voice_%s.ogg", m.Voice.FileID),
			Duration: m.Voice.Duration,
			Size:     m.Voice.FileSize,
		}
	case m.Audio != nil:
		msg.Voice = &channel.Voice{
			FileID:   m.Audio.FileID,
			Filename: m.Audio.FileName,
			Duration: m.Audio.Duration,
			Size:     m.Audio.FileSize,
		}
	}
	return msg
}

func (t *TelegramAdapter) Stop() error {
	if t.bot != nil {
		t.bot.StopReceivingUpdates()
	}
	return nil
}

func (t *TelegramAdapter) SendMessage(userID string, resp *channel.Response) error {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("bad chat id %q: %w", userID, err)
	}
	reply := tgbotapi.NewMessage(chatID, resp.Content)
	reply.ParseMode = tgbotapi.ModeMarkdown
	if len(resp.Buttons) > 0 {
		reply.ReplyMarkup = buildKeyboard(resp.Buttons)
	}
	_, err = t.bot.Send(reply)
	return err
}

// DownloadVoice resolves the file path through getFile and fetches the
// bytes from Telegram's file endpoint.
func (t *TelegramAdapter) DownloadVoice(ctx context.Context, v *channel.Voice) ([]byte, error) {
	url, err := t.bot.GetFileDirectURL(v.FileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve voice file: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download voice file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voice download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (t *TelegramAdapter) Incoming() <-chan *channel.Message {
	return t.incoming
}

func buildKeyboard(buttons []channel.Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Action),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

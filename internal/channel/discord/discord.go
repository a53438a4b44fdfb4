// Package discord adapts Discord to the channel.Adapter interface. Voice
// arrives as audio attachments; derived-view actions are plain text commands
// because Discord has no inline keyboards on regular messages.
package discord

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/voicehub/voice-gateway/internal/channel"
)

// command-to-action mapping for text-based selection.
var commandActions = map[string]string{
	"!summary":  channel.ActionSummary,
	"!fulltext": channel.ActionFullText,
	"!tasks":    channel.ActionTasks,
	"!stats":    channel.ActionStats,
}

var audioExtensions = []string{".ogg", ".oga", ".mp3", ".wav", ".m4a"}

type DiscordAdapter struct {
	session    *discordgo.Session
	token      string
	incoming   chan *channel.Message
	done       chan struct{}
	httpClient *http.Client
}

func NewDiscordAdapter(token string) *DiscordAdapter {
	return &DiscordAdapter{
		token:      token,
		incoming:   make(chan *channel.Message, 100),
		done:       make(chan struct{}),
		httpClient: &http.Client{},
	}
}

func (d *DiscordAdapter) Name() string {
	return "discord"
}

func (d *DiscordAdapter) IsEnabled() bool {
	return d.token != ""
}

func (d *DiscordAdapter) Start(ctx context.Context) error {
	session, err := discordgo.New("Bot " + d.token)
	if err != nil {
		return err
	}
	d.session = session
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent
	session.AddHandler(d.onMessageCreate)
	return session.Open()
}

func (d *DiscordAdapter) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	// UserID carries the Discord channel ID so replies land in the same
	// conversation; the author sits in metadata.
	msg := &channel.Message{
		ID:        m.ID,
		Channel:   d.Name(),
		UserID:    m.ChannelID,
		Metadata:  map[string]string{"author_id": m.Author.ID},
		Timestamp: m.Timestamp.Unix(),
	}

	if att := firstAudioAttachment(m.Attachments); att != nil {
		msg.Voice = &channel.Voice{
			FileID:   att.URL,
			Filename: att.Filename,
			Size:     att.Size,
		}
	} else if action, ok := commandActions[strings.ToLower(strings.TrimSpace(m.Content))]; ok {
		msg.Action = action
	} else {
		msg.Content = normalizeCommand(m.Content)
	}

	// Handlers run on discordgo's goroutines and can still fire during
	// shutdown; done keeps them from blocking on a channel nobody reads.
	select {
	case d.incoming <- msg:
	case <-d.done:
	}
}

func firstAudioAttachment(atts []*discordgo.MessageAttachment) *discordgo.MessageAttachment {
	for _, att := range atts {
		if strings.HasPrefix(att.ContentType, "audio/") {
			return att
		}
		lower := strings.ToLower(att.Filename)
		for _, ext := range audioExtensions {
			if strings.HasSuffix(lower, ext) {
				return att
			}
		}
	}
	return nil
}

// normalizeCommand maps Discord-style commands onto the shared slash form.
func normalizeCommand(content string) string {
	c := strings.TrimSpace(content)
	if strings.HasPrefix(c, "!") {
		return "/" + strings.TrimPrefix(c, "!")
	}
	return c
}

// Stop signals in-flight handlers and closes the gateway connection.
// incoming stays open; consumers exit through their context.
func (d *DiscordAdapter) Stop() error {
	close(d.done)
	if d.session != nil {
		return d.session.Close()
	}
	return nil
}

func (d *DiscordAdapter) SendMessage(userID string, resp *channel.Response) error {
	content := resp.Content
	if len(resp.Buttons) > 0 {
		var b strings.Builder
		b.WriteString(content)
		b.WriteString("\n\n")
		for i, btn := range resp.Buttons {
			if cmd := actionCommand(btn.Action); cmd != "" {
				if i > 0 {
					b.WriteString(" · ")
				}
				b.WriteString("`" + cmd + "`")
			}
		}
		content = b.String()
	}
	_, err := d.session.ChannelMessageSend(userID, content)
	return err
}

func actionCommand(action string) string {
	for cmd, a := range commandActions {
		if a == action {
			return cmd
		}
	}
	return ""
}

// DownloadVoice fetches an attachment by its CDN URL.
func (d *DiscordAdapter) DownloadVoice(ctx context.Context, v *channel.Voice) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.FileID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attachment download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (d *DiscordAdapter) Incoming() <-chan *channel.Message {
	return d.incoming
}

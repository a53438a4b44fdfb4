// Package channel defines the adapter boundary between chat transports and
// the voice pipeline. Adapters normalize inbound updates into Messages and
// render outbound Responses; everything else lives behind the bot.
package channel

import "context"

// Derived-view actions a user can request for their last transcription.
const (
	ActionSummary  = "action_summary"
	ActionFullText = "action_fulltext"
	ActionTasks    = "action_tasks"
	ActionStats    = "action_stats"
)

// Message represents a normalized inbound update from a channel.
type Message struct {
	ID        string
	Channel   string
	UserID    string
	Content   string
	Voice     *Voice
	Action    string
	Metadata  map[string]string
	Timestamp int64
}

// Voice describes a voice payload that can be fetched with DownloadVoice.
type Voice struct {
	FileID   string
	Filename string
	Duration int
	Size     int
}

// Button is one action choice offered with a response.
type Button struct {
	Label  string
	Action string
}

// Response represents an outbound message.
type Response struct {
	Content  string
	Buttons  []Button
	Metadata map[string]string
}

// Adapter is the interface channel transports implement.
type Adapter interface {
	// Start connects to the channel and begins feeding Incoming.
	Start(ctx context.Context) error

	// Stop disconnects and closes Incoming.
	Stop() error

	// SendMessage delivers a response to the user.
	SendMessage(userID string, resp *Response) error

	// DownloadVoice fetches the raw bytes of a voice payload.
	DownloadVoice(ctx context.Context, v *Voice) ([]byte, error)

	// Incoming returns the stream of normalized updates.
	Incoming() <-chan *Message

	// Name returns the channel name.
	Name() string

	// IsEnabled reports whether the adapter is configured to run.
	IsEnabled() bool
}

// ActionButtons is the standard keyboard offered after a transcription.
func ActionButtons() []Button {
	return []Button{
		{Label: "📊 Общая сводка (по ролям)", Action: ActionSummary},
		{Label: "📝 Полный текст (по ролям)", Action: ActionFullText},
		{Label: "✅ Выделить задачи", Action: ActionTasks},
		{Label: "📈 Статистика", Action: ActionStats},
	}
}

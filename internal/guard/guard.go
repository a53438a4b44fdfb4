package guard

import (
	"fmt"
	"unicode/utf8"
)

// TruncationMarker is appended to text cut down by CheckText.
const TruncationMarker = "\n\n[ТЕКСТ ОБРЕЗАН - СЛИШКОМ ДЛИННЫЙ]"

// markerReserve is how many characters CheckText leaves free for the marker.
const markerReserve = 100

// AudioPayload is a raw voice recording as received from a channel.
type AudioPayload struct {
	Data     []byte
	Filename string
}

// Size returns the payload length in bytes.
func (p *AudioPayload) Size() int {
	return len(p.Data)
}

// TooLargeError reports an audio payload over the configured ceiling.
type TooLargeError struct {
	Limit  int
	Actual int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("audio file too large: %d bytes, max allowed %d bytes", e.Actual, e.Limit)
}

// Guard validates payload sizes before anything touches the network.
type Guard struct {
	MaxAudioBytes int
	MaxTextChars  int
}

func New(maxAudioBytes, maxTextChars int) *Guard {
	return &Guard{MaxAudioBytes: maxAudioBytes, MaxTextChars: maxTextChars}
}

// CheckAudio rejects payloads over the byte ceiling. A payload exactly at the
// ceiling passes.
func (g *Guard) CheckAudio(p *AudioPayload) error {
	if p.Size() > g.MaxAudioBytes {
		return &TooLargeError{Limit: g.MaxAudioBytes, Actual: p.Size()}
	}
	return nil
}

// CheckText returns the text unchanged when it fits the character ceiling,
// otherwise cuts it to ceiling-100 characters and appends TruncationMarker.
// The cut counts runes, so it never lands inside a multibyte character. The
// result never exceeds the ceiling: under a ceiling too small to hold the
// marker the text is plainly cut instead.
func (g *Guard) CheckText(s string) string {
	limit := g.MaxTextChars
	if limit < 0 {
		limit = 0
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit < utf8.RuneCountInString(TruncationMarker) {
		return string(runes[:limit])
	}
	cut := limit - markerReserve
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + TruncationMarker
}

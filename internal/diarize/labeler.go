// Package diarize attributes transcript segments to speakers using a
// pause-duration heuristic. It is not acoustic diarization: a long enough
// silence between consecutive segments is taken as a turn change.
package diarize

import (
	"fmt"
	"strings"
)

// DefaultPauseThreshold is the silence, in seconds, treated as a speaker
// change. Tune via config; do not hardcode call sites to this value.
const DefaultPauseThreshold = 2.0

// Segment is one timestamped piece of provider output. Start and End are
// seconds from the beginning of the recording, Start <= End.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// SpeakerLine is one attributed utterance. Speaker ordinals are 1-based and
// never decrease within a transcript.
type SpeakerLine struct {
	Speaker   int
	Timestamp string
	Text      string
}

// Labeler converts ordered segments into speaker-labeled lines.
type Labeler struct {
	PauseThreshold float64
}

func NewLabeler(pauseThreshold float64) *Labeler {
	if pauseThreshold <= 0 {
		pauseThreshold = DefaultPauseThreshold
	}
	return &Labeler{PauseThreshold: pauseThreshold}
}

// Label walks the segments in arrival order and emits one line per non-empty
// segment. The first emitted line is always speaker 1; after that the speaker
// ordinal is incremented whenever the gap since the previous segment's end
// exceeds the pause threshold. Empty segments are skipped without touching
// the speaker or pause state. When no line can be emitted at all, the whole
// fullText is attributed to a single unnumbered speaker.
func (l *Labeler) Label(segments []Segment, fullText string) (string, []SpeakerLine) {
	var lines []SpeakerLine
	currentSpeaker := 1
	lastEnd := 0.0

	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if len(lines) > 0 && seg.Start-lastEnd > l.PauseThreshold {
			currentSpeaker++
		}
		lines = append(lines, SpeakerLine{
			Speaker:   currentSpeaker,
			Timestamp: formatTimestamp(seg.Start),
			Text:      text,
		})
		lastEnd = seg.End
	}

	if len(lines) == 0 {
		return fmt.Sprintf("**Говорящий:** %s", fullText), nil
	}

	parts := make([]string, len(lines))
	for i, ln := range lines {
		parts[i] = fmt.Sprintf("**Говорящий %d** [%s]: %s", ln.Speaker, ln.Timestamp, ln.Text)
	}
	return strings.Join(parts, "\n\n"), lines
}

// formatTimestamp renders seconds as zero-padded MM:SS, truncating to whole
// seconds.
func formatTimestamp(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

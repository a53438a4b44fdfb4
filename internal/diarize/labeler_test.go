package diarize

import (
	"strings"
	"testing"
)

func TestLabelSpeakerChangeOnLongPause(t *testing.T) {
	l := NewLabeler(2.0)
	segments := []Segment{
		{Start: 0, End: 1, Text: "a"},
		{Start: 1, End: 2, Text: "b"},
		{Start: 5, End: 6, Text: "c"}, // 3s pause, new speaker
	}

	_, lines := l.Label(segments, "a b c")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].Speaker != 1 || lines[1].Speaker != 1 {
		t.Errorf("first two segments must stay on speaker 1, got %d and %d", lines[0].Speaker, lines[1].Speaker)
	}
	if lines[2].Speaker != 2 {
		t.Errorf("segment after 3s pause must be speaker 2, got %d", lines[2].Speaker)
	}
}

func TestLabelFirstSegmentNeverIncrements(t *testing.T) {
	l := NewLabeler(2.0)
	// A large start offset on the very first segment is not a speaker change.
	_, lines := l.Label([]Segment{{Start: 10, End: 11, Text: "hello"}}, "hello")
	if len(lines) != 1 || lines[0].Speaker != 1 {
		t.Fatalf("first emitted line must be speaker 1, got %+v", lines)
	}
}

func TestLabelPauseExactlyAtThresholdKeepsSpeaker(t *testing.T) {
	l := NewLabeler(2.0)
	segments := []Segment{
		{Start: 0, End: 1, Text: "a"},
		{Start: 3, End: 4, Text: "b"}, // pause == 2.0, not > threshold
	}
	_, lines := l.Label(segments, "")
	if lines[1].Speaker != 1 {
		t.Errorf("pause equal to the threshold must not change speaker, got %d", lines[1].Speaker)
	}
}

func TestLabelSkipsEmptySegments(t *testing.T) {
	l := NewLabeler(2.0)
	segments := []Segment{
		{Start: 0, End: 1, Text: "a"},
		{Start: 1, End: 20, Text: "   "}, // skipped, must not advance lastEnd
		{Start: 1.5, End: 2.5, Text: "b"},
	}
	_, lines := l.Label(segments, "")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[1].Speaker != 1 {
		t.Errorf("empty segment must not affect pause state, got speaker %d", lines[1].Speaker)
	}
}

func TestLabelFallbackOnEmptySegments(t *testing.T) {
	l := NewLabeler(2.0)

	text, lines := l.Label(nil, "hello")
	if lines != nil {
		t.Errorf("fallback must not produce speaker lines, got %+v", lines)
	}
	if text != "**Говорящий:** hello" {
		t.Errorf("unexpected fallback text: %q", text)
	}

	text, _ = l.Label([]Segment{{Start: 0, End: 1, Text: " "}}, "hello")
	if !strings.Contains(text, "hello") {
		t.Errorf("all-empty segments must fall back to full text, got %q", text)
	}
}

func TestLabelOutputFormat(t *testing.T) {
	l := NewLabeler(2.0)
	segments := []Segment{
		{Start: 65, End: 66, Text: "привет"},
		{Start: 70, End: 71, Text: "здравствуйте"},
	}
	text, _ := l.Label(segments, "")

	want := "**Говорящий 1** [01:05]: привет\n\n**Говорящий 2** [01:10]: здравствуйте"
	if text != want {
		t.Errorf("unexpected labeled output:\ngot:  %q\nwant: %q", text, want)
	}
}

func TestFormatTimestampTruncatesToWholeSeconds(t *testing.T) {
	cases := map[float64]string{
		0:      "00:00",
		59.99:  "00:59",
		60:     "01:00",
		125.7:  "02:05",
		3599.9: "59:59",
	}
	for in, want := range cases {
		if got := formatTimestamp(in); got != want {
			t.Errorf("formatTimestamp(%v) = %q, want %q", in, got, want)
		}
	}
}

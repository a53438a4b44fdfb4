// Package chunker splits outbound text into pieces that fit a channel's
// message size limit without breaking lines apart.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxLength matches the Telegram message ceiling we target (the hard
// API limit is 4096; 4000 leaves headroom for formatting).
const DefaultMaxLength = 4000

// Split packs whole lines greedily: lines accumulate into the current chunk
// until appending the next line (plus its newline) would exceed maxLen, at
// which point the chunk is flushed. Each flushed chunk has trailing
// whitespace trimmed; line order and content are preserved. A single line
// longer than maxLen is hard-split so no returned chunk ever exceeds maxLen.
// The limit counts characters, not bytes, so Cyrillic text packs the same
// as ASCII.
func Split(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	if utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, strings.TrimRight(current.String(), " \t\n"))
			current.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.Split(text, "\n") {
		for _, piece := range splitOversized(line, maxLen) {
			n := utf8.RuneCountInString(piece)
			if curLen+n+1 > maxLen {
				flush()
			}
			current.WriteString(piece)
			current.WriteByte('\n')
			curLen += n + 1
		}
	}
	flush()

	return chunks
}

// splitOversized breaks a single line into pieces of at most maxLen-1
// characters, leaving room for the newline appended by the caller. Lines
// that already fit come back untouched.
func splitOversized(line string, maxLen int) []string {
	if utf8.RuneCountInString(line) <= maxLen {
		return []string{line}
	}
	step := maxLen - 1
	if step < 1 {
		step = 1
	}
	runes := []rune(line)
	var pieces []string
	for len(runes) > step {
		pieces = append(pieces, string(runes[:step]))
		runes = runes[step:]
	}
	return append(pieces, string(runes))
}

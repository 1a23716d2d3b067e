package discord

import (
	"strings"
	"unicode/utf8"
)

// splitContent splits text into chunks that each fit Discord's message
// length limit, preferring line boundaries and force-splitting single
// lines that are themselves over the limit. Chunks are never empty.
func splitContent(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	lines := strings.Split(text, "\n")

	var chunks []string
	var current strings.Builder

	flush := func() {
		if chunk := strings.TrimRight(current.String(), "\n"); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
	}

	for _, line := range lines {
		lineWithNewline := line + "\n"

		if current.Len()+len(lineWithNewline) > maxLen {
			flush()
			if len(lineWithNewline) > maxLen {
				chunks = append(chunks, forceSplit(line, maxLen)...)
				continue
			}
		}
		current.WriteString(lineWithNewline)
	}
	flush()

	return chunks
}

// forceSplit breaks a single long line into chunks of at most maxLen
// bytes, backing each cut off to a rune boundary so no chunk carries a
// torn UTF-8 sequence.
func forceSplit(line string, maxLen int) []string {
	var parts []string
	for len(line) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		if cut == 0 {
			cut = maxLen
		}
		parts = append(parts, line[:cut])
		line = line[cut:]
	}
	if len(line) > 0 {
		parts = append(parts, line)
	}
	return parts
}

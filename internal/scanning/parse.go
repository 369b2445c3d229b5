package scanning

import (
	"strings"
)

// cleanTranscript strips the wrapping a chat model tends to add around a plain transcript
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)

	// Remove opening markdown code blocks
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.Index(text, "\n"); nl != -1 {
			// drop a language tag such as ```text
			if !strings.ContainsAny(text[:nl], " \t") {
				text = text[nl+1:]
			}
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	return strings.TrimSpace(text)
}

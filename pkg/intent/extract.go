package intent

import (
	"regexp"
	"strings"
)

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSON locates the JSON object embedded in a free-text model reply.
// A fenced code block wins; otherwise the longest brace-delimited substring is
// taken. Stray fence markers are stripped before the result is returned so a
// half-fenced reply still parses.
func ExtractJSON(response string) string {
	if m := fencedBlockRe.FindStringSubmatch(response); len(m) == 2 {
		return scrubFences(m[1])
	}

	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")
	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}
	return scrubFences(response[startIdx : endIdx+1])
}

func scrubFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

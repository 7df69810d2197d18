package llm

import "strings"

// ExtractCode pulls a single code block out of a possibly markdown-formatted
// completion. Replies without fences are returned as-is.
func ExtractCode(text string) string {
	t := strings.TrimSpace(text)
	if !strings.Contains(t, "```") {
		return t
	}
	parts := strings.Split(t, "```")
	for i, p := range parts {
		if i%2 != 1 { // even indexes are outside the fences
			continue
		}
		block := strings.TrimSpace(p)
		lines := strings.SplitN(block, "\n", 2)
		if len(lines) > 0 && strings.EqualFold(strings.TrimSpace(lines[0]), "python") {
			if len(lines) == 2 {
				return strings.TrimSpace(lines[1])
			}
			return ""
		}
		return block
	}
	return t
}

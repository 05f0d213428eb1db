package promptstyle

import "strings"

const marker = "RANGO_PROMPT_STYLE_V1"

// ApplySystem prepends a short guidance block to a system prompt. Applying it twice is a no-op.
func ApplySystem(system string, mode string) string {
	base := strings.TrimSpace(system)
	if base == "" {
		return base
	}
	if strings.Contains(base, marker) {
		return base
	}
	mode = strings.ToLower(strings.TrimSpace(mode))

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nYou help travellers review the tourism activities they attended.")
	b.WriteString("\nFollow the system and user instructions precisely.")
	b.WriteString("\nUse only the labels and activities given as input; do not invent new ones.")
	if mode == "json" {
		b.WriteString("\nReturn a single JSON object that conforms to the schema and contains no extra keys.")
	} else {
		b.WriteString("\nBe concise.")
	}
	b.WriteString("\n---\n")
	b.WriteString(base)
	return strings.TrimSpace(b.String())
}

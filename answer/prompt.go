package answer

import "strings"

const contextInstruction = `You answer questions about the user's documents.
Use only the context passages below. If the answer is not in the context, say that you don't know; do not make one up.

Context:
`

// BuildSystemPrompt renders passages into the grounding instruction.
// Passages keep their retrieval order and are separated by blank lines.
func BuildSystemPrompt(passages []string) string {
	var sb strings.Builder
	sb.WriteString(contextInstruction)
	for i, passage := range passages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(passage)
	}
	return sb.String()
}

package chat

import (
	"fmt"
	"strings"

	"github.com/seedscope/ycatlas/internal/domain/company"
)

// maxDescriptionRunes caps how much of a long description enters the prompt,
// keeping token spend bounded on verbose records.
const maxDescriptionRunes = 400

const systemPrompt = `You are an analyst for a Y Combinator company directory.
Answer the user's question using only the company context provided.
Refer to companies by name. When the context does not contain the answer,
say so plainly instead of guessing.`

const userPromptTemplate = `Company context:

%s

Question: %s`

// buildUserPrompt renders the retrieved companies and the question into the
// user message sent to the completion provider.
func buildUserPrompt(companies []company.Company, question string) string {
	return fmt.Sprintf(userPromptTemplate, buildContext(companies), question)
}

// buildContext renders one numbered entry per company: header line with name,
// batch and status, then one-liner and a clipped long description.
func buildContext(companies []company.Company) string {
	var b strings.Builder
	for i, c := range companies {
		if i > 0 {
			b.WriteString("\n\n")
		}

		fmt.Fprintf(&b, "[%d] %s", i+1, c.Name)
		if c.Batch != "" {
			fmt.Fprintf(&b, " (batch %s)", c.Batch)
		}
		if c.Status != "" {
			fmt.Fprintf(&b, " [%s]", c.Status)
		}

		if line := strings.TrimSpace(c.OneLiner); line != "" {
			b.WriteString("\n")
			b.WriteString(line)
		}
		if desc := clip(strings.TrimSpace(c.LongDescription), maxDescriptionRunes); desc != "" {
			b.WriteString("\n")
			b.WriteString(desc)
		}
		if len(c.Tags) > 0 {
			b.WriteString("\nTags: ")
			b.WriteString(strings.Join(c.Tags, ", "))
		}
	}
	return b.String()
}

// clip truncates s to max runes, appending an ellipsis marker when cut.
func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + " [...]"
}

package qa

import (
	"strings"

	"github.com/hyperjump/annai/internal/models"
	"github.com/hyperjump/annai/pkg/utils"
)

// contextCharLimit caps each chunk's contribution to the prompt.
const contextCharLimit = 1500

// buildPrompt assembles the onboarding-answer prompt: question plus retrieved
// chunks, each under a FILE header naming its path and line range so the
// model can cite sources.
func buildPrompt(question string, chunks []*models.Chunk) string {
	blocks := make([]string, len(chunks))
	for i, c := range chunks {
		blocks[i] = "FILE: " + c.Citation() + "\n" + utils.Truncate(c.Content, contextCharLimit)
	}

	var b strings.Builder
	b.WriteString(`You are a senior software engineer helping onboard a new developer.

Rules:
- Use ONLY the provided code context.
- If the answer is not clearly in the context, say you cannot confirm.
- Cite file paths and line ranges inline (example: src/main.py:10-42).

QUESTION:
`)
	b.WriteString(question)
	b.WriteString("\n\nCODE CONTEXT:\n")
	b.WriteString(strings.Join(blocks, "\n\n---\n\n"))
	b.WriteString("\n\nProvide a clear, structured explanation.")
	return b.String()
}

// fallbackAnswer renders retrieved chunks directly, used when no completion
// provider is configured.
func fallbackAnswer(question string, chunks []*models.Chunk) string {
	blocks := make([]string, len(chunks))
	for i, c := range chunks {
		blocks[i] = c.Citation() + "\n" + utils.Truncate(c.Content, 1200)
	}
	return "Question: " + question + "\n\nRelevant code snippets:\n\n" + strings.Join(blocks, "\n\n---\n\n")
}

// citations returns each chunk's source reference, deduplicated in order.
func citations(chunks []*models.Chunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	var out []string
	for _, c := range chunks {
		ref := c.Citation()
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}

package composer

import (
	"strings"

	"github.com/navlens/fundfaq/pkg/types"
)

const systemPrompt = `You are a helpful FAQ assistant for mutual funds.
Your role is to answer factual questions about mutual funds using ONLY the provided information.

IMPORTANT RULES:
1. Answer ONLY using the facts provided below
2. Do NOT provide any financial advice or recommendations
3. Do NOT make up information not in the provided facts
4. Keep answers concise and factual - extract just the specific value when asked
5. If the information is not in the provided facts, say "I don't have that information in my knowledge base"

ANSWER FORMAT:
- For specific values (rating, expense ratio, minimum SIP), extract just the number/value
- Example: If asked "What is the rating?" and the fact says "Rating: 5", answer "5"
- Example: If asked "What is the expense ratio?" and the fact says "Expense ratio: 0.85%", answer "0.85%"`

// buildUserPrompt renders the retrieved facts as grounding context for
// the generation call.
func buildUserPrompt(query types.Query, result types.RetrievalResult) string {
	var b strings.Builder

	if query.FundName != "" {
		b.WriteString("Fund: ")
		b.WriteString(query.FundName)
		b.WriteString("\n\n")
	}

	b.WriteString("Relevant Facts:\n")
	for _, sf := range result.Facts {
		b.WriteString("- ")
		if sf.Fact.FundName != "" {
			b.WriteString(sf.Fact.FundName)
			b.WriteString(" - ")
		}
		b.WriteString(sf.Fact.SearchText())
		b.WriteString("\n")
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(query.Text)
	b.WriteString("\n\nAnswer (factual, concise, no advice, extract specific value if applicable):")
	return b.String()
}

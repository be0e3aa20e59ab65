package provider

import "strings"

// buildDraftPrompt assembles the single-turn prompt shared by all LLM
// generator variants.
//
// The prompt asks for a complete HTML email body and nothing else, so the
// response can be used verbatim as the draft artifact. When a prior draft
// is present, it is included in a fenced block and the model is asked to
// revise it rather than start over.
func buildDraftPrompt(req DraftRequest) string {
	var sb strings.Builder

	sb.WriteString("You are an expert email copywriter. Write the body of an HTML email")
	if req.Subject != "" {
		sb.WriteString(" with the subject \"")
		sb.WriteString(req.Subject)
		sb.WriteString("\"")
	}
	sb.WriteString(".\n\n")

	sb.WriteString("Instruction:\n")
	sb.WriteString(req.Instructions)
	sb.WriteString("\n\n")

	if req.PriorHTML != "" {
		sb.WriteString("Revise the following prior draft according to the instruction above. ")
		sb.WriteString("Preserve anything the instruction does not ask to change.\n\n")
		sb.WriteString("Prior draft:\n```html\n")
		sb.WriteString(req.PriorHTML)
		sb.WriteString("\n```\n\n")
	}

	sb.WriteString("Return ONLY the HTML document body. No markdown fences, no commentary.")

	return sb.String()
}

// stripCodeFences removes a markdown code fence wrapper some models add
// despite instructions.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```html")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

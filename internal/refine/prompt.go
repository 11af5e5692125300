package refine

import (
	"fmt"
	"strings"
)

// buildSystemPrompt assembles the cleanup instructions for one utterance.
func buildSystemPrompt(cfg Config) string {
	var tasks []string
	if cfg.AddPunctuation {
		tasks = append(tasks, "Add proper punctuation")
	}
	if cfg.FixGrammar {
		tasks = append(tasks, "Fix grammar errors")
	}
	if cfg.RemoveFillerWords {
		tasks = append(tasks, "Remove filler words (um, uh, like, you know, etc.)")
	}
	if len(tasks) == 0 {
		tasks = append(tasks, "Clean up the text while preserving meaning")
	}

	var b strings.Builder
	b.WriteString("You are a cleanup assistant for live speech-to-text output. ")
	b.WriteString("Each message is one recognized utterance.\n\nTasks:\n")
	for _, task := range tasks {
		fmt.Fprintf(&b, "- %s\n", task)
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- Preserve the original meaning and intent\n")
	b.WriteString("- Keep the same language as the input\n")
	b.WriteString("- Do not add any new information\n")
	b.WriteString("- Output ONLY the cleaned text, nothing else\n")
	b.WriteString("- If the input is empty or nonsensical, return it as-is\n")

	if len(cfg.Keywords) > 0 {
		fmt.Fprintf(&b, "\nContext keywords (use correct spelling for these terms): %s\n",
			strings.Join(cfg.Keywords, ", "))
	}

	return b.String()
}

package interview

import (
	"context"
	"strings"
	"text/template"

	"interviewcoach/internal/ai"
)

// Backend is the inference surface the generator and evaluator need.
// *ai.Service satisfies it.
type Backend interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (*ai.Completion, error)
	Prompts() ai.PromptPair
	Model() string
}

func renderPrompt(name, src string, data any) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// truncate cuts s to at most limit runes, appending "..." when cut
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// capWords keeps the first limit words of s, appending "..." when cut
func capWords(s string, limit int) string {
	words := strings.Fields(s)
	if limit <= 0 || len(words) <= limit {
		return s
	}
	return strings.Join(words[:limit], " ") + "..."
}

package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"interviewcoach/internal/types"

	"gopkg.in/yaml.v3"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("yaml", "any", &YAMLFormatter{})
	registry.RegisterFormatter("text", "QuestionSet", &QuestionSetTextFormatter{})
	registry.RegisterFormatter("markdown", "QuestionSet", &QuestionSetMarkdownFormatter{})
	registry.RegisterFormatter("text", "Evaluation", &EvaluationTextFormatter{})
	registry.RegisterFormatter("markdown", "Evaluation", &EvaluationMarkdownFormatter{})
	registry.RegisterFormatter("text", "SessionReport", &ReportTextFormatter{})
	registry.RegisterFormatter("markdown", "SessionReport", &ReportMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.QuestionSet, *types.QuestionSet:
		return "QuestionSet"
	case types.Evaluation, *types.Evaluation:
		return "Evaluation"
	case types.SessionReport, *types.SessionReport:
		return "SessionReport"
	default:
		return "any"
	}
}

func deref[T any](data any) (T, error) {
	switch v := data.(type) {
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("expected %T, got %T", zero, data)
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// YAMLFormatter handles YAML formatting for any data type
type YAMLFormatter struct{}

func (yf *YAMLFormatter) Format(data any) (string, error) {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (yf *YAMLFormatter) SupportedType() string {
	return "any"
}

// QuestionSetTextFormatter handles text formatting for generated questions
type QuestionSetTextFormatter struct{}

func (f *QuestionSetTextFormatter) Format(data any) (string, error) {
	set, err := deref[types.QuestionSet](data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	fmt.Fprintf(&output, "=== INTERVIEW QUESTIONS: %s ===\n", set.Role)
	if set.Warning != "" {
		fmt.Fprintf(&output, "Warning: %s\n", set.Warning)
	}
	output.WriteString("\n")

	for i, q := range set.Questions {
		fmt.Fprintf(&output, "%d. [%s]\n", i+1, q.Title)
		output.WriteString(q.Prompt)
		output.WriteString("\n")
		if q.ExpectedOutput != "" {
			fmt.Fprintf(&output, "Expected output: %s\n", q.ExpectedOutput)
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (f *QuestionSetTextFormatter) SupportedType() string {
	return "QuestionSet"
}

// QuestionSetMarkdownFormatter handles markdown formatting for generated questions
type QuestionSetMarkdownFormatter struct{}

func (f *QuestionSetMarkdownFormatter) Format(data any) (string, error) {
	set, err := deref[types.QuestionSet](data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	fmt.Fprintf(&output, "# Interview Questions: %s\n\n", set.Role)
	if set.Warning != "" {
		fmt.Fprintf(&output, "> **Warning:** %s\n\n", set.Warning)
	}

	for i, q := range set.Questions {
		fmt.Fprintf(&output, "## %d. %s\n\n", i+1, q.Title)
		output.WriteString(q.Prompt)
		output.WriteString("\n\n")
		if q.ExpectedOutput != "" {
			fmt.Fprintf(&output, "**Expected output:** `%s`\n\n", q.ExpectedOutput)
		}
	}

	return output.String(), nil
}

func (f *QuestionSetMarkdownFormatter) SupportedType() string {
	return "QuestionSet"
}

// EvaluationTextFormatter handles text formatting for a single evaluation
type EvaluationTextFormatter struct{}

func (f *EvaluationTextFormatter) Format(data any) (string, error) {
	eval, err := deref[types.Evaluation](data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString("=== EVALUATION ===\n")
	fmt.Fprintf(&output, "Score: %d/%d\n\n", eval.Score, eval.MaxScore)
	output.WriteString("Feedback:\n")
	output.WriteString(eval.Feedback)
	output.WriteString("\n")
	return output.String(), nil
}

func (f *EvaluationTextFormatter) SupportedType() string {
	return "Evaluation"
}

// EvaluationMarkdownFormatter handles markdown formatting for a single evaluation
type EvaluationMarkdownFormatter struct{}

func (f *EvaluationMarkdownFormatter) Format(data any) (string, error) {
	eval, err := deref[types.Evaluation](data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString("# Evaluation\n\n")
	fmt.Fprintf(&output, "**Score:** %d/%d\n\n", eval.Score, eval.MaxScore)
	output.WriteString("## Feedback\n\n")
	output.WriteString(eval.Feedback)
	output.WriteString("\n")
	return output.String(), nil
}

func (f *EvaluationMarkdownFormatter) SupportedType() string {
	return "Evaluation"
}

// ReportTextFormatter handles text formatting for a practice session report
type ReportTextFormatter struct{}

func (f *ReportTextFormatter) Format(data any) (string, error) {
	report, err := deref[types.SessionReport](data)
	if err != nil {
		return "", err
	}
	sum := report.Summary

	var output strings.Builder
	fmt.Fprintf(&output, "=== INTERVIEW RESULTS: %s ===\n", report.Role)
	fmt.Fprintf(&output, "Total: %d/%d (%.1f%%) - %s\n", sum.TotalScore, sum.MaxTotal, sum.Percentage, sum.Rating)
	fmt.Fprintf(&output, "Answered: %d  Skipped: %d  Average: %.1f\n\n", sum.Answered, sum.Skipped, sum.Average)

	for i, e := range report.Entries {
		fmt.Fprintf(&output, "%d. [%s] %d/%d\n", i+1, e.Question.Title, e.Evaluation.Score, e.Evaluation.MaxScore)
		fmt.Fprintf(&output, "Q: %s\n", e.Question.Prompt)
		if e.Skipped {
			output.WriteString("A: (skipped)\n")
		} else {
			fmt.Fprintf(&output, "A: %s\n", e.Answer)
		}
		fmt.Fprintf(&output, "Feedback: %s\n\n", e.Evaluation.Feedback)
	}

	return output.String(), nil
}

func (f *ReportTextFormatter) SupportedType() string {
	return "SessionReport"
}

// ReportMarkdownFormatter handles markdown formatting for a practice session report
type ReportMarkdownFormatter struct{}

func (f *ReportMarkdownFormatter) Format(data any) (string, error) {
	report, err := deref[types.SessionReport](data)
	if err != nil {
		return "", err
	}
	sum := report.Summary

	var output strings.Builder
	fmt.Fprintf(&output, "# Interview Results: %s\n\n", report.Role)
	fmt.Fprintf(&output, "**Total:** %d/%d (%.1f%%) - %s\n\n", sum.TotalScore, sum.MaxTotal, sum.Percentage, sum.Rating)

	output.WriteString("| Category | Score |\n|---|---|\n")
	for _, c := range sum.ByCategory {
		score := fmt.Sprintf("%d/%d", c.Score, types.MaxScore)
		if c.Skipped {
			score = "skipped"
		}
		fmt.Fprintf(&output, "| %s | %s |\n", c.Title, score)
	}
	output.WriteString("\n")

	for i, e := range report.Entries {
		fmt.Fprintf(&output, "## %d. %s\n\n", i+1, e.Question.Title)
		fmt.Fprintf(&output, "**Question:** %s\n\n", e.Question.Prompt)
		if e.Skipped {
			output.WriteString("**Answer:** _skipped_\n\n")
		} else {
			fmt.Fprintf(&output, "**Answer:** %s\n\n", e.Answer)
		}
		fmt.Fprintf(&output, "**Feedback:** %s\n\n", e.Evaluation.Feedback)
	}

	return output.String(), nil
}

func (f *ReportMarkdownFormatter) SupportedType() string {
	return "SessionReport"
}

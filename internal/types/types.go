package types

import "time"

// MaxScore is the top of the evaluation scale
const MaxScore = 10

// GenerateQuestionsInput represents the input for generating an interview question set
type GenerateQuestionsInput struct {
	Role string `json:"role"`
}

// Question is a single interview question
type Question struct {
	ID             string   `json:"id" yaml:"id"`
	Category       Category `json:"category" yaml:"category"`
	Title          string   `json:"title" yaml:"title"`
	Prompt         string   `json:"prompt" yaml:"prompt"`
	ExpectedOutput string   `json:"expectedOutput,omitempty" yaml:"expectedOutput,omitempty"`
	Placeholder    bool     `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// QuestionSet is the six-question set generated for a role
type QuestionSet struct {
	ID          string     `json:"id" yaml:"id"`
	Role        string     `json:"role" yaml:"role"`
	Questions   []Question `json:"questions" yaml:"questions"`
	Fallback    bool       `json:"fallback" yaml:"fallback"`
	Warning     string     `json:"warning,omitempty" yaml:"warning,omitempty"`
	Model       string     `json:"model,omitempty" yaml:"model,omitempty"`
	GeneratedAt time.Time  `json:"generatedAt" yaml:"generatedAt"`
}

// EvaluateAnswerInput represents the input for evaluating a candidate answer
type EvaluateAnswerInput struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Category Category `json:"category,omitempty"`
}

// Evaluation is the scored critique of one answer
type Evaluation struct {
	Score    int    `json:"score" yaml:"score"`
	MaxScore int    `json:"maxScore" yaml:"maxScore"`
	Feedback string `json:"feedback" yaml:"feedback"`
	Fallback bool   `json:"fallback" yaml:"fallback"`
}

// SessionEntry is one answered (or skipped) question in an interview session
type SessionEntry struct {
	Question   Question   `json:"question" yaml:"question"`
	Answer     string     `json:"answer" yaml:"answer"`
	Skipped    bool       `json:"skipped" yaml:"skipped"`
	Evaluation Evaluation `json:"evaluation" yaml:"evaluation"`
}

// CategoryScore is the score obtained for a single category
type CategoryScore struct {
	Category Category `json:"category" yaml:"category"`
	Title    string   `json:"title" yaml:"title"`
	Score    int      `json:"score" yaml:"score"`
	Skipped  bool     `json:"skipped" yaml:"skipped"`
}

// SessionSummary aggregates the scores of a session
type SessionSummary struct {
	Answered   int             `json:"answered" yaml:"answered"`
	Skipped    int             `json:"skipped" yaml:"skipped"`
	TotalScore int             `json:"totalScore" yaml:"totalScore"`
	MaxTotal   int             `json:"maxTotal" yaml:"maxTotal"`
	Average    float64         `json:"average" yaml:"average"`
	Percentage float64         `json:"percentage" yaml:"percentage"`
	Rating     string          `json:"rating" yaml:"rating"`
	ByCategory []CategoryScore `json:"byCategory" yaml:"byCategory"`
}

// SessionReport is the full record of a finished interview session
type SessionReport struct {
	Role    string         `json:"role" yaml:"role"`
	Entries []SessionEntry `json:"entries" yaml:"entries"`
	Summary SessionSummary `json:"summary" yaml:"summary"`
}

// EvaluationText is the question as sent for evaluation, with any expected output appended
func (q Question) EvaluationText() string {
	if q.ExpectedOutput == "" {
		return q.Prompt
	}
	return q.Prompt + "\n\n" + q.ExpectedOutput
}

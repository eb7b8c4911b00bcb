package ai

import "interviewcoach/internal/config"

// DefaultSystemPrompts are the built-in system instructions per operation
var DefaultSystemPrompts = map[string]string{
	config.OperationGenerate: "You are a senior technical interviewer at a Fortune 500 company. Generate professional interview questions in valid JSON format only.",
	config.OperationEvaluate: "You are a senior interviewer providing professional evaluations. Return valid JSON only.",
}

// DefaultUserPrompts are the built-in user prompt templates per operation.
// They are text/template sources rendered by the interview package.
var DefaultUserPrompts = map[string]string{
	config.OperationGenerate: `You are a senior technical interviewer at a Fortune 500 technology company. Generate exactly 6 comprehensive interview questions for the role of "{{.Role}}".

Create questions that demonstrate enterprise-level assessment standards suitable for senior-level technical positions.

Return exactly this JSON structure with these 6 types in order ({{range $i, $c := .Categories}}{{if $i}}, {{end}}{{$c.ModelType}}{{end}}):

[
  {"type": "Aptitude", "question": "Complex analytical reasoning question testing problem-solving skills and logical thinking for {{.Role}} role"},
  {"type": "CodeCompletion", "question": "Practical coding task: [Task description] Complete this code: [code snippet]", "expected_output": "[expected result]"},
  {"type": "TrickyCoding", "question": "Advanced algorithmic challenge: [Problem statement] Write complete solution.", "expected_output": "[specific output]"},
  {"type": "TechCodeCompletion", "question": "Technology-specific task for {{.Role}}: [Task] Complete this {{.Role}}-specific code: [code]", "expected_output": "[output]"},
  {"type": "Technical", "question": "Deep technical knowledge question about {{.Role}} concepts, system design, or architecture"},
  {"type": "HR", "question": "Leadership and professional growth question: How would you handle [specific scenario relevant to {{.Role}}]?"}
]

Requirements:
- Questions must be comprehensive and professional
- Suitable for senior-level candidates
- Focused on real-world business applications
- Each question should be detailed and clear

Return ONLY the JSON array. No markdown, no explanations.`,

	config.OperationEvaluate: `Evaluate this interview response professionally:

Question: {{.Question}}
Answer: {{.Answer}}

Provide assessment in this JSON format:
{
  "feedback": "Constructive feedback (50-70 words max)",
  "score": <integer 0-10>
}

Focus on: technical accuracy, problem-solving approach, communication clarity.`,
}

// resolvePrompt picks the first non-empty prompt: loaded from file, then inline config, then default
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}

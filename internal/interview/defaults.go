package interview

import (
	"strings"

	"interviewcoach/internal/types"

	"github.com/google/uuid"
)

type defaultQuestion struct {
	prompt         string
	expectedOutput string
}

// defaultQuestions are used when the model does not supply a category.
// {role} is replaced with the role.
var defaultQuestions = map[types.Category]defaultQuestion{
	types.CategoryAptitude: {
		prompt: "A {role} team ships 3 features per sprint with 5 engineers. Two engineers leave and the backlog doubles. " +
			"Estimate how many sprints the backlog now takes relative to before, and explain your reasoning and assumptions.",
	},
	types.CategoryCodeCompletion: {
		prompt: "Complete this function so it returns the indices of the two numbers in nums that add up to target:\n\n" +
			"func twoSum(nums []int, target int) (int, int) {\n\tseen := map[int]int{}\n\t// your code here\n}",
		expectedOutput: "twoSum([]int{2, 7, 11, 15}, 9) returns (0, 1)",
	},
	types.CategoryCodingChallenge: {
		prompt: "Write a function that returns the length of the longest substring without repeating characters. " +
			"State its time and space complexity.",
		expectedOutput: `"abcabcbb" returns 3`,
	},
	types.CategoryTechSpecific: {
		prompt: "Using the tools and languages you would use daily as a {role}, write code that reads a list of records, " +
			"removes duplicates by id and returns them sorted by creation time.",
		expectedOutput: "A de-duplicated list ordered from oldest to newest",
	},
	types.CategoryTheory: {
		prompt: "Describe a system you would design as a {role} that has to stay available when one of its dependencies fails. " +
			"Which trade-offs would you make and why?",
	},
	types.CategoryHRBehavioral: {
		prompt: "Tell us about a time you disagreed with a teammate on a technical decision in a {role} role. " +
			"How did you handle it and what was the outcome?",
	},
}

// DefaultQuestion returns the built-in question for a category, rendered for role
func DefaultQuestion(category types.Category, role string) types.Question {
	d := defaultQuestions[category]
	return types.Question{
		ID:             uuid.NewString(),
		Category:       category,
		Title:          category.Title(),
		Prompt:         strings.ReplaceAll(d.prompt, "{role}", role),
		ExpectedOutput: d.expectedOutput,
		Placeholder:    true,
	}
}

// DefaultQuestions returns the full built-in set in canonical order
func DefaultQuestions(role string) []types.Question {
	questions := make([]types.Question, 0, len(types.Categories))
	for _, c := range types.Categories {
		questions = append(questions, DefaultQuestion(c, role))
	}
	return questions
}

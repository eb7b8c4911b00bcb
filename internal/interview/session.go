package interview

import (
	"math"
	"strings"

	"interviewcoach/internal/types"
)

// Rating bands by percentage of the maximum total
var ratingBands = []struct {
	min   float64
	label string
}{
	{80, "Excellent"},
	{60, "Good"},
	{40, "Fair"},
	{0, "Needs Improvement"},
}

// Session accumulates the entries of one interview run
type Session struct {
	Role    string
	entries []types.SessionEntry
}

func NewSession(role string) *Session {
	return &Session{Role: role}
}

// Record appends an answered or skipped question. An empty answer counts as skipped.
func (s *Session) Record(q types.Question, answer string, eval types.Evaluation) {
	s.entries = append(s.entries, types.SessionEntry{
		Question:   q,
		Answer:     answer,
		Skipped:    strings.TrimSpace(answer) == "",
		Evaluation: eval,
	})
}

func (s *Session) Len() int { return len(s.entries) }

// Report returns the entries with their summary
func (s *Session) Report() types.SessionReport {
	entries := make([]types.SessionEntry, len(s.entries))
	copy(entries, s.entries)
	return types.SessionReport{
		Role:    s.Role,
		Entries: entries,
		Summary: Summarize(entries),
	}
}

// Summarize aggregates session entries. Skipped questions count toward the
// maximum total with a score of zero.
func Summarize(entries []types.SessionEntry) types.SessionSummary {
	summary := types.SessionSummary{ByCategory: make([]types.CategoryScore, 0, len(entries))}
	for _, e := range entries {
		score := 0
		if e.Skipped {
			summary.Skipped++
		} else {
			summary.Answered++
			score = ClampScore(e.Evaluation.Score)
		}
		summary.TotalScore += score
		summary.MaxTotal += types.MaxScore
		summary.ByCategory = append(summary.ByCategory, types.CategoryScore{
			Category: e.Question.Category,
			Title:    e.Question.Category.Title(),
			Score:    score,
			Skipped:  e.Skipped,
		})
	}

	if len(entries) > 0 {
		summary.Average = round1(float64(summary.TotalScore) / float64(len(entries)))
		summary.Percentage = round1(float64(summary.TotalScore) * 100 / float64(summary.MaxTotal))
	}
	summary.Rating = Rating(summary.Percentage)
	return summary
}

// Rating labels a percentage score
func Rating(percentage float64) string {
	for _, b := range ratingBands {
		if percentage >= b.min {
			return b.label
		}
	}
	return ratingBands[len(ratingBands)-1].label
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

package lessons

import (
	"log"

	"github.com/bookprep/backend/internal/models"
)

type MatchResult struct {
	Items     []models.LessonItem
	Matched   int
	Unmatched int

	// DuplicateSolutionLabels counts solution labels that collided while
	// building the lookup. The most recent solution wins; the counter exists
	// so upstream data-quality problems are visible in logs and stats.
	DuplicateSolutionLabels int
}

// MergeQuestionSolutions joins two independently extracted record sets on
// the question label. Question order is preserved — it determines lesson
// item position. Labels are compared in string form on both sides, so a
// numeric label on one side still matches its quoted twin on the other.
//
// The matcher is schema-agnostic: verifying that both sets belong to the
// same book and chapter is the caller's job.
func MergeQuestionSolutions(questions []models.ExtractedQuestion, solutions []models.ExtractedSolution) MatchResult {
	lookup := make(map[string]models.ExtractedSolution, len(solutions))
	var result MatchResult

	for _, s := range solutions {
		label := string(s.QuestionLabel)
		if _, exists := lookup[label]; exists {
			result.DuplicateSolutionLabels++
			log.Printf("WARN: [match] duplicate solution label %q, keeping the most recent", label)
		}
		lookup[label] = s
	}

	result.Items = make([]models.LessonItem, 0, len(questions))
	for i, q := range questions {
		item := models.LessonItem{
			Position:      i + 1,
			QuestionLabel: string(q.QuestionLabel),
			Text:          q.Text,
			Choices:       q.Choices,
		}

		if sol, ok := lookup[string(q.QuestionLabel)]; ok {
			item.HasSolution = true
			if sol.AnswerKey != "" {
				item.AnswerKey = sol.AnswerKey
			}
			if sol.WorkedSolution != "" {
				item.WorkedSolution = sol.WorkedSolution
			}
			if sol.Explanation != "" {
				item.Explanation = sol.Explanation
			}
			result.Matched++
		} else {
			result.Unmatched++
		}

		result.Items = append(result.Items, item)
	}

	return result
}

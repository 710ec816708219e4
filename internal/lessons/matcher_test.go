package lessons

import (
	"testing"

	"github.com/bookprep/backend/internal/models"
)

func question(label, text string) models.ExtractedQuestion {
	return models.ExtractedQuestion{QuestionLabel: models.FlexString(label), Text: text}
}

func solution(label, answerKey string) models.ExtractedSolution {
	return models.ExtractedSolution{QuestionLabel: models.FlexString(label), AnswerKey: answerKey}
}

func TestMergeQuestionSolutions_PartialMatch(t *testing.T) {
	questions := []models.ExtractedQuestion{
		question("1", "first"),
		question("2", "second"),
	}
	solutions := []models.ExtractedSolution{
		solution("2", "B"),
	}

	result := MergeQuestionSolutions(questions, solutions)

	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	if result.Matched != 1 || result.Unmatched != 1 {
		t.Errorf("expected matched=1 unmatched=1, got %d/%d", result.Matched, result.Unmatched)
	}

	if result.Items[0].HasSolution {
		t.Error("item 1 should not have a solution")
	}
	if !result.Items[1].HasSolution {
		t.Error("item 2 should have a solution")
	}
	if result.Items[1].AnswerKey != "B" {
		t.Errorf("expected answer key B, got %q", result.Items[1].AnswerKey)
	}
}

func TestMergeQuestionSolutions_PositionsFollowQuestionOrder(t *testing.T) {
	questions := []models.ExtractedQuestion{
		question("10", "tenth"),
		question("3", "third"),
		question("7", "seventh"),
	}

	result := MergeQuestionSolutions(questions, nil)

	for i, item := range result.Items {
		if item.Position != i+1 {
			t.Errorf("item %d: expected position %d, got %d", i, i+1, item.Position)
		}
	}
	if result.Items[0].QuestionLabel != "10" {
		t.Errorf("question order not preserved: %q first", result.Items[0].QuestionLabel)
	}
}

func TestMergeQuestionSolutions_NumericLabelMatchesString(t *testing.T) {
	// A numeric label on one side and its quoted twin on the other decode to
	// the same string form.
	var q models.ExtractedQuestion
	if err := q.QuestionLabel.UnmarshalJSON([]byte(`1`)); err != nil {
		t.Fatalf("unmarshal numeric label: %v", err)
	}
	q.Text = "numeric side"

	result := MergeQuestionSolutions(
		[]models.ExtractedQuestion{q},
		[]models.ExtractedSolution{solution("1", "C")},
	)

	if result.Matched != 1 {
		t.Fatalf("expected numeric/string labels to match, matched=%d", result.Matched)
	}
	if result.Items[0].AnswerKey != "C" {
		t.Errorf("expected answer key C, got %q", result.Items[0].AnswerKey)
	}
}

func TestMergeQuestionSolutions_DuplicateSolutionLabels(t *testing.T) {
	result := MergeQuestionSolutions(
		[]models.ExtractedQuestion{question("4", "q")},
		[]models.ExtractedSolution{
			solution("4", "A"),
			solution("4", "D"),
		},
	)

	if result.DuplicateSolutionLabels != 1 {
		t.Errorf("expected 1 duplicate counted, got %d", result.DuplicateSolutionLabels)
	}
	// Most recent wins.
	if result.Items[0].AnswerKey != "D" {
		t.Errorf("expected answer key D, got %q", result.Items[0].AnswerKey)
	}
}

func TestMergeQuestionSolutions_OptionalFieldsMerged(t *testing.T) {
	sol := models.ExtractedSolution{
		QuestionLabel:  "5",
		WorkedSolution: "expand and cancel",
	}

	result := MergeQuestionSolutions(
		[]models.ExtractedQuestion{question("5", "q")},
		[]models.ExtractedSolution{sol},
	)

	item := result.Items[0]
	if !item.HasSolution {
		t.Fatal("expected item to have a solution")
	}
	if item.WorkedSolution != "expand and cancel" {
		t.Errorf("unexpected worked solution %q", item.WorkedSolution)
	}
	if item.AnswerKey != "" || item.Explanation != "" {
		t.Errorf("empty solution fields should stay empty, got %q/%q", item.AnswerKey, item.Explanation)
	}
}

func TestMergeQuestionSolutions_Empty(t *testing.T) {
	result := MergeQuestionSolutions(nil, nil)
	if len(result.Items) != 0 || result.Matched != 0 || result.Unmatched != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

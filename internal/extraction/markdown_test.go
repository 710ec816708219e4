package extraction

import "testing"

func TestParseMarkdownQuestions_NumberedWithChoices(t *testing.T) {
	text := `1. What is the derivative of x^2?
a) x
b) 2x
c) x^2

2) Which planet is largest?
(a) Earth
(b) Jupiter`

	questions := ParseMarkdownQuestions(text)
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}

	if questions[0].QuestionLabel != "1" {
		t.Errorf("expected label 1, got %q", questions[0].QuestionLabel)
	}
	if questions[0].Text != "What is the derivative of x^2?" {
		t.Errorf("unexpected question text %q", questions[0].Text)
	}
	if len(questions[0].Choices) != 3 || questions[0].Choices[1] != "2x" {
		t.Errorf("unexpected choices %v", questions[0].Choices)
	}

	if questions[1].QuestionLabel != "2" {
		t.Errorf("expected label 2, got %q", questions[1].QuestionLabel)
	}
	if len(questions[1].Choices) != 2 || questions[1].Choices[1] != "Jupiter" {
		t.Errorf("unexpected choices %v", questions[1].Choices)
	}
}

func TestParseMarkdownQuestions_QuestionWordStyle(t *testing.T) {
	text := `Question 1: State the chain rule.

Question 2. Give an example of a bijection.`

	questions := ParseMarkdownQuestions(text)
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].Text != "State the chain rule." {
		t.Errorf("unexpected text %q", questions[0].Text)
	}
	if questions[1].QuestionLabel != "2" {
		t.Errorf("expected label 2, got %q", questions[1].QuestionLabel)
	}
}

func TestParseMarkdownQuestions_UppercaseChoices(t *testing.T) {
	text := `1. Pick the prime.
A) 4
B) 7
C) 9`

	questions := ParseMarkdownQuestions(text)
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	if len(questions[0].Choices) != 3 || questions[0].Choices[1] != "7" {
		t.Errorf("unexpected choices %v", questions[0].Choices)
	}
}

func TestParseMarkdownQuestions_LowercasePreferredOverUppercase(t *testing.T) {
	// Lowercase sub-choices and an uppercase answer key in the same block.
	// Only the lowercase set counts as choices.
	text := `1. Solve both parts.
a) compute the sum
b) compute the product
A. 12`

	questions := ParseMarkdownQuestions(text)
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	if len(questions[0].Choices) != 2 {
		t.Errorf("expected 2 lowercase choices, got %v", questions[0].Choices)
	}
}

func TestParseMarkdownQuestions_NoChoices(t *testing.T) {
	text := `1. Prove that sqrt(2) is irrational.

2. Define continuity at a point.`

	questions := ParseMarkdownQuestions(text)
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	for i, q := range questions {
		if len(q.Choices) != 0 {
			t.Errorf("question %d: expected no choices, got %v", i+1, q.Choices)
		}
	}
}

func TestParseMarkdownQuestions_DuplicateLabels(t *testing.T) {
	text := `1. First version.

1. Second version.`

	questions := ParseMarkdownQuestions(text)
	if len(questions) != 1 {
		t.Fatalf("expected 1 question after dedup, got %d", len(questions))
	}
	if questions[0].Text != "First version." {
		t.Errorf("expected first occurrence to win, got %q", questions[0].Text)
	}
}

func TestParseMarkdownQuestions_NoMatches(t *testing.T) {
	questions := ParseMarkdownQuestions("These pages contain only diagrams.")
	if questions == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(questions) != 0 {
		t.Errorf("expected no questions, got %v", questions)
	}
}

package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// FlexString decodes a JSON string or number into a string. Extraction
// providers are inconsistent about quoting question labels ("5" vs 5), and
// downstream matching keys on the string form.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	*f = FlexString(b)
	return nil
}

type ExtractedQuestion struct {
	QuestionLabel FlexString `json:"question_label"`
	Text          string     `json:"text"`
	Choices       []string   `json:"choices"`
}

type ExtractedSolution struct {
	QuestionLabel  FlexString `json:"question_label"`
	AnswerKey      string     `json:"answer_key,omitempty"`
	WorkedSolution string     `json:"worked_solution,omitempty"`
	Explanation    string     `json:"explanation,omitempty"`
}

type SetStatus string

const (
	SetPending    SetStatus = "pending"
	SetProcessing SetStatus = "processing"
	SetCompleted  SetStatus = "completed"
	SetFailed     SetStatus = "failed"
)

// QuestionSet is one extraction run over a chapter's exercise pages.
// Status moves pending → processing → completed|failed and never returns
// to pending.
type QuestionSet struct {
	ID           int64               `json:"id"`
	BookID       int64               `json:"book_id"`
	ChapterID    int64               `json:"chapter_id"`
	ScanItemIDs  []int64             `json:"scan_item_ids"`
	Status       SetStatus           `json:"status"`
	Questions    []ExtractedQuestion `json:"questions,omitempty"`
	TotalCount   int                 `json:"total_count"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty"`
}

type SolutionSet struct {
	ID           int64               `json:"id"`
	BookID       int64               `json:"book_id"`
	ChapterID    int64               `json:"chapter_id"`
	ScanItemIDs  []int64             `json:"scan_item_ids"`
	Status       SetStatus           `json:"status"`
	Solutions    []ExtractedSolution `json:"solutions,omitempty"`
	TotalCount   int                 `json:"total_count"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty"`
}

type ExtractRequest struct {
	BookID      int64   `json:"book_id"`
	ChapterID   int64   `json:"chapter_id"`
	ScanItemIDs []int64 `json:"scan_item_ids"`
}

package models

import "time"

// LessonItem is a merged question+solution record, the atomic unit of a
// lesson. HasSolution is derived during matching, never stored as input.
type LessonItem struct {
	ID             int64    `json:"id,omitempty"`
	LessonID       int64    `json:"lesson_id,omitempty"`
	Position       int      `json:"position"`
	QuestionLabel  string   `json:"question_label"`
	Text           string   `json:"text"`
	Choices        []string `json:"choices"`
	HasSolution    bool     `json:"has_solution"`
	AnswerKey      string   `json:"answer_key,omitempty"`
	WorkedSolution string   `json:"worked_solution,omitempty"`
	Explanation    string   `json:"explanation,omitempty"`
	MongoRef       string   `json:"mongo_ref,omitempty"`
}

type Lesson struct {
	ID             int64        `json:"id"`
	BookID         int64        `json:"book_id"`
	ChapterID      int64        `json:"chapter_id"`
	Title          string       `json:"title"`
	LessonType     string       `json:"lesson_type"`
	Position       int          `json:"position"`
	QuestionSetID  int64        `json:"question_set_id"`
	SolutionSetID  int64        `json:"solution_set_id"`
	MatchedCount   int          `json:"matched_count"`
	UnmatchedCount int          `json:"unmatched_count"`
	MongoRef       string       `json:"mongo_ref"`
	Items          []LessonItem `json:"items,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

type PrepareLessonRequest struct {
	Title         string `json:"title"`
	LessonType    string `json:"lesson_type"`
	QuestionSetID int64  `json:"question_set_id"`
	SolutionSetID int64  `json:"solution_set_id"`
}

type PrepareLessonResponse struct {
	Lesson    Lesson `json:"lesson"`
	Matched   int    `json:"matched"`
	Unmatched int    `json:"unmatched"`
	Message   string `json:"message"`
}

package models

import "time"

type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Subject   string    `json:"subject"`
	MongoRef  string    `json:"mongo_ref"`
	CreatedAt time.Time `json:"created_at"`
}

type Chapter struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"book_id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type ScanKind string

const (
	ScanKindExercise ScanKind = "exercise_page"
	ScanKindSolution ScanKind = "solution_page"
)

var ValidScanKinds = map[ScanKind]bool{
	ScanKindExercise: true,
	ScanKindSolution: true,
}

// ScanItem is one scanned page (or page range) of a chapter, already OCR'd
// into text by the upload pipeline. Position orders pages within a chapter.
type ScanItem struct {
	ID        int64     `json:"id"`
	ChapterID int64     `json:"chapter_id"`
	Position  int       `json:"position"`
	Kind      ScanKind  `json:"kind"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateBookRequest struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Subject string `json:"subject"`
}

type CreateChapterRequest struct {
	BookID int64  `json:"book_id"`
	Number int    `json:"number"`
	Title  string `json:"title"`
}

type CreateScanItemRequest struct {
	ChapterID int64    `json:"chapter_id"`
	Position  int      `json:"position"`
	Kind      ScanKind `json:"kind"`
	Content   string   `json:"content"`
}

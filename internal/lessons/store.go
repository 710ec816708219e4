package lessons

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bookprep/backend/internal/models"
	"github.com/lib/pq"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateLesson persists a lesson and its items in a single transaction.
// The lesson position is assigned inside the transaction so concurrent
// preparations for the same chapter cannot race each other.
func (s *Store) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin lesson tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM lessons WHERE chapter_id = $1`,
		lesson.ChapterID,
	).Scan(&lesson.Position)
	if err != nil {
		return fmt.Errorf("next lesson position: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO lessons (book_id, chapter_id, title, lesson_type, position,
		                      question_set_id, solution_set_id, matched_count,
		                      unmatched_count, mongo_ref)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		lesson.BookID, lesson.ChapterID, lesson.Title, lesson.LessonType, lesson.Position,
		lesson.QuestionSetID, lesson.SolutionSetID, lesson.MatchedCount,
		lesson.UnmatchedCount, lesson.MongoRef,
	).Scan(&lesson.ID, &lesson.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert lesson: %w", err)
	}

	for i := range lesson.Items {
		item := &lesson.Items[i]
		item.LessonID = lesson.ID
		err = tx.QueryRowContext(ctx,
			`INSERT INTO lesson_items (lesson_id, position, question_label, text,
			                           choices, has_solution, answer_key,
			                           worked_solution, explanation, mongo_ref)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 RETURNING id`,
			lesson.ID, item.Position, item.QuestionLabel, item.Text,
			pq.StringArray(item.Choices), item.HasSolution, item.AnswerKey,
			item.WorkedSolution, item.Explanation, item.MongoRef,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert lesson item %d: %w", item.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit lesson tx: %w", err)
	}
	return nil
}

func (s *Store) GetLesson(ctx context.Context, id int64) (*models.Lesson, error) {
	var lesson models.Lesson
	err := s.db.QueryRowContext(ctx,
		`SELECT id, book_id, chapter_id, title, lesson_type, position,
		        question_set_id, solution_set_id, matched_count, unmatched_count,
		        mongo_ref, created_at
		 FROM lessons WHERE id = $1`,
		id,
	).Scan(&lesson.ID, &lesson.BookID, &lesson.ChapterID, &lesson.Title,
		&lesson.LessonType, &lesson.Position, &lesson.QuestionSetID,
		&lesson.SolutionSetID, &lesson.MatchedCount, &lesson.UnmatchedCount,
		&lesson.MongoRef, &lesson.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}

	items, err := s.getLessonItems(ctx, id)
	if err != nil {
		return nil, err
	}
	lesson.Items = items
	return &lesson, nil
}

func (s *Store) getLessonItems(ctx context.Context, lessonID int64) ([]models.LessonItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lesson_id, position, question_label, text, choices,
		        has_solution, answer_key, worked_solution, explanation, mongo_ref
		 FROM lesson_items WHERE lesson_id = $1 ORDER BY position ASC`,
		lessonID)
	if err != nil {
		return nil, fmt.Errorf("get lesson items: %w", err)
	}
	defer rows.Close()

	var items []models.LessonItem
	for rows.Next() {
		var it models.LessonItem
		var choices pq.StringArray
		if err := rows.Scan(&it.ID, &it.LessonID, &it.Position, &it.QuestionLabel,
			&it.Text, &choices, &it.HasSolution, &it.AnswerKey,
			&it.WorkedSolution, &it.Explanation, &it.MongoRef); err != nil {
			return nil, fmt.Errorf("scan lesson item: %w", err)
		}
		it.Choices = choices
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) ListLessons(ctx context.Context, chapterID int64) ([]models.Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, book_id, chapter_id, title, lesson_type, position,
		        question_set_id, solution_set_id, matched_count, unmatched_count,
		        mongo_ref, created_at
		 FROM lessons WHERE chapter_id = $1 ORDER BY position ASC`,
		chapterID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	var lessons []models.Lesson
	for rows.Next() {
		var lesson models.Lesson
		if err := rows.Scan(&lesson.ID, &lesson.BookID, &lesson.ChapterID, &lesson.Title,
			&lesson.LessonType, &lesson.Position, &lesson.QuestionSetID,
			&lesson.SolutionSetID, &lesson.MatchedCount, &lesson.UnmatchedCount,
			&lesson.MongoRef, &lesson.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}
	return lessons, rows.Err()
}

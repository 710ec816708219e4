package extraction

import (
	"context"
	"database/sql"
	"encoding/json"
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

// ── Scan Items ──────────────────────────────────────────

func (s *Store) GetScanItemsByIDs(ctx context.Context, ids []int64) ([]models.ScanItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chapter_id, position, kind, content, created_at
		 FROM scan_items WHERE id = ANY($1)
		 ORDER BY position ASC, id ASC`,
		pq.Int64Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get scan items: %w", err)
	}
	defer rows.Close()

	var items []models.ScanItem
	for rows.Next() {
		var it models.ScanItem
		if err := rows.Scan(&it.ID, &it.ChapterID, &it.Position, &it.Kind, &it.Content, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ── Set Lifecycle ───────────────────────────────────────
//
// Both set tables share the same lifecycle columns; the table name is the
// only thing that varies, so the transition helpers take it as a parameter.
// Status only ever moves forward — a set never re-enters pending.

func (s *Store) markProcessing(table string, id int64) error {
	_, err := s.db.Exec(
		fmt.Sprintf(`UPDATE %s SET status = 'processing' WHERE id = $1 AND status = 'pending'`, table),
		id)
	return err
}

func (s *Store) failSet(table string, id int64, errMsg string) error {
	_, err := s.db.Exec(
		fmt.Sprintf(`UPDATE %s SET status = 'failed', error_message = $1, completed_at = NOW() WHERE id = $2`, table),
		errMsg, id)
	return err
}

func (s *Store) completeSet(table, payloadCol string, id int64, payload string, total int) error {
	_, err := s.db.Exec(
		fmt.Sprintf(`UPDATE %s SET status = 'completed', %s = $1::jsonb, total_count = $2, completed_at = NOW() WHERE id = $3`,
			table, payloadCol),
		payload, total, id)
	return err
}

// ── Question Sets ───────────────────────────────────────

func (s *Store) CreateQuestionSet(req models.ExtractRequest) (*models.QuestionSet, error) {
	set := models.QuestionSet{
		BookID:      req.BookID,
		ChapterID:   req.ChapterID,
		ScanItemIDs: req.ScanItemIDs,
		Status:      models.SetPending,
	}
	err := s.db.QueryRow(
		`INSERT INTO question_sets (book_id, chapter_id, scan_item_ids, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		req.BookID, req.ChapterID, pq.Int64Array(req.ScanItemIDs), models.SetPending,
	).Scan(&set.ID, &set.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create question set: %w", err)
	}
	return &set, nil
}

func (s *Store) MarkQuestionSetProcessing(id int64) error {
	return s.markProcessing("question_sets", id)
}

func (s *Store) FailQuestionSet(id int64, errMsg string) error {
	return s.failSet("question_sets", id, errMsg)
}

func (s *Store) CompleteQuestionSet(id int64, payload string, total int) error {
	return s.completeSet("question_sets", "questions", id, payload, total)
}

func (s *Store) GetQuestionSet(id int64) (*models.QuestionSet, error) {
	var set models.QuestionSet
	var itemIDs pq.Int64Array
	var payload []byte
	err := s.db.QueryRow(
		`SELECT id, book_id, chapter_id, scan_item_ids, status, questions,
		        total_count, error_message, created_at, completed_at
		 FROM question_sets WHERE id = $1`,
		id,
	).Scan(&set.ID, &set.BookID, &set.ChapterID, &itemIDs, &set.Status, &payload,
		&set.TotalCount, &set.ErrorMessage, &set.CreatedAt, &set.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("get question set: %w", err)
	}
	set.ScanItemIDs = itemIDs

	if len(payload) > 0 {
		var wrapper struct {
			Questions []models.ExtractedQuestion `json:"questions"`
		}
		if err := json.Unmarshal(payload, &wrapper); err != nil {
			return nil, fmt.Errorf("decode question set payload: %w", err)
		}
		set.Questions = wrapper.Questions
	}
	return &set, nil
}

func (s *Store) ListQuestionSets(chapterID int64, limit, offset int) ([]models.QuestionSet, error) {
	rows, err := s.db.Query(
		`SELECT id, book_id, chapter_id, scan_item_ids, status, total_count,
		        error_message, created_at, completed_at
		 FROM question_sets WHERE chapter_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		chapterID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list question sets: %w", err)
	}
	defer rows.Close()

	var sets []models.QuestionSet
	for rows.Next() {
		var set models.QuestionSet
		var itemIDs pq.Int64Array
		if err := rows.Scan(&set.ID, &set.BookID, &set.ChapterID, &itemIDs, &set.Status,
			&set.TotalCount, &set.ErrorMessage, &set.CreatedAt, &set.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan question set: %w", err)
		}
		set.ScanItemIDs = itemIDs
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

// ── Solution Sets ───────────────────────────────────────

func (s *Store) CreateSolutionSet(req models.ExtractRequest) (*models.SolutionSet, error) {
	set := models.SolutionSet{
		BookID:      req.BookID,
		ChapterID:   req.ChapterID,
		ScanItemIDs: req.ScanItemIDs,
		Status:      models.SetPending,
	}
	err := s.db.QueryRow(
		`INSERT INTO solution_sets (book_id, chapter_id, scan_item_ids, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		req.BookID, req.ChapterID, pq.Int64Array(req.ScanItemIDs), models.SetPending,
	).Scan(&set.ID, &set.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create solution set: %w", err)
	}
	return &set, nil
}

func (s *Store) MarkSolutionSetProcessing(id int64) error {
	return s.markProcessing("solution_sets", id)
}

func (s *Store) FailSolutionSet(id int64, errMsg string) error {
	return s.failSet("solution_sets", id, errMsg)
}

func (s *Store) CompleteSolutionSet(id int64, payload string, total int) error {
	return s.completeSet("solution_sets", "solutions", id, payload, total)
}

func (s *Store) GetSolutionSet(id int64) (*models.SolutionSet, error) {
	var set models.SolutionSet
	var itemIDs pq.Int64Array
	var payload []byte
	err := s.db.QueryRow(
		`SELECT id, book_id, chapter_id, scan_item_ids, status, solutions,
		        total_count, error_message, created_at, completed_at
		 FROM solution_sets WHERE id = $1`,
		id,
	).Scan(&set.ID, &set.BookID, &set.ChapterID, &itemIDs, &set.Status, &payload,
		&set.TotalCount, &set.ErrorMessage, &set.CreatedAt, &set.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("get solution set: %w", err)
	}
	set.ScanItemIDs = itemIDs

	if len(payload) > 0 {
		var wrapper struct {
			Solutions []models.ExtractedSolution `json:"solutions"`
		}
		if err := json.Unmarshal(payload, &wrapper); err != nil {
			return nil, fmt.Errorf("decode solution set payload: %w", err)
		}
		set.Solutions = wrapper.Solutions
	}
	return &set, nil
}

func (s *Store) ListSolutionSets(chapterID int64, limit, offset int) ([]models.SolutionSet, error) {
	rows, err := s.db.Query(
		`SELECT id, book_id, chapter_id, scan_item_ids, status, total_count,
		        error_message, created_at, completed_at
		 FROM solution_sets WHERE chapter_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		chapterID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list solution sets: %w", err)
	}
	defer rows.Close()

	var sets []models.SolutionSet
	for rows.Next() {
		var set models.SolutionSet
		var itemIDs pq.Int64Array
		if err := rows.Scan(&set.ID, &set.BookID, &set.ChapterID, &itemIDs, &set.Status,
			&set.TotalCount, &set.ErrorMessage, &set.CreatedAt, &set.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan solution set: %w", err)
		}
		set.ScanItemIDs = itemIDs
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

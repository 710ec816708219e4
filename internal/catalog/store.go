package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bookprep/backend/internal/models"
	"github.com/bookprep/backend/internal/objectid"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Books ───────────────────────────────────────────────

// CreateBook stamps the document store identifier at creation time. The sync
// engine treats rows without one as not yet eligible, so minting it here means
// every book is syncable from the moment it exists.
func (s *Store) CreateBook(ctx context.Context, req models.CreateBookRequest) (*models.Book, error) {
	book := models.Book{
		Title:    req.Title,
		Author:   req.Author,
		Subject:  req.Subject,
		MongoRef: objectid.New(),
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO books (title, author, subject, mongo_ref)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		book.Title, book.Author, book.Subject, book.MongoRef,
	).Scan(&book.ID, &book.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return &book, nil
}

func (s *Store) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	var book models.Book
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, author, subject, COALESCE(mongo_ref, ''), created_at
		 FROM books WHERE id = $1`,
		id,
	).Scan(&book.ID, &book.Title, &book.Author, &book.Subject, &book.MongoRef, &book.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

func (s *Store) ListBooks(ctx context.Context) ([]models.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, author, subject, COALESCE(mongo_ref, ''), created_at
		 FROM books ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		var book models.Book
		if err := rows.Scan(&book.ID, &book.Title, &book.Author, &book.Subject,
			&book.MongoRef, &book.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// ── Chapters ────────────────────────────────────────────

func (s *Store) CreateChapter(ctx context.Context, req models.CreateChapterRequest) (*models.Chapter, error) {
	chapter := models.Chapter{
		BookID: req.BookID,
		Number: req.Number,
		Title:  req.Title,
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO chapters (book_id, number, title)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		chapter.BookID, chapter.Number, chapter.Title,
	).Scan(&chapter.ID, &chapter.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create chapter: %w", err)
	}
	return &chapter, nil
}

func (s *Store) ListChapters(ctx context.Context, bookID int64) ([]models.Chapter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, book_id, number, title, created_at
		 FROM chapters WHERE book_id = $1 ORDER BY number ASC`,
		bookID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	var chapters []models.Chapter
	for rows.Next() {
		var ch models.Chapter
		if err := rows.Scan(&ch.ID, &ch.BookID, &ch.Number, &ch.Title, &ch.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		chapters = append(chapters, ch)
	}
	return chapters, rows.Err()
}

// ── Scan Items ──────────────────────────────────────────

func (s *Store) CreateScanItem(ctx context.Context, req models.CreateScanItemRequest) (*models.ScanItem, error) {
	item := models.ScanItem{
		ChapterID: req.ChapterID,
		Position:  req.Position,
		Kind:      req.Kind,
		Content:   req.Content,
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO scan_items (chapter_id, position, kind, content)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		item.ChapterID, item.Position, item.Kind, item.Content,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create scan item: %w", err)
	}
	return &item, nil
}

func (s *Store) ListScanItems(ctx context.Context, chapterID int64, kind models.ScanKind) ([]models.ScanItem, error) {
	query := `SELECT id, chapter_id, position, kind, content, created_at
	          FROM scan_items WHERE chapter_id = $1`
	args := []interface{}{chapterID}
	if kind != "" {
		query += ` AND kind = $2`
		args = append(args, kind)
	}
	query += ` ORDER BY position ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scan items: %w", err)
	}
	defer rows.Close()

	var items []models.ScanItem
	for rows.Next() {
		var it models.ScanItem
		if err := rows.Scan(&it.ID, &it.ChapterID, &it.Position, &it.Kind,
			&it.Content, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

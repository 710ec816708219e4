package mirror

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Service wires the relational source and the document-store target into
// concrete sync entities.
type Service struct {
	db  *sql.DB
	mdb *mongo.Database
}

func NewService(db *sql.DB, mdb *mongo.Database) *Service {
	return &Service{db: db, mdb: mdb}
}

// RunAll syncs every entity in dependency order: items reference exercises,
// exercises reference books, so parents always complete first. A fatal
// failure stops the sequence — children must not sync against a
// half-replicated parent set.
func (s *Service) RunAll(ctx context.Context) (map[string]*Stats, error) {
	entities := []Entity{
		s.bookEntity(),
		s.exerciseEntity(),
		s.exerciseItemEntity(),
	}

	results := make(map[string]*Stats, len(entities))
	for _, e := range entities {
		stats, err := Run(ctx, e)
		results[e.Name] = stats
		if err != nil {
			return results, fmt.Errorf("sync %s: %w", e.Name, err)
		}
	}
	return results, nil
}

// ── Source Row Types ─────────────────────────────────────

type bookRow struct {
	ID       int64
	Title    string
	Author   string
	Subject  string
	MongoRef string
}

type lessonRow struct {
	ID             int64
	BookID         int64
	ChapterID      int64
	Title          string
	LessonType     string
	Position       int
	MatchedCount   int
	UnmatchedCount int
	ItemCount      int
	MongoRef       string
}

type itemRow struct {
	ID             int64
	LessonID       int64
	Position       int
	QuestionLabel  string
	Text           string
	Choices        []string
	HasSolution    bool
	AnswerKey      string
	WorkedSolution string
	Explanation    string
	MongoRef       string
}

// ── Books ────────────────────────────────────────────────

func (s *Service) bookEntity() Entity {
	return Entity{
		Name: "books",
		FetchPage: func(ctx context.Context, limit, offset int) ([]any, error) {
			rows, err := s.db.QueryContext(ctx,
				`SELECT id, title, author, subject, COALESCE(mongo_ref, '')
				 FROM books ORDER BY id ASC LIMIT $1 OFFSET $2`,
				limit, offset)
			if err != nil {
				return nil, err
			}
			defer rows.Close()

			var page []any
			for rows.Next() {
				var b bookRow
				if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Subject, &b.MongoRef); err != nil {
					return nil, fmt.Errorf("scan book row: %w", err)
				}
				page = append(page, b)
			}
			return page, rows.Err()
		},
		Transform: transformBook,
		Upsert: func(ctx context.Context, docs []bson.M) (int, int, error) {
			return bulkUpsert(ctx, s.mdb.Collection("books"), docs)
		},
	}
}

func transformBook(row any, rc *Context) (bson.M, error) {
	b, ok := row.(bookRow)
	if !ok {
		return nil, fmt.Errorf("unexpected row type %T", row)
	}
	if b.MongoRef == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(b.MongoRef)
	if err != nil {
		return nil, fmt.Errorf("book %d: bad mongo_ref %q: %w", b.ID, b.MongoRef, err)
	}
	return bson.M{
		"_id":      oid,
		"title":    b.Title,
		"author":   b.Author,
		"subject":  b.Subject,
		"sourceId": b.ID,
	}, nil
}

// ── Exercises (lessons) ──────────────────────────────────

func (s *Service) exerciseEntity() Entity {
	return Entity{
		Name:    "exercises",
		PreSync: s.loadBookRefs,
		FetchPage: func(ctx context.Context, limit, offset int) ([]any, error) {
			rows, err := s.db.QueryContext(ctx,
				`SELECT l.id, l.book_id, l.chapter_id, l.title, l.lesson_type, l.position,
				        l.matched_count, l.unmatched_count, COALESCE(l.mongo_ref, ''),
				        (SELECT COUNT(*) FROM lesson_items li WHERE li.lesson_id = l.id)
				 FROM lessons l ORDER BY l.id ASC LIMIT $1 OFFSET $2`,
				limit, offset)
			if err != nil {
				return nil, err
			}
			defer rows.Close()

			var page []any
			for rows.Next() {
				var l lessonRow
				if err := rows.Scan(&l.ID, &l.BookID, &l.ChapterID, &l.Title, &l.LessonType,
					&l.Position, &l.MatchedCount, &l.UnmatchedCount, &l.MongoRef, &l.ItemCount); err != nil {
					return nil, fmt.Errorf("scan lesson row: %w", err)
				}
				page = append(page, l)
			}
			return page, rows.Err()
		},
		Transform: transformExercise,
		Upsert:    s.upsertExercises,
	}
}

func (s *Service) loadBookRefs(ctx context.Context, rc *Context) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mongo_ref FROM books WHERE mongo_ref IS NOT NULL AND mongo_ref <> ''`)
	if err != nil {
		return fmt.Errorf("load book refs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var ref string
		if err := rows.Scan(&id, &ref); err != nil {
			return fmt.Errorf("scan book ref: %w", err)
		}
		oid, err := primitive.ObjectIDFromHex(ref)
		if err != nil {
			log.Printf("WARN: [sync] book %d has invalid mongo_ref %q, excluded from reference map", id, ref)
			continue
		}
		rc.BookRefs[id] = Pointer{Collection: "books", ID: oid}
	}
	return rows.Err()
}

func transformExercise(row any, rc *Context) (bson.M, error) {
	l, ok := row.(lessonRow)
	if !ok {
		return nil, fmt.Errorf("unexpected row type %T", row)
	}
	if l.MongoRef == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(l.MongoRef)
	if err != nil {
		return nil, fmt.Errorf("lesson %d: bad mongo_ref %q: %w", l.ID, l.MongoRef, err)
	}

	bookPtr, ok := rc.BookRefs[l.BookID]
	if !ok {
		// Parent not replicated; skip rather than write a dangling reference.
		return nil, nil
	}

	return bson.M{
		"_id":            oid,
		"title":          l.Title,
		"order":          l.Position,
		"type":           l.LessonType,
		"book":           bookPtr,
		"chapterId":      l.ChapterID,
		"matchedCount":   l.MatchedCount,
		"unmatchedCount": l.UnmatchedCount,
		"itemCount":      l.ItemCount,
		"sourceId":       l.ID,
	}, nil
}

// upsertExercises enforces the target collection's secondary unique index on
// (order, book.id, chapterId, type) before the bulk upsert: any existing
// document that occupies the slot under a different id is removed first. The
// delete is best-effort — the upsert that follows is the authoritative write.
func (s *Service) upsertExercises(ctx context.Context, docs []bson.M) (int, int, error) {
	col := s.mdb.Collection("exercises")
	for _, d := range docs {
		filter := orderConflictFilter(d)
		if filter == nil {
			continue
		}
		if _, err := col.DeleteMany(ctx, filter); err != nil {
			log.Printf("WARN: [sync] exercises: conflict cleanup failed: %v", err)
		}
	}
	return bulkUpsert(ctx, col, docs)
}

// orderConflictFilter matches documents colliding with d on the
// (order, book, chapter, type) tuple while carrying a different id. The
// chapter component matters: lesson positions are assigned per chapter, so
// chapters of one book legitimately reuse the same order values.
func orderConflictFilter(d bson.M) bson.M {
	ptr, ok := d["book"].(Pointer)
	if !ok {
		return nil
	}
	return bson.M{
		"order":     d["order"],
		"book.id":   ptr.ID,
		"chapterId": d["chapterId"],
		"type":      d["type"],
		"_id":       bson.M{"$ne": d["_id"]},
	}
}

// ── Exercise Items (lesson items) ────────────────────────

func (s *Service) exerciseItemEntity() Entity {
	return Entity{
		Name:    "exercise_items",
		PreSync: s.loadLessonRefs,
		FetchPage: func(ctx context.Context, limit, offset int) ([]any, error) {
			rows, err := s.db.QueryContext(ctx,
				`SELECT id, lesson_id, position, question_label, text, choices, has_solution,
				        COALESCE(answer_key, ''), COALESCE(worked_solution, ''),
				        COALESCE(explanation, ''), COALESCE(mongo_ref, '')
				 FROM lesson_items ORDER BY id ASC LIMIT $1 OFFSET $2`,
				limit, offset)
			if err != nil {
				return nil, err
			}
			defer rows.Close()

			var page []any
			for rows.Next() {
				var it itemRow
				var choices pq.StringArray
				if err := rows.Scan(&it.ID, &it.LessonID, &it.Position, &it.QuestionLabel,
					&it.Text, &choices, &it.HasSolution, &it.AnswerKey,
					&it.WorkedSolution, &it.Explanation, &it.MongoRef); err != nil {
					return nil, fmt.Errorf("scan lesson item row: %w", err)
				}
				it.Choices = choices
				page = append(page, it)
			}
			return page, rows.Err()
		},
		Transform: transformExerciseItem,
		Upsert: func(ctx context.Context, docs []bson.M) (int, int, error) {
			return bulkUpsert(ctx, s.mdb.Collection("exercise_items"), docs)
		},
	}
}

func (s *Service) loadLessonRefs(ctx context.Context, rc *Context) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mongo_ref FROM lessons WHERE mongo_ref IS NOT NULL AND mongo_ref <> ''`)
	if err != nil {
		return fmt.Errorf("load lesson refs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var ref string
		if err := rows.Scan(&id, &ref); err != nil {
			return fmt.Errorf("scan lesson ref: %w", err)
		}
		oid, err := primitive.ObjectIDFromHex(ref)
		if err != nil {
			log.Printf("WARN: [sync] lesson %d has invalid mongo_ref %q, excluded from reference map", id, ref)
			continue
		}
		rc.LessonRefs[id] = oid
	}
	return rows.Err()
}

func transformExerciseItem(row any, rc *Context) (bson.M, error) {
	it, ok := row.(itemRow)
	if !ok {
		return nil, fmt.Errorf("unexpected row type %T", row)
	}
	if it.MongoRef == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(it.MongoRef)
	if err != nil {
		return nil, fmt.Errorf("lesson item %d: bad mongo_ref %q: %w", it.ID, it.MongoRef, err)
	}

	lessonOID, ok := rc.LessonRefs[it.LessonID]
	if !ok {
		return nil, nil
	}

	choices := it.Choices
	if choices == nil {
		choices = []string{}
	}

	doc := bson.M{
		"_id":         oid,
		"exercise":    Pointer{Collection: "exercises", ID: lessonOID},
		"order":       it.Position,
		"label":       it.QuestionLabel,
		"text":        it.Text,
		"choices":     choices,
		"hasSolution": it.HasSolution,
		"sourceId":    it.ID,
	}
	if it.AnswerKey != "" {
		doc["answerKey"] = it.AnswerKey
	}
	if it.WorkedSolution != "" {
		doc["workedSolution"] = it.WorkedSolution
	}
	if it.Explanation != "" {
		doc["explanation"] = it.Explanation
	}
	return doc, nil
}

// ── Target Writes ────────────────────────────────────────

// bulkUpsert replaces-or-inserts each document under its _id. Replacing an
// unchanged document reports zero modifications, which is what makes re-runs
// over an unchanged source read as no-ops in the stats.
func bulkUpsert(ctx context.Context, col *mongo.Collection, docs []bson.M) (int, int, error) {
	writes := make([]mongo.WriteModel, 0, len(docs))
	for _, d := range docs {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": d["_id"]}).
			SetReplacement(d).
			SetUpsert(true))
	}

	res, err := col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, 0, err
	}
	return int(res.UpsertedCount), int(res.ModifiedCount), nil
}

// EnsureIndexes creates the target-side indexes the reader application
// depends on, including the secondary unique constraint on exercises.
func (s *Service) EnsureIndexes(ctx context.Context) error {
	_, err := s.mdb.Collection("exercises").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "order", Value: 1},
			{Key: "book.id", Value: 1},
			{Key: "chapterId", Value: 1},
			{Key: "type", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("order_book_chapter_type_unique"),
	})
	if err != nil {
		return fmt.Errorf("create exercises index: %w", err)
	}

	_, err = s.mdb.Collection("exercise_items").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "exercise.id", Value: 1}, {Key: "order", Value: 1}},
		Options: options.Index().SetName("exercise_order"),
	})
	if err != nil {
		return fmt.Errorf("create exercise_items index: %w", err)
	}
	return nil
}

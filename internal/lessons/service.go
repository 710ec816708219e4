package lessons

import (
	"context"
	"fmt"
	"log"

	"github.com/bookprep/backend/internal/extraction"
	"github.com/bookprep/backend/internal/models"
	"github.com/bookprep/backend/internal/objectid"
)

type Service struct {
	store *Store
	sets  *extraction.Store
}

func NewService(store *Store, sets *extraction.Store) *Service {
	return &Service{store: store, sets: sets}
}

// PrepareLesson matches a completed question set against a completed solution
// set and persists the result as a lesson. Every row gets a document store
// identifier at creation so the sync engine never has to mint one later.
func (s *Service) PrepareLesson(ctx context.Context, req models.PrepareLessonRequest) (*models.PrepareLessonResponse, error) {
	qset, err := s.sets.GetQuestionSet(req.QuestionSetID)
	if err != nil {
		return nil, fmt.Errorf("question set %d: %w", req.QuestionSetID, err)
	}
	sset, err := s.sets.GetSolutionSet(req.SolutionSetID)
	if err != nil {
		return nil, fmt.Errorf("solution set %d: %w", req.SolutionSetID, err)
	}

	if qset.Status != models.SetCompleted {
		return nil, fmt.Errorf("question set %d is %s, not completed", qset.ID, qset.Status)
	}
	if sset.Status != models.SetCompleted {
		return nil, fmt.Errorf("solution set %d is %s, not completed", sset.ID, sset.Status)
	}
	if qset.BookID != sset.BookID || qset.ChapterID != sset.ChapterID {
		return nil, fmt.Errorf("question set %d and solution set %d belong to different chapters", qset.ID, sset.ID)
	}
	if len(qset.Questions) == 0 {
		return nil, fmt.Errorf("question set %d has no questions", qset.ID)
	}

	result := MergeQuestionSolutions(qset.Questions, sset.Solutions)
	for i := range result.Items {
		result.Items[i].MongoRef = objectid.New()
	}

	title := req.Title
	if title == "" {
		title = fmt.Sprintf("Lesson from question set %d", qset.ID)
	}
	lessonType := req.LessonType
	if lessonType == "" {
		lessonType = "exercise"
	}

	lesson := models.Lesson{
		BookID:         qset.BookID,
		ChapterID:      qset.ChapterID,
		Title:          title,
		LessonType:     lessonType,
		QuestionSetID:  qset.ID,
		SolutionSetID:  sset.ID,
		MatchedCount:   result.Matched,
		UnmatchedCount: result.Unmatched,
		MongoRef:       objectid.New(),
		Items:          result.Items,
	}
	if err := s.store.CreateLesson(ctx, &lesson); err != nil {
		return nil, err
	}

	log.Printf("[lessons] prepared lesson %d: %d items, %d matched, %d unmatched",
		lesson.ID, len(lesson.Items), result.Matched, result.Unmatched)

	return &models.PrepareLessonResponse{
		Lesson:    lesson,
		Matched:   result.Matched,
		Unmatched: result.Unmatched,
		Message: fmt.Sprintf("Prepared %d items (%d with solutions, %d without)",
			len(lesson.Items), result.Matched, result.Unmatched),
	}, nil
}

func (s *Service) GetLesson(ctx context.Context, id int64) (*models.Lesson, error) {
	return s.store.GetLesson(ctx, id)
}

func (s *Service) ListLessons(ctx context.Context, chapterID int64) ([]models.Lesson, error) {
	return s.store.ListLessons(ctx, chapterID)
}

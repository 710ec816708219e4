package extraction

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bookprep/backend/internal/models"
	"github.com/bookprep/backend/internal/provider"
	"github.com/tidwall/sjson"
)

// ErrNoScanItems is returned when an extraction request names scan items
// that do not exist.
var ErrNoScanItems = errors.New("no scan items found")

const questionInstructions = `You are given OCR text from scanned exercise pages of a textbook.
Extract every exercise question. Respond with a single JSON object of the form
{"questions": [{"question_label": "...", "text": "...", "choices": ["...", ...]}]}.
Use the label printed in the book. Omit choices for open-ended questions.
Do not include any text outside the JSON object.`

const solutionInstructions = `You are given OCR text from scanned answer pages of a textbook.
Extract every solution. Respond with a single JSON object of the form
{"solutions": [{"question_label": "...", "answer_key": "...", "worked_solution": "...", "explanation": "..."}]}.
Use the label printed in the book. Leave fields empty when the page does not provide them.
Do not include any text outside the JSON object.`

type Service struct {
	store        *Store
	client       provider.Client
	pollInterval time.Duration
	maxPolls     int
}

func NewService(store *Store, client provider.Client) *Service {
	return &Service{
		store:        store,
		client:       client,
		pollInterval: 2 * time.Second,
		maxPolls:     150,
	}
}

// ExtractQuestions runs the full question pipeline for one batch of scanned
// pages: create the set, send the page text to the provider, parse the
// response, and persist the outcome. The set ends up completed or failed.
func (s *Service) ExtractQuestions(ctx context.Context, req models.ExtractRequest) (*models.QuestionSet, error) {
	content, err := s.loadContent(ctx, req.ScanItemIDs)
	if err != nil {
		return nil, err
	}

	set, err := s.store.CreateQuestionSet(req)
	if err != nil {
		return nil, err
	}

	text, err := s.runProvider(ctx, content, questionInstructions, func() error {
		return s.store.MarkQuestionSetProcessing(set.ID)
	})
	if err != nil {
		s.fail("question", set.ID, err, s.store.FailQuestionSet)
		return nil, err
	}

	questions := ExtractQuestions(text)
	payload, err := sjson.Set("{}", "questions", questions)
	if err != nil {
		s.fail("question", set.ID, err, s.store.FailQuestionSet)
		return nil, fmt.Errorf("encode question payload: %w", err)
	}
	if err := s.complete("question", set.ID, payload, len(questions),
		s.store.CompleteQuestionSet, s.store.FailQuestionSet); err != nil {
		return nil, err
	}
	log.Printf("[extraction] question set %d completed with %d questions", set.ID, len(questions))
	return s.store.GetQuestionSet(set.ID)
}

// ExtractSolutions is the solution-page counterpart of ExtractQuestions.
func (s *Service) ExtractSolutions(ctx context.Context, req models.ExtractRequest) (*models.SolutionSet, error) {
	content, err := s.loadContent(ctx, req.ScanItemIDs)
	if err != nil {
		return nil, err
	}

	set, err := s.store.CreateSolutionSet(req)
	if err != nil {
		return nil, err
	}

	text, err := s.runProvider(ctx, content, solutionInstructions, func() error {
		return s.store.MarkSolutionSetProcessing(set.ID)
	})
	if err != nil {
		s.fail("solution", set.ID, err, s.store.FailSolutionSet)
		return nil, err
	}

	solutions := ExtractSolutions(text)
	payload, err := sjson.Set("{}", "solutions", solutions)
	if err != nil {
		s.fail("solution", set.ID, err, s.store.FailSolutionSet)
		return nil, fmt.Errorf("encode solution payload: %w", err)
	}
	if err := s.complete("solution", set.ID, payload, len(solutions),
		s.store.CompleteSolutionSet, s.store.FailSolutionSet); err != nil {
		return nil, err
	}
	log.Printf("[extraction] solution set %d completed with %d solutions", set.ID, len(solutions))
	return s.store.GetSolutionSet(set.ID)
}

func (s *Service) loadContent(ctx context.Context, ids []int64) (string, error) {
	if len(ids) == 0 {
		return "", fmt.Errorf("%w: no scan item ids specified", ErrNoScanItems)
	}
	items, err := s.store.GetScanItemsByIDs(ctx, ids)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", fmt.Errorf("%w for ids %v", ErrNoScanItems, ids)
	}

	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.Content
	}
	return strings.Join(parts, "\n\n"), nil
}

func (s *Service) runProvider(ctx context.Context, content, instructions string, markProcessing func() error) (string, error) {
	if err := markProcessing(); err != nil {
		return "", fmt.Errorf("mark set processing: %w", err)
	}
	jobID, err := s.client.Submit(ctx, content, instructions)
	if err != nil {
		return "", fmt.Errorf("submit extraction job: %w", err)
	}
	text, err := provider.WaitForResult(ctx, s.client, jobID, s.pollInterval, s.maxPolls)
	if err != nil {
		return "", fmt.Errorf("extraction job %s: %w", jobID, err)
	}
	return text, nil
}

// complete persists the final payload. A persistence failure here still
// moves the set to failed — a set must never be stranded in processing.
func (s *Service) complete(kind string, id int64, payload string, total int,
	persist func(int64, string, int) error, markFailed func(int64, string) error) error {
	if err := persist(id, payload, total); err != nil {
		err = fmt.Errorf("complete %s set %d: %w", kind, id, err)
		s.fail(kind, id, err, markFailed)
		return err
	}
	return nil
}

func (s *Service) fail(kind string, id int64, cause error, markFailed func(int64, string) error) {
	log.Printf("WARN: [extraction] %s set %d failed: %v", kind, id, cause)
	if err := markFailed(id, cause.Error()); err != nil {
		log.Printf("WARN: [extraction] could not mark %s set %d failed: %v", kind, id, err)
	}
}

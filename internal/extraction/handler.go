package extraction

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/bookprep/backend/internal/models"
	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ExtractQuestions(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeExtractRequest(w, r)
	if !ok {
		return
	}

	set, err := h.service.ExtractQuestions(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrNoScanItems) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Question extraction failed: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, set)
}

func (h *Handler) ExtractSolutions(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeExtractRequest(w, r)
	if !ok {
		return
	}

	set, err := h.service.ExtractSolutions(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrNoScanItems) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Solution extraction failed: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, set)
}

func (h *Handler) GetQuestionSet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid set ID"})
		return
	}

	set, err := h.service.store.GetQuestionSet(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question set not found"})
		return
	}

	writeJSON(w, http.StatusOK, set)
}

func (h *Handler) GetSolutionSet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid set ID"})
		return
	}

	set, err := h.service.store.GetSolutionSet(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Solution set not found"})
		return
	}

	writeJSON(w, http.StatusOK, set)
}

func (h *Handler) ListQuestionSets(w http.ResponseWriter, r *http.Request) {
	chapterID, limit, offset, ok := listParams(w, r)
	if !ok {
		return
	}

	sets, err := h.service.store.ListQuestionSets(chapterID, limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list question sets"})
		return
	}
	if sets == nil {
		sets = []models.QuestionSet{}
	}

	writeJSON(w, http.StatusOK, sets)
}

func (h *Handler) ListSolutionSets(w http.ResponseWriter, r *http.Request) {
	chapterID, limit, offset, ok := listParams(w, r)
	if !ok {
		return
	}

	sets, err := h.service.store.ListSolutionSets(chapterID, limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list solution sets"})
		return
	}
	if sets == nil {
		sets = []models.SolutionSet{}
	}

	writeJSON(w, http.StatusOK, sets)
}

func decodeExtractRequest(w http.ResponseWriter, r *http.Request) (models.ExtractRequest, bool) {
	var req models.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return req, false
	}
	if req.BookID <= 0 || req.ChapterID <= 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "book_id and chapter_id are required"})
		return req, false
	}
	if len(req.ScanItemIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "scan_item_ids is required"})
		return req, false
	}
	return req, true
}

func listParams(w http.ResponseWriter, r *http.Request) (chapterID int64, limit, offset int, ok bool) {
	query := r.URL.Query()

	chapterID, err := strconv.ParseInt(query.Get("chapter_id"), 10, 64)
	if err != nil || chapterID <= 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "chapter_id query parameter is required"})
		return 0, 0, 0, false
	}

	limit = 20
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	offset = 0
	if o, err := strconv.Atoi(query.Get("offset")); err == nil && o > 0 {
		offset = o
	}
	return chapterID, limit, offset, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

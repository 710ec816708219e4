package lessons

import (
	"encoding/json"
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

func (h *Handler) PrepareLesson(w http.ResponseWriter, r *http.Request) {
	var req models.PrepareLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.QuestionSetID <= 0 || req.SolutionSetID <= 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "question_set_id and solution_set_id are required"})
		return
	}

	resp, err := h.service.PrepareLesson(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Error: "Lesson preparation failed: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetLesson(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid lesson ID"})
		return
	}

	lesson, err := h.service.GetLesson(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Lesson not found"})
		return
	}

	writeJSON(w, http.StatusOK, lesson)
}

func (h *Handler) ListLessons(w http.ResponseWriter, r *http.Request) {
	chapterID, err := strconv.ParseInt(r.URL.Query().Get("chapter_id"), 10, 64)
	if err != nil || chapterID <= 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "chapter_id query parameter is required"})
		return
	}

	lessons, err := h.service.ListLessons(r.Context(), chapterID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list lessons"})
		return
	}
	if lessons == nil {
		lessons = []models.Lesson{}
	}

	writeJSON(w, http.StatusOK, lessons)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

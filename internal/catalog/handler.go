package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bookprep/backend/internal/models"
	"github.com/gorilla/mux"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "title is required"})
		return
	}

	book, err := h.store.CreateBook(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create book"})
		return
	}

	writeJSON(w, http.StatusCreated, book)
}

func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid book ID"})
		return
	}

	book, err := h.store.GetBook(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Book not found"})
		return
	}

	writeJSON(w, http.StatusOK, book)
}

func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.store.ListBooks(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list books"})
		return
	}
	if books == nil {
		books = []models.Book{}
	}

	writeJSON(w, http.StatusOK, books)
}

func (h *Handler) CreateChapter(w http.ResponseWriter, r *http.Request) {
	var req models.CreateChapterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.BookID <= 0 || req.Number <= 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "book_id and number are required"})
		return
	}

	chapter, err := h.store.CreateChapter(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create chapter"})
		return
	}

	writeJSON(w, http.StatusCreated, chapter)
}

func (h *Handler) ListChapters(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(r.URL.Query().Get("book_id"), 10, 64)
	if err != nil || bookID <= 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "book_id query parameter is required"})
		return
	}

	chapters, err := h.store.ListChapters(r.Context(), bookID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list chapters"})
		return
	}
	if chapters == nil {
		chapters = []models.Chapter{}
	}

	writeJSON(w, http.StatusOK, chapters)
}

func (h *Handler) CreateScanItem(w http.ResponseWriter, r *http.Request) {
	var req models.CreateScanItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.ChapterID <= 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "chapter_id is required"})
		return
	}
	if !models.ValidScanKinds[req.Kind] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "kind must be 'exercise_page' or 'solution_page'"})
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "content is required"})
		return
	}

	item, err := h.store.CreateScanItem(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create scan item"})
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) ListScanItems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	chapterID, err := strconv.ParseInt(query.Get("chapter_id"), 10, 64)
	if err != nil || chapterID <= 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "chapter_id query parameter is required"})
		return
	}

	kind := models.ScanKind(query.Get("kind"))
	if kind != "" && !models.ValidScanKinds[kind] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid kind"})
		return
	}

	items, err := h.store.ListScanItems(r.Context(), chapterID, kind)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list scan items"})
		return
	}
	if items == nil {
		items = []models.ScanItem{}
	}

	writeJSON(w, http.StatusOK, items)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Package server exposes a bookstore.Service over the JSON/HTTP contract spoken by
// package httpproxy.
//
//	GET  /stock/books          list every stock book
//	POST /stock/books          {"books": [...]} add new books
//	POST /stock/copies         {"copies": [...]} add copies of existing books
//	GET  /editor-picks?n=N     up to N editor picks
//	POST /buy                  {"copies": [...]} buy books, all or nothing
//
// Service rejections are answered with a 4xx status and an error envelope:
//
//	{"error": {"code": "insufficient_stock", "message": "..."}}
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/certainbookstore/bookbench/internal/bookstore"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

type booksPayload struct {
	Books []bookstore.StockBook `json:"books"`
}

type copiesPayload struct {
	Copies []bookstore.BookCopy `json:"copies"`
}

type picksPayload struct {
	Books []bookstore.Book `json:"books"`
}

type errorBody struct {
	Code    bookstore.Code `json:"code"`
	Message string         `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type handlers struct {
	svc bookstore.Service
}

// New returns a router serving svc. Requests are logged at debug level to logger.
func New(svc bookstore.Service, logger zerolog.Logger) http.Handler {
	h := &handlers{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/stock", func(r chi.Router) {
		r.Get("/books", h.handleGetBooks)
		r.Post("/books", h.handleAddBooks)
		r.Post("/copies", h.handleAddCopies)
	})
	r.Get("/editor-picks", h.handleEditorPicks)
	r.Post("/buy", h.handleBuy)
	return r
}

func (h *handlers) handleGetBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.GetBooks(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if books == nil {
		books = []bookstore.StockBook{}
	}
	respondJSON(w, http.StatusOK, booksPayload{Books: books})
}

func (h *handlers) handleAddBooks(w http.ResponseWriter, r *http.Request) {
	var req booksPayload
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.AddBooks(r.Context(), req.Books); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handleAddCopies(w http.ResponseWriter, r *http.Request) {
	var req copiesPayload
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.AddCopies(r.Context(), req.Copies); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handleEditorPicks(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil {
		respondServiceError(w, bookstore.Errorf(bookstore.CodeInvalidRequest, "query parameter n must be an integer"))
		return
	}
	books, err := h.svc.GetEditorPicks(r.Context(), n)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if books == nil {
		books = []bookstore.Book{}
	}
	respondJSON(w, http.StatusOK, picksPayload{Books: books})
}

func (h *handlers) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req copiesPayload
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.BuyBooks(r.Context(), req.Copies); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondServiceError(w, bookstore.Errorf(bookstore.CodeInvalidRequest, "malformed body: %v", err))
		return false
	}
	return true
}

// StatusFor maps a bookstore error code to its HTTP status.
func StatusFor(code bookstore.Code) int {
	switch code {
	case bookstore.CodeInvalidISBN, bookstore.CodeInvalidQuantity, bookstore.CodeInvalidRequest:
		return http.StatusBadRequest
	case bookstore.CodeUnknownISBN:
		return http.StatusNotFound
	case bookstore.CodeDuplicateISBN, bookstore.CodeInsufficientStock:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(w http.ResponseWriter, err error) {
	var svcErr *bookstore.Error
	if !errors.As(err, &svcErr) {
		svcErr = &bookstore.Error{Code: bookstore.CodeInternal, Message: err.Error()}
	}
	respondJSON(w, StatusFor(svcErr.Code), errorEnvelope{Error: errorBody{Code: svcErr.Code, Message: svcErr.Message}})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("latency", time.Since(start)).
				Msg("request")
		})
	}
}

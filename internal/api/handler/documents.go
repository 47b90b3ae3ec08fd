package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docintake/internal/common"
	"docintake/internal/models"
	"docintake/internal/services"
)

// Submitter is the write-path surface the handler needs.
type Submitter interface {
	Submit(ctx context.Context, input services.SubmitInput) (*services.SubmitOutput, error)
}

// Query is the read-path surface the handler needs.
type Query interface {
	Status(ctx context.Context, documentID string) (*models.StatusView, error)
	Results(ctx context.Context, documentID string) (*models.ResultView, error)
	ListRecent(ctx context.Context, limit int) ([]models.JobSummary, error)
}

// DocumentHandler exposes the upload/status/results/listing endpoints.
type DocumentHandler struct {
	submissions Submitter
	queries     Query
	maxUpload   int64
	listLimit   int
}

func NewDocumentHandler(submissions Submitter, queries Query, maxUpload int64, listLimit int) *DocumentHandler {
	return &DocumentHandler{
		submissions: submissions,
		queries:     queries,
		maxUpload:   maxUpload,
		listLimit:   listLimit,
	}
}

func (h *DocumentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/upload", h.Upload)
	r.Get("/status/{documentID}", h.Status)
	r.Get("/results/{documentID}", h.Results)
	r.Get("/documents", h.ListDocuments)
}

// Upload accepts a multipart file, stores it and triggers processing.
// The request body is capped before any parsing happens.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			common.RespondWithError(w, http.StatusRequestEntityTooLarge, "uploaded file is too large")
			return
		}
		common.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "no file selected")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	out, err := h.submissions.Submit(r.Context(), services.SubmitInput{
		Filename:     header.Filename,
		DocumentType: r.FormValue("document_type"),
		Data:         data,
	})
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	common.RespondWithJSON(w, http.StatusOK, models.UploadResponse{
		Success:         true,
		DocumentID:      out.DocumentID,
		ExecutionHandle: out.ExecutionHandle,
		Message:         "Document uploaded and processing started",
	})
}

// Status reports the job's current state. An absent record is a normal
// outcome served as 200 with status not_found.
func (h *DocumentHandler) Status(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")
	view, err := h.queries.Status(r.Context(), documentID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

// Results serves the flattened final result, or 404 while it is absent.
func (h *DocumentHandler) Results(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")
	view, err := h.queries.Results(r.Context(), documentID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			common.RespondWithJSON(w, http.StatusNotFound, map[string]string{
				"document_id": documentID,
				"error":       "results not found or processing not completed",
			})
			return
		}
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

// ListDocuments serves recent jobs, newest upload first.
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.queries.ListRecent(r.Context(), h.listLimit)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if summaries == nil {
		summaries = []models.JobSummary{}
	}
	common.RespondWithJSON(w, http.StatusOK, models.DocumentsResponse{Documents: summaries})
}

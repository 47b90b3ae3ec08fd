package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"docintake/internal/common"
	"docintake/internal/identity"
	"docintake/internal/models"
	"docintake/internal/store"
	"docintake/internal/trigger"
)

// DefaultDocumentType is applied when the caller does not tag the upload.
const DefaultDocumentType = "general"

// BlobStore is the slice of the blob gateway the orchestrator needs.
type BlobStore interface {
	Store(ctx context.Context, key string, data []byte, metadata map[string]string) error
}

// JobRecords is the slice of the job record store the services need.
type JobRecords interface {
	Seed(ctx context.Context, job *models.Job) error
	MarkFailed(ctx context.Context, documentID, details string) error
	Get(ctx context.Context, documentID string) (*models.Job, error)
	ListRecent(ctx context.Context, limit int) ([]models.Job, error)
}

// ExecutionTrigger starts the downstream pipeline run for a job.
type ExecutionTrigger interface {
	Start(ctx context.Context, executionName string, input models.WorkflowInput) (string, error)
}

type SubmissionConfig struct {
	Bucket       string
	OriginPrefix string
}

// SubmissionService is the write path: it validates the upload, assigns
// the job identity, stores the blob, seeds the job record and triggers
// exactly one workflow execution. Storage strictly precedes triggering,
// so the pipeline can never be started against a missing object.
type SubmissionService struct {
	blobs   BlobStore
	records JobRecords
	trigger ExecutionTrigger
	config  SubmissionConfig
}

func NewSubmissionService(blobs BlobStore, records JobRecords, executionTrigger ExecutionTrigger, config SubmissionConfig) *SubmissionService {
	return &SubmissionService{
		blobs:   blobs,
		records: records,
		trigger: executionTrigger,
		config:  config,
	}
}

// SubmitInput is one upload as received by the HTTP layer.
type SubmitInput struct {
	Filename     string
	DocumentType string
	Data         []byte
}

// SubmitOutput identifies the accepted job and its execution handle.
type SubmitOutput struct {
	DocumentID      string
	ExecutionHandle string
}

// Submit runs the submission path: validate, generate identity, store
// blob, seed record, trigger execution. A validation failure has no side
// effects. A storage failure aborts before any execution is triggered. A
// trigger failure leaves the blob in place and marks the job failed.
func (s *SubmissionService) Submit(ctx context.Context, input SubmitInput) (*SubmitOutput, error) {
	if len(input.Data) == 0 {
		return nil, fmt.Errorf("%w: no file selected", common.ErrValidation)
	}
	if strings.TrimSpace(input.Filename) == "" {
		return nil, fmt.Errorf("%w: no file selected", common.ErrValidation)
	}
	documentType := input.DocumentType
	if documentType == "" {
		documentType = DefaultDocumentType
	}

	documentID := identity.NewJobID(s.config.OriginPrefix)
	logCtx := slog.With("documentId", documentID, "documentType", documentType)

	pageCount := pdfPageCount(logCtx, input.Filename, input.Data)

	key := store.ObjectKey(documentID, input.Filename)
	metadata := map[string]string{
		"document_type":     documentType,
		"original_filename": store.SanitizeFilename(input.Filename),
		"upload_source":     "web_ui",
	}
	if err := s.blobs.Store(ctx, key, input.Data, metadata); err != nil {
		logCtx.Error("Blob store write failed.", "key", key, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	logCtx.Info("Stored raw upload.", "key", key, "bytes", len(input.Data))

	now := time.Now().UTC()
	job := &models.Job{
		DocumentID:       documentID,
		OriginalFilename: store.SanitizeFilename(input.Filename),
		SourceBucket:     s.config.Bucket,
		SourceKey:        key,
		Status:           models.StatusPending,
		UploadTimestamp:  now,
		UpdatedTimestamp: now,
		Metadata: models.JobMetadata{
			DocumentType: documentType,
			PageCount:    pageCount,
		},
	}
	if err := s.records.Seed(ctx, job); err != nil {
		logCtx.Error("Failed to seed job record.", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	workflowInput := models.WorkflowInput{
		DocumentID:   documentID,
		SourceBucket: s.config.Bucket,
		SourceKey:    key,
		DocumentType: documentType,
	}
	handle, err := s.trigger.Start(ctx, trigger.ExecutionName(documentID), workflowInput)
	if err != nil {
		logCtx.Error("Failed to trigger workflow execution.", "error", err)
		if markErr := s.records.MarkFailed(ctx, documentID, err.Error()); markErr != nil {
			logCtx.Error("Failed to mark job failed after trigger error.", "error", markErr)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrTrigger, err)
	}

	logCtx.Info("Hand-off to workflow complete.", "executionHandle", handle)
	return &SubmitOutput{DocumentID: documentID, ExecutionHandle: handle}, nil
}

// pdfPageCount is a best-effort peek at uploads with a .pdf extension so
// the seeded record carries a page count before the pipeline reports one.
// Files pdfcpu cannot parse (scans misnamed as .pdf and the like) are
// still accepted; the pipeline is the authority on document contents.
func pdfPageCount(logCtx *slog.Logger, filename string, data []byte) int {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return 0
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	count, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		logCtx.Warn("Could not read page count from PDF upload.", "error", err)
		return 0
	}
	return count
}

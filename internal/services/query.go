package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"docintake/internal/common"
	"docintake/internal/models"
)

// ResultReader is the slice of the result store the query service needs.
type ResultReader interface {
	Final(ctx context.Context, documentID string) (*models.ExtractionResult, error)
}

// QueryService is the read path. It races freely with the pipeline's
// writes, so every response shape is normalized: absent records become a
// synthetic not_found status, absent fields become explicit defaults.
type QueryService struct {
	records JobRecords
	results ResultReader
}

func NewQueryService(records JobRecords, results ResultReader) *QueryService {
	return &QueryService{records: records, results: results}
}

// Status reports the current state of a job. A job with no record yet is
// an expected state, reported as not_found with zero-valued fields rather
// than an error.
func (s *QueryService) Status(ctx context.Context, documentID string) (*models.StatusView, error) {
	job, err := s.records.Get(ctx, documentID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &models.StatusView{
				DocumentID: documentID,
				Status:     models.StatusNotFound,
			}, nil
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	view := &models.StatusView{
		DocumentID:       documentID,
		Status:           job.Status,
		ConfidenceScore:  job.Metadata.FinalConfidenceScore,
		ProcessingTime:   job.TotalProcessingTimeMs,
		DocumentType:     job.Metadata.DocumentType,
		UpdatedTimestamp: formatTimestamp(job.UpdatedTimestamp),
		HasResults:       job.Status == models.StatusCompleted,
	}
	if view.Status == "" {
		view.Status = "unknown"
	}
	if view.DocumentType == "" {
		view.DocumentType = "unknown"
	}
	return view, nil
}

// Results returns the flattened final result for a job. While the
// pipeline has not completed (or the job never existed), the error is
// common.ErrNotFound, distinct from a backend failure.
func (s *QueryService) Results(ctx context.Context, documentID string) (*models.ResultView, error) {
	result, err := s.results.Final(ctx, documentID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	view := &models.ResultView{
		DocumentID:      documentID,
		RawText:         result.RawText,
		Entities:        result.Entities,
		Tables:          result.TableContent,
		Forms:           result.FormFields,
		ConfidenceScore: result.ConfidenceScore,
		DocumentType:    result.DocumentType,
		PageCount:       result.PageCount,
		HasTables:       result.HasTables,
		HasForms:        result.HasForms,
		HasSignatures:   result.HasSignatures,
	}
	if view.Entities == nil {
		view.Entities = []models.Entity{}
	}
	if view.Forms == nil {
		view.Forms = map[string]string{}
	}
	if view.DocumentType == "" {
		view.DocumentType = "unknown"
	}
	return view, nil
}

// ListRecent returns up to limit job summaries, newest upload first.
func (s *QueryService) ListRecent(ctx context.Context, limit int) ([]models.JobSummary, error) {
	jobs, err := s.records.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].UploadTimestamp.After(jobs[j].UploadTimestamp)
	})

	summaries := make([]models.JobSummary, 0, len(jobs))
	for _, job := range jobs {
		summaries = append(summaries, models.JobSummary{
			DocumentID:      job.DocumentID,
			Status:          job.Status,
			UploadTimestamp: formatTimestamp(job.UploadTimestamp),
			ConfidenceScore: job.Metadata.FinalConfidenceScore,
			DocumentType:    job.Metadata.DocumentType,
		})
	}
	return summaries, nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

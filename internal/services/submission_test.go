package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docintake/internal/common"
	"docintake/internal/models"
)

type fakeBlobStore struct {
	keys     []string
	metadata map[string]string
	failWith error
}

func (f *fakeBlobStore) Store(_ context.Context, key string, _ []byte, metadata map[string]string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.keys = append(f.keys, key)
	f.metadata = metadata
	return nil
}

type fakeJobRecords struct {
	seeded  []*models.Job
	failed  map[string]string
	jobs    map[string]*models.Job
	listed  []models.Job
	seedErr error
	getErr  error
	listErr error
}

func newFakeJobRecords() *fakeJobRecords {
	return &fakeJobRecords{failed: map[string]string{}, jobs: map[string]*models.Job{}}
}

func (f *fakeJobRecords) Seed(_ context.Context, job *models.Job) error {
	if f.seedErr != nil {
		return f.seedErr
	}
	f.seeded = append(f.seeded, job)
	f.jobs[job.DocumentID] = job
	return nil
}

func (f *fakeJobRecords) MarkFailed(_ context.Context, documentID, details string) error {
	f.failed[documentID] = details
	return nil
}

func (f *fakeJobRecords) Get(_ context.Context, documentID string) (*models.Job, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	job, ok := f.jobs[documentID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return job, nil
}

func (f *fakeJobRecords) ListRecent(_ context.Context, limit int) ([]models.Job, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.listed) > limit {
		return f.listed[:limit], nil
	}
	return f.listed, nil
}

type fakeTrigger struct {
	started  []string
	failWith error
}

func (f *fakeTrigger) Start(_ context.Context, executionName string, _ models.WorkflowInput) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	for _, name := range f.started {
		// Mirrors the backend's create-if-absent rejection.
		if name == executionName {
			return "", common.ErrDuplicateExecution
		}
	}
	f.started = append(f.started, executionName)
	return "executions/" + executionName, nil
}

func newSubmissionService(blobs *fakeBlobStore, records *fakeJobRecords, tr *fakeTrigger) *SubmissionService {
	return NewSubmissionService(blobs, records, tr, SubmissionConfig{
		Bucket:       "raw-docs",
		OriginPrefix: "web",
	})
}

func TestSubmitHappyPath(t *testing.T) {
	blobs := &fakeBlobStore{}
	records := newFakeJobRecords()
	tr := &fakeTrigger{}
	svc := newSubmissionService(blobs, records, tr)

	out, err := svc.Submit(context.Background(), SubmitInput{
		Filename:     "a b.pdf",
		DocumentType: "invoice",
		Data:         []byte("0123456789"),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.DocumentID == "" || !strings.HasPrefix(out.DocumentID, "web-") {
		t.Errorf("document id %q missing origin prefix", out.DocumentID)
	}
	if out.ExecutionHandle == "" {
		t.Errorf("expected a non-empty execution handle")
	}
	if len(blobs.keys) != 1 {
		t.Fatalf("expected exactly one blob write, got %d", len(blobs.keys))
	}
	if !strings.Contains(blobs.keys[0], "a-b.pdf") {
		t.Errorf("blob key %q does not carry the sanitized filename", blobs.keys[0])
	}
	if strings.Contains(blobs.keys[0], " ") {
		t.Errorf("blob key %q contains a space", blobs.keys[0])
	}
	if blobs.metadata["document_type"] != "invoice" {
		t.Errorf("blob metadata document_type = %q", blobs.metadata["document_type"])
	}
	if blobs.metadata["upload_source"] != "web_ui" {
		t.Errorf("blob metadata upload_source = %q", blobs.metadata["upload_source"])
	}
	if len(tr.started) != 1 {
		t.Fatalf("expected exactly one triggered execution, got %d", len(tr.started))
	}
	if len(records.seeded) != 1 {
		t.Fatalf("expected one seeded job record, got %d", len(records.seeded))
	}
	seeded := records.seeded[0]
	if seeded.Status != models.StatusPending {
		t.Errorf("seeded status = %q, want pending", seeded.Status)
	}
	if seeded.Metadata.DocumentType != "invoice" {
		t.Errorf("seeded document type = %q", seeded.Metadata.DocumentType)
	}
	if seeded.SourceBucket != "raw-docs" || seeded.SourceKey != blobs.keys[0] {
		t.Errorf("seeded blob location %q/%q does not match written key", seeded.SourceBucket, seeded.SourceKey)
	}
}

func TestSubmitGeneratesUniqueIdentities(t *testing.T) {
	svc := newSubmissionService(&fakeBlobStore{}, newFakeJobRecords(), &fakeTrigger{})

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		out, err := svc.Submit(context.Background(), SubmitInput{Filename: "doc.txt", Data: []byte("x")})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if seen[out.DocumentID] {
			t.Fatalf("duplicate document id %q", out.DocumentID)
		}
		seen[out.DocumentID] = true
	}
}

func TestSubmitRejectsMissingFile(t *testing.T) {
	blobs := &fakeBlobStore{}
	tr := &fakeTrigger{}
	svc := newSubmissionService(blobs, newFakeJobRecords(), tr)

	_, err := svc.Submit(context.Background(), SubmitInput{Filename: "doc.pdf"})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(blobs.keys) != 0 {
		t.Errorf("validation failure must not write to the blob store")
	}
	if len(tr.started) != 0 {
		t.Errorf("validation failure must not trigger an execution")
	}
}

func TestSubmitRejectsEmptyFilename(t *testing.T) {
	svc := newSubmissionService(&fakeBlobStore{}, newFakeJobRecords(), &fakeTrigger{})

	_, err := svc.Submit(context.Background(), SubmitInput{Filename: "   ", Data: []byte("x")})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitStorageFailurePreventsTrigger(t *testing.T) {
	blobs := &fakeBlobStore{failWith: errors.New("bucket unavailable")}
	tr := &fakeTrigger{}
	svc := newSubmissionService(blobs, newFakeJobRecords(), tr)

	_, err := svc.Submit(context.Background(), SubmitInput{Filename: "doc.txt", Data: []byte("x")})
	if !errors.Is(err, common.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if len(tr.started) != 0 {
		t.Fatalf("trigger must never run when the blob write failed")
	}
}

func TestSubmitTriggerFailureMarksJobFailed(t *testing.T) {
	records := newFakeJobRecords()
	tr := &fakeTrigger{failWith: errors.New("workflow backend unreachable")}
	svc := newSubmissionService(&fakeBlobStore{}, records, tr)

	_, err := svc.Submit(context.Background(), SubmitInput{Filename: "doc.txt", Data: []byte("x")})
	if !errors.Is(err, common.ErrTrigger) {
		t.Fatalf("expected trigger error, got %v", err)
	}
	if len(records.seeded) != 1 {
		t.Fatalf("expected the job record to have been seeded before the trigger")
	}
	if _, ok := records.failed[records.seeded[0].DocumentID]; !ok {
		t.Errorf("expected the job to be marked failed after a trigger error")
	}
}

func TestSubmitDuplicateExecutionSurfacesTriggerError(t *testing.T) {
	tr := &fakeTrigger{failWith: common.ErrDuplicateExecution}
	svc := newSubmissionService(&fakeBlobStore{}, newFakeJobRecords(), tr)

	_, err := svc.Submit(context.Background(), SubmitInput{Filename: "doc.txt", Data: []byte("x")})
	if !errors.Is(err, common.ErrTrigger) {
		t.Fatalf("expected trigger error class, got %v", err)
	}
	if !errors.Is(err, common.ErrDuplicateExecution) {
		t.Fatalf("expected duplicate execution to stay detectable, got %v", err)
	}
}

func TestSubmitDefaultsDocumentType(t *testing.T) {
	records := newFakeJobRecords()
	svc := newSubmissionService(&fakeBlobStore{}, records, &fakeTrigger{})

	if _, err := svc.Submit(context.Background(), SubmitInput{Filename: "doc.txt", Data: []byte("x")}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := records.seeded[0].Metadata.DocumentType; got != DefaultDocumentType {
		t.Errorf("document type = %q, want %q", got, DefaultDocumentType)
	}
}

func TestSubmitAcceptsUnparseablePDF(t *testing.T) {
	// A 10-byte body with a .pdf name is not a readable PDF; the upload
	// must still be accepted with a zero page count.
	records := newFakeJobRecords()
	svc := newSubmissionService(&fakeBlobStore{}, records, &fakeTrigger{})

	out, err := svc.Submit(context.Background(), SubmitInput{Filename: "a b.pdf", Data: []byte("not-a-pdf!")})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.DocumentID == "" {
		t.Fatalf("expected a document id")
	}
	if records.seeded[0].Metadata.PageCount != 0 {
		t.Errorf("page count = %d, want 0 for unreadable PDF", records.seeded[0].Metadata.PageCount)
	}
}

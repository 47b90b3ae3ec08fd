package models

import "time"

// Job statuses as written by the processing pipeline. NotFound is never
// stored; the query layer synthesizes it for absent records.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusNotFound   = "not_found"
)

// FinalResultKind is the extraction type under which the pipeline stores
// the aggregate result for a finished job.
const FinalResultKind = "final"

// Job is the master record for one document-processing request in
// Firestore. The gateway seeds it at submission time; from then on the
// external pipeline owns status, timestamps and metadata. The document ID
// in Firestore is the job identity itself.
type Job struct {
	DocumentID            string      `firestore:"documentId"`
	OriginalFilename      string      `firestore:"originalFilename,omitempty"`
	SourceBucket          string      `firestore:"sourceBucket,omitempty"`
	SourceKey             string      `firestore:"sourceKey,omitempty"`
	Status                string      `firestore:"status,omitempty"`
	ErrorDetails          string      `firestore:"errorDetails,omitempty"`
	WorkflowExecutionID   string      `firestore:"workflowExecutionId,omitempty"` // For traceability
	UploadTimestamp       time.Time   `firestore:"uploadTimestamp,omitempty"`
	UpdatedTimestamp      time.Time   `firestore:"updatedTimestamp,omitempty"`
	TotalProcessingTimeMs int64       `firestore:"totalProcessingTimeMs,omitempty"`
	Metadata              JobMetadata `firestore:"metadata,omitempty"`
}

// JobMetadata is the nested summary block the pipeline fills in as it
// progresses. Every field may be absent on a partially written record.
type JobMetadata struct {
	DocumentType         string  `firestore:"documentType,omitempty"`
	FinalConfidenceScore float64 `firestore:"finalConfidenceScore,omitempty"`
	PageCount            int     `firestore:"pageCount,omitempty"`
}

// ExtractionResult is the terminal output of a completed job, stored in
// its own collection keyed by (job identity, extraction kind). Written at
// most once per kind, and only by the pipeline.
type ExtractionResult struct {
	DocumentID      string            `firestore:"documentId"`
	ExtractionType  string            `firestore:"extractionType"`
	RawText         string            `firestore:"rawText,omitempty"`
	Entities        []Entity          `firestore:"entities,omitempty"`
	TableContent    string            `firestore:"tableContent,omitempty"`
	FormFields      map[string]string `firestore:"formFields,omitempty"`
	ConfidenceScore float64           `firestore:"confidenceScore,omitempty"`
	DocumentType    string            `firestore:"documentType,omitempty"`
	PageCount       int               `firestore:"pageCount,omitempty"`
	HasTables       bool              `firestore:"hasTables,omitempty"`
	HasForms        bool              `firestore:"hasForms,omitempty"`
	HasSignatures   bool              `firestore:"hasSignatures,omitempty"`
}

// Entity is one detected entity in the extracted text.
type Entity struct {
	Type       string  `firestore:"type" json:"type"`
	Text       string  `firestore:"text" json:"text"`
	Confidence float64 `firestore:"confidence" json:"confidence"`
}

// ExecutionRecord marks that a workflow execution has been started for a
// job. Its Firestore document ID is the derived execution name, so
// creating it is a create-if-absent guard against double triggering.
type ExecutionRecord struct {
	DocumentID            string    `firestore:"documentId"`
	WorkflowExecutionName string    `firestore:"workflowExecutionName,omitempty"`
	CreatedAt             time.Time `firestore:"createdAt"`
}

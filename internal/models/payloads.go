package models

// These structs define the JSON payloads exchanged with HTTP callers and
// with the Cloud Workflow that runs the processing pipeline.

// WorkflowInput is the argument passed to the workflow execution. It tells
// the pipeline which job it is running and where the raw upload lives.
type WorkflowInput struct {
	DocumentID   string `json:"document_id"`
	SourceBucket string `json:"source_bucket"`
	SourceKey    string `json:"source_key"`
	DocumentType string `json:"document_type"`
}

// UploadResponse is returned by POST /upload on success.
type UploadResponse struct {
	Success         bool   `json:"success"`
	DocumentID      string `json:"document_id"`
	ExecutionHandle string `json:"execution_handle"`
	Message         string `json:"message"`
}

// StatusView is the stable shape served by GET /status/{id}. Missing
// numeric fields on a partially written record show up as zero values,
// never as an error.
type StatusView struct {
	DocumentID       string  `json:"document_id"`
	Status           string  `json:"status"`
	ConfidenceScore  float64 `json:"confidence_score"`
	ProcessingTime   int64   `json:"processing_time"`
	DocumentType     string  `json:"document_type"`
	UpdatedTimestamp string  `json:"updated_timestamp"`
	HasResults       bool    `json:"has_results"`
}

// ResultView is the flattened shape served by GET /results/{id}.
// Optional collections are always present: entities default to an empty
// list and forms to an empty map.
type ResultView struct {
	DocumentID      string            `json:"document_id"`
	RawText         string            `json:"raw_text"`
	Entities        []Entity          `json:"entities"`
	Tables          string            `json:"tables"`
	Forms           map[string]string `json:"forms"`
	ConfidenceScore float64           `json:"confidence_score"`
	DocumentType    string            `json:"document_type"`
	PageCount       int               `json:"page_count"`
	HasTables       bool              `json:"has_tables"`
	HasForms        bool              `json:"has_forms"`
	HasSignatures   bool              `json:"has_signatures"`
}

// JobSummary is one row of the GET /documents listing.
type JobSummary struct {
	DocumentID      string  `json:"document_id"`
	Status          string  `json:"status"`
	UploadTimestamp string  `json:"upload_timestamp"`
	ConfidenceScore float64 `json:"confidence_score"`
	DocumentType    string  `json:"document_type"`
}

// DocumentsResponse wraps the listing.
type DocumentsResponse struct {
	Documents []JobSummary `json:"documents"`
}

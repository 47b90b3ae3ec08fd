package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"docintake/internal/common"
	"docintake/internal/models"
)

// JobRecordStore reads and seeds job records in Firestore. The document
// ID is the job identity. After seeding, the external pipeline owns every
// mutation except the failed-trigger mark.
type JobRecordStore struct {
	client     *firestore.Client
	collection string
}

func NewJobRecordStore(client *firestore.Client, collection string) *JobRecordStore {
	return &JobRecordStore{client: client, collection: collection}
}

// Seed creates the initial pending record for a freshly submitted job.
func (s *JobRecordStore) Seed(ctx context.Context, job *models.Job) error {
	if _, err := s.client.Collection(s.collection).Doc(job.DocumentID).Create(ctx, job); err != nil {
		return fmt.Errorf("failed to seed job record %s: %w", job.DocumentID, err)
	}
	return nil
}

// MarkFailed records a terminal failure on the job, used when the
// execution trigger fails after the upload already landed.
func (s *JobRecordStore) MarkFailed(ctx context.Context, documentID, details string) error {
	updates := []firestore.Update{
		{Path: "status", Value: models.StatusFailed},
		{Path: "errorDetails", Value: details},
		{Path: "updatedTimestamp", Value: time.Now().UTC()},
	}
	if _, err := s.client.Collection(s.collection).Doc(documentID).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to mark job %s failed: %w", documentID, err)
	}
	return nil
}

// Get returns the job record, or common.ErrNotFound if the pipeline has
// no record for this identity.
func (s *JobRecordStore) Get(ctx context.Context, documentID string) (*models.Job, error) {
	snap, err := s.client.Collection(s.collection).Doc(documentID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("job %s: %w", documentID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job record %s: %w", documentID, err)
	}

	var job models.Job
	if err := snap.DataTo(&job); err != nil {
		return nil, fmt.Errorf("failed to decode job record %s: %w", documentID, err)
	}
	job.DocumentID = documentID
	return &job, nil
}

// ListRecent returns up to limit jobs that have an upload timestamp,
// newest first. The ordering and the cap are pushed into the Firestore
// query so the cost stays bounded by limit, not by the collection size.
func (s *JobRecordStore) ListRecent(ctx context.Context, limit int) ([]models.Job, error) {
	iter := s.client.Collection(s.collection).
		Where("uploadTimestamp", ">", time.Time{}).
		OrderBy("uploadTimestamp", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var jobs []models.Job
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list recent jobs: %w", err)
		}
		var job models.Job
		if err := snap.DataTo(&job); err != nil {
			return nil, fmt.Errorf("failed to decode job record %s: %w", snap.Ref.ID, err)
		}
		job.DocumentID = snap.Ref.ID
		jobs = append(jobs, job)
	}
	return jobs, nil
}

package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"docintake/internal/common"
	"docintake/internal/models"
)

// ResultStore reads extraction results from Firestore. Results are
// written once per (job, kind) by the pipeline; this layer only reads.
type ResultStore struct {
	client     *firestore.Client
	collection string
}

func NewResultStore(client *firestore.Client, collection string) *ResultStore {
	return &ResultStore{client: client, collection: collection}
}

// Final returns the aggregate result for a finished job, or
// common.ErrNotFound while the pipeline has not written it yet.
func (s *ResultStore) Final(ctx context.Context, documentID string) (*models.ExtractionResult, error) {
	snap, err := s.client.Collection(s.collection).Doc(resultDocID(documentID, models.FinalResultKind)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("results for %s: %w", documentID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get results for %s: %w", documentID, err)
	}

	var result models.ExtractionResult
	if err := snap.DataTo(&result); err != nil {
		return nil, fmt.Errorf("failed to decode results for %s: %w", documentID, err)
	}
	result.DocumentID = documentID
	return &result, nil
}

// resultDocID composes the document ID for one (job, kind) result.
func resultDocID(documentID, kind string) string {
	return fmt.Sprintf("%s__%s", documentID, kind)
}

package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gosimple/slug"

	"docintake/internal/common"
)

// uploadPrefix is the logical directory under which raw uploads land in
// the bucket. Sanitized keys can never escape it.
const uploadPrefix = "web-uploads"

const writeTimeout = 50 * time.Second

// BlobGateway stores uploaded payloads in a Cloud Storage bucket and
// reads them back. It is a thin wrapper: no retries, no caching; a failed
// write is surfaced to the caller as a submission failure.
type BlobGateway struct {
	client *storage.Client
	bucket string
}

func NewBlobGateway(client *storage.Client, bucket string) *BlobGateway {
	return &BlobGateway{client: client, bucket: bucket}
}

// Bucket returns the bucket name this gateway writes to.
func (g *BlobGateway) Bucket() string {
	return g.bucket
}

// Store writes data under key with the given object metadata. Keys are
// expected to come from ObjectKey, so an overwrite can only happen if two
// submissions shared a job identity, which identity generation rules out.
func (g *BlobGateway) Store(ctx context.Context, key string, data []byte, metadata map[string]string) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	w := g.client.Bucket(g.bucket).Object(key).NewWriter(writeCtx)
	w.Metadata = metadata
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize write of object %s: %w", key, err)
	}
	return nil
}

// Fetch reads the object back. Absent objects map to common.ErrNotFound.
func (g *BlobGateway) Fetch(ctx context.Context, key string) ([]byte, error) {
	r, err := g.client.Bucket(g.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("object %s: %w", key, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open object %s: %w", key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

// ObjectKey derives the storage key for a job's raw upload from the job
// identity and the sanitized caller-supplied filename.
func ObjectKey(documentID, filename string) string {
	return fmt.Sprintf("%s/%s_%s", uploadPrefix, documentID, SanitizeFilename(filename))
}

// SanitizeFilename reduces a caller-supplied filename to a form that is
// safe to embed in a storage key: the base name only, slugified, with the
// extension preserved. Path separators and unsafe characters are gone
// after this, so the key cannot escape its prefix.
func SanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := path.Ext(base)
	stem := slug.Make(strings.TrimSuffix(base, ext))
	if stem == "" {
		stem = "upload"
	}
	if s := slug.Make(ext); s != "" {
		return stem + "." + s
	}
	return stem
}

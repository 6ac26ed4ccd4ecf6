// Package upload relays a single multipart file field to object storage.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"kudos/internal/metrics"
)

// FieldName is the only multipart field the relay persists.
const FieldName = "profile-pic"

var (
	// ErrMalformedBody marks request-parsing failures (client errors).
	ErrMalformedBody = errors.New("malformed multipart body")
	// ErrStorage marks failures of the object-storage collaborator.
	ErrStorage = errors.New("object storage failure")
)

// ObjectStore stores bytes under a key and returns a locator for them.
// Implementations are bound to a bucket at construction.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Relay buffers the FieldName part of a multipart body and hands it to an
// ObjectStore.
type Relay struct {
	store     ObjectStore
	newKey    func(filename string) string
	chunkSize int
}

// NewRelay returns a relay writing to store.
func NewRelay(store ObjectStore) *Relay {
	return &Relay{
		store:     store,
		newKey:    NewKey,
		chunkSize: DefaultChunkSize,
	}
}

// UploadRequest reads the multipart body of r. A body that is not multipart
// is reported as ErrMalformedBody.
func (rl *Relay) UploadRequest(r *http.Request) (string, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	return rl.Upload(r.Context(), mr)
}

// Upload stores the first FieldName part that carries a filename and
// returns its locator. Other parts are skipped. When no such part exists the
// result is "" with a nil error.
func (rl *Relay) Upload(ctx context.Context, mr *multipart.Reader) (string, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}

		if part.FormName() != FieldName || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		locator, err := rl.persist(ctx, part)
		_ = part.Close()
		return locator, err
	}
}

func (rl *Relay) persist(ctx context.Context, part *multipart.Part) (string, error) {
	data, err := Drain(ReadChunks(part, rl.chunkSize))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}

	contentType := part.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	key := rl.newKey(part.FileName())
	locator, err := rl.store.Put(ctx, key, data, contentType)
	if err != nil {
		metrics.AvatarUploads.WithLabelValues("storage_error").Inc()
		return "", fmt.Errorf("%w: put %s: %w", ErrStorage, key, err)
	}

	metrics.AvatarUploads.WithLabelValues("stored").Inc()
	metrics.AvatarUploadBytes.Observe(float64(len(data)))
	return locator, nil
}

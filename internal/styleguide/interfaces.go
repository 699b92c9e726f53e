package styleguide

import (
	"context"
	"errors"
	"io"
	"time"
)

// Service-level errors reported to API clients.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("job not found")
	ErrNotReady          = errors.New("job not completed")
	ErrMissingResult     = errors.New("job completed without result")
	ErrInvalidTransition = errors.New("invalid job transition")
	ErrAlreadyExists     = errors.New("job already exists")
	ErrUnavailable       = errors.New("store unavailable")
	ErrQueueClosed       = errors.New("queue closed")
)

// JobStore persists jobs keyed by id. Update must merge the partial update
// into the stored record atomically per id and refresh the TTL.
type JobStore interface {
	Create(ctx context.Context, job Job) error
	Update(ctx context.Context, jobID string, update JobUpdate) (Job, error)
	Get(ctx context.Context, jobID string) (Job, error)
	Delete(ctx context.Context, jobID string) error
}

// BlobStore writes rendered documents and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// BlobReader reads documents back by URI.
type BlobReader interface {
	GetObject(ctx context.Context, uri string) (io.ReadCloser, error)
}

// Publisher pushes job completion events to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Renderer turns a StyleGuideData record into a document byte stream.
type Renderer interface {
	Render(data StyleGuideData) ([]byte, error)
	ContentType() string
	Extension() string
}

// Queue provides enqueue/dequeue semantics for analysis jobs.
type Queue interface {
	Enqueue(ctx context.Context, item QueueItem) error
	Dequeue(ctx context.Context) (QueueItem, error)
}

// Hasher computes digests for document naming.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job IDs.
type IDGenerator interface {
	NewID() (string, error)
}

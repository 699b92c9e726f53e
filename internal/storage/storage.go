// Package storage holds the naming and routing shared by the document stores.
// Concrete backends live in the memory, local and gcs subpackages.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/JakeFAU/style-guide-generator/internal/styleguide"
)

// DocumentPath names a rendered document: documents/<jobID>/<hash>.<ext>.
func DocumentPath(jobID, hash, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("documents/%s/%s.%s", jobID, hash, ext)
}

// Router dispatches GetObject calls to the reader registered for the URI
// scheme, so documents written before a backend change stay readable.
type Router struct {
	readers map[string]styleguide.BlobReader
}

// NewRouter returns an empty Router.
func NewRouter() *Router {
	return &Router{readers: make(map[string]styleguide.BlobReader)}
}

// Register binds a scheme prefix such as "gs://" to reader.
func (r *Router) Register(scheme string, reader styleguide.BlobReader) *Router {
	if reader != nil {
		r.readers[scheme] = reader
	}
	return r
}

// GetObject implements styleguide.BlobReader.
func (r *Router) GetObject(ctx context.Context, uri string) (io.ReadCloser, error) {
	for scheme, reader := range r.readers {
		if strings.HasPrefix(uri, scheme) {
			return reader.GetObject(ctx, uri)
		}
	}
	return nil, fmt.Errorf("%w: no reader for %q", styleguide.ErrNotFound, uri)
}

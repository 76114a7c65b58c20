package interfaces

import (
	"context"

	"github.com/ternarybob/rogo/internal/models"
)

// Loader turns a stored upload into an ordered sequence of text segments.
// Loading fails softly: on any read or parse error the loader returns an
// empty sequence, and callers treat that as a failed load rather than an
// empty document. Unrecognized media types fall back to plain-text decoding.
type Loader interface {
	Load(ctx context.Context, filePath, mediaType string) []models.Segment
}

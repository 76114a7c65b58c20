package interfaces

import (
	"context"
)

// IngestService drives documents through the ingestion state machine:
// pending -> processing -> completed | error. Ingestion runs on background
// workers decoupled from the upload request.
type IngestService interface {
	// Schedule enqueues ingestion for a document and returns a completion
	// channel that receives the terminal result exactly once (nil on
	// completed, the failure on error) and is then closed. The status
	// transition is applied before the channel fires, so awaiting it is a
	// deterministic completion signal.
	Schedule(documentID string) (<-chan error, error)

	// Start launches the worker pool and resumes any tasks left in the
	// durable queue by a previous run.
	Start(ctx context.Context) error

	// Stop drains the workers.
	Stop()
}

// ReconcileService periodically checks that index presence and completed
// status agree, re-ingesting documents whose index is missing and removing
// indices that no longer belong to any completed document.
type ReconcileService interface {
	Start() error
	Stop()
	// RunOnce performs a single sweep, returning the number of repairs made.
	RunOnce(ctx context.Context) (int, error)
}

// -----------------------------------------------------------------------
// Reconcile Service - Scheduled sweep keeping records and indices aligned
// -----------------------------------------------------------------------

package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/interfaces"
	"github.com/ternarybob/rogo/internal/models"
)

// Reconciler repairs drift between the record store and the index files:
// a completed document without an index is re-ingested, and an index file
// whose document is gone or no longer completed is removed.
type Reconciler struct {
	schedule  string
	documents interfaces.DocumentStorage
	index     interfaces.IndexStorage
	ingest    interfaces.IngestService
	logger    arbor.ILogger
	cron      *cron.Cron
}

// Compile-time interface assertion
var _ interfaces.ReconcileService = (*Reconciler)(nil)

// NewReconciler creates a reconcile service with the given cron schedule
// (six-field spec with seconds)
func NewReconciler(
	schedule string,
	documents interfaces.DocumentStorage,
	index interfaces.IndexStorage,
	ingest interfaces.IngestService,
	logger arbor.ILogger,
) *Reconciler {
	return &Reconciler{
		schedule:  schedule,
		documents: documents,
		index:     index,
		ingest:    ingest,
		logger:    logger,
	}
}

// Start registers the sweep on the cron scheduler
func (r *Reconciler) Start() error {
	r.cron = cron.New(cron.WithSeconds())
	_, err := r.cron.AddFunc(r.schedule, func() {
		repaired, err := r.RunOnce(context.Background())
		if err != nil {
			r.logger.Error().Err(err).Msg("Reconciliation sweep failed")
			return
		}
		if repaired > 0 {
			r.logger.Info().Int("repairs", repaired).Msg("Reconciliation sweep made repairs")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reconcile schedule '%s': %w", r.schedule, err)
	}

	r.cron.Start()
	r.logger.Info().Str("schedule", r.schedule).Msg("Reconcile service started")
	return nil
}

// Stop halts the scheduler, waiting for a running sweep to finish
func (r *Reconciler) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

// RunOnce performs a single sweep and returns the number of repairs made
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	docs, err := r.documents.List()
	if err != nil {
		return 0, fmt.Errorf("failed to list documents: %w", err)
	}

	completed := make(map[string]bool, len(docs))
	repaired := 0

	for _, doc := range docs {
		if doc.Status != models.StatusCompleted {
			continue
		}
		completed[doc.ID] = true

		if r.index.Exists(doc.ID) {
			continue
		}

		r.logger.Warn().
			Str("document_id", doc.ID).
			Str("name", doc.Name).
			Msg("Completed document has no index, re-ingesting")
		if _, err := r.ingest.Schedule(doc.ID); err != nil {
			if errors.Is(err, interfaces.ErrDocumentNotFound) {
				continue
			}
			return repaired, fmt.Errorf("failed to re-ingest document %s: %w", doc.ID, err)
		}
		repaired++
	}

	// Orphaned index files no longer backed by a completed document
	indexIDs, err := r.index.ListDocumentIDs()
	if err != nil {
		return repaired, fmt.Errorf("failed to list indices: %w", err)
	}
	for _, id := range indexIDs {
		if completed[id] {
			continue
		}

		// Documents mid-processing own their index-in-progress
		if doc, err := r.documents.Get(id); err == nil && doc.Status == models.StatusProcessing {
			continue
		}

		r.logger.Warn().Str("document_id", id).Msg("Removing orphaned index")
		if err := r.index.Delete(id); err != nil {
			return repaired, fmt.Errorf("failed to delete orphaned index %s: %w", id, err)
		}
		repaired++
	}

	return repaired, nil
}

// -----------------------------------------------------------------------
// Ingest Service - Background workers driving the document pipeline
// load -> chunk -> embed -> index
// -----------------------------------------------------------------------

package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/common"
	"github.com/ternarybob/rogo/internal/interfaces"
	"github.com/ternarybob/rogo/internal/models"
	"github.com/ternarybob/rogo/internal/services/chunker"
)

// Service drives documents through pending -> processing -> completed |
// error on a pool of queue workers. Tasks live in the durable queue, so
// work enqueued before a crash resumes on the next start.
type Service struct {
	config    *common.Config
	documents interfaces.DocumentStorage
	settings  interfaces.SettingsStorage
	queue     interfaces.QueueStorage
	index     interfaces.IndexStorage
	loader    interfaces.Loader
	chunker   *chunker.Chunker
	embedder  interfaces.EmbeddingService
	events    interfaces.EventService
	logger    arbor.ILogger

	embedTimeout time.Duration
	pollInterval time.Duration
	maxAttempts  int

	mu      sync.Mutex
	waiters map[string][]chan error

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// Compile-time interface assertion
var _ interfaces.IngestService = (*Service)(nil)

// NewService creates the ingest service
func NewService(
	cfg *common.Config,
	documents interfaces.DocumentStorage,
	settings interfaces.SettingsStorage,
	queue interfaces.QueueStorage,
	index interfaces.IndexStorage,
	loader interfaces.Loader,
	embedder interfaces.EmbeddingService,
	events interfaces.EventService,
	logger arbor.ILogger,
) (*Service, error) {
	embedTimeout, err := time.ParseDuration(cfg.Ingest.EmbedTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid embed timeout '%s': %w", cfg.Ingest.EmbedTimeout, err)
	}
	pollInterval, err := time.ParseDuration(cfg.Ingest.PollInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid poll interval '%s': %w", cfg.Ingest.PollInterval, err)
	}
	maxAttempts := cfg.Ingest.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	return &Service{
		config:       cfg,
		documents:    documents,
		settings:     settings,
		queue:        queue,
		index:        index,
		loader:       loader,
		chunker:      chunker.NewChunker(logger),
		embedder:     embedder,
		events:       events,
		logger:       logger,
		embedTimeout: embedTimeout,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
		waiters:      make(map[string][]chan error),
	}, nil
}

// Schedule enqueues ingestion for the document and returns a channel that
// fires once with the terminal result. The terminal status is persisted
// before the channel fires.
func (s *Service) Schedule(documentID string) (<-chan error, error) {
	if _, err := s.documents.Get(documentID); err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	s.mu.Lock()
	s.waiters[documentID] = append(s.waiters[documentID], done)
	s.mu.Unlock()

	task := &interfaces.IngestTask{
		ID:         common.NewTaskID(),
		DocumentID: documentID,
		EnqueuedAt: time.Now(),
	}
	if err := s.queue.Enqueue(task); err != nil {
		s.removeWaiter(documentID, done)
		return nil, fmt.Errorf("failed to enqueue ingestion: %w", err)
	}

	s.logger.Debug().
		Str("document_id", documentID).
		Str("task_id", task.ID).
		Msg("Scheduled document for ingestion")

	return done, nil
}

// Start launches the worker pool. Tasks already in the durable queue are
// picked up without rescheduling.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("ingest service already started")
	}
	s.started = true
	s.mu.Unlock()

	workerCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	concurrency := s.config.Ingest.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	for i := 0; i < concurrency; i++ {
		s.wg.Add(1)
		go s.worker(workerCtx, i)
	}

	pending, err := s.queue.Len()
	if err == nil && pending > 0 {
		s.logger.Info().Int("pending", pending).Msg("Resuming queued ingestion tasks")
	}

	s.logger.Info().Int("workers", concurrency).Msg("Ingest service started")
	return nil
}

// Stop drains the workers
func (s *Service) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.started = false
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.logger.Info().Msg("Ingest service stopped")
}

func (s *Service) worker(ctx context.Context, id int) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				task, err := s.queue.Dequeue()
				if err != nil {
					s.logger.Error().Err(err).Int("worker", id).Msg("Failed to dequeue ingestion task")
					break
				}
				if task == nil {
					break
				}
				s.runTask(ctx, task)

				if ctx.Err() != nil {
					return
				}
			}
		}
	}
}

// runTask executes one ingestion attempt. Transient failures re-enqueue
// the task until maxAttempts is reached; only the final failure moves the
// document to error.
func (s *Service) runTask(ctx context.Context, task *interfaces.IngestTask) {
	err := s.process(ctx, task.DocumentID)
	if err == nil {
		s.finish(task.DocumentID, nil)
		return
	}

	if ctx.Err() != nil {
		// Shutdown mid-task: requeue untouched so the next run resumes it
		if qErr := s.queue.Enqueue(task); qErr != nil {
			s.logger.Error().Err(qErr).Str("document_id", task.DocumentID).Msg("Failed to requeue task on shutdown")
		}
		return
	}

	task.Attempts++
	if task.Attempts < s.maxAttempts && retryable(err) {
		s.logger.Warn().
			Err(err).
			Str("document_id", task.DocumentID).
			Int("attempt", task.Attempts).
			Msg("Ingestion attempt failed, retrying")
		if qErr := s.queue.Enqueue(task); qErr != nil {
			s.logger.Error().Err(qErr).Str("document_id", task.DocumentID).Msg("Failed to requeue task")
			s.fail(task.DocumentID, err)
		}
		return
	}

	s.fail(task.DocumentID, err)
}

// process runs the pipeline for one document
func (s *Service) process(ctx context.Context, documentID string) error {
	doc, err := s.documents.UpdateStatus(documentID, models.StatusProcessing, "")
	if err != nil {
		return &permanentError{fmt.Errorf("cannot start processing: %w", err)}
	}
	s.publish(doc)

	if !s.embedder.IsAvailable(ctx) {
		return &permanentError{fmt.Errorf("no embedding provider configured")}
	}

	segments := s.loader.Load(ctx, doc.FilePath, doc.MediaType)
	if len(segments) == 0 {
		return &permanentError{fmt.Errorf("no text could be extracted from %s", doc.Name)}
	}

	ragSettings, err := s.settings.Get()
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	chunks := s.chunker.Chunk(segments, doc.ID, ragSettings.ChunkSize, ragSettings.ChunkOverlap)
	if len(chunks) == 0 {
		return &permanentError{fmt.Errorf("document %s produced no chunks", doc.Name)}
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.EmbedBatch(embedCtx, texts)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}

	// Re-ingestion replaces the previous index rather than appending to it
	if err := s.index.Delete(doc.ID); err != nil {
		return fmt.Errorf("failed to clear previous index: %w", err)
	}
	if err := s.index.CreateOrAppend(doc.ID, doc.Name, chunks, vectors); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}

	updated, err := s.documents.Update(doc.ID, func(d *models.Document) error {
		if !d.Status.CanTransition(models.StatusCompleted) {
			return fmt.Errorf("cannot complete document in status %s", d.Status)
		}
		d.Status = models.StatusCompleted
		d.StatusReason = ""
		d.ChunkCount = len(chunks)
		return nil
	})
	if err != nil {
		return &permanentError{fmt.Errorf("cannot mark completed: %w", err)}
	}
	s.publish(updated)

	s.logger.Info().
		Str("document_id", doc.ID).
		Str("name", doc.Name).
		Int("chunks", len(chunks)).
		Msg("Document ingested")

	return nil
}

// fail moves the document to error and releases waiters
func (s *Service) fail(documentID string, cause error) {
	doc, err := s.documents.UpdateStatus(documentID, models.StatusError, cause.Error())
	if err != nil {
		s.logger.Error().Err(err).Str("document_id", documentID).Msg("Failed to record error status")
	} else {
		s.publish(doc)
	}
	s.finish(documentID, cause)
}

// finish fires and clears all completion channels for the document
func (s *Service) finish(documentID string, result error) {
	s.mu.Lock()
	waiters := s.waiters[documentID]
	delete(s.waiters, documentID)
	s.mu.Unlock()

	for _, ch := range waiters {
		ch <- result
		close(ch)
	}
}

func (s *Service) removeWaiter(documentID string, target chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	waiters := s.waiters[documentID]
	for i, ch := range waiters {
		if ch == target {
			s.waiters[documentID] = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(s.waiters[documentID]) == 0 {
		delete(s.waiters, documentID)
	}
}

func (s *Service) publish(doc *models.Document) {
	s.events.Publish(interfaces.DocumentEvent{
		DocumentID: doc.ID,
		Name:       doc.Name,
		Status:     doc.Status,
		Reason:     doc.StatusReason,
		Timestamp:  time.Now(),
	})
}

// permanentError marks failures that retrying cannot fix
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var perm *permanentError
	return !errors.As(err, &perm)
}

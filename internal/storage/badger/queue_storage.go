package badger

import (
	"encoding/json"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogo/internal/interfaces"
)

// queuePrefix orders tasks by enqueue time: ingest_task:<unix-nano>:<task-id>
const queuePrefix = "ingest_task:"

// QueueStorage is the durable ingestion work queue. It uses the raw badger
// key space (not badgerhold) so tasks dequeue in enqueue order and survive
// restarts: documents left in processing by a crash are resumed on startup.
type QueueStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewQueueStorage creates a new QueueStorage instance
func NewQueueStorage(db *BadgerDB, logger arbor.ILogger) interfaces.QueueStorage {
	return &QueueStorage{
		db:     db,
		logger: logger,
	}
}

func (s *QueueStorage) taskKey(task *interfaces.IngestTask) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", queuePrefix, task.EnqueuedAt.UnixNano(), task.ID))
}

func (s *QueueStorage) Enqueue(task *interfaces.IngestTask) error {
	if task.ID == "" || task.DocumentID == "" {
		return fmt.Errorf("task ID and document ID are required")
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}

	err = s.db.Store().Badger().Update(func(txn *badgerdb.Txn) error {
		return txn.Set(s.taskKey(task), data)
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	s.logger.Debug().
		Str("task_id", task.ID).
		Str("doc_id", task.DocumentID).
		Msg("Ingestion task enqueued")

	return nil
}

// Dequeue removes and returns the oldest task, or nil when the queue is empty.
// Read and delete happen in one transaction so a task is handed to exactly
// one worker.
func (s *QueueStorage) Dequeue() (*interfaces.IngestTask, error) {
	var task *interfaces.IngestTask

	err := s.db.Store().Badger().Update(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(queuePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Rewind()
		if !it.Valid() {
			return nil
		}

		item := it.Item()
		var decoded interfaces.IngestTask
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &decoded)
		}); err != nil {
			return fmt.Errorf("failed to decode task: %w", err)
		}

		if err := txn.Delete(item.KeyCopy(nil)); err != nil {
			return err
		}
		task = &decoded
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue task: %w", err)
	}

	return task, nil
}

func (s *QueueStorage) Pending() ([]*interfaces.IngestTask, error) {
	var tasks []*interfaces.IngestTask

	err := s.db.Store().Badger().View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(queuePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var decoded interfaces.IngestTask
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &decoded)
			}); err != nil {
				return fmt.Errorf("failed to decode task: %w", err)
			}
			tasks = append(tasks, &decoded)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tasks: %w", err)
	}

	return tasks, nil
}

func (s *QueueStorage) Len() (int, error) {
	tasks, err := s.Pending()
	if err != nil {
		return 0, err
	}
	return len(tasks), nil
}

package maintenance

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"hanapbahay/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// CleanupQueue is an in-memory queue of orphaned-object batches waiting for
// deletion from storage.
type CleanupQueue struct {
	items    chan []models.OrphanedObject
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func([]models.OrphanedObject) error
}

// NewCleanupQueue creates a new cleanup queue with the specified buffer size
func NewCleanupQueue(bufferSize int, logger *logrus.Logger) *CleanupQueue {
	return &CleanupQueue{
		items:    make(chan []models.OrphanedObject, bufferSize),
		done:     make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func([]models.OrphanedObject) error, 0),
	}
}

// Push adds a batch of orphaned objects to the queue
func (q *CleanupQueue) Push(objects []models.OrphanedObject) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	// Non-blocking send to prevent deadlocks
	select {
	case q.items <- objects:
		q.logger.WithField("batch_size", len(objects)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each batch
func (q *CleanupQueue) Subscribe(handler func([]models.OrphanedObject) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing items in the queue
func (q *CleanupQueue) Start() {
	go q.process()
}

// process handles the queue processing loop
func (q *CleanupQueue) process() {
	for {
		select {
		case <-q.done:
			return
		case batch := <-q.items:
			q.processBatch(batch)
		}
	}
}

// processBatch sends the batch to all subscribed handlers
func (q *CleanupQueue) processBatch(batch []models.OrphanedObject) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process batch")
		}
	}
}

// Close stops the queue and prevents new items from being added
func (q *CleanupQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.done)
	close(q.items)
	return nil
}

// Len returns the current number of batches in the queue
func (q *CleanupQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *CleanupQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

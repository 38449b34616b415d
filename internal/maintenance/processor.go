package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hanapbahay/server/config"
	"hanapbahay/server/internal/models"
)

// ObjectStore deletes objects from the image buckets.
type ObjectStore interface {
	Delete(ctx context.Context, bucket, key string) error
}

// Processor drains orphaned-object batches from the cleanup queue: it deletes
// each blob from storage and then removes the outbox rows in one transaction.
type Processor struct {
	db        *gorm.DB
	store     ObjectStore
	logger    *logrus.Logger
	config    *config.Config
	queue     *CleanupQueue
	batches   chan []models.OrphanedObject
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewProcessor creates a new cleanup processor instance
func NewProcessor(db *gorm.DB, store ObjectStore, queue *CleanupQueue, config *config.Config, logger *logrus.Logger) *Processor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Processor{
		db:      db,
		store:   store,
		queue:   queue,
		config:  config,
		logger:  logger,
		batches: make(chan []models.OrphanedObject, config.Maintenance.WorkerCount),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start subscribes to the cleanup queue and spawns the workers. The
// subscription is registered before Start returns, so a batch pushed right
// after Start is never delivered to an empty handler list; only the retry
// work runs on the workers.
func (p *Processor) Start() {
	p.queue.Subscribe(func(batch []models.OrphanedObject) error {
		select {
		case p.batches <- batch:
			return nil
		case <-p.ctx.Done():
			return p.ctx.Err()
		}
	})

	for i := 0; i < p.config.Maintenance.WorkerCount; i++ {
		p.waitGroup.Add(1)
		go p.processLoop()
	}
}

// Stop gracefully shuts down the processor
func (p *Processor) Stop() {
	p.cancel()
	p.waitGroup.Wait()
}

// processLoop drains dispatched batches until the processor stops. Batches
// still in flight at shutdown stay in the outbox and are re-enqueued by the
// next maintenance pass.
func (p *Processor) processLoop() {
	defer p.waitGroup.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case batch := <-p.batches:
			if err := p.processBatch(batch); err != nil {
				p.logger.WithError(err).Error("Abandoning cleanup batch")
			}
		}
	}
}

// processBatch deletes a batch of orphaned objects with retry logic
func (p *Processor) processBatch(batch []models.OrphanedObject) error {
	var err error
	for attempt := 0; attempt <= p.config.Maintenance.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying cleanup batch, attempt %d of %d", attempt, p.config.Maintenance.MaxRetries)
			time.Sleep(time.Duration(p.config.Maintenance.RetryDelay) * time.Second)
		}

		err = p.deleteBatch(batch)
		if err == nil {
			p.logger.Infof("Successfully cleaned up batch of %d objects", len(batch))
			return nil
		}

		p.logger.Errorf("Cleanup batch failed: %v", err)
	}

	return fmt.Errorf("failed to clean up batch after %d attempts: %w", p.config.Maintenance.MaxRetries, err)
}

func (p *Processor) deleteBatch(batch []models.OrphanedObject) error {
	for _, object := range batch {
		if err := p.store.Delete(p.ctx, object.Bucket, object.Key); err != nil {
			return fmt.Errorf("failed to delete %s/%s: %w", object.Bucket, object.Key, err)
		}
	}

	return p.db.Transaction(func(tx *gorm.DB) error {
		ids := make([]int64, len(batch))
		for i, object := range batch {
			ids[i] = object.ID
		}
		if err := tx.Delete(&models.OrphanedObject{}, ids).Error; err != nil {
			return fmt.Errorf("failed to remove outbox rows: %w", err)
		}
		return nil
	})
}

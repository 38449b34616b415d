package maintenance

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hanapbahay/server/config"
	"hanapbahay/server/internal/database"
	"hanapbahay/server/internal/models"
)

// Scheduler runs the periodic maintenance pass: it loads pending
// orphaned-object batches into the cleanup queue and backfills coordinates
// for listings persisted without them. A pass also runs at startup.
type Scheduler struct {
	db       *database.Database
	gormDB   *gorm.DB
	queue    *CleanupQueue
	geocoder database.Geocoder
	config   *config.Config
	logger   *logrus.Logger
	stopChan chan struct{}
	runChan  chan struct{}
	wg       sync.WaitGroup
	jobMutex sync.Mutex // Ensures sequential pass execution
}

// NewScheduler creates a new maintenance scheduler
func NewScheduler(db *database.Database, gormDB *gorm.DB, queue *CleanupQueue, geocoder database.Geocoder, cfg *config.Config, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		db:       db,
		gormDB:   gormDB,
		queue:    queue,
		geocoder: geocoder,
		config:   cfg,
		logger:   logger,
		stopChan: make(chan struct{}),
		runChan:  make(chan struct{}, 1),
	}
}

// Start begins the scheduled maintenance passes
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

// RunNow requests an immediate maintenance pass. Non-blocking; a request is
// dropped when a pass is already pending.
func (s *Scheduler) RunNow() {
	select {
	case s.runChan <- struct{}{}:
	default:
	}
}

// runScheduler handles all scheduled maintenance work
func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	// Startup pass picks up whatever a previous crash left behind
	go s.runPass("startup")

	interval := time.Duration(s.config.Maintenance.Interval) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-s.runChan:
			s.runPass("manual")
		case <-ticker.C:
			s.runPass("scheduled")
		}
	}
}

// runPass executes one full maintenance pass
func (s *Scheduler) runPass(trigger string) {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	s.logger.WithField("trigger", trigger).Info("Starting maintenance pass")

	s.enqueueOrphanedObjects()

	if err := s.db.UpdateMissingCoordinates(s.geocoder); err != nil {
		s.logger.WithError(err).Error("Coordinates backfill incomplete")
	}

	s.logger.WithField("trigger", trigger).Info("Maintenance pass completed")
}

// enqueueOrphanedObjects loads pending outbox rows in batches and pushes them
// to the cleanup queue
func (s *Scheduler) enqueueOrphanedObjects() {
	batchSize := s.config.Maintenance.MaxBatchSize

	var batch []models.OrphanedObject
	err := s.gormDB.Order("id").Limit(batchSize).Find(&batch).Error
	if err != nil {
		s.logger.WithError(err).Error("Failed to load orphaned objects")
		return
	}

	for len(batch) > 0 {
		if err := s.queue.Push(batch); err != nil {
			// Queue is saturated or closed; the next pass picks the rows up again
			s.logger.WithError(err).Warn("Could not enqueue cleanup batch")
			return
		}

		lastID := batch[len(batch)-1].ID
		batch = nil
		err = s.gormDB.Where("id > ?", lastID).Order("id").Limit(batchSize).Find(&batch).Error
		if err != nil {
			s.logger.WithError(err).Error("Failed to load orphaned objects")
			return
		}
	}
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/internal/infrastructure/persistence"
	"github.com/sitewise/backend/pkg/auth"
	"github.com/sitewise/backend/pkg/constants"
	"github.com/sitewise/backend/pkg/errors"
	"github.com/sitewise/backend/pkg/utils"
)

// SchedulerService fires queued publishes. It polls on a fixed interval;
// one-shot schedules are removed after they fire, recurring cron schedules
// republish the document's latest revision each time they come due.
type SchedulerService struct {
	schedules *persistence.ScheduleRepository
	pageSvc   *PageService
	itemSvc   *ItemService
	stopChan  chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool
	stopped   bool // Prevents double-close of stopChan
}

// NewSchedulerService creates a new scheduler service
func NewSchedulerService(schedules *persistence.ScheduleRepository, pageSvc *PageService, itemSvc *ItemService) *SchedulerService {
	return &SchedulerService{
		schedules: schedules,
		pageSvc:   pageSvc,
		itemSvc:   itemSvc,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the scheduler background loop
func (s *SchedulerService) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Println("⏰ Publish scheduler starting...")

	ticker := time.NewTicker(time.Duration(constants.ScheduleCheckInterval) * time.Second)
	defer ticker.Stop()

	// Run immediately on start
	s.runDueSchedules()

	for {
		select {
		case <-ticker.C:
			s.runDueSchedules()
		case <-s.stopChan:
			log.Println("⏰ Publish scheduler stopping...")
			s.wg.Wait()
			log.Println("⏰ Publish scheduler stopped")
			return
		}
	}
}

// Stop gracefully stops the scheduler
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	if !s.running || s.stopped {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.stopped = true
	s.mu.Unlock()

	close(s.stopChan)
}

// runDueSchedules finds and fires every due scheduled publish
func (s *SchedulerService) runDueSchedules() {
	ctx := context.Background()
	schedules, err := s.schedules.List(ctx)
	if err != nil {
		log.Printf("⚠️ Scheduler failed to load schedules: %v", err)
		return
	}

	now := time.Now()
	for _, sp := range schedules {
		if !isDue(&sp, now) {
			continue
		}
		s.wg.Add(1)
		go func(sp models.ScheduledPublish) {
			defer s.wg.Done()
			s.fire(&sp)
		}(sp)
	}
}

// isDue reports whether a schedule should fire now. One-shot schedules fire
// once their PublishAt passes; cron schedules fire when the next activation
// after the last run is in the past.
func isDue(sp *models.ScheduledPublish, now time.Time) bool {
	if sp.PublishAt != nil {
		return sp.LastRunAt == nil && !now.Before(*sp.PublishAt)
	}

	if sp.Schedule == nil || *sp.Schedule == "" {
		return false
	}
	spec, err := cron.ParseStandard(*sp.Schedule)
	if err != nil {
		log.Printf("⚠️ Schedule %s has invalid cron expression '%s': %v", sp.ID, *sp.Schedule, err)
		return false
	}

	last := sp.CreatedAt
	if sp.LastRunAt != nil {
		last = *sp.LastRunAt
	}
	return !now.Before(spec.Next(last))
}

// fire publishes the document's latest revision and updates the schedule
func (s *SchedulerService) fire(sp *models.ScheduledPublish) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("🔥 Panic firing schedule %s: %v", sp.ID, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	owner := auth.UserSession{ID: sp.CreatedBy}
	switch sp.DocumentType {
	case models.DocumentTypePage:
		_, err = s.pageSvc.Publish(ctx, sp.DocumentID, nil, "", owner)
	case models.DocumentTypeItem:
		_, err = s.itemSvc.Publish(ctx, sp.DocumentID, nil, "", owner)
	default:
		log.Printf("⚠️ Schedule %s has unknown document type '%s'", sp.ID, sp.DocumentType)
		return
	}
	if err != nil {
		log.Printf("❌ Scheduled publish of %s %s failed: %v", sp.DocumentType, sp.DocumentID, err)
		return
	}

	log.Printf("✅ Scheduled publish fired for %s %s", sp.DocumentType, sp.DocumentID)

	if sp.PublishAt != nil {
		// One-shot: done, remove the schedule
		if err := s.schedules.Delete(ctx, sp.ID); err != nil {
			log.Printf("⚠️ Failed to delete fired schedule %s: %v", sp.ID, err)
		}
		return
	}
	if err := s.schedules.MarkRun(ctx, sp.ID, time.Now()); err != nil {
		log.Printf("⚠️ Failed to mark schedule %s as run: %v", sp.ID, err)
	}
}

// CreateSchedule queues a publish for a document. Exactly one of publishAt
// (one-shot) and schedule (cron, recurring) must be set.
func (s *SchedulerService) CreateSchedule(ctx context.Context, documentType, documentID string, publishAt *time.Time, schedule *string, user auth.UserSession) (*models.ScheduledPublish, error) {
	if (publishAt == nil) == (schedule == nil || *schedule == "") {
		return nil, errors.NewValidationError("schedule", "Set either publish_at or a cron schedule, not both")
	}

	switch documentType {
	case models.DocumentTypePage:
		if _, err := s.pageSvc.Get(ctx, documentID); err != nil {
			return nil, err
		}
	case models.DocumentTypeItem:
		if _, err := s.itemSvc.Get(ctx, documentID); err != nil {
			return nil, err
		}
	default:
		return nil, errors.NewValidationError("document_type", "Document type must be page or item")
	}

	if schedule != nil && *schedule != "" {
		if _, err := cron.ParseStandard(*schedule); err != nil {
			return nil, errors.NewValidationError("schedule", "Invalid cron expression: "+err.Error())
		}
	}
	if publishAt != nil && publishAt.Before(time.Now()) {
		return nil, errors.NewValidationError("publish_at", "Publish time must be in the future")
	}

	sp := &models.ScheduledPublish{
		ID:           utils.GenerateID(),
		DocumentType: documentType,
		DocumentID:   documentID,
		PublishAt:    publishAt,
		Schedule:     schedule,
		CreatedBy:    user.ID,
		CreatedAt:    time.Now(),
	}
	if err := s.schedules.Insert(ctx, sp); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}

	log.Printf("⏰ Queued publish of %s %s", documentType, documentID)
	return sp, nil
}

// ListSchedules returns all queued publishes
func (s *SchedulerService) ListSchedules(ctx context.Context) ([]models.ScheduledPublish, error) {
	return s.schedules.List(ctx)
}

// DeleteSchedule removes a queued publish
func (s *SchedulerService) DeleteSchedule(ctx context.Context, id string) error {
	return s.schedules.Delete(ctx, id)
}

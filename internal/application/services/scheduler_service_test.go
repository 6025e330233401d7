package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/internal/infrastructure/persistence"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func TestIsDueOneShot(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		sp   models.ScheduledPublish
		want bool
	}{
		{
			"due when publish time passed",
			models.ScheduledPublish{PublishAt: timePtr(now.Add(-time.Minute))},
			true,
		},
		{
			"due exactly at publish time",
			models.ScheduledPublish{PublishAt: timePtr(now)},
			true,
		},
		{
			"not due before publish time",
			models.ScheduledPublish{PublishAt: timePtr(now.Add(time.Minute))},
			false,
		},
		{
			"never refires after a run",
			models.ScheduledPublish{PublishAt: timePtr(now.Add(-time.Hour)), LastRunAt: timePtr(now.Add(-time.Minute))},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDue(&tt.sp, now))
		})
	}
}

func TestIsDueCron(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 30, 0, time.UTC)

	tests := []struct {
		name string
		sp   models.ScheduledPublish
		want bool
	}{
		{
			"every minute, last run over a minute ago",
			models.ScheduledPublish{Schedule: strPtr("* * * * *"), LastRunAt: timePtr(now.Add(-2 * time.Minute))},
			true,
		},
		{
			"every minute, just ran",
			models.ScheduledPublish{Schedule: strPtr("* * * * *"), LastRunAt: timePtr(now.Add(-10 * time.Second))},
			false,
		},
		{
			"never ran, anchored on creation time",
			models.ScheduledPublish{Schedule: strPtr("0 * * * *"), CreatedAt: now.Add(-2 * time.Hour)},
			true,
		},
		{
			"daily at midnight, not yet",
			models.ScheduledPublish{Schedule: strPtr("0 0 * * *"), LastRunAt: timePtr(now.Add(-time.Hour))},
			false,
		},
		{
			"invalid expression never fires",
			models.ScheduledPublish{Schedule: strPtr("not cron")},
			false,
		},
		{
			"empty schedule never fires",
			models.ScheduledPublish{},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDue(&tt.sp, now))
		})
	}
}

func TestStopIsIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	svc := NewSchedulerService(persistence.NewScheduleRepository(db), nil, nil)

	go svc.Start()
	time.Sleep(10 * time.Millisecond)

	svc.Stop()
	svc.Stop() // Second call must not panic on a closed channel
}

// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Maintenance runs the periodic housekeeping jobs.
type Maintenance struct {
	Corp          *CorpService
	Notifications *NotificationService
	sched         gocron.Scheduler
}

func NewMaintenance(corp *CorpService, notifications *NotificationService) *Maintenance {
	return &Maintenance{Corp: corp, Notifications: notifications}
}

// Start registers the jobs and starts the scheduler. Jobs stop running once
// ctx is cancelled; call Shutdown to release the scheduler.
func (m *Maintenance) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return err
	}

	// Hourly: sent invoices past due become overdue
	if _, err := sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() { m.RunOverdueInvoices(ctx) }),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	); err != nil {
		return err
	}

	// Daily at 03:30 UTC: purge old read notifications
	if _, err := sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 30, 0))),
		gocron.NewTask(func() { m.RunNotificationPurge(ctx) }),
	); err != nil {
		return err
	}

	sched.Start()
	m.sched = sched
	log.Println("⏰ [Scheduler] maintenance jobs started")
	return nil
}

func (m *Maintenance) Shutdown() {
	if m.sched == nil {
		return
	}
	if err := m.sched.Shutdown(); err != nil {
		log.Printf("[Scheduler] shutdown error: %v", err)
	}
}

func (m *Maintenance) RunOverdueInvoices(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	n, err := m.Corp.MarkOverdue(ctx)
	if err != nil {
		log.Printf("[Scheduler] overdue invoices: %v", err)
		return
	}
	if n > 0 {
		log.Printf("✅ [Scheduler] marked %d invoice(s) overdue", n)
	}
}

func (m *Maintenance) RunNotificationPurge(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	n, err := m.Notifications.PurgeRead(ctx)
	if err != nil {
		log.Printf("[Scheduler] notification purge: %v", err)
		return
	}
	if n > 0 {
		log.Printf("🧹 [Scheduler] purged %d read notification(s)", n)
	}
}

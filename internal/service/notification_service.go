package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/workbridge/ims-api/internal/models"
	"github.com/workbridge/ims-api/pkg/notify"
)

type notificationLedgerRepository interface {
	SetNotificationSent(ctx context.Context, id string) error
}

// NotificationService dispatches absence alerts over email and WhatsApp.
// Delivery is best effort: failures are reported per channel and never
// affect the attendance write they follow.
type NotificationService struct {
	ledger   notificationLedgerRepository
	mailer   notify.Mailer
	whatsapp notify.WhatsAppSender
	logger   *zap.Logger
}

// NewNotificationService constructs the notification service.
func NewNotificationService(ledger notificationLedgerRepository, mailer notify.Mailer, whatsapp notify.WhatsAppSender, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{ledger: ledger, mailer: mailer, whatsapp: whatsapp, logger: logger}
}

// DispatchAbsences fans the owed alerts out concurrently and records an
// outcome per channel. Entries with at least one delivery get their
// suppression flag set so a re-mark of the same day does not re-notify.
func (s *NotificationService) DispatchAbsences(ctx context.Context, tasks []NotificationTask) []models.NotificationOutcome {
	if len(tasks) == 0 {
		return nil
	}

	type delivery struct {
		outcomes []models.NotificationOutcome
		entryID  string
		sent     bool
	}

	results := make([]delivery, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task NotificationTask) {
			defer wg.Done()
			results[i] = s.dispatchOne(ctx, task)
		}(i, task)
	}
	wg.Wait()

	var outcomes []models.NotificationOutcome
	for _, result := range results {
		outcomes = append(outcomes, result.outcomes...)
		if result.sent {
			if err := s.ledger.SetNotificationSent(ctx, result.entryID); err != nil {
				s.logger.Warn("failed to flag notification", zap.String("entry_id", result.entryID), zap.Error(err))
			}
		}
	}
	return outcomes
}

func (s *NotificationService) dispatchOne(ctx context.Context, task NotificationTask) (result struct {
	outcomes []models.NotificationOutcome
	entryID  string
	sent     bool
}) {
	result.entryID = task.EntryID
	date := task.Date.Format("2006-01-02")

	emailStatus := "skipped"
	if s.mailer != nil && s.mailer.Enabled() && task.Email != "" {
		subject := "Absence recorded on " + date
		body := fmt.Sprintf("<p>Hi %s,</p><p>You were marked absent on %s. Contact your coordinator if this is incorrect.</p>", task.Name, date)
		if err := s.mailer.Send(ctx, task.Email, subject, body); err != nil {
			emailStatus = "failed"
			s.logger.Warn("absence email failed", zap.String("person_id", task.PersonID), zap.Error(err))
		} else {
			emailStatus = "sent"
			result.sent = true
		}
	}
	result.outcomes = append(result.outcomes, models.NotificationOutcome{PersonID: task.PersonID, Channel: "email", Status: emailStatus})

	if task.Kind == models.KindEmployee {
		waStatus := "skipped"
		if s.whatsapp != nil && s.whatsapp.Enabled() && notify.ValidMobile(task.Mobile) {
			message := fmt.Sprintf("Hi %s, you were marked absent on %s.", task.Name, date)
			if err := s.whatsapp.Send(ctx, task.Mobile, message); err != nil {
				waStatus = "failed"
				s.logger.Warn("absence whatsapp failed", zap.String("person_id", task.PersonID), zap.Error(err))
			} else {
				waStatus = "sent"
				result.sent = true
			}
		}
		result.outcomes = append(result.outcomes, models.NotificationOutcome{PersonID: task.PersonID, Channel: "whatsapp", Status: waStatus})
	}
	return result
}

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workbridge/ims-api/internal/models"
)

type mockNotifyLedger struct {
	mu      sync.Mutex
	flagged []string
}

func (m *mockNotifyLedger) SetNotificationSent(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flagged = append(m.flagged, id)
	return nil
}

type recordingMailer struct {
	mu      sync.Mutex
	enabled bool
	fail    bool
	to      []string
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return assert.AnError
	}
	m.to = append(m.to, to)
	return nil
}

func (m *recordingMailer) Enabled() bool { return m.enabled }

type recordingWhatsApp struct {
	mu      sync.Mutex
	enabled bool
	mobiles []string
}

func (m *recordingWhatsApp) Send(ctx context.Context, mobile, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mobiles = append(m.mobiles, mobile)
	return nil
}

func (m *recordingWhatsApp) Enabled() bool { return m.enabled }

func outcomeStatus(outcomes []models.NotificationOutcome, personID, channel string) string {
	for _, o := range outcomes {
		if o.PersonID == personID && o.Channel == channel {
			return o.Status
		}
	}
	return ""
}

func TestDispatchAbsencesFlagsDelivered(t *testing.T) {
	ledger := &mockNotifyLedger{}
	mailer := &recordingMailer{enabled: true}
	whatsapp := &recordingWhatsApp{enabled: true}
	svc := NewNotificationService(ledger, mailer, whatsapp, nil)

	date := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	outcomes := svc.DispatchAbsences(context.Background(), []NotificationTask{
		{EntryID: "e1", Kind: models.KindIntern, PersonID: "i1", Name: "One", Email: "one@corp.test", Date: date},
		{EntryID: "e2", Kind: models.KindEmployee, PersonID: "emp1", Name: "Two", Email: "two@corp.test", Mobile: "9876543210", Date: date},
	})

	assert.Equal(t, "sent", outcomeStatus(outcomes, "i1", "email"))
	assert.Equal(t, "sent", outcomeStatus(outcomes, "emp1", "email"))
	assert.Equal(t, "sent", outcomeStatus(outcomes, "emp1", "whatsapp"))
	assert.Empty(t, outcomeStatus(outcomes, "i1", "whatsapp"))
	assert.ElementsMatch(t, []string{"e1", "e2"}, ledger.flagged)
	assert.ElementsMatch(t, []string{"one@corp.test", "two@corp.test"}, mailer.to)
	assert.Equal(t, []string{"9876543210"}, whatsapp.mobiles)
}

func TestDispatchAbsencesSkippedWhenDisabled(t *testing.T) {
	ledger := &mockNotifyLedger{}
	svc := NewNotificationService(ledger, &recordingMailer{enabled: false}, &recordingWhatsApp{enabled: false}, nil)

	outcomes := svc.DispatchAbsences(context.Background(), []NotificationTask{
		{EntryID: "e1", Kind: models.KindEmployee, PersonID: "emp1", Email: "one@corp.test", Mobile: "9876543210", Date: time.Now()},
	})

	assert.Equal(t, "skipped", outcomeStatus(outcomes, "emp1", "email"))
	assert.Equal(t, "skipped", outcomeStatus(outcomes, "emp1", "whatsapp"))
	assert.Empty(t, ledger.flagged)
}

func TestDispatchAbsencesFailedEmailStillReportsWhatsApp(t *testing.T) {
	ledger := &mockNotifyLedger{}
	whatsapp := &recordingWhatsApp{enabled: true}
	svc := NewNotificationService(ledger, &recordingMailer{enabled: true, fail: true}, whatsapp, nil)

	outcomes := svc.DispatchAbsences(context.Background(), []NotificationTask{
		{EntryID: "e1", Kind: models.KindEmployee, PersonID: "emp1", Email: "one@corp.test", Mobile: "9876543210", Date: time.Now()},
	})

	assert.Equal(t, "failed", outcomeStatus(outcomes, "emp1", "email"))
	assert.Equal(t, "sent", outcomeStatus(outcomes, "emp1", "whatsapp"))
	require.Equal(t, []string{"e1"}, ledger.flagged)
}

func TestDispatchAbsencesInvalidMobileSkipped(t *testing.T) {
	ledger := &mockNotifyLedger{}
	whatsapp := &recordingWhatsApp{enabled: true}
	svc := NewNotificationService(ledger, &recordingMailer{enabled: false}, whatsapp, nil)

	outcomes := svc.DispatchAbsences(context.Background(), []NotificationTask{
		{EntryID: "e1", Kind: models.KindEmployee, PersonID: "emp1", Mobile: "12345", Date: time.Now()},
	})

	assert.Equal(t, "skipped", outcomeStatus(outcomes, "emp1", "whatsapp"))
	assert.Empty(t, whatsapp.mobiles)
	assert.Empty(t, ledger.flagged)
}

func TestDispatchAbsencesEmptyTaskList(t *testing.T) {
	svc := NewNotificationService(&mockNotifyLedger{}, &recordingMailer{enabled: true}, &recordingWhatsApp{enabled: true}, nil)
	assert.Nil(t, svc.DispatchAbsences(context.Background(), nil))
}

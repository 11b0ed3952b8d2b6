package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workbridge/ims-api/internal/models"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
)

type mockBatchRepo struct {
	batches map[string]models.Batch
	pairs   map[string]bool
	created *models.Batch
	deleted []string
	status  map[string]models.BatchStatus
}

func pairKey(name string, seq int) string {
	return name + "#" + string(rune('0'+seq))
}

func (m *mockBatchRepo) Create(ctx context.Context, batch *models.Batch) error {
	if batch.ID == "" {
		batch.ID = "batch-new"
	}
	if m.batches == nil {
		m.batches = make(map[string]models.Batch)
	}
	m.batches[batch.ID] = *batch
	m.created = batch
	return nil
}

func (m *mockBatchRepo) ExistsByNameAndSequence(ctx context.Context, batchName string, sequenceNumber int) (bool, error) {
	return m.pairs[pairKey(batchName, sequenceNumber)], nil
}

func (m *mockBatchRepo) FindByID(ctx context.Context, id string) (*models.Batch, error) {
	if b, ok := m.batches[id]; ok {
		stored := b
		return &stored, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockBatchRepo) List(ctx context.Context) ([]models.Batch, error) {
	var out []models.Batch
	for _, b := range m.batches {
		out = append(out, b)
	}
	return out, nil
}

func (m *mockBatchRepo) ListByStatus(ctx context.Context, status models.BatchStatus) ([]models.Batch, error) {
	var out []models.Batch
	for _, b := range m.batches {
		if b.Status == status {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBatchRepo) Update(ctx context.Context, batch *models.Batch) error {
	m.batches[batch.ID] = *batch
	return nil
}

func (m *mockBatchRepo) UpdateStatus(ctx context.Context, id string, status models.BatchStatus) error {
	if _, ok := m.batches[id]; !ok {
		return sql.ErrNoRows
	}
	if m.status == nil {
		m.status = make(map[string]models.BatchStatus)
	}
	m.status[id] = status
	return nil
}

func (m *mockBatchRepo) Delete(ctx context.Context, id string) error {
	delete(m.batches, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockBatchRepo) DeleteAll(ctx context.Context) (int64, error) {
	count := int64(len(m.batches))
	m.batches = nil
	return count, nil
}

func (m *mockBatchRepo) StudentIDs(ctx context.Context, batchID string) ([]string, error) {
	return nil, nil
}

type mockBatchInternRepo struct {
	roster   map[string][]models.Intern
	unlinked []string
}

func (m *mockBatchInternRepo) ListByBatch(ctx context.Context, batchID string) ([]models.Intern, error) {
	return m.roster[batchID], nil
}

func (m *mockBatchInternRepo) RemoveBatchFromAll(ctx context.Context, batchID string) (int64, error) {
	m.unlinked = append(m.unlinked, batchID)
	return int64(len(m.roster[batchID])), nil
}

type mockBatchTeacherLinks struct {
	unlinked []string
}

func (m *mockBatchTeacherLinks) RemoveBatchFromAll(ctx context.Context, batchID string) error {
	m.unlinked = append(m.unlinked, batchID)
	return nil
}

type mockDayAttendance struct {
	entries []models.AttendanceEntry
}

func (m *mockDayAttendance) ListForDate(ctx context.Context, kind models.PersonKind, personIDs []string, date time.Time) ([]models.AttendanceEntry, error) {
	return m.entries, nil
}

func validCreateBatch() CreateBatchRequest {
	return CreateBatchRequest{
		BatchName:      "Spring Cohort",
		ModeOfBatch:    "Online",
		SequenceNumber: 1,
		StartDate:      time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestBatchCreate(t *testing.T) {
	repo := &mockBatchRepo{}
	svc := NewBatchService(repo, &mockBatchInternRepo{}, &mockBatchTeacherLinks{}, &mockDayAttendance{}, nil, nil)

	batch, err := svc.Create(context.Background(), validCreateBatch())
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusUpcoming, batch.Status)
	assert.NotNil(t, repo.created)
}

func TestBatchCreateDuplicatePair(t *testing.T) {
	repo := &mockBatchRepo{pairs: map[string]bool{pairKey("Spring Cohort", 1): true}}
	svc := NewBatchService(repo, &mockBatchInternRepo{}, &mockBatchTeacherLinks{}, &mockDayAttendance{}, nil, nil)

	_, err := svc.Create(context.Background(), validCreateBatch())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestBatchCreateInvalidDates(t *testing.T) {
	svc := NewBatchService(&mockBatchRepo{}, &mockBatchInternRepo{}, &mockBatchTeacherLinks{}, &mockDayAttendance{}, nil, nil)

	req := validCreateBatch()
	req.EndDate = req.StartDate.AddDate(0, 0, -1)
	_, err := svc.Create(context.Background(), req)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestBatchDeleteUnlinksBothSides(t *testing.T) {
	repo := &mockBatchRepo{batches: map[string]models.Batch{"b1": {ID: "b1"}}}
	interns := &mockBatchInternRepo{}
	teachers := &mockBatchTeacherLinks{}
	svc := NewBatchService(repo, interns, teachers, &mockDayAttendance{}, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "b1"))
	assert.Contains(t, interns.unlinked, "b1")
	assert.Contains(t, teachers.unlinked, "b1")
	assert.Contains(t, repo.deleted, "b1")
}

func TestBatchDayViewNotMarked(t *testing.T) {
	repo := &mockBatchRepo{batches: map[string]models.Batch{"b1": {ID: "b1"}}}
	interns := &mockBatchInternRepo{roster: map[string][]models.Intern{
		"b1": {
			{ID: "i1", Name: "One", Email: "one@corp.test"},
			{ID: "i2", Name: "Two", Email: "two@corp.test"},
		},
	}}
	attendance := &mockDayAttendance{entries: []models.AttendanceEntry{
		{PersonID: "i1", Status: models.AttendanceStatusPresent},
	}}
	svc := NewBatchService(repo, interns, &mockBatchTeacherLinks{}, attendance, nil, nil)

	view, err := svc.DayView(context.Background(), "b1", time.Now())
	require.NoError(t, err)
	require.Len(t, view, 2)
	assert.Equal(t, "Present", view[0].Status)
	assert.Equal(t, "Not Marked", view[1].Status)
}

func TestBatchUpdateStatusUnknown(t *testing.T) {
	svc := NewBatchService(&mockBatchRepo{}, &mockBatchInternRepo{}, &mockBatchTeacherLinks{}, &mockDayAttendance{}, nil, nil)

	err := svc.UpdateStatus(context.Background(), "missing", "Completed")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

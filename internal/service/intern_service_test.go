package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/workbridge/ims-api/internal/models"
	appErrors "github.com/workbridge/ims-api/pkg/errors"
)

type mockInternRepo struct {
	interns map[string]models.Intern
	byEmail map[string]string
	links   map[string][]string
	deleted []string
}

func newMockInternRepo() *mockInternRepo {
	return &mockInternRepo{
		interns: make(map[string]models.Intern),
		byEmail: make(map[string]string),
		links:   make(map[string][]string),
	}
}

func (m *mockInternRepo) Create(ctx context.Context, intern *models.Intern) error {
	if intern.ID == "" {
		intern.ID = "intern-" + intern.Email
	}
	m.interns[intern.ID] = *intern
	m.byEmail[intern.Email] = intern.ID
	return nil
}

func (m *mockInternRepo) FindByID(ctx context.Context, id string) (*models.Intern, error) {
	if i, ok := m.interns[id]; ok {
		stored := i
		return &stored, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockInternRepo) FindByEmail(ctx context.Context, email string) (*models.Intern, error) {
	if id, ok := m.byEmail[email]; ok {
		return m.FindByID(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (m *mockInternRepo) List(ctx context.Context) ([]models.Intern, error) {
	var out []models.Intern
	for _, i := range m.interns {
		out = append(out, i)
	}
	return out, nil
}

func (m *mockInternRepo) ListByBatch(ctx context.Context, batchID string) ([]models.Intern, error) {
	var out []models.Intern
	for id, batches := range m.links {
		for _, b := range batches {
			if b == batchID {
				out = append(out, m.interns[id])
			}
		}
	}
	return out, nil
}

func (m *mockInternRepo) Update(ctx context.Context, intern *models.Intern) error {
	m.interns[intern.ID] = *intern
	return nil
}

func (m *mockInternRepo) Delete(ctx context.Context, id string) error {
	if i, ok := m.interns[id]; ok {
		delete(m.byEmail, i.Email)
	}
	delete(m.interns, id)
	delete(m.links, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockInternRepo) DeleteAll(ctx context.Context) (int64, error) {
	count := int64(len(m.interns))
	m.interns = make(map[string]models.Intern)
	m.byEmail = make(map[string]string)
	m.links = make(map[string][]string)
	return count, nil
}

func (m *mockInternRepo) AddBatch(ctx context.Context, internID, batchID string) error {
	m.links[internID] = append(m.links[internID], batchID)
	return nil
}

func (m *mockInternRepo) RemoveBatch(ctx context.Context, internID, batchID string) error {
	var kept []string
	for _, b := range m.links[internID] {
		if b != batchID {
			kept = append(kept, b)
		}
	}
	m.links[internID] = kept
	return nil
}

func (m *mockInternRepo) BatchIDs(ctx context.Context, internID string) ([]string, error) {
	return m.links[internID], nil
}

func (m *mockInternRepo) HasBatch(ctx context.Context, internID, batchID string) (bool, error) {
	for _, b := range m.links[internID] {
		if b == batchID {
			return true, nil
		}
	}
	return false, nil
}

type mockInternRoster struct {
	batches  map[string]models.Batch
	students map[string][]string
	cleared  []string
}

func newMockInternRoster(batchIDs ...string) *mockInternRoster {
	m := &mockInternRoster{batches: make(map[string]models.Batch), students: make(map[string][]string)}
	for _, id := range batchIDs {
		m.batches[id] = models.Batch{ID: id}
	}
	return m
}

func (m *mockInternRoster) FindByID(ctx context.Context, id string) (*models.Batch, error) {
	if b, ok := m.batches[id]; ok {
		stored := b
		return &stored, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockInternRoster) AddStudent(ctx context.Context, batchID, internID string) error {
	m.students[batchID] = append(m.students[batchID], internID)
	return nil
}

func (m *mockInternRoster) RemoveStudent(ctx context.Context, batchID, internID string) error {
	var kept []string
	for _, s := range m.students[batchID] {
		if s != internID {
			kept = append(kept, s)
		}
	}
	m.students[batchID] = kept
	return nil
}

func (m *mockInternRoster) RemoveStudentFromAll(ctx context.Context, internID string) error {
	for batchID := range m.students {
		_ = m.RemoveStudent(ctx, batchID, internID)
	}
	m.cleared = append(m.cleared, internID)
	return nil
}

type mockInternLedger struct {
	cleared []string
}

func (m *mockInternLedger) ClearForPerson(ctx context.Context, kind models.PersonKind, personID string) (int64, error) {
	m.cleared = append(m.cleared, personID)
	return 1, nil
}

func (m *mockInternLedger) ClearKind(ctx context.Context, kind models.PersonKind) (int64, error) {
	return int64(len(m.cleared)), nil
}

func TestInternCreateLinksBatchesAndDefaultsPassword(t *testing.T) {
	repo := newMockInternRepo()
	roster := newMockInternRoster("b1", "b2")
	svc := NewInternService(repo, roster, &mockInternLedger{}, nil, nil)

	intern, err := svc.Create(context.Background(), CreateInternRequest{
		Name:     "Asha",
		Email:    "asha@corp.test",
		BatchIDs: []string{"b1", "b2"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleIntern, intern.Role)
	assert.Equal(t, []string{"b1", "b2"}, intern.BatchIDs)
	assert.Equal(t, []string{intern.ID}, roster.students["b1"])
	assert.Equal(t, []string{intern.ID}, roster.students["b2"])
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.interns[intern.ID].PasswordHash), []byte("asha")))
}

func TestInternCreateUnknownBatch(t *testing.T) {
	svc := NewInternService(newMockInternRepo(), newMockInternRoster(), &mockInternLedger{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateInternRequest{
		Name:     "Asha",
		Email:    "asha@corp.test",
		BatchIDs: []string{"missing"},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestInternAssignBatchTwiceConflicts(t *testing.T) {
	repo := newMockInternRepo()
	roster := newMockInternRoster("b1")
	svc := NewInternService(repo, roster, &mockInternLedger{}, nil, nil)

	intern, err := svc.Create(context.Background(), CreateInternRequest{Name: "Asha", Email: "asha@corp.test"})
	require.NoError(t, err)

	require.NoError(t, svc.AssignBatch(context.Background(), intern.ID, "b1"))
	err = svc.AssignBatch(context.Background(), intern.ID, "b1")
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestInternUnassignAbsentLinkConflicts(t *testing.T) {
	repo := newMockInternRepo()
	svc := NewInternService(repo, newMockInternRoster("b1"), &mockInternLedger{}, nil, nil)

	intern, err := svc.Create(context.Background(), CreateInternRequest{Name: "Asha", Email: "asha@corp.test"})
	require.NoError(t, err)

	err = svc.UnassignBatch(context.Background(), intern.ID, "b1")
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestInternUpdateReconcilesBatchSet(t *testing.T) {
	repo := newMockInternRepo()
	roster := newMockInternRoster("b1", "b2", "b3")
	svc := NewInternService(repo, roster, &mockInternLedger{}, nil, nil)

	intern, err := svc.Create(context.Background(), CreateInternRequest{
		Name:     "Asha",
		Email:    "asha@corp.test",
		BatchIDs: []string{"b1", "b2"},
	})
	require.NoError(t, err)

	want := []string{"b2", "b3"}
	updated, err := svc.Update(context.Background(), intern.ID, UpdateInternRequest{
		Name:     "Asha",
		Email:    "asha@corp.test",
		BatchIDs: &want,
	})
	require.NoError(t, err)

	assert.Equal(t, want, updated.BatchIDs)
	linked, err := repo.BatchIDs(context.Background(), intern.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, linked)
	assert.Empty(t, roster.students["b1"])
	assert.Equal(t, []string{intern.ID}, roster.students["b3"])
}

func TestInternDeleteCascades(t *testing.T) {
	repo := newMockInternRepo()
	roster := newMockInternRoster("b1")
	ledger := &mockInternLedger{}
	svc := NewInternService(repo, roster, ledger, nil, nil)

	intern, err := svc.Create(context.Background(), CreateInternRequest{Name: "Asha", Email: "asha@corp.test", BatchIDs: []string{"b1"}})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), intern.ID))
	assert.Equal(t, []string{intern.ID}, roster.cleared)
	assert.Equal(t, []string{intern.ID}, ledger.cleared)
	assert.Empty(t, repo.interns)
}

func TestInternDeleteByBatchRemovesRosterOnly(t *testing.T) {
	repo := newMockInternRepo()
	roster := newMockInternRoster("b1", "b2")
	svc := NewInternService(repo, roster, &mockInternLedger{}, nil, nil)

	onRoster, err := svc.Create(context.Background(), CreateInternRequest{Name: "Asha", Email: "asha@corp.test", BatchIDs: []string{"b1"}})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateInternRequest{Name: "Dev", Email: "dev@corp.test", BatchIDs: []string{"b2"}})
	require.NoError(t, err)

	removed, err := svc.DeleteByBatch(context.Background(), "b1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), removed)
	assert.Equal(t, []string{onRoster.ID}, repo.deleted)
	assert.Len(t, repo.interns, 1)
}

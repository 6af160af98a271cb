package material

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opstock/internal/core/apperror"
	"opstock/internal/core/id"
	"opstock/internal/domain"
)

type memTxManager struct{}

func (memTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memRepo is an in-memory Repository for service tests.
type memRepo struct {
	items       map[id.ID]*Material
	deleted     []id.ID
	softDeleted []id.ID
}

func newMemRepo(items ...*Material) *memRepo {
	r := &memRepo{items: make(map[id.ID]*Material)}
	for _, m := range items {
		r.store(m)
	}
	return r
}

// store keeps a shallow copy so callers mutating their pointer do not mutate
// the "persisted" row, same as a real database.
func (r *memRepo) store(m *Material) {
	cp := *m
	r.items[m.ID] = &cp
}

func (r *memRepo) Create(ctx context.Context, m *Material) error {
	r.store(m)
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, materialID id.ID) (*Material, error) {
	m, ok := r.items[materialID]
	if !ok {
		return nil, apperror.NewNotFound("material", materialID.String())
	}
	return m, nil
}

func (r *memRepo) GetByCode(ctx context.Context, code string) (*Material, error) {
	for _, m := range r.items {
		if m.Code == code {
			return m, nil
		}
	}
	return nil, apperror.NewNotFound("material", code)
}

func (r *memRepo) GetForUpdate(ctx context.Context, materialID id.ID) (*Material, error) {
	return r.GetByID(ctx, materialID)
}

func (r *memRepo) FindByNameFold(ctx context.Context, name string) (*Material, error) {
	for _, m := range r.items {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return nil, apperror.NewNotFound("material", name)
}

func (r *memRepo) Update(ctx context.Context, m *Material) error {
	r.store(m)
	return nil
}

func (r *memRepo) Delete(ctx context.Context, materialID id.ID) error {
	delete(r.items, materialID)
	r.deleted = append(r.deleted, materialID)
	return nil
}

func (r *memRepo) SetDeletionMark(ctx context.Context, materialID id.ID, marked bool) error {
	if m, ok := r.items[materialID]; ok {
		m.DeletionMark = marked
	}
	r.softDeleted = append(r.softDeleted, materialID)
	return nil
}

func (r *memRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Material], error) {
	return domain.ListResult[*Material]{}, nil
}

func (r *memRepo) ListFiltered(ctx context.Context, filter ListFilter) (domain.ListResult[*Material], error) {
	return domain.ListResult[*Material]{}, nil
}

func (r *memRepo) Exists(ctx context.Context, materialID id.ID) (bool, error) {
	_, ok := r.items[materialID]
	return ok, nil
}

func (r *memRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := r.GetByCode(ctx, code)
	return err == nil, nil
}

func TestCreate_RejectsNameDifferingOnlyInCase(t *testing.T) {
	ctx := context.Background()
	existing := NewMaterial("MAT-2026-00001", "Rice", "kg")
	repo := newMemRepo(existing)
	service := NewService(repo, memTxManager{}, nil)

	dup := NewMaterial("MAT-2026-00002", "rice", "kg")
	err := service.Create(ctx, dup)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)

	// the catalog still holds only the original
	assert.Len(t, repo.items, 1)
}

func TestCreate_TrimsNameBeforeUniquenessCheck(t *testing.T) {
	ctx := context.Background()
	existing := NewMaterial("MAT-2026-00001", "Rice", "kg")
	repo := newMemRepo(existing)
	service := NewService(repo, memTxManager{}, nil)

	dup := NewMaterial("MAT-2026-00002", "  RICE  ", "kg")
	err := service.Create(ctx, dup)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestDelete_RemovesRow(t *testing.T) {
	ctx := context.Background()
	existing := NewMaterial("MAT-2026-00001", "Rice", "kg")
	repo := newMemRepo(existing)
	service := NewService(repo, memTxManager{}, nil)

	require.NoError(t, service.Delete(ctx, existing.ID))

	// physical delete, not a deletion mark
	assert.Equal(t, []id.ID{existing.ID}, repo.deleted)
	assert.Empty(t, repo.softDeleted)
	assert.Empty(t, repo.items)
}

func TestSetDeletionMark_KeepsRow(t *testing.T) {
	ctx := context.Background()
	existing := NewMaterial("MAT-2026-00001", "Rice", "kg")
	repo := newMemRepo(existing)
	service := NewService(repo, memTxManager{}, nil)

	require.NoError(t, service.SetDeletionMark(ctx, existing.ID, true))

	assert.Empty(t, repo.deleted)
	require.Len(t, repo.items, 1)
	assert.True(t, repo.items[existing.ID].DeletionMark)
}

func TestUpdate_NameCheckExcludesSelf(t *testing.T) {
	ctx := context.Background()
	existing := NewMaterial("MAT-2026-00001", "Rice", "kg")
	repo := newMemRepo(existing)
	service := NewService(repo, memTxManager{}, nil)

	// same name, different casing, same row: allowed
	existing.Name = "RICE"
	require.NoError(t, service.Update(ctx, existing))
	assert.Equal(t, "RICE", repo.items[existing.ID].Name)

	// renaming onto another material's name is still rejected
	other := NewMaterial("MAT-2026-00002", "Flour", "kg")
	require.NoError(t, repo.Create(ctx, other))

	other.Name = "rice"
	err := service.Update(ctx, other)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

package registry

import (
	"context"
	"testing"

	"github.com/elemently/builder-backend/internal/common"
	"github.com/elemently/builder-backend/internal/domain"
	"github.com/elemently/builder-backend/internal/repository"
	"github.com/elemently/builder-backend/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mock ContentRepository ---

type mockContentRepo struct {
	mock.Mock
}

func (m *mockContentRepo) Save(ctx context.Context, content *domain.Content) error {
	return m.Called(ctx, content).Error(0)
}

func (m *mockContentRepo) FindByID(ctx context.Context, id uint64) (*domain.Content, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Content), args.Error(1)
}

func (m *mockContentRepo) FindByIdentifier(ctx context.Context, identifier string) (*domain.Content, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Content), args.Error(1)
}

func (m *mockContentRepo) List(ctx context.Context, criteria repository.ListCriteria) ([]*domain.Content, int64, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Content), args.Get(1).(int64), args.Error(2)
}

func (m *mockContentRepo) Delete(ctx context.Context, content *domain.Content) error {
	return m.Called(ctx, content).Error(0)
}

func (m *mockContentRepo) DeleteByID(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func testContent() *domain.Content {
	return &domain.Content{
		ID:         1,
		Identifier: "page-abc1234",
		Type:       domain.TypePage,
		Status:     domain.StatusPending,
		Elements: domain.ElementList{
			{ID: "sec1", ElType: "section"},
		},
		Settings: domain.Settings{"title": "Home"},
	}
}

func newTestRegistry(repo repository.ContentRepository) ContentRegistry {
	return NewContentRegistry(repo, cache.NewTier(cache.NewMemoryStore(), nil))
}

func TestGetByIDHitsStoreOnce(t *testing.T) {
	repo := new(mockContentRepo)
	repo.On("FindByID", mock.Anything, uint64(1)).Return(testContent(), nil).Once()
	reg := newTestRegistry(repo)

	for i := 0; i < 3; i++ {
		c, err := reg.GetByID(context.Background(), 1)
		assert.NoError(t, err)
		assert.Equal(t, uint64(1), c.ID)
		assert.Equal(t, "page-abc1234", c.Identifier)
	}

	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "FindByID", 1)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := new(mockContentRepo)
	repo.On("FindByID", mock.Anything, uint64(9)).Return(nil, common.ErrContentNotFound)
	reg := newTestRegistry(repo)

	c, err := reg.GetByID(context.Background(), 9)
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestIdentifierForwarding(t *testing.T) {
	repo := new(mockContentRepo)
	repo.On("FindByID", mock.Anything, uint64(1)).Return(testContent(), nil).Once()
	reg := newTestRegistry(repo)

	c, err := reg.GetByID(context.Background(), 1)
	assert.NoError(t, err)
	assert.NotNil(t, c)

	// resolving by identifier now rides the forwarding entry; no further
	// store access of any kind
	c2, err := reg.GetByIdentifier(context.Background(), "page-abc1234")
	assert.NoError(t, err)
	assert.Equal(t, c.ID, c2.ID)

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "FindByIdentifier", mock.Anything, mock.Anything)
}

func TestIdentifierForwardingReverse(t *testing.T) {
	repo := new(mockContentRepo)
	repo.On("FindByIdentifier", mock.Anything, "page-abc1234").Return(testContent(), nil).Once()
	reg := newTestRegistry(repo)

	c, err := reg.GetByIdentifier(context.Background(), "page-abc1234")
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), c.ID)

	c2, err := reg.GetByID(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, c.Identifier, c2.Identifier)

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestGetByIdentifierNotFound(t *testing.T) {
	repo := new(mockContentRepo)
	repo.On("FindByIdentifier", mock.Anything, "missing").Return(nil, common.ErrContentNotFound)
	reg := newTestRegistry(repo)

	c, err := reg.GetByIdentifier(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestScopeShortCircuitsEverything(t *testing.T) {
	repo := new(mockContentRepo)
	repo.On("FindByID", mock.Anything, uint64(1)).Return(testContent(), nil).Once()
	// tier-less registry: without the scope every call would hit the store
	reg := NewContentRegistry(repo, nil)

	ctx := WithScope(context.Background())

	c, err := reg.GetByID(ctx, 1)
	assert.NoError(t, err)
	assert.NotNil(t, c)

	c2, err := reg.GetByID(ctx, 1)
	assert.NoError(t, err)
	assert.Same(t, c, c2)

	c3, err := reg.GetByIdentifier(ctx, "page-abc1234")
	assert.NoError(t, err)
	assert.Same(t, c, c3)

	repo.AssertNumberOfCalls(t, "FindByID", 1)
}

func TestInvalidate(t *testing.T) {
	repo := new(mockContentRepo)
	repo.On("FindByID", mock.Anything, uint64(1)).Return(testContent(), nil).Twice()
	reg := newTestRegistry(repo)

	ctx := WithScope(context.Background())

	c, err := reg.GetByID(ctx, 1)
	assert.NoError(t, err)
	assert.NotNil(t, c)

	assert.NoError(t, reg.Invalidate(ctx, c))

	// instance entry is gone and the cache entry was evicted, so the next
	// resolution reads the store again
	assert.Nil(t, ScopeFrom(ctx).ByID(1))
	_, err = reg.GetByID(ctx, 1)
	assert.NoError(t, err)
	repo.AssertNumberOfCalls(t, "FindByID", 2)
}

func TestInvalidateClearsIdentifierForward(t *testing.T) {
	repo := new(mockContentRepo)
	repo.On("FindByID", mock.Anything, uint64(1)).Return(testContent(), nil).Once()
	repo.On("FindByIdentifier", mock.Anything, "page-abc1234").Return(nil, common.ErrContentNotFound).Once()
	reg := newTestRegistry(repo)

	c, err := reg.GetByID(context.Background(), 1)
	assert.NoError(t, err)
	assert.NoError(t, reg.Invalidate(context.Background(), c))

	// the forward entry was cleaned with the id entry, so an identifier
	// lookup reaches the store instead of returning stale data
	got, err := reg.GetByIdentifier(context.Background(), "page-abc1234")
	assert.NoError(t, err)
	assert.Nil(t, got)
	repo.AssertExpectations(t)
}

func TestInvalidateAll(t *testing.T) {
	repo := new(mockContentRepo)
	repo.On("FindByID", mock.Anything, uint64(1)).Return(testContent(), nil).Twice()
	reg := newTestRegistry(repo)

	_, err := reg.GetByID(context.Background(), 1)
	assert.NoError(t, err)

	assert.NoError(t, reg.InvalidateAll(context.Background()))

	_, err = reg.GetByID(context.Background(), 1)
	assert.NoError(t, err)
	repo.AssertNumberOfCalls(t, "FindByID", 2)
}

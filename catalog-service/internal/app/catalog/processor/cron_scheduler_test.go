package processor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront/catalog-service/internal/app/catalog/repository"
	"storefront/catalog-service/internal/app/catalog/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticModels struct {
	models *repository.Models
	err    error
}

func (s staticModels) Models(context.Context) (*repository.Models, error) {
	return s.models, s.err
}

type memoryCountCache struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newMemoryCountCache() *memoryCountCache {
	return &memoryCountCache{counts: map[string]int64{}}
}

func (m *memoryCountCache) GetCount(_ context.Context, model string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count, ok := m.counts[model]
	return count, ok, nil
}

func (m *memoryCountCache) SetCount(_ context.Context, model string, count int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[model] = count
	return nil
}

func (m *memoryCountCache) Invalidate(_ context.Context, model string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.counts, model)
	return nil
}

func (m *memoryCountCache) Close() error { return nil }

func setupScheduler() (*CronScheduler, *mocks.MockProductRepository, *mocks.MockCategoryRepository, *memoryCountCache) {
	products := new(mocks.MockProductRepository)
	categories := new(mocks.MockCategoryRepository)
	cache := newMemoryCountCache()

	scheduler := NewCronScheduler(staticModels{models: &repository.Models{Product: products, Category: categories}}, cache)
	return scheduler, products, categories, cache
}

// ===================== RefreshCounts Tests =====================

func TestCronScheduler_RefreshCounts(t *testing.T) {
	// Arrange
	scheduler, products, categories, cache := setupScheduler()
	products.On("Count", mock.Anything).Return(int64(12), nil)
	categories.On("Count", mock.Anything).Return(int64(4), nil)

	// Act
	err := scheduler.RefreshCounts(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Product": 12, "Category": 4}, cache.counts)
}

func TestCronScheduler_RefreshCounts_PartialFailure(t *testing.T) {
	scheduler, products, categories, cache := setupScheduler()
	products.On("Count", mock.Anything).Return(int64(0), errors.New("timeout"))
	categories.On("Count", mock.Anything).Return(int64(4), nil)

	err := scheduler.RefreshCounts(context.Background())

	assert.ErrorContains(t, err, "Product")
	assert.Equal(t, map[string]int64{"Category": 4}, cache.counts)
}

func TestCronScheduler_RefreshCounts_NoConnection(t *testing.T) {
	scheduler := NewCronScheduler(staticModels{err: errors.New("no reachable servers")}, newMemoryCountCache())

	err := scheduler.RefreshCounts(context.Background())

	assert.ErrorContains(t, err, "no reachable servers")
}

func TestCronScheduler_RefreshCounts_WithoutCache(t *testing.T) {
	products := new(mocks.MockProductRepository)
	products.On("Count", mock.Anything).Return(int64(1), nil)
	scheduler := NewCronScheduler(staticModels{models: &repository.Models{Product: products}}, nil)

	assert.NoError(t, scheduler.RefreshCounts(context.Background()))
	products.AssertExpectations(t)
}

// ===================== Start / Stop Tests =====================

func TestCronScheduler_Start_Success(t *testing.T) {
	// Arrange
	scheduler, products, categories, _ := setupScheduler()
	products.On("Count", mock.Anything).Return(int64(1), nil)
	categories.On("Count", mock.Anything).Return(int64(1), nil)

	// Act
	err := scheduler.Start(context.Background(), "*/5 * * * *")

	// Assert
	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)

	// Cleanup
	scheduler.Stop()
	products.AssertExpectations(t)
}

func TestCronScheduler_Start_InvalidSchedule(t *testing.T) {
	scheduler, _, _, _ := setupScheduler()

	err := scheduler.Start(context.Background(), "invalid cron expression")

	assert.Error(t, err)
	assert.Empty(t, scheduler.GetEntries())
}

func TestCronScheduler_JobExecution(t *testing.T) {
	scheduler, products, categories, _ := setupScheduler()
	products.On("Count", mock.Anything).Return(int64(1), nil)
	categories.On("Count", mock.Anything).Return(int64(1), nil)

	err := scheduler.Start(context.Background(), "@every 1s")
	require.NoError(t, err)

	time.Sleep(1500 * time.Millisecond)
	scheduler.Stop()

	// начальный запуск + минимум один по расписанию
	assert.GreaterOrEqual(t, len(products.Calls), 2)
}

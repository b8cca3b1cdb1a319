package util

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"storefront/catalog-service/internal/app/catalog/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

type recordingCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *recordingCache) GetCount(context.Context, string) (int64, bool, error) { return 0, false, nil }
func (c *recordingCache) SetCount(context.Context, string, int64) error { return nil }
func (c *recordingCache) Close() error { return nil }

func (c *recordingCache) Invalidate(_ context.Context, model string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, model)
	return nil
}

func TestCatalogNotifier_ProductCreated(t *testing.T) {
	// Arrange
	publisher := new(mockPublisher)
	cache := &recordingCache{}
	notifier := NewCatalogNotifier(publisher, cache)

	product := &entity.Product{ID: primitive.NewObjectID(), Name: "Blueberry jam", Slug: "blueberry-jam", Price: 4.5}

	var payload []byte
	publisher.On("PublishMessage", mock.Anything, product.ID.Hex(), mock.Anything).
		Run(func(args mock.Arguments) { payload = args.Get(2).([]byte) }).
		Return(nil)

	// Act
	notifier.ProductChanged(entity.EventProductCreated, product)
	notifier.Wait()

	// Assert
	publisher.AssertExpectations(t)
	assert.Equal(t, []string{"Product"}, cache.invalidated)

	var event entity.CatalogEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, entity.EventProductCreated, event.EventType)
	assert.Equal(t, "blueberry-jam", event.Slug)
	require.NotNil(t, event.Price)
	assert.Equal(t, 4.5, *event.Price)
}

func TestCatalogNotifier_UpdateKeepsCount(t *testing.T) {
	publisher := new(mockPublisher)
	cache := &recordingCache{}
	notifier := NewCatalogNotifier(publisher, cache)

	publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	notifier.CategoryChanged(entity.EventCategoryUpdated, &entity.Category{ID: primitive.NewObjectID(), Name: "Berries"})
	notifier.Wait()

	publisher.AssertNumberOfCalls(t, "PublishMessage", 1)
	assert.Empty(t, cache.invalidated)
}

func TestCatalogNotifier_PublishErrorIsSwallowed(t *testing.T) {
	publisher := new(mockPublisher)
	cache := &recordingCache{}
	notifier := NewCatalogNotifier(publisher, cache)

	publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	assert.NotPanics(t, func() {
		notifier.CategoryChanged(entity.EventCategoryDeleted, &entity.Category{ID: primitive.NewObjectID(), Name: "Berries"})
		notifier.Wait()
	})
	assert.Equal(t, []string{"Category"}, cache.invalidated)
}

func TestCatalogNotifier_NoReceivers(t *testing.T) {
	notifier := NewCatalogNotifier(nil, nil)

	assert.NotPanics(t, func() {
		notifier.ProductChanged(entity.EventProductDeleted, &entity.Product{ID: primitive.NewObjectID()})
		notifier.Wait()
	})
}

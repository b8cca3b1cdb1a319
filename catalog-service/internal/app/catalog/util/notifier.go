package util

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
)

const defaultNotifyTimeout = 5 * time.Second

// CatalogNotifier публикует события каталога в Kafka и сбрасывает кеш количества документов.
// Оба получателя необязательны.
type CatalogNotifier struct {
	publisher MessagePublisher
	counts    CountCache
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewCatalogNotifier создает нотификатор; publisher и counts могут быть nil
func NewCatalogNotifier(publisher MessagePublisher, counts CountCache) *CatalogNotifier {
	return &CatalogNotifier{
		publisher: publisher,
		counts:    counts,
		timeout:   defaultNotifyTimeout,
	}
}

func (n *CatalogNotifier) CategoryChanged(eventType string, category *entity.Category) {
	n.dispatch(entity.NewCategoryEvent(eventType, category))
}

func (n *CatalogNotifier) ProductChanged(eventType string, product *entity.Product) {
	n.dispatch(entity.NewProductEvent(eventType, product))
}

// Wait дожидается завершения всех фоновых отправок
func (n *CatalogNotifier) Wait() {
	n.wg.Wait()
}

func (n *CatalogNotifier) dispatch(event entity.CatalogEvent) {
	metrics.RecordCatalogChange(event.Entity, event.Action())

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		// Запрос уже завершен, поэтому контекст отдельный
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		// Количество меняется только при создании и удалении
		if n.counts != nil && event.Action() != "updated" {
			if err := n.counts.Invalidate(ctx, event.Entity); err != nil {
				logger.Warn().
					Err(err).
					Str("model", event.Entity).
					Msg("Failed to invalidate document count")
			}
		}

		if n.publisher == nil {
			return
		}

		payload, err := json.Marshal(event)
		if err != nil {
			logger.Error().Err(err).Str("event_type", event.EventType).Msg("Failed to marshal catalog event")
			return
		}

		if err := n.publisher.PublishMessage(ctx, event.ID, payload); err != nil {
			logger.Warn().
				Err(err).
				Str("event_type", event.EventType).
				Str("id", event.ID).
				Msg("Failed to publish catalog event")
			return
		}

		logger.Debug().
			Str("event_type", event.EventType).
			Str("id", event.ID).
			Msg("Catalog event published")
	}()
}

package entity

import (
	"strings"
	"time"
)

// Типы событий каталога, отправляемых в Kafka
const (
	EventCategoryCreated = "CATEGORY_CREATED"
	EventCategoryUpdated = "CATEGORY_UPDATED"
	EventCategoryDeleted = "CATEGORY_DELETED"
	EventProductCreated  = "PRODUCT_CREATED"
	EventProductUpdated  = "PRODUCT_UPDATED"
	EventProductDeleted  = "PRODUCT_DELETED"
)

// CatalogEvent - событие изменения документа каталога
type CatalogEvent struct {
	EventType string    `json:"event_type"`
	Entity    string    `json:"entity"` // Product | Category
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Price     *float64  `json:"price,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCategoryEvent собирает событие по категории
func NewCategoryEvent(eventType string, c *Category) CatalogEvent {
	return CatalogEvent{
		EventType: eventType,
		Entity:    "Category",
		ID:        c.ID.Hex(),
		Name:      c.Name,
		Slug:      c.Slug,
		Timestamp: time.Now(),
	}
}

// NewProductEvent собирает событие по товару
func NewProductEvent(eventType string, p *Product) CatalogEvent {
	price := p.Price
	return CatalogEvent{
		EventType: eventType,
		Entity:    "Product",
		ID:        p.ID.Hex(),
		Name:      p.Name,
		Slug:      p.Slug,
		Price:     &price,
		Timestamp: time.Now(),
	}
}

// Action возвращает действие события в нижнем регистре: created, updated, deleted
func (e CatalogEvent) Action() string {
	if i := strings.LastIndex(e.EventType, "_"); i >= 0 {
		return strings.ToLower(e.EventType[i+1:])
	}
	return strings.ToLower(e.EventType)
}

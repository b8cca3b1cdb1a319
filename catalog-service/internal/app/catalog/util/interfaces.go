package util

import (
	"context"

	"storefront/catalog-service/internal/app/catalog/entity"
)

// CountCache интерфейс для кеша количества документов по моделям
// Используется для dependency injection и упрощения тестирования
type CountCache interface {
	// GetCount возвращает закешированное значение; found=false при промахе
	GetCount(ctx context.Context, model string) (count int64, found bool, err error)
	SetCount(ctx context.Context, model string, count int64) error
	Invalidate(ctx context.Context, model string) error
	Close() error
}

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
// Используется для dependency injection и упрощения тестирования
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// PaymentGateway - платежный шлюз, создающий намерение оплаты
type PaymentGateway interface {
	CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error)
}

// ChangeNotifier получает уведомления об изменениях каталога.
// Вызовы не блокируют запрос: доставка выполняется в фоне.
type ChangeNotifier interface {
	CategoryChanged(eventType string, category *entity.Category)
	ProductChanged(eventType string, product *entity.Product)
}

// PaymentRequest - параметры платежа
type PaymentRequest struct {
	Amount      int64 // В минимальных единицах валюты
	Currency    string
	Description string
	Metadata    map[string]string
}

// Payment - созданное намерение оплаты
type Payment struct {
	ID           string
	ClientSecret string
}

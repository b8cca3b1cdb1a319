package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/catalog-service/internal/app/catalog/entity"

	"go.mongodb.org/mongo-driver/mongo"
)

const metricsService = "catalog-service"

var (
	// Стандартные ошибки репозитория для обработки в handlers
	ErrNotFound      = errors.New("document not found")
	ErrDuplicateSlug = errors.New("slug already exists")
	ErrUnknownModel  = errors.New("unknown model")
)

// CategoryRepository определяет методы для работы с категориями в MongoDB
type CategoryRepository interface {
	Paginate(ctx context.Context, q PageQuery) (*Page[entity.Category], error)
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	Create(ctx context.Context, category *entity.Category) error
	Update(ctx context.Context, id string, req *entity.CategoryRequest) (*entity.Category, error)
	Delete(ctx context.Context, id string) (*entity.Category, error)
	Count(ctx context.Context) (int64, error)
}

// ProductRepository определяет методы для работы с товарами в MongoDB
type ProductRepository interface {
	Paginate(ctx context.Context, q PageQuery) (*Page[entity.Product], error)
	GetByID(ctx context.Context, id string, populates ...string) (*entity.Product, error)
	Create(ctx context.Context, product *entity.Product) error
	Update(ctx context.Context, id string, req *entity.ProductRequest) (*entity.Product, error)
	Delete(ctx context.Context, id string) (*entity.Product, error)
	Count(ctx context.Context) (int64, error)
}

// Counter - все, что умеет считать свои документы
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// ModelName - закрытый набор моделей, доступных обработчикам
type ModelName string

const (
	ModelProduct  ModelName = "Product"
	ModelCategory ModelName = "Category"
)

// AvailableModels перечисляет все модели в фиксированном порядке
var AvailableModels = []ModelName{ModelProduct, ModelCategory}

// ParseModelName превращает строку из запроса в ModelName
func ParseModelName(s string) (ModelName, error) {
	name := ModelName(strings.TrimSpace(s))
	for _, m := range AvailableModels {
		if m == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModel, s)
}

// Models - фиксированный набор обработчиков доступа к данным, по одному на тип документа
type Models struct {
	Product  ProductRepository
	Category CategoryRepository
}

// NewModels создает репозитории поверх базы и гарантирует индексы
func NewModels(ctx context.Context, db *mongo.Database) *Models {
	return &Models{
		Product:  NewProductRepository(ctx, db),
		Category: NewCategoryRepository(ctx, db),
	}
}

// Counter возвращает обработчик модели для подсчета документов.
// nil, если обработчик модели не сконфигурирован.
func (m *Models) Counter(name ModelName) Counter {
	if m == nil {
		return nil
	}
	switch name {
	case ModelProduct:
		if m.Product != nil {
			return m.Product
		}
	case ModelCategory:
		if m.Category != nil {
			return m.Category
		}
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const categoriesCollection = "categories"

type categoryRepository struct {
	collection *mongo.Collection
}

// NewCategoryRepository создает новый репозиторий категорий
// Автоматически создает уникальный индекс по slug
func NewCategoryRepository(ctx context.Context, db *mongo.Database) CategoryRepository {
	collection := db.Collection(categoriesCollection)

	ensureIndexes(ctx, collection,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("slug_unique_idx").SetUnique(true),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "parent", Value: 1}},
			Options: options.Index().SetName("parent_idx"),
		},
	)

	return &categoryRepository{collection: collection}
}

// Paginate возвращает страницу категорий
func (r *categoryRepository) Paginate(ctx context.Context, q PageQuery) (*Page[entity.Category], error) {
	timer := metrics.NewMongoTimer(metricsService, metrics.MongoOpAggregate, categoriesCollection)
	defer timer.ObserveDuration()

	page, err := Paginate[entity.Category](ctx, r.collection, q, nil)
	if err != nil {
		metrics.RecordMongoError(metricsService, metrics.MongoOpAggregate)
		return nil, fmt.Errorf("failed to paginate categories: %w", err)
	}
	return page, nil
}

// GetByID получает категорию по ID.
// Некорректный ID трактуется как отсутствующий документ.
func (r *categoryRepository) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	timer := metrics.NewMongoTimer(metricsService, metrics.MongoOpFind, categoriesCollection)
	defer timer.ObserveDuration()

	var category entity.Category
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		metrics.RecordMongoError(metricsService, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &category, nil
}

// Create создает новую категорию в MongoDB
// Уникальность slug проверяется индексом slug_unique_idx
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	timer := metrics.NewMongoTimer(metricsService, metrics.MongoOpInsert, categoriesCollection)
	defer timer.ObserveDuration()

	result, err := r.collection.InsertOne(ctx, category)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSlug
		}
		metrics.RecordMongoError(metricsService, metrics.MongoOpInsert)
		return fmt.Errorf("failed to create category: %w", err)
	}

	// Устанавливаем ID из результата вставки
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		category.ID = oid
	}

	return nil
}

// Update обновляет категорию и возвращает документ после обновления.
// Slug пересчитывается из нового имени, незаданные поля не трогаются.
func (r *categoryRepository) Update(ctx context.Context, id string, req *entity.CategoryRequest) (*entity.Category, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	timer := metrics.NewMongoTimer(metricsService, metrics.MongoOpUpdate, categoriesCollection)
	defer timer.ObserveDuration()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var category entity.Category
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": categoryChanges(req, time.Now())}, opts).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateSlug
		}
		metrics.RecordMongoError(metricsService, metrics.MongoOpUpdate)
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return &category, nil
}

// Delete удаляет категорию и возвращает удаленный документ
func (r *categoryRepository) Delete(ctx context.Context, id string) (*entity.Category, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	timer := metrics.NewMongoTimer(metricsService, metrics.MongoOpDelete, categoriesCollection)
	defer timer.ObserveDuration()

	var category entity.Category
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": objectID}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		metrics.RecordMongoError(metricsService, metrics.MongoOpDelete)
		return nil, fmt.Errorf("failed to delete category: %w", err)
	}

	return &category, nil
}

// Count возвращает количество категорий
func (r *categoryRepository) Count(ctx context.Context) (int64, error) {
	timer := metrics.NewMongoTimer(metricsService, metrics.MongoOpCount, categoriesCollection)
	defer timer.ObserveDuration()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		metrics.RecordMongoError(metricsService, metrics.MongoOpCount)
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return count, nil
}

func categoryChanges(req *entity.CategoryRequest, now time.Time) bson.M {
	set := bson.M{
		"name":      req.Name,
		"slug":      entity.Slugify(req.Name),
		"updatedAt": now,
	}
	if req.Description != "" {
		set["description"] = req.Description
	}
	if req.Parent != "" {
		if oid, err := primitive.ObjectIDFromHex(req.Parent); err == nil {
			set["parent"] = oid
		}
	}
	if req.Image != "" {
		set["image"] = req.Image
	}
	if req.IsActive != nil {
		set["isActive"] = *req.IsActive
	}
	if req.SEOTitle != "" {
		set["seoTitle"] = req.SEOTitle
	}
	if req.SEODescription != "" {
		set["seoDescription"] = req.SEODescription
	}
	if req.SortOrder != nil {
		set["sortOrder"] = *req.SortOrder
	}
	return set
}

// ensureIndexes создает индексы коллекции.
// Ошибка только логируется: индекс может уже существовать.
func ensureIndexes(ctx context.Context, collection *mongo.Collection, models ...mongo.IndexModel) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, model := range models {
		if _, err := collection.Indexes().CreateOne(ctx, model); err != nil {
			logger.Warn().
				Err(err).
				Str("collection", collection.Name()).
				Msg("Failed to create index")
		}
	}
}

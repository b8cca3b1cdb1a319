package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productsCollection = "products"

// productReferences - ссылочные поля товара, которые можно раскрыть через populate
var productReferences = References{
	"category": {From: categoriesCollection, LocalField: "category"},
}

type productRepository struct {
	collection *mongo.Collection
}

// NewProductRepository создает новый репозиторий товаров
// Автоматически создает уникальный индекс по slug и индекс по category
func NewProductRepository(ctx context.Context, db *mongo.Database) ProductRepository {
	collection := db.Collection(productsCollection)

	ensureIndexes(ctx, collection,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("slug_unique_idx").SetUnique(true),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("category_idx"),
		},
	)

	return &productRepository{collection: collection}
}

// Paginate возвращает страницу товаров, раскрывая запрошенные ссылки
func (r *productRepository) Paginate(ctx context.Context, q PageQuery) (*Page[entity.Product], error) {
	timer := metrics.NewMongoTimer(metricsService, metrics.MongoOpAggregate, productsCollection)
	defer timer.ObserveDuration()

	page, err := Paginate[entity.Product](ctx, r.collection, q, productReferences)
	if err != nil {
		metrics.RecordMongoError(metricsService, metrics.MongoOpAggregate)
		return nil, fmt.Errorf("failed to paginate products: %w", err)
	}
	return page, nil
}

// GetByID получает товар по ID, раскрывая запрошенные ссылки
func (r *productRepository) GetByID(ctx context.Context, id string, populates ...string) (*entity.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	timer := metrics.NewMongoTimer(metricsService, metrics.MongoOpAggregate, productsCollection)
	defer timer.ObserveDuration()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": objectID}}},
		{{Key: "$limit", Value: 1}},
	}
	pipeline = append(pipeline, productReferences.stages(populates)...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		metrics.RecordMongoError(metricsService, metrics.MongoOpAggregate)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			metrics.RecordMongoError(metricsService, metrics.MongoOpAggregate)
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
		return nil, ErrNotFound
	}

	var product entity.Product
	if err := cursor.Decode(&product); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}

	return &product, nil
}

// Create создает новый товар в MongoDB
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	timer := metrics.NewMongoTimer(metricsService, metrics.MongoOpInsert, productsCollection)
	defer timer.ObserveDuration()

	result, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSlug
		}
		metrics.RecordMongoError(metricsService, metrics.MongoOpInsert)
		return fmt.Errorf("failed to create product: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}

	return nil
}

// Update обновляет товар и возвращает документ после обновления
func (r *productRepository) Update(ctx context.Context, id string, req *entity.ProductRequest) (*entity.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	timer := metrics.NewMongoTimer(metricsService, metrics.MongoOpUpdate, productsCollection)
	defer timer.ObserveDuration()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product entity.Product
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": productChanges(req, time.Now())}, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateSlug
		}
		metrics.RecordMongoError(metricsService, metrics.MongoOpUpdate)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &product, nil
}

// Delete удаляет товар и возвращает удаленный документ
func (r *productRepository) Delete(ctx context.Context, id string) (*entity.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	timer := metrics.NewMongoTimer(metricsService, metrics.MongoOpDelete, productsCollection)
	defer timer.ObserveDuration()

	var product entity.Product
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": objectID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		metrics.RecordMongoError(metricsService, metrics.MongoOpDelete)
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	return &product, nil
}

// Count возвращает количество товаров
func (r *productRepository) Count(ctx context.Context) (int64, error) {
	timer := metrics.NewMongoTimer(metricsService, metrics.MongoOpCount, productsCollection)
	defer timer.ObserveDuration()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		metrics.RecordMongoError(metricsService, metrics.MongoOpCount)
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func productChanges(req *entity.ProductRequest, now time.Time) bson.M {
	set := bson.M{
		"name":      req.Name,
		"slug":      entity.Slugify(req.Name),
		"images":    req.Images,
		"updatedAt": now,
	}
	if req.Description != "" {
		set["description"] = req.Description
	}
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.Stock != nil {
		set["stock"] = *req.Stock
	}
	if req.Category != "" {
		if oid, err := primitive.ObjectIDFromHex(req.Category); err == nil {
			set["category"] = oid
		}
	}
	if req.IsActive != nil {
		set["isActive"] = *req.IsActive
	}
	return set
}

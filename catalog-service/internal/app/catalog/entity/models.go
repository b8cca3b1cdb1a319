package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category представляет категорию товаров (коллекция categories)
type Category struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name           string              `json:"name" bson:"name"`
	Slug           string              `json:"slug" bson:"slug"` // Уникальный, вычисляется из Name
	Description    string              `json:"description,omitempty" bson:"description,omitempty"`
	Parent         *primitive.ObjectID `json:"parent,omitempty" bson:"parent,omitempty"` // Родительская категория
	Image          string              `json:"image,omitempty" bson:"image,omitempty"`
	IsActive       bool                `json:"isActive" bson:"isActive"`
	SEOTitle       string              `json:"seoTitle,omitempty" bson:"seoTitle,omitempty"`
	SEODescription string              `json:"seoDescription,omitempty" bson:"seoDescription,omitempty"`
	SortOrder      *int                `json:"sortOrder,omitempty" bson:"sortOrder,omitempty"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// Product представляет товар в каталоге (коллекция products)
type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Slug        string             `json:"slug" bson:"slug"`
	Description string             `json:"description" bson:"description"`
	Price       float64            `json:"price" bson:"price"` // Цена в основной валюте магазина
	Stock       int                `json:"stock" bson:"stock"`
	Images      []string           `json:"images" bson:"images"`
	Category    *CategoryRef       `json:"category,omitempty" bson:"category,omitempty"`
	IsActive    bool               `json:"isActive" bson:"isActive"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CategoryRef - ссылка товара на категорию.
// В MongoDB всегда хранится как ObjectID; после $lookup приходит вложенным документом.
// В JSON отдается либо hex-строкой, либо полным объектом категории.
type CategoryRef struct {
	ID       primitive.ObjectID
	Category *Category // nil, если ссылка не раскрыта
}

// NewCategoryRef создает нераскрытую ссылку на категорию
func NewCategoryRef(id primitive.ObjectID) *CategoryRef {
	return &CategoryRef{ID: id}
}

// Populated сообщает, раскрыта ли ссылка
func (r *CategoryRef) Populated() bool {
	return r != nil && r.Category != nil
}

func (r CategoryRef) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(r.ID)
}

func (r *CategoryRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.ObjectID:
		oid, ok := bson.RawValue{Type: t, Value: data}.ObjectIDOK()
		if !ok {
			return fmt.Errorf("invalid category reference")
		}
		r.ID = oid
		r.Category = nil
		return nil
	case bsontype.EmbeddedDocument:
		var category Category
		if err := bson.Unmarshal(data, &category); err != nil {
			return fmt.Errorf("failed to decode populated category: %w", err)
		}
		r.ID = category.ID
		r.Category = &category
		return nil
	case bsontype.Null, bsontype.Undefined:
		*r = CategoryRef{}
		return nil
	default:
		return fmt.Errorf("unexpected bson type %s for category reference", t)
	}
}

func (r CategoryRef) MarshalJSON() ([]byte, error) {
	if r.Category != nil {
		return json.Marshal(r.Category)
	}
	return json.Marshal(r.ID.Hex())
}

func (r *CategoryRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '{' {
		var category Category
		if err := json.Unmarshal(data, &category); err != nil {
			return err
		}
		r.ID = category.ID
		r.Category = &category
		return nil
	}

	var hex string
	if err := json.Unmarshal(data, &hex); err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return fmt.Errorf("invalid category reference: %w", err)
	}
	r.ID = oid
	r.Category = nil
	return nil
}

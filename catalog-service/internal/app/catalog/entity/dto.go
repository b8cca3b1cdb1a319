package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryRequest - тело POST/PUT /api/category.
// slug не принимается от клиента: он всегда вычисляется из name.
type CategoryRequest struct {
	Name           string `json:"name" validate:"required,min=3,max=100"`
	Description    string `json:"description" validate:"omitempty,max=2000"`
	Parent         string `json:"parent" validate:"omitempty,mongodb"`
	Image          string `json:"image" validate:"omitempty,max=2048"`
	IsActive       *bool  `json:"isActive" validate:"omitempty"`
	SEOTitle       string `json:"seoTitle" validate:"omitempty,max=200"`
	SEODescription string `json:"seoDescription" validate:"omitempty,max=500"`
	SortOrder      *int   `json:"sortOrder" validate:"omitempty"`
}

// ToCategory собирает документ категории из запроса
func (r *CategoryRequest) ToCategory(now time.Time) *Category {
	category := &Category{
		Name:           r.Name,
		Slug:           Slugify(r.Name),
		Description:    r.Description,
		Image:          r.Image,
		IsActive:       true,
		SEOTitle:       r.SEOTitle,
		SEODescription: r.SEODescription,
		SortOrder:      r.SortOrder,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if r.IsActive != nil {
		category.IsActive = *r.IsActive
	}
	if r.Parent != "" {
		if oid, err := primitive.ObjectIDFromHex(r.Parent); err == nil {
			category.Parent = &oid
		}
	}
	return category
}

// ProductRequest - тело POST/PUT /api/product
type ProductRequest struct {
	Name        string   `json:"name" validate:"required,min=3,max=200"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Stock       *int     `json:"stock" validate:"required,gte=0"`
	Images      []string `json:"images" validate:"required,dive,required"`
	Category    string   `json:"category" validate:"omitempty,mongodb"`
	IsActive    *bool    `json:"isActive" validate:"omitempty"`
}

// ToProduct собирает документ товара из запроса
func (r *ProductRequest) ToProduct(now time.Time) *Product {
	product := &Product{
		Name:        r.Name,
		Slug:        Slugify(r.Name),
		Description: r.Description,
		Images:      r.Images,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if r.Price != nil {
		product.Price = *r.Price
	}
	if r.Stock != nil {
		product.Stock = *r.Stock
	}
	if r.IsActive != nil {
		product.IsActive = *r.IsActive
	}
	if r.Category != "" {
		if oid, err := primitive.ObjectIDFromHex(r.Category); err == nil {
			product.Category = NewCategoryRef(oid)
		}
	}
	return product
}

// CheckoutRequest - тело POST /api/product/:id/checkout
type CheckoutRequest struct {
	Quantity int `json:"quantity" validate:"omitempty,min=1,max=100"`
}

// CheckoutResponse - результат создания платежа у платежного шлюза
type CheckoutResponse struct {
	PaymentID    string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"` // В минимальных единицах валюты (центы)
	Currency     string `json:"currency"`
	Quantity     int    `json:"quantity"`
}

// ModelCount - количество документов одной модели
type ModelCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// DocumentCountResponse - ответ GET /api/document-count
type DocumentCountResponse struct {
	Total  int64        `json:"total"`
	Models []ModelCount `json:"models"`
}

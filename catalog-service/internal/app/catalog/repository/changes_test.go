package repository

import (
	"testing"
	"time"

	"storefront/catalog-service/internal/app/catalog/entity"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// ===================== categoryChanges Tests =====================

func TestCategoryChanges_RederivesSlug(t *testing.T) {
	// Arrange
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	req := &entity.CategoryRequest{Name: "Wild Berries!"}

	// Act
	set := categoryChanges(req, now)

	// Assert
	assert.Equal(t, "Wild Berries!", set["name"])
	assert.Equal(t, entity.Slugify("Wild Berries!"), set["slug"])
	assert.Equal(t, "wild-berries", set["slug"])
	assert.Equal(t, now, set["updatedAt"])
	assert.Len(t, set, 3)
	for _, key := range []string{"description", "parent", "image", "isActive", "seoTitle", "seoDescription", "sortOrder"} {
		assert.NotContains(t, set, key)
	}
}

func TestCategoryChanges_OptionalFields(t *testing.T) {
	parent := primitive.NewObjectID()
	req := &entity.CategoryRequest{
		Name:           "Berries",
		Description:    "Fresh and frozen",
		Parent:         parent.Hex(),
		Image:          "https://cdn.example.com/berries.png",
		IsActive:       boolPtr(false),
		SEOTitle:       "Berries",
		SEODescription: "Buy berries",
		SortOrder:      intPtr(0),
	}

	set := categoryChanges(req, time.Now())

	assert.Equal(t, parent, set["parent"])
	assert.Equal(t, "Fresh and frozen", set["description"])
	assert.Equal(t, "https://cdn.example.com/berries.png", set["image"])
	assert.Equal(t, false, set["isActive"])
	assert.Equal(t, "Berries", set["seoTitle"])
	assert.Equal(t, "Buy berries", set["seoDescription"])
	assert.Equal(t, 0, set["sortOrder"])
}

func TestCategoryChanges_InvalidParentIgnored(t *testing.T) {
	set := categoryChanges(&entity.CategoryRequest{Name: "Berries", Parent: "not-an-id"}, time.Now())

	assert.NotContains(t, set, "parent")
}

// ===================== productChanges Tests =====================

func TestProductChanges_RederivesSlug(t *testing.T) {
	// Arrange
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	req := &entity.ProductRequest{Name: "Strawberry Jam", Images: []string{"a.png"}}

	// Act
	set := productChanges(req, now)

	// Assert
	assert.Equal(t, "strawberry-jam", set["slug"])
	assert.Equal(t, entity.Slugify(req.Name), set["slug"])
	assert.Equal(t, now, set["updatedAt"])
	assert.Equal(t, []string{"a.png"}, set["images"])
	for _, key := range []string{"description", "price", "stock", "category", "isActive"} {
		assert.NotContains(t, set, key)
	}
}

func TestProductChanges_OptionalFields(t *testing.T) {
	category := primitive.NewObjectID()
	req := &entity.ProductRequest{
		Name:        "Strawberry Jam",
		Description: "Homemade",
		Price:       floatPtr(4.99),
		Stock:       intPtr(0),
		Images:      []string{},
		Category:    category.Hex(),
		IsActive:    boolPtr(true),
	}

	set := productChanges(req, time.Now())

	assert.Equal(t, category, set["category"])
	assert.Equal(t, "Homemade", set["description"])
	assert.Equal(t, 4.99, set["price"])
	assert.Equal(t, 0, set["stock"])
	assert.Equal(t, true, set["isActive"])
}

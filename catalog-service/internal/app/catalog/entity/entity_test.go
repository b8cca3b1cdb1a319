package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "Fresh Berries", want: "fresh-berries"},
		{name: "hyphen kept", in: "Cotton T-Shirts!", want: "cotton-t-shirts"},
		{name: "whitespace run", in: "Fresh \t\n Berries", want: "fresh-berries"},
		{name: "unicode spaces", in: "Fresh\u00a0Berries\u2003Mix", want: "fresh-berries-mix"},
		{name: "punctuation removed", in: "Berries & Fruits!", want: "berries--fruits"},
		{name: "non-latin removed", in: "Ягоды 2024", want: "-2024"},
		{name: "already slug", in: "fresh-berries", want: "fresh-berries"},
		{name: "only symbols", in: "!!!", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.in)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Slugify(got))
		})
	}
}

// ===================== CategoryRef Tests =====================

func TestCategoryRef_JSON_Unpopulated(t *testing.T) {
	oid := primitive.NewObjectID()
	product := Product{Name: "Blueberry", Category: NewCategoryRef(oid)}

	data, err := json.Marshal(product)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, oid.Hex(), raw["category"])

	var decoded Product
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, oid, decoded.Category.ID)
	assert.False(t, decoded.Category.Populated())
}

func TestCategoryRef_JSON_Populated(t *testing.T) {
	category := Category{ID: primitive.NewObjectID(), Name: "Berries", Slug: "berries"}
	product := Product{Name: "Blueberry", Category: &CategoryRef{ID: category.ID, Category: &category}}

	data, err := json.Marshal(product)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	nested, ok := raw["category"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Berries", nested["name"])

	var decoded Product
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Category.Populated())
	assert.Equal(t, category.ID, decoded.Category.ID)
}

func TestCategoryRef_JSON_InvalidHex(t *testing.T) {
	var ref CategoryRef

	err := json.Unmarshal([]byte(`"not-an-id"`), &ref)

	assert.Error(t, err)
}

func TestCategoryRef_BSON_StoredAsObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	category := Category{ID: oid, Name: "Berries"}
	product := Product{Name: "Blueberry", Category: &CategoryRef{ID: oid, Category: &category}}

	data, err := bson.Marshal(product)
	require.NoError(t, err)

	var raw bson.M
	require.NoError(t, bson.Unmarshal(data, &raw))
	assert.Equal(t, oid, raw["category"])
}

func TestCategoryRef_BSON_DecodesLookup(t *testing.T) {
	oid := primitive.NewObjectID()
	data, err := bson.Marshal(bson.M{
		"name":     "Blueberry",
		"category": bson.M{"_id": oid, "name": "Berries", "slug": "berries"},
	})
	require.NoError(t, err)

	var product Product
	require.NoError(t, bson.Unmarshal(data, &product))

	require.True(t, product.Category.Populated())
	assert.Equal(t, oid, product.Category.ID)
	assert.Equal(t, "Berries", product.Category.Category.Name)
}

func TestCategoryRef_BSON_DecodesObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	data, err := bson.Marshal(bson.M{"name": "Blueberry", "category": oid})
	require.NoError(t, err)

	var product Product
	require.NoError(t, bson.Unmarshal(data, &product))

	assert.Equal(t, oid, product.Category.ID)
	assert.False(t, product.Category.Populated())
}

// ===================== CatalogEvent Tests =====================

func TestCatalogEvent_Action(t *testing.T) {
	assert.Equal(t, "created", CatalogEvent{EventType: EventProductCreated}.Action())
	assert.Equal(t, "deleted", CatalogEvent{EventType: EventCategoryDeleted}.Action())
	assert.Equal(t, "custom", CatalogEvent{EventType: "CUSTOM"}.Action())
}

func TestNewProductEvent(t *testing.T) {
	product := &Product{ID: primitive.NewObjectID(), Name: "Blueberry", Slug: "blueberry", Price: 4.99}

	event := NewProductEvent(EventProductUpdated, product)

	assert.Equal(t, "Product", event.Entity)
	assert.Equal(t, product.ID.Hex(), event.ID)
	require.NotNil(t, event.Price)
	assert.Equal(t, 4.99, *event.Price)
	assert.False(t, event.Timestamp.IsZero())
}

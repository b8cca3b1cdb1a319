package handler

import (
	"storefront/catalog-service/internal/app/catalog/api"
	"storefront/catalog-service/internal/app/catalog/entity"

	"github.com/gin-gonic/gin"
)

// === PRODUCTS ===

// ListProducts GET /api/product
// Публичный: постраничный список с поиском по имени и populate=category
func (h *CatalogHandler) ListProducts(c *gin.Context, rc *api.Resources) (*api.Response, error) {
	repo, err := products(rc)
	if err != nil {
		return nil, err
	}

	q, err := pageQuery(c)
	if err != nil {
		return nil, err
	}
	q.Populates = populates(c)

	page, err := repo.Paginate(c.Request.Context(), q)
	if err != nil {
		return nil, err
	}
	return api.Success(page)
}

// CreateProduct POST /api/product
func (h *CatalogHandler) CreateProduct(c *gin.Context, rc *api.Resources) (*api.Response, error) {
	if err := rc.RequireStaff(); err != nil {
		return nil, err
	}
	repo, err := products(rc)
	if err != nil {
		return nil, err
	}

	var req entity.ProductRequest
	if err := h.bind(c, &req); err != nil {
		return nil, err
	}
	if entity.Slugify(req.Name) == "" {
		return nil, emptySlug()
	}

	product := req.ToProduct(h.now())
	if err := repo.Create(c.Request.Context(), product); err != nil {
		return nil, storeError(err, "Product not found")
	}

	rc.Notifier.ProductChanged(entity.EventProductCreated, product)
	return api.Created(product)
}

// GetProduct GET /api/product/:id
// Категория товара всегда раскрывается
func (h *CatalogHandler) GetProduct(c *gin.Context, rc *api.Resources) (*api.Response, error) {
	repo, err := products(rc)
	if err != nil {
		return nil, err
	}

	product, err := repo.GetByID(c.Request.Context(), rc.Param("id"), "category")
	if err != nil {
		return nil, storeError(err, "Product not found")
	}
	return api.Success(product)
}

// UpdateProduct PUT /api/product/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context, rc *api.Resources) (*api.Response, error) {
	if err := rc.RequireStaff(); err != nil {
		return nil, err
	}
	repo, err := products(rc)
	if err != nil {
		return nil, err
	}

	var req entity.ProductRequest
	if err := h.bind(c, &req); err != nil {
		return nil, err
	}
	if entity.Slugify(req.Name) == "" {
		return nil, emptySlug()
	}

	product, err := repo.Update(c.Request.Context(), rc.Param("id"), &req)
	if err != nil {
		return nil, storeError(err, "Product not found")
	}

	rc.Notifier.ProductChanged(entity.EventProductUpdated, product)
	return api.Success(product)
}

// DeleteProduct DELETE /api/product/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context, rc *api.Resources) (*api.Response, error) {
	if err := rc.RequireStaff(); err != nil {
		return nil, err
	}
	repo, err := products(rc)
	if err != nil {
		return nil, err
	}

	product, err := repo.Delete(c.Request.Context(), rc.Param("id"))
	if err != nil {
		return nil, storeError(err, "Product not found")
	}

	rc.Notifier.ProductChanged(entity.EventProductDeleted, product)
	return api.Success(product)
}

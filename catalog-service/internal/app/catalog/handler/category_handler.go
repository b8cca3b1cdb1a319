package handler

import (
	"storefront/catalog-service/internal/app/catalog/api"
	"storefront/catalog-service/internal/app/catalog/entity"

	"github.com/gin-gonic/gin"
)

// === CATEGORIES ===

// ListCategories GET /api/category
// Публичный: постраничный список с поиском по имени
func (h *CatalogHandler) ListCategories(c *gin.Context, rc *api.Resources) (*api.Response, error) {
	repo, err := categories(rc)
	if err != nil {
		return nil, err
	}

	q, err := pageQuery(c)
	if err != nil {
		return nil, err
	}

	page, err := repo.Paginate(c.Request.Context(), q)
	if err != nil {
		return nil, err
	}
	return api.Success(page)
}

// CreateCategory POST /api/category
// Только для персонала; slug вычисляется из name
func (h *CatalogHandler) CreateCategory(c *gin.Context, rc *api.Resources) (*api.Response, error) {
	if err := rc.RequireStaff(); err != nil {
		return nil, err
	}
	repo, err := categories(rc)
	if err != nil {
		return nil, err
	}

	var req entity.CategoryRequest
	if err := h.bind(c, &req); err != nil {
		return nil, err
	}
	if entity.Slugify(req.Name) == "" {
		return nil, emptySlug()
	}

	category := req.ToCategory(h.now())
	if err := repo.Create(c.Request.Context(), category); err != nil {
		return nil, storeError(err, "Category not found")
	}

	rc.Notifier.CategoryChanged(entity.EventCategoryCreated, category)
	return api.Created(category)
}

// GetCategory GET /api/category/:id
func (h *CatalogHandler) GetCategory(c *gin.Context, rc *api.Resources) (*api.Response, error) {
	repo, err := categories(rc)
	if err != nil {
		return nil, err
	}

	category, err := repo.GetByID(c.Request.Context(), rc.Param("id"))
	if err != nil {
		return nil, storeError(err, "Category not found")
	}
	return api.Success(category)
}

// UpdateCategory PUT /api/category/:id
// Только для персонала; slug пересчитывается из нового name
func (h *CatalogHandler) UpdateCategory(c *gin.Context, rc *api.Resources) (*api.Response, error) {
	if err := rc.RequireStaff(); err != nil {
		return nil, err
	}
	repo, err := categories(rc)
	if err != nil {
		return nil, err
	}

	var req entity.CategoryRequest
	if err := h.bind(c, &req); err != nil {
		return nil, err
	}
	if entity.Slugify(req.Name) == "" {
		return nil, emptySlug()
	}

	category, err := repo.Update(c.Request.Context(), rc.Param("id"), &req)
	if err != nil {
		return nil, storeError(err, "Category not found")
	}

	rc.Notifier.CategoryChanged(entity.EventCategoryUpdated, category)
	return api.Success(category)
}

// DeleteCategory DELETE /api/category/:id
// Только для персонала; возвращает удаленный документ
func (h *CatalogHandler) DeleteCategory(c *gin.Context, rc *api.Resources) (*api.Response, error) {
	if err := rc.RequireStaff(); err != nil {
		return nil, err
	}
	repo, err := categories(rc)
	if err != nil {
		return nil, err
	}

	category, err := repo.Delete(c.Request.Context(), rc.Param("id"))
	if err != nil {
		return nil, storeError(err, "Category not found")
	}

	rc.Notifier.CategoryChanged(entity.EventCategoryDeleted, category)
	return api.Success(category)
}

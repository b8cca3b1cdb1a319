package handler

import (
	"errors"
	"strings"
	"time"

	"storefront/catalog-service/internal/app/catalog/api"
	"storefront/catalog-service/internal/app/catalog/repository"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CatalogHandler обрабатывает HTTP запросы каталога.
// Все методы имеют форму api.ResourceHandler и подключаются через api.WithMiddleware.
type CatalogHandler struct {
	validator *validator.Validate
	currency  string
	now       func() time.Time
}

// NewCatalogHandler создает обработчик; currency - валюта платежей (ISO 4217, нижний регистр)
func NewCatalogHandler(currency string) *CatalogHandler {
	if currency == "" {
		currency = "usd"
	}
	return &CatalogHandler{
		validator: newValidator(),
		currency:  strings.ToLower(currency),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func categories(rc *api.Resources) (repository.CategoryRepository, error) {
	if rc.Models == nil || rc.Models.Category == nil {
		return nil, api.InternalServerError("Category model not found")
	}
	return rc.Models.Category, nil
}

func products(rc *api.Resources) (repository.ProductRepository, error) {
	if rc.Models == nil || rc.Models.Product == nil {
		return nil, api.InternalServerError("Product model not found")
	}
	return rc.Models.Product, nil
}

// pageQuery разбирает page, pageSize и строку поиска (query или q)
func pageQuery(c *gin.Context) (repository.PageQuery, error) {
	q, err := repository.ParsePageQuery(c.Query("page"), c.Query("pageSize"))
	if err != nil {
		return q, api.BadRequest("Invalid pagination parameters", map[string]any{
			"pageSize": []string{err.Error()},
		})
	}

	search, ok := c.GetQuery("query")
	if !ok {
		search = c.Query("q")
	}
	q.Where = repository.NameSearch(search)
	return q, nil
}

// populates разбирает populate=category,other
func populates(c *gin.Context) []string {
	var names []string
	for _, raw := range c.QueryArray("populate") {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

// storeError переводит ошибки репозитория в ответы API
func storeError(err error, notFound string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return api.NotFound(notFound)
	case errors.Is(err, repository.ErrDuplicateSlug):
		return api.Conflict("Slug already exists").
			WithMessage("Another document already uses a name with the same slug")
	default:
		return api.InternalServerError("Internal server error").WithCause(err)
	}
}

// emptySlug - имя, из которого не получается slug
func emptySlug() error {
	return api.BadRequest(invalidBodyMessage, map[string]any{
		"name": []string{"name must contain at least one latin letter or digit"},
	})
}

package handler

import (
	"context"
	"fmt"
	"strings"

	"storefront/catalog-service/internal/app/catalog/api"
	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/repository"
	"storefront/catalog-service/internal/app/catalog/util"
	"storefront/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// === DOCUMENT COUNT ===

// DocumentCount GET /api/document-count?models=Product,Category
// Публичный: количество документов по запрошенным моделям и их сумма.
// Без параметра models возвращает пустой список и total=0.
func (h *CatalogHandler) DocumentCount(c *gin.Context, rc *api.Resources) (*api.Response, error) {
	names, err := modelNames(c.Query("models"))
	if err != nil {
		return nil, api.BadRequest("Unknown model", map[string]any{
			"models":          []string{err.Error()},
			"availableFields": availableModels(),
		})
	}

	counts := make([]int64, len(names))
	g, ctx := errgroup.WithContext(c.Request.Context())
	for i, name := range names {
		counter := rc.Models.Counter(name)
		if counter == nil {
			return nil, api.InternalServerError(fmt.Sprintf("%s model not found", name))
		}

		g.Go(func() error {
			count, err := cachedCount(ctx, rc.Counts, name, counter)
			if err != nil {
				return err
			}
			counts[i] = count
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := entity.DocumentCountResponse{Models: make([]entity.ModelCount, 0, len(names))}
	for i, name := range names {
		resp.Total += counts[i]
		resp.Models = append(resp.Models, entity.ModelCount{Name: string(name), Count: counts[i]})
	}
	return api.Success(resp)
}

// modelNames разбирает список моделей через запятую, сохраняя порядок и убирая повторы
func modelNames(raw string) ([]repository.ModelName, error) {
	var names []repository.ModelName
	seen := make(map[repository.ModelName]bool)

	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		name, err := repository.ParseModelName(part)
		if err != nil {
			return nil, err
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names, nil
}

func availableModels() string {
	names := make([]string, 0, len(repository.AvailableModels))
	for _, m := range repository.AvailableModels {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}

// cachedCount читает количество из кеша, при промахе считает в MongoDB и кладет в кеш.
// Ошибки кеша не прерывают запрос.
func cachedCount(ctx context.Context, cache util.CountCache, name repository.ModelName, counter repository.Counter) (int64, error) {
	if cache != nil {
		count, found, err := cache.GetCount(ctx, string(name))
		if err != nil {
			logger.Warn().Err(err).Str("model", string(name)).Msg("Failed to read document count from cache")
		} else if found {
			return count, nil
		}
	}

	count, err := counter.Count(ctx)
	if err != nil {
		return 0, err
	}

	if cache != nil {
		if err := cache.SetCount(ctx, string(name), count); err != nil {
			logger.Warn().Err(err).Str("model", string(name)).Msg("Failed to cache document count")
		}
	}
	return count, nil
}

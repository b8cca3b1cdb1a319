package api

import (
	"context"
	"fmt"
	"sync"

	"storefront/catalog-service/internal/app/catalog/repository"
	"storefront/catalog-service/internal/app/catalog/util"

	"github.com/gin-gonic/gin"
)

// Resources - возможности, внедряемые в обработчик на время одного запроса
type Resources struct {
	Params   gin.Params
	Models   *repository.Models
	Payments util.PaymentGateway // nil, если платежи не сконфигурированы
	Notifier util.ChangeNotifier
	Counts   util.CountCache // nil, если Redis не сконфигурирован
	Identity *Identity

	staffOrgID string
}

// Param возвращает параметр маршрута
func (r *Resources) Param(name string) string {
	return r.Params.ByName(name)
}

// ResourceHandler - обработчик, получающий внедренные ресурсы
type ResourceHandler func(c *gin.Context, rc *Resources) (*Response, error)

// ResourceProvider выдает ресурсы для очередного запроса
type ResourceProvider interface {
	Acquire(ctx context.Context) (*Resources, error)
}

// WithResources - слой внедрения: подключение к хранилищу, модели, параметры маршрута и пользователь
func WithResources(p ResourceProvider, h ResourceHandler) Handler {
	return func(c *gin.Context) (*Response, error) {
		rc, err := p.Acquire(c.Request.Context())
		if err != nil {
			return nil, fmt.Errorf("failed to acquire request resources: %w", err)
		}
		rc.Params = c.Params
		rc.Identity = IdentityFrom(c)
		return h(c, rc)
	}
}

// ModelSource лениво выдает набор моделей; реализуется repository.Connection
type ModelSource interface {
	Models(ctx context.Context) (*repository.Models, error)
}

// ModelSourceFunc адаптирует функцию к ModelSource
type ModelSourceFunc func(ctx context.Context) (*repository.Models, error)

func (f ModelSourceFunc) Models(ctx context.Context) (*repository.Models, error) {
	return f(ctx)
}

// Provider - общий на процесс ResourceProvider
type Provider struct {
	models     ModelSource
	notifier   util.ChangeNotifier
	counts     util.CountCache
	staffOrgID string

	paymentsFactory func() util.PaymentGateway
	paymentsOnce    sync.Once
	payments        util.PaymentGateway
}

// ProviderOption настраивает Provider
type ProviderOption func(*Provider)

// WithPayments включает платежный шлюз; factory вызывается один раз при первом запросе
func WithPayments(factory func() util.PaymentGateway) ProviderOption {
	return func(p *Provider) {
		p.paymentsFactory = factory
	}
}

func WithNotifier(notifier util.ChangeNotifier) ProviderOption {
	return func(p *Provider) {
		p.notifier = notifier
	}
}

func WithCountCache(counts util.CountCache) ProviderOption {
	return func(p *Provider) {
		p.counts = counts
	}
}

// NewProvider создает провайдер ресурсов
func NewProvider(models ModelSource, staffOrgID string, opts ...ProviderOption) *Provider {
	p := &Provider{
		models:     models,
		staffOrgID: staffOrgID,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.notifier == nil {
		p.notifier = util.NewCatalogNotifier(nil, p.counts)
	}
	return p
}

// Acquire возвращает свежий набор ресурсов поверх общего подключения
func (p *Provider) Acquire(ctx context.Context) (*Resources, error) {
	models, err := p.models.Models(ctx)
	if err != nil {
		return nil, err
	}

	if p.paymentsFactory != nil {
		p.paymentsOnce.Do(func() {
			p.payments = p.paymentsFactory()
		})
	}

	return &Resources{
		Models:     models,
		Payments:   p.payments,
		Notifier:   p.notifier,
		Counts:     p.counts,
		staffOrgID: p.staffOrgID,
	}, nil
}

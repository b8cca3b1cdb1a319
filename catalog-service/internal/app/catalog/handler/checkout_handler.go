package handler

import (
	"strconv"

	"storefront/catalog-service/internal/app/catalog/api"
	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/util"
	"storefront/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// === CHECKOUT ===

// Checkout POST /api/product/:id/checkout
// Для вошедших пользователей: создает намерение оплаты товара у платежного шлюза.
// Тело необязательно, по умолчанию quantity=1.
func (h *CatalogHandler) Checkout(c *gin.Context, rc *api.Resources) (*api.Response, error) {
	if err := rc.RequireIdentity(); err != nil {
		return nil, err
	}
	if rc.Payments == nil {
		return nil, api.InternalServerError("Payments are not configured")
	}
	repo, err := products(rc)
	if err != nil {
		return nil, err
	}

	var req entity.CheckoutRequest
	if err := h.bind(c, &req); err != nil {
		return nil, err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx := c.Request.Context()
	product, err := repo.GetByID(ctx, rc.Param("id"))
	if err != nil {
		return nil, storeError(err, "Product not found")
	}

	if !product.IsActive {
		return nil, api.BadRequest("Product is not available", nil)
	}
	if req.Quantity > product.Stock {
		return nil, api.BadRequest("Insufficient stock", map[string]any{
			"quantity": []string{"only " + strconv.Itoa(product.Stock) + " items left in stock"},
		})
	}

	amount := util.MinorUnits(product.Price, req.Quantity)
	if amount <= 0 {
		return nil, api.BadRequest("Product has no price", nil)
	}

	payment, err := rc.Payments.CreatePayment(ctx, util.PaymentRequest{
		Amount:      amount,
		Currency:    h.currency,
		Description: product.Name,
		Metadata: map[string]string{
			"product_id": product.ID.Hex(),
			"user_id":    rc.Identity.UserID,
			"quantity":   strconv.Itoa(req.Quantity),
		},
	})
	if err != nil {
		metrics.RecordCheckout(false)
		return nil, err
	}
	metrics.RecordCheckout(true)

	return api.Created(entity.CheckoutResponse{
		PaymentID:    payment.ID,
		ClientSecret: payment.ClientSecret,
		Amount:       amount,
		Currency:     h.currency,
		Quantity:     req.Quantity,
	})
}

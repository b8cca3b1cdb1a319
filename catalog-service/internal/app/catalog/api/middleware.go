package api

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"storefront/pkg/logger"
	"storefront/pkg/metrics"

	"github.com/gin-gonic/gin"
)

const metricsService = "catalog-service"

// Handler - базовая форма обработчика конвейера
type Handler func(c *gin.Context) (*Response, error)

// Middleware оборачивает Handler сквозной логикой
type Middleware func(Handler) Handler

// Apply сворачивает middlewares справа налево вокруг h:
// Apply(h, a, b) == a(b(h)), то есть a выполняется первым.
func Apply(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// WithErrorHandler - внешний слой нормализации ответов.
// Успешные JSON ответы заворачиваются в конверт, *HTTPError превращается
// в конверт ошибки, прочие ошибки и паники - в 500 с общим сообщением.
func WithErrorHandler(next Handler) Handler {
	return func(c *gin.Context) (resp *Response, err error) {
		defer func() {
			if r := recover(); r != nil {
				resp = unexpected(c, fmt.Errorf("panic: %v", r), debug.Stack())
				err = nil
			}
		}()

		resp, err = next(c)
		if err != nil {
			return renderError(c, err), nil
		}
		if resp == nil {
			return unexpected(c, errors.New("handler returned no response"), nil), nil
		}

		if resp.isSuccess() && resp.isJSON() {
			return resp.envelope(), nil
		}
		return resp, nil
	}
}

func renderError(c *gin.Context, err error) *Response {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return unexpected(c, err, debug.Stack())
	}

	metrics.RecordApiError(metricsService, string(httpErr.Kind))
	if httpErr.cause != nil && httpErr.Status() >= http.StatusInternalServerError {
		logger.Error().
			Err(httpErr.cause).
			Str("request_id", logger.RequestID(c)).
			Str("kind", string(httpErr.Kind)).
			Msg(httpErr.Err)
	}
	_ = c.Error(err)
	return httpErr.Response()
}

// unexpected логирует исходную ошибку и отдает клиенту только общий 500
func unexpected(c *gin.Context, err error, stack []byte) *Response {
	metrics.RecordApiError(metricsService, string(KindInternalServerError))

	event := logger.Error().
		Err(err).
		Str("request_id", logger.RequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path)
	if stack != nil {
		event = event.Str("stack", string(stack))
	}
	event.Msg("Unhandled error in request handler")

	_ = c.Error(err)
	return InternalServerError("Internal server error").Response()
}

// Serve записывает результат конвейера в gin
func Serve(h Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := h(c)
		if err != nil {
			resp = renderError(c, err)
		}
		if resp == nil {
			resp = unexpected(c, errors.New("handler returned no response"), nil)
		}

		for key, values := range resp.Header {
			if key == "Content-Type" {
				continue
			}
			for _, v := range values {
				c.Writer.Header().Add(key, v)
			}
		}

		if len(resp.Body) == 0 {
			c.Status(resp.Status)
			return
		}
		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(resp.Status, contentType, resp.Body)
	}
}

// WithMiddleware - точка входа маршрутов: нормализация ошибок снаружи,
// внедрение ресурсов внутри.
func WithMiddleware(p ResourceProvider, h ResourceHandler) gin.HandlerFunc {
	return Serve(Apply(WithResources(p, h), WithErrorHandler))
}

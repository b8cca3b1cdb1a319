package handler

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"storefront/catalog-service/internal/app/catalog/api"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const invalidBodyMessage = "Invalid request body"

// newValidator создает валидатор, который называет поля по их json тегам
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind декодирует JSON тело в req и валидирует его. Пустое тело проверяется как пустой объект.
// Возвращает *api.HTTPError BadRequest с сообщениями по полям и списком допустимых полей.
func (h *CatalogHandler) bind(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		return api.BadRequest(invalidBodyMessage, map[string]any{
			"body":            []string{"request body must be a valid JSON object"},
			"availableFields": availableFields(req),
		})
	}

	if err := h.validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return fmt.Errorf("failed to validate request: %w", err)
		}

		details := make(map[string]any, len(validationErrors)+1)
		for _, fieldError := range validationErrors {
			field := jsonPath(fieldError)
			messages, _ := details[field].([]string)
			details[field] = append(messages, formatValidationError(fieldError))
		}
		details["availableFields"] = availableFields(req)
		return api.BadRequest(invalidBodyMessage, details)
	}

	return nil
}

// jsonPath возвращает путь поля без имени корневой структуры: images[0]
func jsonPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatValidationError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "mongodb":
		return field + " must be a valid id"
	default:
		return field + " is invalid (" + fe.Tag() + ")"
	}
}

// availableFields перечисляет поля запроса: "name (required), description (optional)"
func availableFields(req any) string {
	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return ""
	}

	fields := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}

		requirement := "(optional)"
		for _, rule := range strings.Split(field.Tag.Get("validate"), ",") {
			if rule == "required" {
				requirement = "(required)"
				break
			}
		}
		fields = append(fields, name+" "+requirement)
	}
	return strings.Join(fields, ", ")
}

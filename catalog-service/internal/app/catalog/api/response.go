package api

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"strings"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Response - результат обработчика до записи в gin
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// SuccessEnvelope - конверт успешного ответа
type SuccessEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta,omitempty"`
}

// ErrorEnvelope - конверт ответа с ошибкой
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON сериализует v в ответ с заданным статусом
func JSON(status int, v any) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Raw(status, contentTypeJSON, body), nil
}

// Success - 200 с телом v
func Success(v any) (*Response, error) {
	return JSON(http.StatusOK, v)
}

// Created - 201 с телом v
func Created(v any) (*Response, error) {
	return JSON(http.StatusCreated, v)
}

// Raw - ответ с произвольным телом; не-JSON тела проходят конвейер без изменений
func Raw(status int, contentType string, body []byte) *Response {
	header := make(http.Header)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &Response{Status: status, Header: header, Body: body}
}

func jsonResponse(status int, v any) *Response {
	resp, err := JSON(status, v)
	if err != nil {
		// Конверты всегда сериализуемы, кроме чужих Details
		resp = Raw(status, contentTypeJSON, []byte(`{"success":false,"error":"Internal server error","message":"An unexpected error occurred"}`))
	}
	return resp
}

func (r *Response) isJSON() bool {
	if r.Header == nil {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func (r *Response) isSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// envelope переписывает успешное JSON тело в конверт.
// Объект, где уже есть data и meta, сливается; любое другое тело становится data.
// Невалидный JSON возвращается без изменений.
func (r *Response) envelope() *Response {
	body := bytes.TrimSpace(r.Body)
	if !json.Valid(body) {
		return r
	}

	env := SuccessEnvelope{Success: true, Data: body}

	var fields map[string]json.RawMessage
	if len(body) > 0 && body[0] == '{' && json.Unmarshal(body, &fields) == nil {
		data, hasData := fields["data"]
		meta, hasMeta := fields["meta"]
		if hasData && hasMeta && !isNull(meta) {
			env.Data = data
			env.Meta = meta
		}
	}

	out, err := json.Marshal(env)
	if err != nil {
		return r
	}

	header := r.Header.Clone()
	header.Set("Content-Type", contentTypeJSON)
	return &Response{Status: r.Status, Header: header, Body: out}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

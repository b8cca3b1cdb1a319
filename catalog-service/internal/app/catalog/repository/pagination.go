package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ErrInvalidPageSize - pageSize указан явно, но не положительный
var ErrInvalidPageSize = errors.New("pageSize must be a positive integer")

// Collection - то подмножество *mongo.Collection, которое нужно пагинатору
type Collection interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
}

// PageQuery описывает запрос одной страницы
type PageQuery struct {
	Page      int
	PageSize  int
	Where     bson.M   // Пустой фильтр совпадает со всеми документами
	Populates []string // Имена ссылочных полей для раскрытия
}

// PageMeta - метаданные пагинации
type PageMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// Page - одна страница документов.
// В JSON элементы уходят под ключом data, чтобы конверт ответа слил data и meta.
type Page[T any] struct {
	Items []T      `json:"data"`
	Meta  PageMeta `json:"meta"`
}

// ParsePageQuery разбирает page/pageSize из query string.
// Отсутствующие и нечисловые значения заменяются значениями по умолчанию,
// page < 1 прижимается к 1, явный pageSize < 1 - ошибка.
func ParsePageQuery(page, pageSize string) (PageQuery, error) {
	q := PageQuery{Page: DefaultPage, PageSize: DefaultPageSize}

	if n, err := strconv.Atoi(strings.TrimSpace(page)); err == nil && n > 0 {
		q.Page = n
	}

	if n, err := strconv.Atoi(strings.TrimSpace(pageSize)); err == nil {
		if n < 1 {
			return q, ErrInvalidPageSize
		}
		q.PageSize = n
	}

	return q.normalize(), nil
}

func (q PageQuery) normalize() PageQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.Where == nil {
		q.Where = bson.M{}
	}
	return q
}

// NameSearch - фильтр по подстроке в name без учета регистра.
// Пустая строка тоже дает regex и совпадает со всеми документами.
func NameSearch(text string) bson.M {
	return bson.M{
		"name": bson.M{
			"$regex":   regexp.QuoteMeta(text),
			"$options": "i",
		},
	}
}

// Reference описывает ссылочное поле, которое можно раскрыть через $lookup
type Reference struct {
	From       string // Коллекция, на которую указывает ссылка
	LocalField string
}

// References - раскрываемые поля коллекции по имени populate
type References map[string]Reference

func (refs References) stages(populates []string) mongo.Pipeline {
	var pipeline mongo.Pipeline
	seen := make(map[string]bool, len(populates))

	for _, name := range populates {
		name = strings.TrimSpace(name)
		ref, ok := refs[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true

		pipeline = append(pipeline,
			bson.D{{Key: "$lookup", Value: bson.D{
				{Key: "from", Value: ref.From},
				{Key: "localField", Value: ref.LocalField},
				{Key: "foreignField", Value: "_id"},
				{Key: "as", Value: ref.LocalField},
			}}},
			bson.D{{Key: "$unwind", Value: bson.D{
				{Key: "path", Value: "$" + ref.LocalField},
				{Key: "preserveNullAndEmptyArrays", Value: true},
			}}},
		)
	}

	return pipeline
}

// Paginate возвращает одну страницу документов коллекции и метаданные.
// Порядок - порядок хранения, отдельной сортировки нет.
func Paginate[T any](ctx context.Context, coll Collection, q PageQuery, refs References) (*Page[T], error) {
	q = q.normalize()

	total, err := coll.CountDocuments(ctx, q.Where)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	meta := PageMeta{
		Page:       q.Page,
		PageSize:   q.PageSize,
		Total:      total,
		TotalPages: totalPages(total, q.PageSize),
	}

	// Страница за последней пуста; (page-1)*pageSize вычисляется только для page <= totalPages
	if int64(q.Page) > meta.TotalPages {
		return &Page[T]{Items: []T{}, Meta: meta}, nil
	}

	skip := int64(q.Page-1) * int64(q.PageSize)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: q.Where}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: int64(q.PageSize)}},
	}
	pipeline = append(pipeline, refs.stages(q.Populates)...)

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to query page: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]T, 0, q.PageSize)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}

	return &Page[T]{Items: items, Meta: meta}, nil
}

func totalPages(total int64, pageSize int) int64 {
	if pageSize < 1 || total <= 0 {
		return 0
	}
	size := int64(pageSize)
	return (total + size - 1) / size
}

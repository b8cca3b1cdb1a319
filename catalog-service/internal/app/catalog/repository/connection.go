package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"storefront/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connection - общее на процесс подключение к MongoDB.
// Подключение устанавливается лениво при первом запросе, неудачная попытка
// не запоминается, и следующий запрос пробует снова.
type Connection struct {
	uri      string
	database string
	timeout  time.Duration

	mu     sync.Mutex
	client *mongo.Client
	models atomic.Pointer[Models]
}

// NewConnection создает менеджер подключения без похода в сеть
func NewConnection(uri, database string, timeout time.Duration) *Connection {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Connection{
		uri:      uri,
		database: database,
		timeout:  timeout,
	}
}

// Models возвращает набор репозиториев, при необходимости подключаясь к MongoDB.
// Безопасен для конкурентного вызова: подключение выполняется не более одного раза.
func (c *Connection) Models(ctx context.Context) (*Models, error) {
	if models := c.models.Load(); models != nil {
		return models, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if models := c.models.Load(); models != nil {
		return models, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(c.uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	models := NewModels(connectCtx, client.Database(c.database))
	c.client = client
	c.models.Store(models)

	logger.Info().
		Str("database", c.database).
		Msg("Connected to MongoDB")

	return models, nil
}

// Ping проверяет живость подключения, не инициируя его
func (c *Connection) Ping(ctx context.Context) error {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()

	if client == nil {
		return fmt.Errorf("mongodb is not connected yet")
	}
	return client.Ping(ctx, readpref.Primary())
}

// Disconnect закрывает подключение, если оно было установлено
func (c *Connection) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client = nil
	c.models.Store(nil)
	return err
}

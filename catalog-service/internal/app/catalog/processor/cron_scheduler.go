package processor

import (
	"context"
	"errors"
	"fmt"

	"storefront/catalog-service/internal/app/catalog/repository"
	"storefront/catalog-service/internal/app/catalog/util"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"

	"github.com/robfig/cron/v3"
)

const countRefreshJob = "count_refresh"

// ModelSource лениво выдает набор моделей; реализуется repository.Connection
type ModelSource interface {
	Models(ctx context.Context) (*repository.Models, error)
}

// CronScheduler периодически пересчитывает количество документов каталога,
// кладет его в кеш и в метрику catalog_documents
type CronScheduler struct {
	cron   *cron.Cron
	models ModelSource
	counts util.CountCache // Может быть nil
}

func NewCronScheduler(models ModelSource, counts util.CountCache) *CronScheduler {
	c := cron.New(cron.WithLogger(cronLogger{}))

	return &CronScheduler{
		cron:   c,
		models: models,
		counts: counts,
	}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.RefreshCounts(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to refresh document counts")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid count refresh schedule %q: %w", schedule, err)
	}

	s.cron.Start()

	if err := s.RefreshCounts(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed initial document count refresh")
	}

	return nil
}

// RefreshCounts пересчитывает все модели; ошибка одной модели не мешает остальным
func (s *CronScheduler) RefreshCounts(ctx context.Context) (err error) {
	defer func() {
		metrics.RecordSchedulerRun(countRefreshJob, err)
	}()

	models, err := s.models.Models(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, name := range repository.AvailableModels {
		counter := models.Counter(name)
		if counter == nil {
			continue
		}

		count, err := counter.Count(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		metrics.SetCatalogDocuments(string(name), count)
		if s.counts != nil {
			if err := s.counts.SetCount(ctx, string(name), count); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
		}

		logger.Debug().Str("model", string(name)).Int64("count", count).Msg("Document count refreshed")
	}

	return errors.Join(errs...)
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

// cronLogger направляет логи robfig/cron в zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}

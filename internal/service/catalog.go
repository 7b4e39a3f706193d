// catalog.go — сервис каталога data products.
// CRUD с бизнес-правилами: уникальность имени, частичное обновление,
// пагинация с метаданными. Проверка уникальности и запись выполняются
// в одной транзакции; источником истины для уникальности служит
// ограничение БД, сервисная проверка — только для читаемого сообщения.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/dp-catalog/internal/domain/model"
	"github.com/bigkaa/dp-catalog/internal/repository"
)

// Prometheus-метрики каталога.
var (
	catalogOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dpc_catalog_operations_total",
		Help: "Общее количество операций каталога по типам.",
	}, []string{"operation"})
	catalogOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dpc_catalog_operation_duration_seconds",
		Help:    "Длительность операций каталога в секундах.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// PageResult — страница записей каталога с метаданными пагинации.
type PageResult struct {
	// Items — записи текущей страницы
	Items []*model.DataProduct
	// Page — индекс страницы (нумерация с нуля)
	Page int
	// Size — запрошенный размер страницы
	Size int
	// TotalElements — общее количество записей под фильтрами
	TotalElements int
	// TotalPages — общее количество страниц
	TotalPages int
	// First — является ли страница первой
	First bool
	// Last — является ли страница последней
	Last bool
}

// CatalogService — сервис каталога data products.
type CatalogService struct {
	repo      repository.DataProductRepository
	txm       repository.TxManager
	cache     *CacheService
	dbTimeout time.Duration
	logger    *slog.Logger
}

// NewCatalogService создаёт сервис каталога.
// dbTimeout — таймаут одного обращения к хранилищу (DPC_DB_TIMEOUT).
func NewCatalogService(
	repo repository.DataProductRepository,
	txm repository.TxManager,
	cache *CacheService,
	dbTimeout time.Duration,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		repo:      repo,
		txm:       txm,
		cache:     cache,
		dbTimeout: dbTimeout,
		logger:    logger.With(slog.String("component", "catalog_service")),
	}
}

// List возвращает страницу записей с фильтрацией по portfolio и sensitivity.
// nil-фильтр означает отсутствие ограничения, фильтры комбинируются через AND.
// page и size приходят от вызывающей стороны готовыми — значения по умолчанию
// сервис не подставляет.
func (s *CatalogService) List(ctx context.Context, portfolio *string, sensitivity *model.SensitivityCategory, page, size int) (*PageResult, error) {
	start := time.Now()
	catalogOpsTotal.WithLabelValues("list").Inc()

	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	items, err := s.repo.List(ctx, portfolio, sensitivity, size, page*size)
	if err != nil {
		return nil, fmt.Errorf("получение списка data products: %w", err)
	}

	total, err := s.repo.Count(ctx, portfolio, sensitivity)
	if err != nil {
		return nil, fmt.Errorf("подсчёт data products: %w", err)
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + size - 1) / size
	}

	catalogOpDuration.WithLabelValues("list").Observe(time.Since(start).Seconds())

	s.logger.Debug("Список сформирован",
		slog.Int("total", total),
		slog.Int("returned", len(items)),
		slog.Int("page", page),
	)

	return &PageResult{
		Items:         items,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         page == 0,
		Last:          totalPages == 0 || page >= totalPages-1,
	}, nil
}

// GetByID возвращает запись по UUID.
// Сначала проверяет LRU-кэш, при промахе — запрос к PostgreSQL, результат кэшируется.
func (s *CatalogService) GetByID(ctx context.Context, id uuid.UUID) (*model.DataProduct, error) {
	catalogOpsTotal.WithLabelValues("get").Inc()

	// Проверяем кэш
	if dp, ok := s.cache.Get(id.String()); ok {
		s.logger.Debug("Кэш hit для data product", slog.String("id", id.String()))
		return dp, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	// Cache miss — запрос к БД
	dp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("получение data product: %w", err)
	}

	// Сохраняем в кэш
	s.cache.Set(id.String(), dp)

	return dp, nil
}

// Create создаёт новую запись каталога.
// Назначает свежий UUID; created_at и updated_at проставляет БД.
// Дублирующееся имя — ErrConflict.
func (s *CatalogService) Create(ctx context.Context, dp *model.DataProduct) (*model.DataProduct, error) {
	start := time.Now()
	catalogOpsTotal.WithLabelValues("create").Inc()

	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	dp.ID = uuid.New()
	if dp.Tags == nil {
		dp.Tags = []string{}
	}

	err := s.txm.RunInTx(ctx, func(r repository.DataProductRepository) error {
		// Предварительная проверка — только ради понятного сообщения;
		// гонку закрывает уникальный индекс на name
		exists, err := r.ExistsByName(ctx, dp.Name)
		if err != nil {
			return fmt.Errorf("проверка имени: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: имя %q", ErrConflict, dp.Name)
		}

		if err := r.Create(ctx, dp); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%w: имя %q", ErrConflict, dp.Name)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(dp.ID.String(), dp)
	catalogOpDuration.WithLabelValues("create").Observe(time.Since(start).Seconds())

	s.logger.Info("Data product создан",
		slog.String("id", dp.ID.String()),
		slog.String("name", dp.Name),
		slog.String("portfolio", dp.Portfolio),
	)

	return dp, nil
}

// Update применяет частичное обновление к записи.
// nil-поля обновления не меняют текущих значений. Переименование на имя,
// занятое другой записью — ErrConflict; переименование на собственное
// текущее имя допускается. updated_at обновляется всегда, даже если
// значения полей не изменились.
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, upd *model.DataProductUpdate) (*model.DataProduct, error) {
	start := time.Now()
	catalogOpsTotal.WithLabelValues("update").Inc()

	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	var updated *model.DataProduct

	err := s.txm.RunInTx(ctx, func(r repository.DataProductRepository) error {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: id %s", ErrNotFound, id)
			}
			return fmt.Errorf("получение data product: %w", err)
		}

		// Проверяем занятость нового имени только при реальном переименовании
		// на непустое имя; гонку закрывает уникальный индекс
		if upd.Name != nil && *upd.Name != "" && *upd.Name != current.Name {
			exists, err := r.ExistsByName(ctx, *upd.Name)
			if err != nil {
				return fmt.Errorf("проверка имени: %w", err)
			}
			if exists {
				return fmt.Errorf("%w: имя %q", ErrConflict, *upd.Name)
			}
		}

		upd.ApplyTo(current)

		if err := r.Update(ctx, current); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%w: имя %q", ErrConflict, current.Name)
			}
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: id %s", ErrNotFound, id)
			}
			return fmt.Errorf("обновление data product: %w", err)
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(id.String(), updated)
	catalogOpDuration.WithLabelValues("update").Observe(time.Since(start).Seconds())

	s.logger.Info("Data product обновлён",
		slog.String("id", id.String()),
		slog.String("name", updated.Name),
	)

	return updated, nil
}

// Delete навсегда удаляет запись (hard delete, без tombstone).
// Отсутствующий id — ErrNotFound.
func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	catalogOpsTotal.WithLabelValues("delete").Inc()

	ctx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: id %s", ErrNotFound, id)
		}
		return fmt.Errorf("удаление data product: %w", err)
	}

	s.cache.Delete(id.String())

	s.logger.Info("Data product удалён", slog.String("id", id.String()))
	return nil
}

// handler.go — основной обработчик API каталога.
// Тонкая диспетчеризация: разбор параметров пути и запроса, делегирование
// в сервисный слой, маппинг ошибок на статус-коды. Без бизнес-логики.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/bigkaa/dp-catalog/internal/domain/model"
	"github.com/bigkaa/dp-catalog/internal/service"
)

// Значения пагинации по умолчанию и ограничение размера страницы.
const (
	defaultPage = 0
	defaultSize = 20
	maxSize     = 200
)

// Catalog — контракт сервисного слоя, используемый обработчиками.
// Реализуется service.CatalogService.
type Catalog interface {
	List(ctx context.Context, portfolio *string, sensitivity *model.SensitivityCategory, page, size int) (*service.PageResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.DataProduct, error)
	Create(ctx context.Context, dp *model.DataProduct) (*model.DataProduct, error)
	Update(ctx context.Context, id uuid.UUID, upd *model.DataProductUpdate) (*model.DataProduct, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// APIHandler — основной обработчик API каталога.
type APIHandler struct {
	catalog Catalog
	health  *HealthHandler
	logger  *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	catalog Catalog,
	health *HealthHandler,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		catalog: catalog,
		health:  health,
		logger:  logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// parsePagination разбирает query-параметры page и size.
// Отсутствующие параметры получают значения по умолчанию (0 / 20);
// нечисловые или выходящие за границы значения — ошибка.
func parsePagination(r *http.Request) (page, size int, err error) {
	page, size = defaultPage, defaultSize

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 0 {
			return 0, 0, fmt.Errorf("некорректное значение page: %q", raw)
		}
	}

	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil || size < 1 || size > maxSize {
			return 0, 0, fmt.Errorf("некорректное значение size: %q (допустимо 1-%d)", raw, maxSize)
		}
	}

	return page, size, nil
}

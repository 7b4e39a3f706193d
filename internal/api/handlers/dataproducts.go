// dataproducts.go — CRUD-операции над продуктами данных.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bigkaa/dp-catalog/internal/api/dto"
	apierrors "github.com/bigkaa/dp-catalog/internal/api/errors"
	"github.com/bigkaa/dp-catalog/internal/domain/model"
	"github.com/bigkaa/dp-catalog/internal/service"
)

// ListDataProducts возвращает страницу продуктов данных.
// Поддерживает фильтры portfolio и sensitivityCategory.
func (h *APIHandler) ListDataProducts(w http.ResponseWriter, r *http.Request) {
	page, size, err := parsePagination(r)
	if err != nil {
		apierrors.BadRequest(w, r, err.Error())
		return
	}

	var portfolio *string
	if raw := r.URL.Query().Get("portfolio"); raw != "" {
		portfolio = &raw
	}

	var sensitivity *model.SensitivityCategory
	if raw := r.URL.Query().Get("sensitivityCategory"); raw != "" {
		sc, err := model.ParseSensitivityCategory(raw)
		if err != nil {
			apierrors.ValidationFailed(w, r, map[string]string{
				"sensitivityCategory": err.Error(),
			})
			return
		}
		sensitivity = &sc
	}

	result, err := h.catalog.List(r.Context(), portfolio, sensitivity, page, size)
	if err != nil {
		h.logger.Error("Ошибка получения списка продуктов данных",
			slog.String("error", err.Error()))
		apierrors.InternalError(w, r, "Не удалось получить список продуктов данных")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPageResponse(result))
}

// GetDataProduct возвращает продукт данных по идентификатору.
func (h *APIHandler) GetDataProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	dp, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, r, "Продукт данных с id "+id.String()+" не найден")
			return
		}
		h.logger.Error("Ошибка получения продукта данных",
			slog.String("id", id.String()),
			slog.String("error", err.Error()))
		apierrors.InternalError(w, r, "Не удалось получить продукт данных")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToResponse(dp))
}

// CreateDataProduct создаёт новый продукт данных.
func (h *APIHandler) CreateDataProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDataProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, r, "Некорректное тело запроса: "+err.Error())
		return
	}

	dp, verr := dto.FromCreateRequest(&req)
	if verr != nil {
		apierrors.ValidationFailed(w, r, verr.Fields)
		return
	}

	created, err := h.catalog.Create(r.Context(), dp)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			apierrors.Conflict(w, r, "Продукт данных с именем '"+dp.Name+"' уже существует")
			return
		}
		h.logger.Error("Ошибка создания продукта данных",
			slog.String("name", dp.Name),
			slog.String("error", err.Error()))
		apierrors.InternalError(w, r, "Не удалось создать продукт данных")
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToResponse(created))
}

// UpdateDataProduct частично обновляет продукт данных.
// Поля, отсутствующие в теле запроса, остаются без изменений.
func (h *APIHandler) UpdateDataProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateDataProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, r, "Некорректное тело запроса: "+err.Error())
		return
	}

	upd, verr := dto.FromUpdateRequest(&req)
	if verr != nil {
		apierrors.ValidationFailed(w, r, verr.Fields)
		return
	}

	updated, err := h.catalog.Update(r.Context(), id, upd)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			apierrors.NotFound(w, r, "Продукт данных с id "+id.String()+" не найден")
		case errors.Is(err, service.ErrConflict):
			apierrors.Conflict(w, r, "Продукт данных с таким именем уже существует")
		default:
			h.logger.Error("Ошибка обновления продукта данных",
				slog.String("id", id.String()),
				slog.String("error", err.Error()))
			apierrors.InternalError(w, r, "Не удалось обновить продукт данных")
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.ToResponse(updated))
}

// DeleteDataProduct удаляет продукт данных.
func (h *APIHandler) DeleteDataProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, r, "Продукт данных с id "+id.String()+" не найден")
			return
		}
		h.logger.Error("Ошибка удаления продукта данных",
			slog.String("id", id.String()),
			slog.String("error", err.Error()))
		apierrors.InternalError(w, r, "Не удалось удалить продукт данных")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseID разбирает path-параметр {id} как UUID.
// При ошибке пишет ответ 400 и возвращает ok=false.
func (h *APIHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		apierrors.BadRequest(w, r, "Некорректный идентификатор: "+raw)
		return uuid.Nil, false
	}
	return id, true
}

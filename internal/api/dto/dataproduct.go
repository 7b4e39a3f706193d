// Пакет dto — wire-типы API каталога и чистые функции маппинга
// в доменную модель и обратно. Без I/O; единственные ошибочные пути —
// валидация полей и нераспознанное значение enum.
package dto

import (
	"fmt"
	"time"

	"github.com/bigkaa/dp-catalog/internal/domain/model"
	"github.com/bigkaa/dp-catalog/internal/service"
)

// Максимальная длина описания data product.
const maxDescriptionLen = 1000

// ValidationError — ошибка валидации запроса.
// Fields — карта имя поля → человекочитаемое сообщение.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ошибка валидации: %d полей", len(e.Fields))
}

// DataProductResponse — представление записи каталога в ответе API.
type DataProductResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Description         *string   `json:"description"`
	Portfolio           string    `json:"portfolio"`
	Source              string    `json:"source"`
	SensitivityCategory string    `json:"sensitivityCategory"`
	DataFormat          *string   `json:"dataFormat"`
	Owner               *string   `json:"owner"`
	Tags                []string  `json:"tags"`
	IsActive            bool      `json:"isActive"`
	RetentionPeriodDays *int      `json:"retentionPeriodDays"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// CreateDataProductRequest — тело POST /data-products.
type CreateDataProductRequest struct {
	Name                string   `json:"name"`
	Description         *string  `json:"description"`
	Portfolio           string   `json:"portfolio"`
	Source              string   `json:"source"`
	SensitivityCategory string   `json:"sensitivityCategory"`
	DataFormat          *string  `json:"dataFormat"`
	Owner               *string  `json:"owner"`
	Tags                []string `json:"tags"`
	RetentionPeriodDays *int     `json:"retentionPeriodDays"`
}

// UpdateDataProductRequest — тело PUT /data-products/{id}.
// Все поля — указатели: отсутствующее в JSON или null поле приходит
// как nil и означает "не менять"; присутствующее значение (включая
// пустую строку и пустой список) — явную перезапись.
type UpdateDataProductRequest struct {
	Name                *string   `json:"name"`
	Description         *string   `json:"description"`
	Portfolio           *string   `json:"portfolio"`
	Source              *string   `json:"source"`
	SensitivityCategory *string   `json:"sensitivityCategory"`
	DataFormat          *string   `json:"dataFormat"`
	Owner               *string   `json:"owner"`
	Tags                *[]string `json:"tags"`
	IsActive            *bool     `json:"isActive"`
	RetentionPeriodDays *int      `json:"retentionPeriodDays"`
}

// PageResponse — страница записей с метаданными пагинации.
type PageResponse struct {
	Content       []DataProductResponse `json:"content"`
	Page          int                   `json:"page"`
	Size          int                   `json:"size"`
	TotalElements int                   `json:"totalElements"`
	TotalPages    int                   `json:"totalPages"`
	First         bool                  `json:"first"`
	Last          bool                  `json:"last"`
}

// ToResponse конвертирует доменную модель в wire-представление.
func ToResponse(dp *model.DataProduct) DataProductResponse {
	tags := dp.Tags
	if tags == nil {
		tags = []string{}
	}
	return DataProductResponse{
		ID:                  dp.ID.String(),
		Name:                dp.Name,
		Description:         dp.Description,
		Portfolio:           dp.Portfolio,
		Source:              dp.Source,
		SensitivityCategory: dp.SensitivityCategory.String(),
		DataFormat:          dp.DataFormat,
		Owner:               dp.Owner,
		Tags:                tags,
		IsActive:            dp.IsActive,
		RetentionPeriodDays: dp.RetentionPeriodDays,
		CreatedAt:           dp.CreatedAt.UTC(),
		UpdatedAt:           dp.UpdatedAt.UTC(),
	}
}

// ToPageResponse конвертирует страницу сервисного слоя в wire-представление.
func ToPageResponse(page *service.PageResult) PageResponse {
	content := make([]DataProductResponse, 0, len(page.Items))
	for _, dp := range page.Items {
		content = append(content, ToResponse(dp))
	}
	return PageResponse{
		Content:       content,
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		First:         page.First,
		Last:          page.Last,
	}
}

// FromCreateRequest валидирует запрос создания и конвертирует его
// в доменную модель (без id и timestamps — их назначает сервер).
// isActive новой записи — true.
func FromCreateRequest(req *CreateDataProductRequest) (*model.DataProduct, *ValidationError) {
	fields := map[string]string{}

	if req.Name == "" {
		fields["name"] = "обязательное поле"
	}
	if req.Portfolio == "" {
		fields["portfolio"] = "обязательное поле"
	}
	if req.Source == "" {
		fields["source"] = "обязательное поле"
	}
	if req.Description != nil && len([]rune(*req.Description)) > maxDescriptionLen {
		fields["description"] = fmt.Sprintf("длина превышает %d символов", maxDescriptionLen)
	}

	var sensitivity model.SensitivityCategory
	if req.SensitivityCategory == "" {
		fields["sensitivityCategory"] = "обязательное поле"
	} else {
		var err error
		sensitivity, err = model.ParseSensitivityCategory(req.SensitivityCategory)
		if err != nil {
			fields["sensitivityCategory"] = err.Error()
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	return &model.DataProduct{
		Name:                req.Name,
		Description:         req.Description,
		Portfolio:           req.Portfolio,
		Source:              req.Source,
		SensitivityCategory: sensitivity,
		DataFormat:          req.DataFormat,
		Owner:               req.Owner,
		Tags:                req.Tags,
		IsActive:            true,
		RetentionPeriodDays: req.RetentionPeriodDays,
	}, nil
}

// FromUpdateRequest валидирует запрос обновления и конвертирует его
// в частичное обновление доменной модели. nil-поля остаются nil
// ("не менять"); пустая строка в name — явное переименование.
func FromUpdateRequest(req *UpdateDataProductRequest) (*model.DataProductUpdate, *ValidationError) {
	fields := map[string]string{}

	if req.Description != nil && len([]rune(*req.Description)) > maxDescriptionLen {
		fields["description"] = fmt.Sprintf("длина превышает %d символов", maxDescriptionLen)
	}

	var sensitivity *model.SensitivityCategory
	if req.SensitivityCategory != nil {
		parsed, err := model.ParseSensitivityCategory(*req.SensitivityCategory)
		if err != nil {
			fields["sensitivityCategory"] = err.Error()
		} else {
			sensitivity = &parsed
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	return &model.DataProductUpdate{
		Name:                req.Name,
		Description:         req.Description,
		Portfolio:           req.Portfolio,
		Source:              req.Source,
		SensitivityCategory: sensitivity,
		DataFormat:          req.DataFormat,
		Owner:               req.Owner,
		Tags:                req.Tags,
		IsActive:            req.IsActive,
		RetentionPeriodDays: req.RetentionPeriodDays,
	}, nil
}

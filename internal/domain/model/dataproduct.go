// Пакет model — доменные модели каталога data products.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SensitivityCategory — категория чувствительности данных.
// Фиксированный набор из четырёх уровней классификации.
type SensitivityCategory string

// Допустимые категории чувствительности.
const (
	SensitivityPublic       SensitivityCategory = "PUBLIC"
	SensitivityInternal     SensitivityCategory = "INTERNAL"
	SensitivityConfidential SensitivityCategory = "CONFIDENTIAL"
	SensitivityRestricted   SensitivityCategory = "RESTRICTED"
)

// ParseSensitivityCategory преобразует строку в SensitivityCategory.
// Нераспознанное значение — ошибка, частичный парсинг с подстановкой
// значения по умолчанию не допускается.
func ParseSensitivityCategory(s string) (SensitivityCategory, error) {
	switch SensitivityCategory(s) {
	case SensitivityPublic, SensitivityInternal, SensitivityConfidential, SensitivityRestricted:
		return SensitivityCategory(s), nil
	default:
		return "", fmt.Errorf("недопустимая категория чувствительности %q, допустимые: PUBLIC, INTERNAL, CONFIDENTIAL, RESTRICTED", s)
	}
}

// String возвращает строковое представление категории.
func (c SensitivityCategory) String() string {
	return string(c)
}

// DataProduct — запись каталога data products.
// Хранится в таблице data_products.
type DataProduct struct {
	// ID — UUID записи, назначается при создании, неизменяемый
	ID uuid.UUID
	// Name — имя data product, глобально уникальное (case-sensitive)
	Name string
	// Description — описание (до 1000 символов, опционально)
	Description *string
	// Portfolio — организационная группа записи
	Portfolio string
	// Source — источник данных (например, исходная система)
	Source string
	// SensitivityCategory — категория чувствительности
	SensitivityCategory SensitivityCategory
	// DataFormat — формат данных (опционально)
	DataFormat *string
	// Owner — владелец data product (опционально)
	Owner *string
	// Tags — упорядоченный список тегов, дубликаты не убираются
	Tags []string
	// IsActive — флаг активности (по умолчанию true)
	IsActive bool
	// RetentionPeriodDays — срок хранения в днях (опционально)
	RetentionPeriodDays *int
	// CreatedAt — время создания записи, не мутируется
	CreatedAt time.Time
	// UpdatedAt — время последнего изменения, обновляется при каждой мутации
	UpdatedAt time.Time
}

// DataProductUpdate — частичное обновление записи.
// nil-поле означает "не менять", установленное поле (включая пустую
// строку или пустой список) — явную перезапись текущего значения.
// ID и CreatedAt через этот путь не изменяются.
type DataProductUpdate struct {
	Name                *string
	Description         *string
	Portfolio           *string
	Source              *string
	SensitivityCategory *SensitivityCategory
	DataFormat          *string
	Owner               *string
	Tags                *[]string
	IsActive            *bool
	RetentionPeriodDays *int
}

// ApplyTo накладывает частичное обновление на существующую запись.
// Мутирует только поля, заданные в обновлении.
func (u *DataProductUpdate) ApplyTo(dp *DataProduct) {
	if u.Name != nil {
		dp.Name = *u.Name
	}
	if u.Description != nil {
		dp.Description = u.Description
	}
	if u.Portfolio != nil {
		dp.Portfolio = *u.Portfolio
	}
	if u.Source != nil {
		dp.Source = *u.Source
	}
	if u.SensitivityCategory != nil {
		dp.SensitivityCategory = *u.SensitivityCategory
	}
	if u.DataFormat != nil {
		dp.DataFormat = u.DataFormat
	}
	if u.Owner != nil {
		dp.Owner = u.Owner
	}
	if u.Tags != nil {
		dp.Tags = *u.Tags
	}
	if u.IsActive != nil {
		dp.IsActive = *u.IsActive
	}
	if u.RetentionPeriodDays != nil {
		dp.RetentionPeriodDays = u.RetentionPeriodDays
	}
}

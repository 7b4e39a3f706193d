// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — data product не найден.
	ErrNotFound = errors.New("data product не найден")
	// ErrConflict — конфликт имени (дублирующийся data product).
	ErrConflict = errors.New("конфликт — data product с таким именем уже существует")
)

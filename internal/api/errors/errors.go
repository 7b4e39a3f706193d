// Пакет errors — конструкторы стандартных ошибок API каталога.
// Единый формат: {"message": "...", "details": "...", "timestamp": "...", "path": "..."}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors //nolint:revive // конфликт имени со stdlib допускаем, импорт с алиасом

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// ErrorResponse — тело ответа ошибки.
type ErrorResponse struct {
	// Message — человекочитаемое описание ошибки
	Message string `json:"message"`
	// Details — дополнительные детали (опционально)
	Details *string `json:"details,omitempty"`
	// Timestamp — момент формирования ответа (RFC3339)
	Timestamp time.Time `json:"timestamp"`
	// Path — путь запроса, вызвавшего ошибку
	Path string `json:"path"`
}

// WriteError записывает ответ ошибки в стандартном формате каталога.
// statusCode — HTTP статус-код, message — описание, details — детали (может быть nil).
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, message string, details *string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		Path:      r.URL.Path,
	})
}

// --- Конструкторы для типичных ошибок ---

// BadRequest — 400 некорректные входные данные.
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusBadRequest, message, nil)
}

// ValidationFailed — 400 с картой поле → сообщение.
// Карта сворачивается в details в детерминированном порядке полей.
func ValidationFailed(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	details := formatFieldErrors(fields)
	WriteError(w, r, http.StatusBadRequest, "Validation failed", &details)
}

// NotFound — 404 запись не найдена.
func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusNotFound, message, nil)
}

// Conflict — 409 конфликт имени.
func Conflict(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusConflict, message, nil)
}

// InternalError — 500 внутренняя ошибка.
// details — верхнеуровневое описание без внутренних подробностей.
func InternalError(w http.ResponseWriter, r *http.Request, details string) {
	WriteError(w, r, http.StatusInternalServerError, "Internal server error", &details)
}

// formatFieldErrors сворачивает карту ошибок валидации в строку вида
// "name: обязательное поле; source: обязательное поле".
func formatFieldErrors(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fields[k]))
	}
	return strings.Join(parts, "; ")
}

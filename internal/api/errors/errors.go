// Пакет errors — единый формат ошибок API Catalog Module.
// Каждый не-redirect ответ с ошибкой содержит числовой статус,
// машинный код и человекочитаемое описание.
package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse — тело ответа с ошибкой.
type ErrorResponse struct {
	// Status — HTTP-статус, продублированный в теле
	Status int `json:"status"`
	// Code — машинный код ошибки (VALIDATION_ERROR, NOT_FOUND, ...)
	Code string `json:"code"`
	// Error — человекочитаемое описание
	Error string `json:"error"`
}

// WriteError записывает ответ с ошибкой в едином формате.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Status: status,
		Code:   code,
		Error:  message,
	})
}

// ValidationError — 400: некорректные или непарсящиеся параметры запроса.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", message)
}

// Forbidden — 403: аутентифицирован, но операция не разрешена.
func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "FORBIDDEN", message)
}

// NotFound — 404: запись с указанным идентификатором отсутствует.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "NOT_FOUND", message)
}

// InternalError — 500: ошибка хранилища или иная внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

// image.go — обработчики мутаций каталога: register, update, delete.
// Параметры приходят в form-полях POST-запроса; update различает
// отсутствующее и пустое поле через наличие ключа в форме.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	apierrors "github.com/bigkaa/imagecatalog/catalog-module/internal/api/errors"
	"github.com/bigkaa/imagecatalog/catalog-module/internal/service"
)

// RegisterImage — POST /api/v1/image/register.
// Регистрирует новое изображение; идентификатор назначает БД.
func (h *APIHandler) RegisterImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apierrors.ValidationError(w, "некорректное тело запроса: "+err.Error())
		return
	}

	id, err := h.catalog.Register(r.Context(), service.RegisterParams{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Keywords:    r.PostFormValue("keywords"),
		Author:      r.PostFormValue("author"),
		Creator:     r.PostFormValue("creator"),
		CaptureDate: r.PostFormValue("capture"),
		Payload:     r.PostFormValue("file"),
	})
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, fmt.Sprintf("изображение зарегистрировано, id=%d", id))
}

// UpdateImage — POST /api/v1/image/update.
// Частичное обновление: заменяются только поля, присутствующие в форме.
func (h *APIHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apierrors.ValidationError(w, "некорректное тело запроса: "+err.Error())
		return
	}

	id, ok := parseImageID(w, r.PostFormValue("id"))
	if !ok {
		return
	}

	params := service.UpdateParams{
		Title:       formValueIfPresent(r, "title"),
		Description: formValueIfPresent(r, "description"),
		Keywords:    formValueIfPresent(r, "keywords"),
		Author:      formValueIfPresent(r, "author"),
		Creator:     formValueIfPresent(r, "creator"),
		CaptureDate: formValueIfPresent(r, "capture"),
		Payload:     formValueIfPresent(r, "file"),
	}

	if err := h.catalog.Update(r.Context(), id, params); err != nil {
		h.writeCatalogError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, fmt.Sprintf("изображение обновлено, id=%d", id))
}

// DeleteImage — POST /api/v1/image/delete.
// Удаление разрешено только владельцу записи (поле creator).
func (h *APIHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apierrors.ValidationError(w, "некорректное тело запроса: "+err.Error())
		return
	}

	id, ok := parseImageID(w, r.PostFormValue("id"))
	if !ok {
		return
	}

	if err := h.catalog.Delete(r.Context(), id, r.PostFormValue("creator")); err != nil {
		h.writeCatalogError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, fmt.Sprintf("изображение удалено, id=%d", id))
}

// parseImageID разбирает идентификатор записи: целое положительное число.
// При ошибке пишет 400 и возвращает ok=false.
func parseImageID(w http.ResponseWriter, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		apierrors.ValidationError(w, fmt.Sprintf("некорректный идентификатор изображения: %q", raw))
		return 0, false
	}
	return id, true
}

// formValueIfPresent возвращает указатель на значение form-поля
// или nil, если ключ отсутствует в форме.
// Присутствующее пустое поле — валидное значение (очистка).
func formValueIfPresent(r *http.Request, key string) *string {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// writeCatalogError транслирует ошибки сервисного слоя в HTTP-ответы.
func (h *APIHandler) writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, "изображение с указанным идентификатором не найдено")
	case errors.Is(err, service.ErrNotOwner):
		apierrors.Forbidden(w, "пользователь не является владельцем изображения")
	default:
		h.logger.Error("Внутренняя ошибка каталога", "error", err.Error())
		apierrors.InternalError(w, "внутренняя ошибка сервиса")
	}
}

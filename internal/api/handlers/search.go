// search.go — обработчики чтения каталога: list и поисковые операции.
// Параметр поиска — последний сегмент пути (chi URL param).
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/imagecatalog/catalog-module/internal/api/errors"
	"github.com/bigkaa/imagecatalog/catalog-module/internal/domain/model"
)

// ListImages — GET /api/v1/image/list.
// Возвращает все записи каталога.
func (h *APIHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.catalog.List(r.Context())
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}
	writeData(w, toImageResponses(images))
}

// SearchByID — GET /api/v1/image/searchID/{id}.
// Возвращает одну запись по идентификатору.
func (h *APIHandler) SearchByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseImageID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	img, err := h.catalog.SearchByID(r.Context(), id)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}
	writeData(w, toImageResponse(img))
}

// SearchByTitle — GET /api/v1/image/searchTitle/{title}.
func (h *APIHandler) SearchByTitle(w http.ResponseWriter, r *http.Request) {
	h.searchList(w, r, func(param string) ([]*model.ImageRecord, error) {
		return h.catalog.SearchByTitle(r.Context(), param)
	}, chi.URLParam(r, "title"))
}

// SearchByCreationDate — GET /api/v1/image/searchCreationDate/{date}.
// Дата в формате yyyy-mm-dd; некорректная дата — 400.
func (h *APIHandler) SearchByCreationDate(w http.ResponseWriter, r *http.Request) {
	h.searchList(w, r, func(param string) ([]*model.ImageRecord, error) {
		return h.catalog.SearchByCaptureDate(r.Context(), param)
	}, chi.URLParam(r, "date"))
}

// SearchByAuthor — GET /api/v1/image/searchAuthor/{author}.
func (h *APIHandler) SearchByAuthor(w http.ResponseWriter, r *http.Request) {
	h.searchList(w, r, func(param string) ([]*model.ImageRecord, error) {
		return h.catalog.SearchByAuthor(r.Context(), param)
	}, chi.URLParam(r, "author"))
}

// SearchByKeywords — GET /api/v1/image/searchKeywords/{keywords}.
// Ключевые слова — строка с разделителем-запятой; возвращаются записи,
// содержащие все перечисленные слова.
func (h *APIHandler) SearchByKeywords(w http.ResponseWriter, r *http.Request) {
	h.searchList(w, r, func(param string) ([]*model.ImageRecord, error) {
		return h.catalog.SearchByKeywords(r.Context(), param)
	}, chi.URLParam(r, "keywords"))
}

// searchList выполняет поисковую операцию со списочным результатом.
// Пустой параметр пути — 400.
func (h *APIHandler) searchList(
	w http.ResponseWriter,
	_ *http.Request,
	search func(param string) ([]*model.ImageRecord, error),
	param string,
) {
	if param == "" {
		apierrors.ValidationError(w, "пустой параметр поиска")
		return
	}

	images, err := search(param)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}
	writeData(w, toImageResponses(images))
}

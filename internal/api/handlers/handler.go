// handler.go — основной обработчик API Catalog Module.
// Объединяет health и бизнес-обработчики каталога, делегируя запросы
// в сервисный слой.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/bigkaa/imagecatalog/catalog-module/internal/domain/model"
	"github.com/bigkaa/imagecatalog/catalog-module/internal/service"
)

// Catalog — интерфейс сервисного слоя каталога.
type Catalog interface {
	Register(ctx context.Context, p service.RegisterParams) (int64, error)
	Update(ctx context.Context, id int64, p service.UpdateParams) error
	Delete(ctx context.Context, id int64, creator string) error
	List(ctx context.Context) ([]*model.ImageRecord, error)
	SearchByID(ctx context.Context, id int64) (*model.ImageRecord, error)
	SearchByTitle(ctx context.Context, title string) ([]*model.ImageRecord, error)
	SearchByCaptureDate(ctx context.Context, date string) ([]*model.ImageRecord, error)
	SearchByAuthor(ctx context.Context, author string) ([]*model.ImageRecord, error)
	SearchByKeywords(ctx context.Context, keywords string) ([]*model.ImageRecord, error)
}

// APIHandler — основной обработчик API Catalog Module.
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

// --- Типы ответов ---

// messageResponse — ответ мутации: статус и человекочитаемое сообщение.
type messageResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// dataResponse — ответ поисковой операции: статус и данные.
type dataResponse struct {
	Status int `json:"status"`
	Data   any `json:"data"`
}

// imageResponse — JSON-представление записи каталога.
// Дата съёмки сериализуется как yyyy-mm-dd, дата сохранения — RFC 3339.
type imageResponse struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Author      string   `json:"author"`
	Creator     string   `json:"creator"`
	CaptureDate string   `json:"captureDate"`
	StorageDate string   `json:"storageDate"`
	Payload     string   `json:"payload"`
}

// toImageResponse конвертирует доменную запись в JSON-представление.
func toImageResponse(img *model.ImageRecord) imageResponse {
	keywords := img.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return imageResponse{
		ID:          img.ID,
		Title:       img.Title,
		Description: img.Description,
		Keywords:    keywords,
		Author:      img.Author,
		Creator:     img.Creator,
		CaptureDate: img.CaptureDate.Format(model.DateFormat),
		StorageDate: img.StorageDate.UTC().Format(time.RFC3339),
		Payload:     img.Payload,
	}
}

// toImageResponses конвертирует срез записей; пустой срез остаётся
// пустым JSON-массивом, не null.
func toImageResponses(images []*model.ImageRecord) []imageResponse {
	result := make([]imageResponse, 0, len(images))
	for _, img := range images {
		result = append(result, toImageResponse(img))
	}
	return result
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeMessage записывает ответ мутации.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Status: status, Message: message})
}

// writeData записывает ответ поисковой операции.
func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, dataResponse{Status: http.StatusOK, Data: data})
}

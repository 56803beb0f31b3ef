// catalog.go — сервис каталога изображений.
// Семантика register/update/delete/list/search: валидация дат,
// частичное обновление, политика владения, координация repository,
// LRU-кэша и Prometheus-метрик.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/imagecatalog/catalog-module/internal/domain/model"
	"github.com/bigkaa/imagecatalog/catalog-module/internal/repository"
)

// Ошибки сервисного слоя.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("изображение не найдено")
	// ErrNotOwner — вызывающий не является владельцем записи.
	ErrNotOwner = errors.New("пользователь не является владельцем изображения")
	// ErrInvalidDate — дата не соответствует формату yyyy-mm-dd.
	ErrInvalidDate = errors.New("некорректный формат даты, ожидается yyyy-mm-dd")
)

// Prometheus-метрики каталога.
var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cm_mutations_total",
		Help: "Общее количество мутаций каталога по операциям.",
	}, []string{"operation"})
	searchTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cm_search_total",
		Help: "Общее количество поисковых запросов к каталогу.",
	})
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cm_search_duration_seconds",
		Help:    "Длительность поисковых запросов к каталогу.",
		Buckets: prometheus.DefBuckets,
	})
)

// OwnershipPolicy — явная политика проверки владельца по операциям.
// Исторически проверялся только delete; update настраивается отдельно.
type OwnershipPolicy struct {
	// EnforceDelete — требовать совпадения creator при удалении
	EnforceDelete bool
	// EnforceUpdate — требовать совпадения creator при обновлении
	EnforceUpdate bool
}

// RegisterParams — параметры регистрации изображения.
// Все поля обязательны; keywords — строка с разделителем-запятой.
type RegisterParams struct {
	Title       string
	Description string
	Keywords    string
	Author      string
	Creator     string
	CaptureDate string
	Payload     string
}

// UpdateParams — параметры частичного обновления.
// nil-поле означает "не трогать"; присутствующее поле заменяется целиком.
type UpdateParams struct {
	Title       *string
	Description *string
	Keywords    *string
	Author      *string
	Creator     *string
	CaptureDate *string
	Payload     *string
}

// CatalogService — сервис каталога изображений.
// Не держит изменяемого состояния кроме внедрённых зависимостей,
// безопасен для конкурентного использования.
type CatalogService struct {
	repo   repository.ImageRepository
	cache  *CacheService
	policy OwnershipPolicy
	logger *slog.Logger
}

// NewCatalogService создаёт сервис каталога.
func NewCatalogService(
	repo repository.ImageRepository,
	cache *CacheService,
	policy OwnershipPolicy,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		repo:   repo,
		cache:  cache,
		policy: policy,
		logger: logger.With(slog.String("component", "catalog_service")),
	}
}

// Register регистрирует новое изображение и возвращает назначенный БД идентификатор.
// Дата съёмки валидируется до любого обращения к хранилищу;
// storage date назначается сервером в момент вызова.
func (s *CatalogService) Register(ctx context.Context, p RegisterParams) (int64, error) {
	captureDate, err := parseDate(p.CaptureDate)
	if err != nil {
		return 0, err
	}

	img := &model.ImageRecord{
		Title:       p.Title,
		Description: p.Description,
		Keywords:    model.SplitKeywords(p.Keywords),
		Author:      p.Author,
		Creator:     p.Creator,
		CaptureDate: captureDate,
		StorageDate: time.Now().UTC(),
		Payload:     p.Payload,
	}

	id, err := s.repo.Insert(ctx, img)
	if err != nil {
		return 0, fmt.Errorf("регистрация изображения: %w", err)
	}

	mutationsTotal.WithLabelValues("register").Inc()
	s.logger.Info("Изображение зарегистрировано",
		slog.Int64("image_id", id),
		slog.String("creator", p.Creator),
	)
	return id, nil
}

// Update применяет частичное обновление к существующей записи.
// Отсутствующие поля остаются нетронутыми; ошибка парсинга даты
// прерывает операцию до каких-либо изменений в хранилище.
func (s *CatalogService) Update(ctx context.Context, id int64, p UpdateParams) error {
	img, err := s.getExisting(ctx, id)
	if err != nil {
		return err
	}

	// Политика владения для update (по умолчанию выключена):
	// запрос обязан нести creator, совпадающий с хранимым, до применения полей.
	if s.policy.EnforceUpdate {
		if p.Creator == nil || *p.Creator != img.Creator {
			return ErrNotOwner
		}
	}

	// Сначала валидируем дату — до применения остальных полей.
	var captureDate *time.Time
	if p.CaptureDate != nil {
		d, err := parseDate(*p.CaptureDate)
		if err != nil {
			return err
		}
		captureDate = &d
	}

	if p.Title != nil {
		img.Title = *p.Title
	}
	if p.Description != nil {
		img.Description = *p.Description
	}
	if p.Keywords != nil {
		img.Keywords = model.SplitKeywords(*p.Keywords)
	}
	if p.Author != nil {
		img.Author = *p.Author
	}
	if p.Creator != nil {
		img.Creator = *p.Creator
	}
	if captureDate != nil {
		img.CaptureDate = *captureDate
	}
	if p.Payload != nil {
		img.Payload = *p.Payload
	}

	if err := s.repo.Update(ctx, img); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("обновление изображения: %w", err)
	}

	s.cache.Delete(id)
	mutationsTotal.WithLabelValues("update").Inc()
	s.logger.Info("Изображение обновлено", slog.Int64("image_id", id))
	return nil
}

// Delete удаляет запись после проверки владельца.
// Отсутствие записи — явная ErrNotFound, а не сравнение с nil.
func (s *CatalogService) Delete(ctx context.Context, id int64, creator string) error {
	img, err := s.getExisting(ctx, id)
	if err != nil {
		return err
	}

	// Точное регистрозависимое сравнение creator.
	if s.policy.EnforceDelete && img.Creator != creator {
		s.logger.Info("Удаление отклонено: несовпадение владельца",
			slog.Int64("image_id", id),
		)
		return ErrNotOwner
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление изображения: %w", err)
	}

	s.cache.Delete(id)
	mutationsTotal.WithLabelValues("delete").Inc()
	s.logger.Info("Изображение удалено", slog.Int64("image_id", id))
	return nil
}

// List возвращает все записи каталога в стабильном порядке.
func (s *CatalogService) List(ctx context.Context) ([]*model.ImageRecord, error) {
	images, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("список изображений: %w", err)
	}
	return images, nil
}

// SearchByID возвращает запись по идентификатору.
// Сначала проверяет LRU-кэш, при промахе — запрос к PostgreSQL, результат кэшируется.
func (s *CatalogService) SearchByID(ctx context.Context, id int64) (*model.ImageRecord, error) {
	if record, ok := s.cache.Get(id); ok {
		s.logger.Debug("Кэш hit для изображения", slog.Int64("image_id", id))
		return record, nil
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение изображения: %w", err)
	}

	s.cache.Set(id, record)
	return record, nil
}

// SearchByTitle возвращает записи с точным совпадением названия.
func (s *CatalogService) SearchByTitle(ctx context.Context, title string) ([]*model.ImageRecord, error) {
	return s.search(ctx, func(ctx context.Context) ([]*model.ImageRecord, error) {
		return s.repo.SearchByTitle(ctx, title)
	})
}

// SearchByCaptureDate возвращает записи с указанной датой съёмки.
// Дата валидируется на границе; некорректный ввод не достигает хранилища.
func (s *CatalogService) SearchByCaptureDate(ctx context.Context, dateString string) ([]*model.ImageRecord, error) {
	date, err := parseDate(dateString)
	if err != nil {
		return nil, err
	}
	return s.search(ctx, func(ctx context.Context) ([]*model.ImageRecord, error) {
		return s.repo.SearchByCaptureDate(ctx, date)
	})
}

// SearchByAuthor возвращает записи с точным совпадением автора.
func (s *CatalogService) SearchByAuthor(ctx context.Context, author string) ([]*model.ImageRecord, error) {
	return s.search(ctx, func(ctx context.Context) ([]*model.ImageRecord, error) {
		return s.repo.SearchByAuthor(ctx, author)
	})
}

// SearchByKeywords возвращает записи, содержащие все ключевые слова
// из строки с разделителем-запятой. Единообразно с остальными
// поисковыми операциями возвращается срез, возможно пустой.
func (s *CatalogService) SearchByKeywords(ctx context.Context, raw string) ([]*model.ImageRecord, error) {
	keywords := model.SplitKeywords(raw)
	return s.search(ctx, func(ctx context.Context) ([]*model.ImageRecord, error) {
		return s.repo.SearchByKeywords(ctx, keywords)
	})
}

// getExisting возвращает запись или ErrNotFound.
func (s *CatalogService) getExisting(ctx context.Context, id int64) (*model.ImageRecord, error) {
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение изображения: %w", err)
	}
	return img, nil
}

// search выполняет поисковый запрос с обновлением метрик.
func (s *CatalogService) search(ctx context.Context, fn func(ctx context.Context) ([]*model.ImageRecord, error)) ([]*model.ImageRecord, error) {
	start := time.Now()
	searchTotal.Inc()

	images, err := fn(ctx)
	if err != nil {
		return nil, fmt.Errorf("поиск изображений: %w", err)
	}

	duration := time.Since(start)
	searchDuration.Observe(duration.Seconds())
	s.logger.Debug("Поиск выполнен",
		slog.Int("returned", len(images)),
		slog.Duration("duration", duration),
	)
	return images, nil
}

// parseDate разбирает дату формата yyyy-mm-dd.
func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(model.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

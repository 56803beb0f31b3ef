package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/imagecatalog/catalog-module/internal/domain/model"
)

// imageColumns — список столбцов таблицы image_catalog для SELECT-запросов.
// DRY: одно место для всех SELECT'ов.
const imageColumns = `image_id, title, description, keywords, author, creator,
	capture_date, storage_date, payload`

// ImageRepository — интерфейс Persistence Agent каталога изображений.
// Отсутствие записи всегда выражается явной ошибкой ErrNotFound —
// nil-запись никогда не возвращается с nil-ошибкой.
type ImageRepository interface {
	// Insert создаёт запись и возвращает назначенный БД идентификатор.
	Insert(ctx context.Context, img *model.ImageRecord) (int64, error)
	// GetByID возвращает запись по идентификатору или ErrNotFound.
	GetByID(ctx context.Context, id int64) (*model.ImageRecord, error)
	// Update перезаписывает все изменяемые поля записи по идентификатору.
	// ID и storage_date через этот путь не меняются.
	Update(ctx context.Context, img *model.ImageRecord) error
	// DeleteByID удаляет запись. ErrNotFound, если записи нет.
	DeleteByID(ctx context.Context, id int64) error
	// GetAll возвращает все записи в стабильном порядке (по image_id).
	GetAll(ctx context.Context) ([]*model.ImageRecord, error)
	// SearchByTitle возвращает записи с точным совпадением названия.
	SearchByTitle(ctx context.Context, title string) ([]*model.ImageRecord, error)
	// SearchByCaptureDate возвращает записи с указанной датой съёмки.
	SearchByCaptureDate(ctx context.Context, date time.Time) ([]*model.ImageRecord, error)
	// SearchByAuthor возвращает записи с точным совпадением автора.
	SearchByAuthor(ctx context.Context, author string) ([]*model.ImageRecord, error)
	// SearchByKeywords возвращает записи, содержащие все указанные ключевые слова.
	SearchByKeywords(ctx context.Context, keywords []string) ([]*model.ImageRecord, error)
}

// imageRepo — реализация ImageRepository через pgx.
type imageRepo struct {
	db DBTX
}

// NewImageRepository создаёт репозиторий каталога изображений.
func NewImageRepository(db DBTX) ImageRepository {
	return &imageRepo{db: db}
}

// Insert создаёт запись. Идентификатор назначает identity-столбец БД.
func (r *imageRepo) Insert(ctx context.Context, img *model.ImageRecord) (int64, error) {
	query := `
		INSERT INTO image_catalog (title, description, keywords, author, creator,
			capture_date, storage_date, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING image_id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		img.Title, img.Description, img.Keywords, img.Author, img.Creator,
		img.CaptureDate, img.StorageDate, img.Payload,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка регистрации изображения: %w", err)
	}
	return id, nil
}

// GetByID возвращает запись по идентификатору или ErrNotFound.
func (r *imageRepo) GetByID(ctx context.Context, id int64) (*model.ImageRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM image_catalog WHERE image_id = $1`, imageColumns)

	img := &model.ImageRecord{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&img.ID, &img.Title, &img.Description, &img.Keywords, &img.Author,
		&img.Creator, &img.CaptureDate, &img.StorageDate, &img.Payload,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения изображения: %w", err)
	}
	return img, nil
}

// Update перезаписывает изменяемые поля записи целиком.
func (r *imageRepo) Update(ctx context.Context, img *model.ImageRecord) error {
	query := `
		UPDATE image_catalog
		SET title = $2, description = $3, keywords = $4, author = $5,
			creator = $6, capture_date = $7, payload = $8
		WHERE image_id = $1`

	tag, err := r.db.Exec(ctx, query,
		img.ID, img.Title, img.Description, img.Keywords, img.Author,
		img.Creator, img.CaptureDate, img.Payload,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления изображения: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByID удаляет запись по идентификатору.
func (r *imageRepo) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM image_catalog WHERE image_id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления изображения: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAll возвращает все записи каталога в порядке image_id.
func (r *imageRepo) GetAll(ctx context.Context) ([]*model.ImageRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM image_catalog ORDER BY image_id`, imageColumns)
	return r.queryImages(ctx, query)
}

// SearchByTitle — точное совпадение названия.
func (r *imageRepo) SearchByTitle(ctx context.Context, title string) ([]*model.ImageRecord, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM image_catalog WHERE title = $1 ORDER BY image_id`, imageColumns)
	return r.queryImages(ctx, query, title)
}

// SearchByCaptureDate — совпадение даты съёмки (точность — день).
func (r *imageRepo) SearchByCaptureDate(ctx context.Context, date time.Time) ([]*model.ImageRecord, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM image_catalog WHERE capture_date = $1 ORDER BY image_id`, imageColumns)
	return r.queryImages(ctx, query, date)
}

// SearchByAuthor — точное совпадение автора.
func (r *imageRepo) SearchByAuthor(ctx context.Context, author string) ([]*model.ImageRecord, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM image_catalog WHERE author = $1 ORDER BY image_id`, imageColumns)
	return r.queryImages(ctx, query, author)
}

// SearchByKeywords — запись должна содержать все указанные ключевые слова
// (оператор @> по массиву keywords, GIN-индекс).
func (r *imageRepo) SearchByKeywords(ctx context.Context, keywords []string) ([]*model.ImageRecord, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM image_catalog WHERE keywords @> $1 ORDER BY image_id`, imageColumns)
	return r.queryImages(ctx, query, keywords)
}

// queryImages выполняет SELECT и сканирует результат в срез записей.
func (r *imageRepo) queryImages(ctx context.Context, query string, args ...any) ([]*model.ImageRecord, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска изображений: %w", err)
	}
	defer rows.Close()

	var result []*model.ImageRecord
	for rows.Next() {
		img := &model.ImageRecord{}
		if err := rows.Scan(
			&img.ID, &img.Title, &img.Description, &img.Keywords, &img.Author,
			&img.Creator, &img.CaptureDate, &img.StorageDate, &img.Payload,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования изображения: %w", err)
		}
		result = append(result, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

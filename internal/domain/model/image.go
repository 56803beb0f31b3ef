// Пакет model — доменные модели Catalog Module.
// ImageRecord — маппинг таблицы image_catalog.
package model

import (
	"strings"
	"time"
)

// DateFormat — формат календарных дат на границе API (yyyy-mm-dd).
const DateFormat = time.DateOnly

// ImageRecord — запись изображения в каталоге image_catalog.
type ImageRecord struct {
	// ID — идентификатор записи (identity-столбец, назначается БД при вставке)
	ID int64
	// Title — название изображения
	Title string
	// Description — описание изображения
	Description string
	// Keywords — ключевые слова (упорядоченный массив, дубликаты допустимы)
	Keywords []string
	// Author — автор изображения
	Author string
	// Creator — владелец записи (проверяется при удалении)
	Creator string
	// CaptureDate — дата съёмки (точность — календарный день)
	CaptureDate time.Time
	// StorageDate — время регистрации записи, назначается сервером один раз
	StorageDate time.Time
	// Payload — закодированное содержимое изображения (opaque для этого слоя)
	Payload string
}

// SplitKeywords разбирает строку ключевых слов из запроса.
// Разделитель — запятая, окружающие пробелы обрезаются,
// пустые элементы отбрасываются: "a, b ,c" → ["a","b","c"], "" → [].
func SplitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		keywords = append(keywords, p)
	}
	return keywords
}

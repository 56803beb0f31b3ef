package service

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/bigkaa/imagecatalog/catalog-module/internal/domain/model"
	"github.com/bigkaa/imagecatalog/catalog-module/internal/repository"
)

// --- Mock repository ---

// mockImageRepo — мок ImageRepository для unit-тестов.
type mockImageRepo struct {
	insertFn              func(ctx context.Context, img *model.ImageRecord) (int64, error)
	getByIDFn             func(ctx context.Context, id int64) (*model.ImageRecord, error)
	updateFn              func(ctx context.Context, img *model.ImageRecord) error
	deleteByIDFn          func(ctx context.Context, id int64) error
	getAllFn              func(ctx context.Context) ([]*model.ImageRecord, error)
	searchByTitleFn       func(ctx context.Context, title string) ([]*model.ImageRecord, error)
	searchByCaptureDateFn func(ctx context.Context, date time.Time) ([]*model.ImageRecord, error)
	searchByAuthorFn      func(ctx context.Context, author string) ([]*model.ImageRecord, error)
	searchByKeywordsFn    func(ctx context.Context, keywords []string) ([]*model.ImageRecord, error)

	insertCalls int
	updateCalls int
	deleteCalls int
}

func (m *mockImageRepo) Insert(ctx context.Context, img *model.ImageRecord) (int64, error) {
	m.insertCalls++
	if m.insertFn != nil {
		return m.insertFn(ctx, img)
	}
	return 1, nil
}

func (m *mockImageRepo) GetByID(ctx context.Context, id int64) (*model.ImageRecord, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockImageRepo) Update(ctx context.Context, img *model.ImageRecord) error {
	m.updateCalls++
	if m.updateFn != nil {
		return m.updateFn(ctx, img)
	}
	return nil
}

func (m *mockImageRepo) DeleteByID(ctx context.Context, id int64) error {
	m.deleteCalls++
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

func (m *mockImageRepo) GetAll(ctx context.Context) ([]*model.ImageRecord, error) {
	if m.getAllFn != nil {
		return m.getAllFn(ctx)
	}
	return nil, nil
}

func (m *mockImageRepo) SearchByTitle(ctx context.Context, title string) ([]*model.ImageRecord, error) {
	if m.searchByTitleFn != nil {
		return m.searchByTitleFn(ctx, title)
	}
	return nil, nil
}

func (m *mockImageRepo) SearchByCaptureDate(ctx context.Context, date time.Time) ([]*model.ImageRecord, error) {
	if m.searchByCaptureDateFn != nil {
		return m.searchByCaptureDateFn(ctx, date)
	}
	return nil, nil
}

func (m *mockImageRepo) SearchByAuthor(ctx context.Context, author string) ([]*model.ImageRecord, error) {
	if m.searchByAuthorFn != nil {
		return m.searchByAuthorFn(ctx, author)
	}
	return nil, nil
}

func (m *mockImageRepo) SearchByKeywords(ctx context.Context, keywords []string) ([]*model.ImageRecord, error) {
	if m.searchByKeywordsFn != nil {
		return m.searchByKeywordsFn(ctx, keywords)
	}
	return nil, nil
}

// newTestService собирает сервис с моком и политикой по умолчанию
// (delete проверяется, update — нет).
func newTestService(repo *mockImageRepo) *CatalogService {
	policy := OwnershipPolicy{EnforceDelete: true}
	cache := NewCacheService(100, 5*time.Minute)
	return NewCatalogService(repo, cache, policy, slog.Default())
}

// strPtr — вспомогательная функция для опциональных полей.
func strPtr(s string) *string { return &s }

// --- Register ---

// TestCatalogService_Register проверяет назначение storage date сервером
// и разбор ключевых слов.
func TestCatalogService_Register(t *testing.T) {
	var inserted *model.ImageRecord
	repo := &mockImageRepo{
		insertFn: func(_ context.Context, img *model.ImageRecord) (int64, error) {
			inserted = img
			return 42, nil
		},
	}
	svc := newTestService(repo)

	before := time.Now().UTC()
	id, err := svc.Register(context.Background(), RegisterParams{
		Title:       "Sunset",
		Description: "d",
		Keywords:    "nature,sky",
		Author:      "A",
		Creator:     "C",
		CaptureDate: "2023-05-01",
		Payload:     "blob",
	})
	after := time.Now().UTC()

	if err != nil {
		t.Fatalf("Register ошибка: %v", err)
	}
	if id != 42 {
		t.Errorf("id = %d, ожидался 42", id)
	}
	if inserted == nil {
		t.Fatal("Insert не был вызван")
	}
	// Storage date — время сервера в момент вызова, не клиентское значение
	if inserted.StorageDate.Before(before) || inserted.StorageDate.After(after) {
		t.Errorf("StorageDate = %v, ожидалось в интервале [%v, %v]",
			inserted.StorageDate, before, after)
	}
	if !reflect.DeepEqual(inserted.Keywords, []string{"nature", "sky"}) {
		t.Errorf("Keywords = %v, ожидались [nature sky]", inserted.Keywords)
	}
	if inserted.CaptureDate.Format(model.DateFormat) != "2023-05-01" {
		t.Errorf("CaptureDate = %v, ожидался 2023-05-01", inserted.CaptureDate)
	}
}

// TestCatalogService_Register_BadDate проверяет, что некорректная дата
// отклоняется до обращения к хранилищу.
func TestCatalogService_Register_BadDate(t *testing.T) {
	repo := &mockImageRepo{}
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), RegisterParams{
		Title:       "x",
		CaptureDate: "not-a-date",
	})
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("ошибка = %v, ожидалась ErrInvalidDate", err)
	}
	if repo.insertCalls != 0 {
		t.Errorf("Insert вызван %d раз, ожидался 0", repo.insertCalls)
	}
}

// --- Update ---

// existingRecord возвращает запись для тестов update/delete.
func existingRecord() *model.ImageRecord {
	capture, _ := time.Parse(model.DateFormat, "2023-05-01")
	return &model.ImageRecord{
		ID:          7,
		Title:       "Sunset",
		Description: "old description",
		Keywords:    []string{"nature", "sky"},
		Author:      "A",
		Creator:     "C",
		CaptureDate: capture,
		StorageDate: time.Date(2023, 5, 2, 10, 0, 0, 0, time.UTC),
		Payload:     "old-payload",
	}
}

// TestCatalogService_Update_Partial проверяет, что отсутствующие поля
// остаются нетронутыми, а присутствующие заменяются целиком.
func TestCatalogService_Update_Partial(t *testing.T) {
	var updated *model.ImageRecord
	repo := &mockImageRepo{
		getByIDFn: func(_ context.Context, _ int64) (*model.ImageRecord, error) {
			return existingRecord(), nil
		},
		updateFn: func(_ context.Context, img *model.ImageRecord) error {
			updated = img
			return nil
		},
	}
	svc := newTestService(repo)

	err := svc.Update(context.Background(), 7, UpdateParams{
		Title:    strPtr("Sunrise"),
		Keywords: strPtr("dawn, light"),
	})
	if err != nil {
		t.Fatalf("Update ошибка: %v", err)
	}
	if updated == nil {
		t.Fatal("Update репозитория не был вызван")
	}
	if updated.Title != "Sunrise" {
		t.Errorf("Title = %q, ожидался Sunrise", updated.Title)
	}
	if !reflect.DeepEqual(updated.Keywords, []string{"dawn", "light"}) {
		t.Errorf("Keywords = %v, ожидались [dawn light]", updated.Keywords)
	}
	// Непереданные поля — байт-в-байт прежние
	if updated.Description != "old description" {
		t.Errorf("Description = %q, ожидалось прежнее значение", updated.Description)
	}
	if updated.Author != "A" || updated.Creator != "C" {
		t.Errorf("Author/Creator изменились: %q/%q", updated.Author, updated.Creator)
	}
	if updated.Payload != "old-payload" {
		t.Errorf("Payload = %q, ожидалось прежнее значение", updated.Payload)
	}
	if updated.StorageDate != existingRecord().StorageDate {
		t.Errorf("StorageDate изменился: %v", updated.StorageDate)
	}
}

// TestCatalogService_Update_BadDate проверяет, что ошибка парсинга даты
// прерывает операцию без записи в хранилище.
func TestCatalogService_Update_BadDate(t *testing.T) {
	repo := &mockImageRepo{
		getByIDFn: func(_ context.Context, _ int64) (*model.ImageRecord, error) {
			return existingRecord(), nil
		},
	}
	svc := newTestService(repo)

	err := svc.Update(context.Background(), 7, UpdateParams{
		Title:       strPtr("Sunrise"),
		CaptureDate: strPtr("01.05.2023"),
	})
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("ошибка = %v, ожидалась ErrInvalidDate", err)
	}
	if repo.updateCalls != 0 {
		t.Errorf("Update репозитория вызван %d раз, ожидался 0", repo.updateCalls)
	}
}

// TestCatalogService_Update_NotFound проверяет явную ошибку отсутствия записи.
func TestCatalogService_Update_NotFound(t *testing.T) {
	repo := &mockImageRepo{}
	svc := newTestService(repo)

	err := svc.Update(context.Background(), 99, UpdateParams{Title: strPtr("x")})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ошибка = %v, ожидалась ErrNotFound", err)
	}
}

// TestCatalogService_Update_OwnershipEnforced проверяет политику владения
// для update, когда она включена.
func TestCatalogService_Update_OwnershipEnforced(t *testing.T) {
	repo := &mockImageRepo{
		getByIDFn: func(_ context.Context, _ int64) (*model.ImageRecord, error) {
			return existingRecord(), nil
		},
	}
	cache := NewCacheService(100, 5*time.Minute)
	svc := NewCatalogService(repo, cache,
		OwnershipPolicy{EnforceDelete: true, EnforceUpdate: true}, slog.Default())

	// creator не передан — отказ
	err := svc.Update(context.Background(), 7, UpdateParams{Title: strPtr("x")})
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("ошибка = %v, ожидалась ErrNotOwner", err)
	}

	// creator не совпадает — отказ
	err = svc.Update(context.Background(), 7, UpdateParams{Creator: strPtr("WRONG")})
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("ошибка = %v, ожидалась ErrNotOwner", err)
	}
	if repo.updateCalls != 0 {
		t.Errorf("Update репозитория вызван %d раз, ожидался 0", repo.updateCalls)
	}

	// creator совпадает — обновление проходит
	err = svc.Update(context.Background(), 7, UpdateParams{
		Creator: strPtr("C"),
		Title:   strPtr("Sunrise"),
	})
	if err != nil {
		t.Fatalf("Update ошибка: %v", err)
	}
}

// --- Delete ---

// TestCatalogService_Delete_OwnerMatch проверяет удаление владельцем.
func TestCatalogService_Delete_OwnerMatch(t *testing.T) {
	repo := &mockImageRepo{
		getByIDFn: func(_ context.Context, _ int64) (*model.ImageRecord, error) {
			return existingRecord(), nil
		},
	}
	svc := newTestService(repo)

	if err := svc.Delete(context.Background(), 7, "C"); err != nil {
		t.Fatalf("Delete ошибка: %v", err)
	}
	if repo.deleteCalls != 1 {
		t.Errorf("DeleteByID вызван %d раз, ожидался 1", repo.deleteCalls)
	}
}

// TestCatalogService_Delete_OwnerMismatch проверяет отказ при несовпадении
// владельца: хранилище не меняется.
func TestCatalogService_Delete_OwnerMismatch(t *testing.T) {
	repo := &mockImageRepo{
		getByIDFn: func(_ context.Context, _ int64) (*model.ImageRecord, error) {
			return existingRecord(), nil
		},
	}
	svc := newTestService(repo)

	err := svc.Delete(context.Background(), 7, "WRONG")
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("ошибка = %v, ожидалась ErrNotOwner", err)
	}
	if repo.deleteCalls != 0 {
		t.Errorf("DeleteByID вызван %d раз, ожидался 0", repo.deleteCalls)
	}
}

// TestCatalogService_Delete_CaseSensitive проверяет регистрозависимое сравнение.
func TestCatalogService_Delete_CaseSensitive(t *testing.T) {
	repo := &mockImageRepo{
		getByIDFn: func(_ context.Context, _ int64) (*model.ImageRecord, error) {
			return existingRecord(), nil
		},
	}
	svc := newTestService(repo)

	err := svc.Delete(context.Background(), 7, "c")
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("ошибка = %v, ожидалась ErrNotOwner (сравнение регистрозависимое)", err)
	}
}

// TestCatalogService_Delete_NotFound проверяет явную ошибку отсутствия записи.
func TestCatalogService_Delete_NotFound(t *testing.T) {
	repo := &mockImageRepo{}
	svc := newTestService(repo)

	err := svc.Delete(context.Background(), 99, "C")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ошибка = %v, ожидалась ErrNotFound", err)
	}
	if repo.deleteCalls != 0 {
		t.Errorf("DeleteByID вызван %d раз, ожидался 0", repo.deleteCalls)
	}
}

// TestCatalogService_Delete_PolicyDisabled проверяет, что при выключенной
// политике владение не проверяется.
func TestCatalogService_Delete_PolicyDisabled(t *testing.T) {
	repo := &mockImageRepo{
		getByIDFn: func(_ context.Context, _ int64) (*model.ImageRecord, error) {
			return existingRecord(), nil
		},
	}
	cache := NewCacheService(100, 5*time.Minute)
	svc := NewCatalogService(repo, cache, OwnershipPolicy{}, slog.Default())

	if err := svc.Delete(context.Background(), 7, "WRONG"); err != nil {
		t.Fatalf("Delete ошибка: %v", err)
	}
	if repo.deleteCalls != 1 {
		t.Errorf("DeleteByID вызван %d раз, ожидался 1", repo.deleteCalls)
	}
}

// --- Search ---

// TestCatalogService_SearchByID_Cache проверяет кэширование по id.
func TestCatalogService_SearchByID_Cache(t *testing.T) {
	callCount := 0
	repo := &mockImageRepo{
		getByIDFn: func(_ context.Context, _ int64) (*model.ImageRecord, error) {
			callCount++
			return existingRecord(), nil
		},
	}
	svc := newTestService(repo)

	// Первый вызов — cache miss, идёт в БД
	record, err := svc.SearchByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("SearchByID ошибка: %v", err)
	}
	if record.ID != 7 {
		t.Errorf("ID = %d, ожидался 7", record.ID)
	}
	if callCount != 1 {
		t.Errorf("repo.GetByID вызван %d раз, ожидался 1", callCount)
	}

	// Второй вызов — cache hit, в БД не идёт
	if _, err := svc.SearchByID(context.Background(), 7); err != nil {
		t.Fatalf("SearchByID ошибка (cache hit): %v", err)
	}
	if callCount != 1 {
		t.Errorf("repo.GetByID вызван %d раз, ожидался 1 (cache hit)", callCount)
	}
}

// TestCatalogService_SearchByID_NotFound проверяет явную ошибку отсутствия.
func TestCatalogService_SearchByID_NotFound(t *testing.T) {
	repo := &mockImageRepo{}
	svc := newTestService(repo)

	_, err := svc.SearchByID(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ошибка = %v, ожидалась ErrNotFound", err)
	}
}

// TestCatalogService_SearchByCaptureDate_BadDate проверяет валидацию даты
// на границе: хранилище не вызывается.
func TestCatalogService_SearchByCaptureDate_BadDate(t *testing.T) {
	called := false
	repo := &mockImageRepo{
		searchByCaptureDateFn: func(_ context.Context, _ time.Time) ([]*model.ImageRecord, error) {
			called = true
			return nil, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.SearchByCaptureDate(context.Background(), "05/01/2023")
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("ошибка = %v, ожидалась ErrInvalidDate", err)
	}
	if called {
		t.Error("SearchByCaptureDate репозитория не должен вызываться при некорректной дате")
	}
}

// TestCatalogService_SearchByKeywords проверяет разбор списка и передачу
// его в репозиторий; результат — срез, а не одиночная запись.
func TestCatalogService_SearchByKeywords(t *testing.T) {
	var gotKeywords []string
	repo := &mockImageRepo{
		searchByKeywordsFn: func(_ context.Context, keywords []string) ([]*model.ImageRecord, error) {
			gotKeywords = keywords
			return []*model.ImageRecord{existingRecord()}, nil
		},
	}
	svc := newTestService(repo)

	images, err := svc.SearchByKeywords(context.Background(), "nature, sky")
	if err != nil {
		t.Fatalf("SearchByKeywords ошибка: %v", err)
	}
	if !reflect.DeepEqual(gotKeywords, []string{"nature", "sky"}) {
		t.Errorf("keywords = %v, ожидались [nature sky]", gotKeywords)
	}
	if len(images) != 1 {
		t.Errorf("результатов = %d, ожидался 1", len(images))
	}
}

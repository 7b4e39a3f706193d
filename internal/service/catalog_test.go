package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/dp-catalog/internal/domain/model"
	"github.com/bigkaa/dp-catalog/internal/repository"
)

// --- Mock repository ---

// mockDataProductRepo — мок DataProductRepository для unit-тестов.
type mockDataProductRepo struct {
	createFn       func(ctx context.Context, dp *model.DataProduct) error
	getByIDFn      func(ctx context.Context, id uuid.UUID) (*model.DataProduct, error)
	getByNameFn    func(ctx context.Context, name string) (*model.DataProduct, error)
	existsByNameFn func(ctx context.Context, name string) (bool, error)
	existsByIDFn   func(ctx context.Context, id uuid.UUID) (bool, error)
	listFn         func(ctx context.Context, portfolio *string, sensitivity *model.SensitivityCategory, limit, offset int) ([]*model.DataProduct, error)
	countFn        func(ctx context.Context, portfolio *string, sensitivity *model.SensitivityCategory) (int, error)
	updateFn       func(ctx context.Context, dp *model.DataProduct) error
	deleteFn       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockDataProductRepo) Create(ctx context.Context, dp *model.DataProduct) error {
	if m.createFn != nil {
		return m.createFn(ctx, dp)
	}
	return nil
}

func (m *mockDataProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.DataProduct, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockDataProductRepo) GetByName(ctx context.Context, name string) (*model.DataProduct, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, name)
	}
	return nil, repository.ErrNotFound
}

func (m *mockDataProductRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	if m.existsByNameFn != nil {
		return m.existsByNameFn(ctx, name)
	}
	return false, nil
}

func (m *mockDataProductRepo) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.existsByIDFn != nil {
		return m.existsByIDFn(ctx, id)
	}
	return false, nil
}

func (m *mockDataProductRepo) List(ctx context.Context, portfolio *string, sensitivity *model.SensitivityCategory, limit, offset int) ([]*model.DataProduct, error) {
	if m.listFn != nil {
		return m.listFn(ctx, portfolio, sensitivity, limit, offset)
	}
	return nil, nil
}

func (m *mockDataProductRepo) Count(ctx context.Context, portfolio *string, sensitivity *model.SensitivityCategory) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, portfolio, sensitivity)
	}
	return 0, nil
}

func (m *mockDataProductRepo) Update(ctx context.Context, dp *model.DataProduct) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, dp)
	}
	return nil
}

func (m *mockDataProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockTxManager — мок TxManager: передаёт в fn тот же репозиторий без транзакции.
type mockTxManager struct {
	repo repository.DataProductRepository
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(r repository.DataProductRepository) error) error {
	return fn(m.repo)
}

// newTestCatalog создаёт CatalogService с моками для тестов.
func newTestCatalog(repo *mockDataProductRepo) *CatalogService {
	cache := NewCacheService(100, 5*time.Minute)
	return NewCatalogService(repo, &mockTxManager{repo: repo}, cache, 5*time.Second, slog.Default())
}

func strPtr(s string) *string { return &s }

// --- Тесты Create ---

// TestCatalogService_Create проверяет создание записи: назначение UUID
// и нормализацию nil-тегов в пустой список.
func TestCatalogService_Create(t *testing.T) {
	var created *model.DataProduct
	repo := &mockDataProductRepo{
		createFn: func(_ context.Context, dp *model.DataProduct) error {
			created = dp
			dp.CreatedAt = time.Now()
			dp.UpdatedAt = dp.CreatedAt
			return nil
		},
	}
	svc := newTestCatalog(repo)

	dp := &model.DataProduct{
		Name:                "customer-orders",
		Portfolio:           "sales",
		Source:              "crm",
		SensitivityCategory: model.SensitivityInternal,
		IsActive:            true,
	}

	result, err := svc.Create(context.Background(), dp)
	if err != nil {
		t.Fatalf("Create ошибка: %v", err)
	}

	if result.ID == uuid.Nil {
		t.Error("ID не назначен")
	}
	if result.Tags == nil {
		t.Error("Tags = nil, ожидался пустой список")
	}
	if created == nil {
		t.Fatal("repo.Create не вызван")
	}
}

// TestCatalogService_Create_Conflict проверяет ErrConflict при занятом имени.
func TestCatalogService_Create_Conflict(t *testing.T) {
	repo := &mockDataProductRepo{
		existsByNameFn: func(_ context.Context, _ string) (bool, error) {
			return true, nil
		},
		createFn: func(_ context.Context, _ *model.DataProduct) error {
			t.Error("repo.Create не должен вызываться при занятом имени")
			return nil
		},
	}
	svc := newTestCatalog(repo)

	_, err := svc.Create(context.Background(), &model.DataProduct{Name: "duplicate"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("ошибка = %v, ожидалась ErrConflict", err)
	}
}

// TestCatalogService_Create_ConflictFromDB проверяет маппинг конфликта
// уникального индекса БД (гонка, которую не поймала предварительная проверка).
func TestCatalogService_Create_ConflictFromDB(t *testing.T) {
	repo := &mockDataProductRepo{
		existsByNameFn: func(_ context.Context, _ string) (bool, error) {
			return false, nil
		},
		createFn: func(_ context.Context, _ *model.DataProduct) error {
			return repository.ErrConflict
		},
	}
	svc := newTestCatalog(repo)

	_, err := svc.Create(context.Background(), &model.DataProduct{Name: "raced"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("ошибка = %v, ожидалась ErrConflict", err)
	}
}

// --- Тесты GetByID ---

// TestCatalogService_GetByID_CacheHit проверяет, что повторный запрос
// обслуживается из кэша без обращения к БД.
func TestCatalogService_GetByID_CacheHit(t *testing.T) {
	id := uuid.New()
	callCount := 0
	repo := &mockDataProductRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*model.DataProduct, error) {
			callCount++
			return &model.DataProduct{ID: id, Name: "cached"}, nil
		},
	}
	svc := newTestCatalog(repo)

	// Первый вызов — cache miss, идёт в БД
	dp, err := svc.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID ошибка: %v", err)
	}
	if dp.Name != "cached" {
		t.Errorf("Name = %q, ожидался %q", dp.Name, "cached")
	}

	// Второй вызов — cache hit, в БД не идёт
	_, err = svc.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID ошибка (cache hit): %v", err)
	}
	if callCount != 1 {
		t.Errorf("repo.GetByID вызван %d раз, ожидался 1 (cache hit)", callCount)
	}
}

// TestCatalogService_GetByID_NotFound проверяет маппинг ErrNotFound.
func TestCatalogService_GetByID_NotFound(t *testing.T) {
	repo := &mockDataProductRepo{}
	svc := newTestCatalog(repo)

	_, err := svc.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ошибка = %v, ожидалась ErrNotFound", err)
	}
}

// --- Тесты List ---

// TestCatalogService_List проверяет расчёт метаданных пагинации.
func TestCatalogService_List(t *testing.T) {
	items := []*model.DataProduct{
		{ID: uuid.New(), Name: "dp-1"},
		{ID: uuid.New(), Name: "dp-2"},
	}

	repo := &mockDataProductRepo{
		listFn: func(_ context.Context, _ *string, _ *model.SensitivityCategory, limit, offset int) ([]*model.DataProduct, error) {
			if limit != 2 {
				t.Errorf("limit = %d, ожидался 2", limit)
			}
			if offset != 2 {
				t.Errorf("offset = %d, ожидался 2 (page=1, size=2)", offset)
			}
			return items, nil
		},
		countFn: func(_ context.Context, _ *string, _ *model.SensitivityCategory) (int, error) {
			return 5, nil
		},
	}
	svc := newTestCatalog(repo)

	result, err := svc.List(context.Background(), nil, nil, 1, 2)
	if err != nil {
		t.Fatalf("List ошибка: %v", err)
	}

	if result.TotalElements != 5 {
		t.Errorf("TotalElements = %d, ожидался 5", result.TotalElements)
	}
	if result.TotalPages != 3 {
		t.Errorf("TotalPages = %d, ожидался 3 (5 записей по 2)", result.TotalPages)
	}
	if result.First {
		t.Error("First = true, ожидался false (page=1)")
	}
	if result.Last {
		t.Error("Last = true, ожидался false (page=1 из 3)")
	}
}

// TestCatalogService_List_Empty проверяет пустой каталог:
// первая страница одновременно первая и последняя.
func TestCatalogService_List_Empty(t *testing.T) {
	repo := &mockDataProductRepo{}
	svc := newTestCatalog(repo)

	result, err := svc.List(context.Background(), nil, nil, 0, 20)
	if err != nil {
		t.Fatalf("List ошибка: %v", err)
	}

	if result.TotalElements != 0 {
		t.Errorf("TotalElements = %d, ожидался 0", result.TotalElements)
	}
	if result.TotalPages != 0 {
		t.Errorf("TotalPages = %d, ожидался 0", result.TotalPages)
	}
	if !result.First || !result.Last {
		t.Errorf("First/Last = %v/%v, ожидалось true/true", result.First, result.Last)
	}
}

// TestCatalogService_List_PastEnd проверяет страницу за пределами данных:
// пустой список записей, но корректные метаданные.
func TestCatalogService_List_PastEnd(t *testing.T) {
	repo := &mockDataProductRepo{
		countFn: func(_ context.Context, _ *string, _ *model.SensitivityCategory) (int, error) {
			return 3, nil
		},
	}
	svc := newTestCatalog(repo)

	result, err := svc.List(context.Background(), nil, nil, 10, 20)
	if err != nil {
		t.Fatalf("List ошибка: %v", err)
	}

	if len(result.Items) != 0 {
		t.Errorf("Items count = %d, ожидался 0", len(result.Items))
	}
	if result.TotalElements != 3 {
		t.Errorf("TotalElements = %d, ожидался 3", result.TotalElements)
	}
	if !result.Last {
		t.Error("Last = false, ожидался true (page=10 за пределами)")
	}
}

// TestCatalogService_List_Filters проверяет передачу фильтров в репозиторий.
func TestCatalogService_List_Filters(t *testing.T) {
	sc := model.SensitivityConfidential
	repo := &mockDataProductRepo{
		listFn: func(_ context.Context, portfolio *string, sensitivity *model.SensitivityCategory, _, _ int) ([]*model.DataProduct, error) {
			if portfolio == nil || *portfolio != "finance" {
				t.Errorf("portfolio = %v, ожидался finance", portfolio)
			}
			if sensitivity == nil || *sensitivity != sc {
				t.Errorf("sensitivity = %v, ожидался CONFIDENTIAL", sensitivity)
			}
			return nil, nil
		},
	}
	svc := newTestCatalog(repo)

	_, err := svc.List(context.Background(), strPtr("finance"), &sc, 0, 20)
	if err != nil {
		t.Fatalf("List ошибка: %v", err)
	}
}

// --- Тесты Update ---

// TestCatalogService_Update_PartialMerge проверяет частичное обновление:
// заданные поля перезаписываются, nil-поля сохраняют текущие значения.
func TestCatalogService_Update_PartialMerge(t *testing.T) {
	id := uuid.New()
	owner := "data-team"
	current := &model.DataProduct{
		ID:                  id,
		Name:                "orders",
		Portfolio:           "sales",
		Source:              "crm",
		SensitivityCategory: model.SensitivityInternal,
		Owner:               &owner,
		IsActive:            true,
	}

	var saved *model.DataProduct
	repo := &mockDataProductRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*model.DataProduct, error) {
			cp := *current
			return &cp, nil
		},
		updateFn: func(_ context.Context, dp *model.DataProduct) error {
			saved = dp
			return nil
		},
	}
	svc := newTestCatalog(repo)

	newDesc := "Заказы клиентов"
	result, err := svc.Update(context.Background(), id, &model.DataProductUpdate{
		Description: &newDesc,
	})
	if err != nil {
		t.Fatalf("Update ошибка: %v", err)
	}

	if result.Description == nil || *result.Description != newDesc {
		t.Errorf("Description = %v, ожидался %q", result.Description, newDesc)
	}
	// Незаданные поля не изменились
	if result.Name != "orders" || result.Portfolio != "sales" {
		t.Errorf("незаданные поля изменились: Name=%q Portfolio=%q", result.Name, result.Portfolio)
	}
	if result.Owner == nil || *result.Owner != owner {
		t.Errorf("Owner = %v, ожидался %q", result.Owner, owner)
	}
	if saved == nil {
		t.Fatal("repo.Update не вызван")
	}
}

// TestCatalogService_Update_RenameConflict проверяет конфликт при
// переименовании на занятое имя.
func TestCatalogService_Update_RenameConflict(t *testing.T) {
	id := uuid.New()
	repo := &mockDataProductRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*model.DataProduct, error) {
			return &model.DataProduct{ID: id, Name: "old-name"}, nil
		},
		existsByNameFn: func(_ context.Context, name string) (bool, error) {
			return name == "taken", nil
		},
	}
	svc := newTestCatalog(repo)

	_, err := svc.Update(context.Background(), id, &model.DataProductUpdate{
		Name: strPtr("taken"),
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("ошибка = %v, ожидалась ErrConflict", err)
	}
}

// TestCatalogService_Update_RenameToSelf проверяет, что переименование
// на собственное текущее имя не считается конфликтом.
func TestCatalogService_Update_RenameToSelf(t *testing.T) {
	id := uuid.New()
	repo := &mockDataProductRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*model.DataProduct, error) {
			return &model.DataProduct{ID: id, Name: "same-name"}, nil
		},
		existsByNameFn: func(_ context.Context, _ string) (bool, error) {
			t.Error("ExistsByName не должен вызываться при совпадении имени")
			return true, nil
		},
	}
	svc := newTestCatalog(repo)

	result, err := svc.Update(context.Background(), id, &model.DataProductUpdate{
		Name: strPtr("same-name"),
	})
	if err != nil {
		t.Fatalf("Update ошибка: %v", err)
	}
	if result.Name != "same-name" {
		t.Errorf("Name = %q, ожидался %q", result.Name, "same-name")
	}
}

// TestCatalogService_Update_NotFound проверяет ErrNotFound для отсутствующей записи.
func TestCatalogService_Update_NotFound(t *testing.T) {
	repo := &mockDataProductRepo{}
	svc := newTestCatalog(repo)

	_, err := svc.Update(context.Background(), uuid.New(), &model.DataProductUpdate{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ошибка = %v, ожидалась ErrNotFound", err)
	}
}

// --- Тесты Delete ---

// TestCatalogService_Delete проверяет удаление и инвалидацию кэша.
func TestCatalogService_Delete(t *testing.T) {
	id := uuid.New()
	getCalls := 0
	repo := &mockDataProductRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*model.DataProduct, error) {
			getCalls++
			if getCalls > 1 {
				return nil, repository.ErrNotFound
			}
			return &model.DataProduct{ID: id, Name: "to-delete"}, nil
		},
	}
	svc := newTestCatalog(repo)

	// Прогреваем кэш
	if _, err := svc.GetByID(context.Background(), id); err != nil {
		t.Fatalf("GetByID ошибка: %v", err)
	}

	if err := svc.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete ошибка: %v", err)
	}

	// Кэш инвалидирован — повторный Get идёт в БД и получает NotFound
	_, err := svc.GetByID(context.Background(), id)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ошибка после удаления = %v, ожидалась ErrNotFound", err)
	}
}

// TestCatalogService_Delete_NotFound проверяет ErrNotFound для отсутствующей записи.
func TestCatalogService_Delete_NotFound(t *testing.T) {
	repo := &mockDataProductRepo{
		deleteFn: func(_ context.Context, _ uuid.UUID) error {
			return repository.ErrNotFound
		},
	}
	svc := newTestCatalog(repo)

	err := svc.Delete(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ошибка = %v, ожидалась ErrNotFound", err)
	}
}

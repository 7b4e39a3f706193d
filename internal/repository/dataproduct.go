package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/dp-catalog/internal/domain/model"
)

// dataProductColumns — список столбцов таблицы data_products для SELECT-запросов.
// DRY: одно место для всех SELECT'ов.
const dataProductColumns = `id, name, description, portfolio, source, sensitivity_category,
	data_format, owner, tags, is_active, retention_period_days, created_at, updated_at`

// DataProductRepository — интерфейс CRUD для таблицы data_products.
type DataProductRepository interface {
	// Create вставляет новую запись. Дублирующееся имя — ErrConflict.
	Create(ctx context.Context, dp *model.DataProduct) error
	// GetByID возвращает запись по UUID или ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*model.DataProduct, error)
	// GetByName возвращает запись по имени (точное, case-sensitive совпадение) или ErrNotFound.
	GetByName(ctx context.Context, name string) (*model.DataProduct, error)
	// ExistsByName проверяет существование записи с указанным именем.
	ExistsByName(ctx context.Context, name string) (bool, error)
	// ExistsByID проверяет существование записи с указанным UUID.
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	// List возвращает записи с фильтрацией по portfolio и sensitivity_category.
	List(ctx context.Context, portfolio *string, sensitivity *model.SensitivityCategory, limit, offset int) ([]*model.DataProduct, error)
	// Count возвращает количество записей с той же фильтрацией, что и List.
	Count(ctx context.Context, portfolio *string, sensitivity *model.SensitivityCategory) (int, error)
	// Update перезаписывает изменяемые поля записи. Отсутствующий id — ErrNotFound,
	// дублирующееся имя — ErrConflict. updated_at обновляется всегда.
	Update(ctx context.Context, dp *model.DataProduct) error
	// Delete навсегда удаляет запись. Отсутствующий id — ErrNotFound.
	Delete(ctx context.Context, id uuid.UUID) error
}

// dataProductRepo — реализация DataProductRepository через pgx.
type dataProductRepo struct {
	db DBTX
}

// NewDataProductRepository создаёт репозиторий data products.
func NewDataProductRepository(db DBTX) DataProductRepository {
	return &dataProductRepo{db: db}
}

func (r *dataProductRepo) Create(ctx context.Context, dp *model.DataProduct) error {
	query := `
		INSERT INTO data_products (id, name, description, portfolio, source,
			sensitivity_category, data_format, owner, tags, is_active, retention_period_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		dp.ID, dp.Name, dp.Description, dp.Portfolio, dp.Source,
		dp.SensitivityCategory, dp.DataFormat, dp.Owner, dp.Tags,
		dp.IsActive, dp.RetentionPeriodDays,
	).Scan(&dp.CreatedAt, &dp.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: имя %q уже занято", ErrConflict, dp.Name)
		}
		return fmt.Errorf("ошибка создания data product: %w", err)
	}
	return nil
}

func (r *dataProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.DataProduct, error) {
	query := fmt.Sprintf(`SELECT %s FROM data_products WHERE id = $1`, dataProductColumns)
	return r.getOne(ctx, query, id)
}

func (r *dataProductRepo) GetByName(ctx context.Context, name string) (*model.DataProduct, error) {
	query := fmt.Sprintf(`SELECT %s FROM data_products WHERE name = $1`, dataProductColumns)
	return r.getOne(ctx, query, name)
}

// getOne выполняет запрос одной записи по произвольному условию.
func (r *dataProductRepo) getOne(ctx context.Context, query string, arg any) (*model.DataProduct, error) {
	dp := &model.DataProduct{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&dp.ID, &dp.Name, &dp.Description, &dp.Portfolio, &dp.Source,
		&dp.SensitivityCategory, &dp.DataFormat, &dp.Owner, &dp.Tags,
		&dp.IsActive, &dp.RetentionPeriodDays, &dp.CreatedAt, &dp.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения data product: %w", err)
	}
	return dp, nil
}

func (r *dataProductRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM data_products WHERE name = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки имени: %w", err)
	}
	return exists, nil
}

func (r *dataProductRepo) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM data_products WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки id: %w", err)
	}
	return exists, nil
}

// buildFilters собирает WHERE-условия для List и Count.
// nil-фильтр не накладывает ограничений, фильтры комбинируются через AND.
func buildFilters(portfolio *string, sensitivity *model.SensitivityCategory) (string, []any) {
	var conditions []string
	var args []any
	argNum := 1

	if portfolio != nil {
		conditions = append(conditions, fmt.Sprintf("portfolio = $%d", argNum))
		args = append(args, *portfolio)
		argNum++
	}
	if sensitivity != nil {
		conditions = append(conditions, fmt.Sprintf("sensitivity_category = $%d", argNum))
		args = append(args, *sensitivity)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	return where, args
}

func (r *dataProductRepo) List(ctx context.Context, portfolio *string, sensitivity *model.SensitivityCategory, limit, offset int) ([]*model.DataProduct, error) {
	where, args := buildFilters(portfolio, sensitivity)

	// Стабильный порядок: по времени создания, id — tie-break
	query := fmt.Sprintf(`
		SELECT %s
		FROM data_products
		%s
		ORDER BY created_at, id
		LIMIT $%d OFFSET $%d`, dataProductColumns, where, len(args)+1, len(args)+2)

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка data products: %w", err)
	}
	defer rows.Close()

	var result []*model.DataProduct
	for rows.Next() {
		dp := &model.DataProduct{}
		if err := rows.Scan(
			&dp.ID, &dp.Name, &dp.Description, &dp.Portfolio, &dp.Source,
			&dp.SensitivityCategory, &dp.DataFormat, &dp.Owner, &dp.Tags,
			&dp.IsActive, &dp.RetentionPeriodDays, &dp.CreatedAt, &dp.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования data product: %w", err)
		}
		result = append(result, dp)
	}
	return result, rows.Err()
}

func (r *dataProductRepo) Count(ctx context.Context, portfolio *string, sensitivity *model.SensitivityCategory) (int, error) {
	where, args := buildFilters(portfolio, sensitivity)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM data_products %s`, where)

	var count int
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта data products: %w", err)
	}
	return count, nil
}

func (r *dataProductRepo) Update(ctx context.Context, dp *model.DataProduct) error {
	// created_at намеренно не трогаем, updated_at обновляется всегда,
	// даже если значения полей не изменились
	query := `
		UPDATE data_products
		SET name = $2, description = $3, portfolio = $4, source = $5,
			sensitivity_category = $6, data_format = $7, owner = $8, tags = $9,
			is_active = $10, retention_period_days = $11, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		dp.ID, dp.Name, dp.Description, dp.Portfolio, dp.Source,
		dp.SensitivityCategory, dp.DataFormat, dp.Owner, dp.Tags,
		dp.IsActive, dp.RetentionPeriodDays,
	).Scan(&dp.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: имя %q уже занято", ErrConflict, dp.Name)
		}
		return fmt.Errorf("ошибка обновления data product: %w", err)
	}
	return nil
}

func (r *dataProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM data_products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления data product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

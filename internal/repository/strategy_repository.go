package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"tradebots/internal/models"
)

// Ошибки репозитория стратегий
var (
	ErrStrategyNotFound = errors.New("strategy not found")
	ErrStrategyExists   = errors.New("strategy already exists")
)

// StrategyRepository - работа с таблицей strategy
type StrategyRepository struct {
	db *sql.DB
}

// NewStrategyRepository создает новый экземпляр репозитория
func NewStrategyRepository(db *sql.DB) *StrategyRepository {
	return &StrategyRepository{db: db}
}

// Create создает новую стратегию с ID, заданным клиентом
func (r *StrategyRepository) Create(ctx context.Context, strategy *models.Strategy) error {
	query := `
		INSERT INTO strategy (id, name, params)
		VALUES ($1, $2, $3)`

	_, err := r.db.ExecContext(ctx, query, strategy.ID, strategy.Name, pq.Array(strategy.Params))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrStrategyExists
		}
		if isInvalidValue(err) {
			return ErrInvalidValue
		}
		return err
	}

	return nil
}

// GetByID возвращает стратегию по ID
func (r *StrategyRepository) GetByID(ctx context.Context, id int) (*models.Strategy, error) {
	query := `
		SELECT id, COALESCE(name, ''), params
		FROM strategy
		WHERE id = $1`

	strategy := &models.Strategy{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&strategy.ID,
		&strategy.Name,
		pq.Array(&strategy.Params),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStrategyNotFound
		}
		return nil, err
	}

	return strategy, nil
}

// GetAll возвращает все стратегии, отсортированные по ID
func (r *StrategyRepository) GetAll(ctx context.Context) ([]*models.Strategy, error) {
	query := `
		SELECT id, COALESCE(name, ''), params
		FROM strategy
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var strategies []*models.Strategy
	for rows.Next() {
		strategy := &models.Strategy{}
		if err := rows.Scan(&strategy.ID, &strategy.Name, pq.Array(&strategy.Params)); err != nil {
			return nil, err
		}
		strategies = append(strategies, strategy)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return strategies, nil
}

// Update перезаписывает имя и параметры стратегии
func (r *StrategyRepository) Update(ctx context.Context, strategy *models.Strategy) error {
	query := `
		UPDATE strategy
		SET name = $1, params = $2
		WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, strategy.Name, pq.Array(strategy.Params), strategy.ID)
	if err != nil {
		if isInvalidValue(err) {
			return ErrInvalidValue
		}
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrStrategyNotFound
	}

	return nil
}

// Delete удаляет стратегию
// Боты, ссылавшиеся на нее, остаются (strategy_id обнуляется на уровне БД)
func (r *StrategyRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM strategy WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrStrategyNotFound
	}

	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"tradebots/internal/models"
)

// Ошибки репозитория ботов
var (
	ErrBotNotFound = errors.New("bot not found")
	ErrBotExists   = errors.New("bot already exists")
)

// BotRepository - работа с таблицей bot
type BotRepository struct {
	db *sql.DB
}

// NewBotRepository создает новый экземпляр репозитория
func NewBotRepository(db *sql.DB) *BotRepository {
	return &BotRepository{db: db}
}

// Create создает нового бота с ID, заданным клиентом
//
// Ссылка на несуществующую стратегию возвращает ErrInvalidReference.
func (r *BotRepository) Create(ctx context.Context, bot *models.Bot) error {
	query := `
		INSERT INTO bot (id, name, active, timeframe, param_values, strategy_id)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		bot.ID,
		bot.Name,
		bot.Active,
		bot.Timeframe,
		pq.Array(bot.ParamValues),
		nullableInt(bot.StrategyID),
	)
	if err != nil {
		return classifyBotWriteError(err, ErrBotExists)
	}

	return nil
}

// GetByID возвращает бота по ID
func (r *BotRepository) GetByID(ctx context.Context, id int) (*models.Bot, error) {
	query := `
		SELECT id, COALESCE(name, ''), active, COALESCE(timeframe, ''), param_values, strategy_id
		FROM bot
		WHERE id = $1`

	bot, err := scanBot(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBotNotFound
		}
		return nil, err
	}

	return bot, nil
}

// GetAll возвращает всех ботов, отсортированных по ID
func (r *BotRepository) GetAll(ctx context.Context) ([]*models.Bot, error) {
	query := `
		SELECT id, COALESCE(name, ''), active, COALESCE(timeframe, ''), param_values, strategy_id
		FROM bot
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bots []*models.Bot
	for rows.Next() {
		bot, err := scanBot(rows)
		if err != nil {
			return nil, err
		}
		bots = append(bots, bot)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return bots, nil
}

// GetAllDetailed возвращает всех ботов вместе с именем и параметрами стратегии
//
// LEFT JOIN: боты без стратегии (удаленной или не указанной) тоже попадают в выборку.
func (r *BotRepository) GetAllDetailed(ctx context.Context) ([]*models.BotDetail, error) {
	query := `
		SELECT b.id, COALESCE(b.name, ''), b.active, COALESCE(b.timeframe, ''), b.param_values, b.strategy_id,
		       s.name, s.params
		FROM bot b
		LEFT JOIN strategy s ON s.id = b.strategy_id
		ORDER BY b.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []*models.BotDetail
	for rows.Next() {
		var (
			detail       models.BotDetail
			strategyID   sql.NullInt64
			strategyName sql.NullString
		)
		err := rows.Scan(
			&detail.ID,
			&detail.Name,
			&detail.Active,
			&detail.Timeframe,
			pq.Array(&detail.ParamValues),
			&strategyID,
			&strategyName,
			pq.Array(&detail.StrategyParams),
		)
		if err != nil {
			return nil, err
		}
		detail.StrategyID = intPtr(strategyID)
		if strategyName.Valid {
			name := strategyName.String
			detail.StrategyName = &name
		}
		details = append(details, &detail)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return details, nil
}

// Update перезаписывает все изменяемые поля бота
func (r *BotRepository) Update(ctx context.Context, bot *models.Bot) error {
	query := `
		UPDATE bot
		SET name = $1, active = $2, timeframe = $3, param_values = $4, strategy_id = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		bot.Name,
		bot.Active,
		bot.Timeframe,
		pq.Array(bot.ParamValues),
		nullableInt(bot.StrategyID),
		bot.ID,
	)
	if err != nil {
		return classifyBotWriteError(err, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrBotNotFound
	}

	return nil
}

// Delete удаляет бота
func (r *BotRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM bot WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrBotNotFound
	}

	return nil
}

// rowScanner - общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBot(row rowScanner) (*models.Bot, error) {
	bot := &models.Bot{}
	var strategyID sql.NullInt64
	err := row.Scan(
		&bot.ID,
		&bot.Name,
		&bot.Active,
		&bot.Timeframe,
		pq.Array(&bot.ParamValues),
		&strategyID,
	)
	if err != nil {
		return nil, err
	}
	bot.StrategyID = intPtr(strategyID)
	return bot, nil
}

// classifyBotWriteError переводит ошибки драйвера в ошибки репозитория
// onDuplicate возвращается при нарушении уникальности
func classifyBotWriteError(err, onDuplicate error) error {
	switch {
	case isUniqueViolation(err):
		return onDuplicate
	case isForeignKeyViolation(err):
		return ErrInvalidReference
	case isInvalidValue(err):
		return ErrInvalidValue
	default:
		return err
	}
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/factlens/social-factcheck-go/internal/db"
	"github.com/factlens/social-factcheck-go/internal/db/models"
)

// UserRepository defines operations for the bot user registry.
type UserRepository interface {
	// UpsertUser creates or refreshes a bot user keyed by telegram id.
	UpsertUser(ctx context.Context, user *models.BotUser) error

	// GetByTelegramID retrieves a bot user.
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.BotUser, error)

	// RecordRequest bumps the user's request counter. Unknown users get a
	// row created first so counters are never lost.
	RecordRequest(ctx context.Context, telegramID int64) error

	// CountUsers returns the total number of registered users.
	CountUsers(ctx context.Context) (int64, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) UpsertUser(ctx context.Context, user *models.BotUser) error {
	query := `
		INSERT INTO bot_users (telegram_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name
		RETURNING id, request_count, joined_at
	`

	err := r.pool.QueryRow(ctx, query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
	).Scan(&user.ID, &user.RequestCount, &user.JoinedAt)

	if err != nil {
		return db.WrapError(err, "upsert user")
	}
	return nil
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.BotUser, error) {
	query := `
		SELECT id, telegram_id, username, first_name, last_name,
		       request_count, last_request_at, joined_at
		FROM bot_users
		WHERE telegram_id = $1
	`

	user := &models.BotUser{}
	err := r.pool.QueryRow(ctx, query, telegramID).Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.RequestCount,
		&user.LastRequestAt,
		&user.JoinedAt,
	)
	if err != nil {
		return nil, db.WrapError(err, "get user by telegram id")
	}

	return user, nil
}

func (r *userRepository) RecordRequest(ctx context.Context, telegramID int64) error {
	query := `
		INSERT INTO bot_users (telegram_id, request_count, last_request_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (telegram_id) DO UPDATE
		SET request_count = bot_users.request_count + 1,
		    last_request_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, telegramID); err != nil {
		return db.WrapError(err, "record user request")
	}
	return nil
}

func (r *userRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bot_users`).Scan(&count); err != nil {
		return 0, db.WrapError(err, "count users")
	}
	return count, nil
}

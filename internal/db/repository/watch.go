package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/factlens/social-factcheck-go/internal/db"
	"github.com/factlens/social-factcheck-go/internal/db/models"
)

// WatchRepository defines operations for the watch-list of creator accounts.
type WatchRepository interface {
	// CreateWatch inserts an active watch. Returns db.ErrDuplicateKey when
	// the username is already actively watched; the partial unique index
	// makes concurrent creates resolve to a single active row.
	CreateWatch(ctx context.Context, watch *models.WatchedAccount) error

	// GetActiveByUsername retrieves the active watch for a username.
	GetActiveByUsername(ctx context.Context, username string) (*models.WatchedAccount, error)

	// ListActiveByOwner lists a user's active watches, newest first.
	ListActiveByOwner(ctx context.Context, ownerUserID int64) ([]*models.WatchedAccount, error)

	// CountActiveByOwner counts a user's active watches.
	CountActiveByOwner(ctx context.Context, ownerUserID int64) (int64, error)

	// ListDue lists active watches not checked within the interval,
	// oldest-checked first so every account gets its turn.
	ListDue(ctx context.Context, olderThan string, limit int) ([]*models.WatchedAccount, error)

	// MarkChecked records a sweep pass over an account.
	MarkChecked(ctx context.Context, username string, lastSeenContentID string) error

	// Deactivate soft-deletes the active watch for a username.
	Deactivate(ctx context.Context, username string) error

	// CountActive counts all active watches.
	CountActive(ctx context.Context) (int64, error)

	// CreateSweepLog records one sweep audit entry.
	CreateSweepLog(ctx context.Context, entry *models.SweepLog) error
}

type watchRepository struct {
	pool *pgxpool.Pool
}

// NewWatchRepository creates a new WatchRepository.
func NewWatchRepository(pool *pgxpool.Pool) WatchRepository {
	return &watchRepository{pool: pool}
}

const watchColumns = `
	id, username, owner_user_id, status, last_checked_at, last_seen_content_id,
	created_at, updated_at
`

func (r *watchRepository) CreateWatch(ctx context.Context, watch *models.WatchedAccount) error {
	query := `
		INSERT INTO watched_accounts (username, owner_user_id, status)
		VALUES ($1, $2, 'active')
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, watch.Username, watch.OwnerUserID).Scan(
		&watch.ID,
		&watch.CreatedAt,
		&watch.UpdatedAt,
	)
	if err != nil {
		return db.WrapError(err, "create watch")
	}

	watch.Status = models.WatchActive
	return nil
}

func (r *watchRepository) GetActiveByUsername(ctx context.Context, username string) (*models.WatchedAccount, error) {
	query := `SELECT ` + watchColumns + ` FROM watched_accounts WHERE username = $1 AND status = 'active'`

	watch, err := scanWatch(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		return nil, db.WrapError(err, "get active watch by username")
	}
	return watch, nil
}

func (r *watchRepository) ListActiveByOwner(ctx context.Context, ownerUserID int64) ([]*models.WatchedAccount, error) {
	query := `
		SELECT ` + watchColumns + `
		FROM watched_accounts
		WHERE owner_user_id = $1 AND status = 'active'
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerUserID)
	if err != nil {
		return nil, db.WrapError(err, "list active watches by owner")
	}
	defer rows.Close()

	return scanWatches(rows)
}

func (r *watchRepository) CountActiveByOwner(ctx context.Context, ownerUserID int64) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM watched_accounts WHERE owner_user_id = $1 AND status = 'active'`
	if err := r.pool.QueryRow(ctx, query, ownerUserID).Scan(&count); err != nil {
		return 0, db.WrapError(err, "count active watches by owner")
	}
	return count, nil
}

func (r *watchRepository) ListDue(ctx context.Context, olderThan string, limit int) ([]*models.WatchedAccount, error) {
	// NULLS FIRST puts never-checked accounts at the head of the queue.
	query := `
		SELECT ` + watchColumns + `
		FROM watched_accounts
		WHERE status = 'active'
		  AND (last_checked_at IS NULL OR last_checked_at < NOW() - $1::interval)
		ORDER BY last_checked_at ASC NULLS FIRST
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, db.WrapError(err, "list due watches")
	}
	defer rows.Close()

	return scanWatches(rows)
}

func (r *watchRepository) MarkChecked(ctx context.Context, username string, lastSeenContentID string) error {
	query := `
		UPDATE watched_accounts
		SET last_checked_at = NOW(),
		    last_seen_content_id = COALESCE(NULLIF($2, ''), last_seen_content_id),
		    updated_at = NOW()
		WHERE username = $1 AND status = 'active'
	`

	if _, err := r.pool.Exec(ctx, query, username, lastSeenContentID); err != nil {
		return db.WrapError(err, "mark watch checked")
	}
	return nil
}

func (r *watchRepository) Deactivate(ctx context.Context, username string) error {
	query := `
		UPDATE watched_accounts
		SET status = 'inactive', updated_at = NOW()
		WHERE username = $1 AND status = 'active'
	`

	tag, err := r.pool.Exec(ctx, query, username)
	if err != nil {
		return db.WrapError(err, "deactivate watch")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deactivate watch: %w", db.ErrNotFound)
	}
	return nil
}

func (r *watchRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM watched_accounts WHERE status = 'active'`).Scan(&count); err != nil {
		return 0, db.WrapError(err, "count active watches")
	}
	return count, nil
}

func (r *watchRepository) CreateSweepLog(ctx context.Context, entry *models.SweepLog) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal sweep details: %w", err)
	}

	query := `
		INSERT INTO sweep_logs (account_id, action, videos_found, new_videos, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err = r.pool.QueryRow(ctx, query,
		entry.AccountID,
		entry.Action,
		entry.VideosFound,
		entry.NewVideos,
		details,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return db.WrapError(err, "create sweep log")
	}
	return nil
}

func scanWatch(row rowScanner) (*models.WatchedAccount, error) {
	watch := &models.WatchedAccount{}
	var status string

	err := row.Scan(
		&watch.ID,
		&watch.Username,
		&watch.OwnerUserID,
		&status,
		&watch.LastCheckedAt,
		&watch.LastSeenContentID,
		&watch.CreatedAt,
		&watch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	watch.Status = models.WatchStatus(status)
	return watch, nil
}

func scanWatches(rows pgx.Rows) ([]*models.WatchedAccount, error) {
	var result []*models.WatchedAccount

	for rows.Next() {
		watch, err := scanWatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan watch: %w", err)
		}
		result = append(result, watch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watches: %w", err)
	}

	return result, nil
}

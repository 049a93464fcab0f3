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

// VerificationRepository defines operations for fact-check results.
// Verifications are append-only children of content records.
type VerificationRepository interface {
	// CreateVerification appends a verification result for a content row.
	CreateVerification(ctx context.Context, v *models.Verification) error

	// GetLatestByContentID retrieves the most recent verification for a
	// content row.
	GetLatestByContentID(ctx context.Context, contentID int64) (*models.Verification, error)

	// ListByContentID retrieves the full verification history, newest first.
	ListByContentID(ctx context.Context, contentID int64) ([]*models.Verification, error)

	// CountVerifications returns the total number of stored verifications.
	CountVerifications(ctx context.Context) (int64, error)

	// CountVerifiedForOwner counts verifications of content authored by
	// accounts the given owner actively watches.
	CountVerifiedForOwner(ctx context.Context, ownerUserID int64) (int64, error)
}

type verificationRepository struct {
	pool *pgxpool.Pool
}

// NewVerificationRepository creates a new VerificationRepository.
func NewVerificationRepository(pool *pgxpool.Pool) VerificationRepository {
	return &verificationRepository{pool: pool}
}

func (r *verificationRepository) CreateVerification(ctx context.Context, v *models.Verification) error {
	flags, err := json.Marshal(v.Flags)
	if err != nil {
		return fmt.Errorf("marshal flags: %w", err)
	}
	sources, err := json.Marshal(v.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}
	tools, err := json.Marshal(v.ToolsUsed)
	if err != nil {
		return fmt.Errorf("marshal tools: %w", err)
	}

	query := `
		INSERT INTO verifications (
			content_id, request_id, status, score, verdict, summary,
			flags, sources, explanation, tools_used
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, verified_at
	`

	err = r.pool.QueryRow(ctx, query,
		v.ContentID,
		v.RequestID,
		string(v.Status),
		v.Score,
		string(v.Verdict),
		v.Summary,
		flags,
		sources,
		v.Explanation,
		tools,
	).Scan(&v.ID, &v.VerifiedAt)

	if err != nil {
		return db.WrapError(err, "create verification")
	}

	return nil
}

const verificationColumns = `
	id, content_id, request_id, status, score, verdict, summary,
	flags, sources, explanation, tools_used, verified_at
`

func (r *verificationRepository) GetLatestByContentID(ctx context.Context, contentID int64) (*models.Verification, error) {
	query := `
		SELECT ` + verificationColumns + `
		FROM verifications
		WHERE content_id = $1
		ORDER BY verified_at DESC, id DESC
		LIMIT 1
	`

	v, err := scanVerification(r.pool.QueryRow(ctx, query, contentID))
	if err != nil {
		return nil, db.WrapError(err, "get latest verification")
	}
	return v, nil
}

func (r *verificationRepository) ListByContentID(ctx context.Context, contentID int64) ([]*models.Verification, error) {
	query := `
		SELECT ` + verificationColumns + `
		FROM verifications
		WHERE content_id = $1
		ORDER BY verified_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, contentID)
	if err != nil {
		return nil, db.WrapError(err, "list verifications")
	}
	defer rows.Close()

	return scanVerifications(rows)
}

func (r *verificationRepository) CountVerifications(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM verifications`).Scan(&count); err != nil {
		return 0, db.WrapError(err, "count verifications")
	}
	return count, nil
}

func (r *verificationRepository) CountVerifiedForOwner(ctx context.Context, ownerUserID int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM verifications v
		JOIN contents c ON c.id = v.content_id
		WHERE c.author IN (
			SELECT username FROM watched_accounts
			WHERE owner_user_id = $1 AND status = 'active'
		)
	`

	var count int64
	if err := r.pool.QueryRow(ctx, query, ownerUserID).Scan(&count); err != nil {
		return 0, db.WrapError(err, "count verified for owner")
	}
	return count, nil
}

func scanVerification(row rowScanner) (*models.Verification, error) {
	v := &models.Verification{}
	var status, verdict string
	var flags, sources, tools []byte

	err := row.Scan(
		&v.ID,
		&v.ContentID,
		&v.RequestID,
		&status,
		&v.Score,
		&verdict,
		&v.Summary,
		&flags,
		&sources,
		&v.Explanation,
		&tools,
		&v.VerifiedAt,
	)
	if err != nil {
		return nil, err
	}

	v.Status = models.VerificationStatus(status)
	v.Verdict = models.Verdict(verdict)
	if err := json.Unmarshal(flags, &v.Flags); err != nil {
		return nil, fmt.Errorf("unmarshal flags: %w", err)
	}
	if err := json.Unmarshal(sources, &v.Sources); err != nil {
		return nil, fmt.Errorf("unmarshal sources: %w", err)
	}
	if err := json.Unmarshal(tools, &v.ToolsUsed); err != nil {
		return nil, fmt.Errorf("unmarshal tools: %w", err)
	}

	return v, nil
}

func scanVerifications(rows pgx.Rows) ([]*models.Verification, error) {
	var result []*models.Verification

	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verification: %w", err)
		}
		result = append(result, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verifications: %w", err)
	}

	return result, nil
}

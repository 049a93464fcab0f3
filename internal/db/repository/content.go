package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/factlens/social-factcheck-go/internal/db"
	"github.com/factlens/social-factcheck-go/internal/db/models"
	"github.com/factlens/social-factcheck-go/internal/platform"
)

// ContentRepository defines operations for managing canonical content records.
type ContentRepository interface {
	// CreateContent stores a content record, or returns the id of the
	// existing row when (platform, content_id) was already stored.
	// The record's ID field is set either way.
	CreateContent(ctx context.Context, record *models.ContentRecord) error

	// GetByNativeID retrieves a record by its platform-native identifier.
	GetByNativeID(ctx context.Context, p platform.Platform, contentID string) (*models.ContentRecord, error)

	// GetByID retrieves a record by its row id.
	GetByID(ctx context.Context, id int64) (*models.ContentRecord, error)

	// CountContents returns the total number of stored records.
	CountContents(ctx context.Context) (int64, error)
}

type contentRepository struct {
	pool *pgxpool.Pool
}

// NewContentRepository creates a new ContentRepository.
func NewContentRepository(pool *pgxpool.Pool) ContentRepository {
	return &contentRepository{pool: pool}
}

func (r *contentRepository) CreateContent(ctx context.Context, record *models.ContentRecord) error {
	extraMedia, err := json.Marshal(record.ExtraMediaURLs)
	if err != nil {
		return fmt.Errorf("marshal extra media urls: %w", err)
	}
	hashtags, err := json.Marshal(record.Hashtags)
	if err != nil {
		return fmt.Errorf("marshal hashtags: %w", err)
	}

	// The no-op DO UPDATE makes RETURNING yield the existing id on conflict,
	// so concurrent inserts for the same (platform, content_id) converge on
	// one row. The stored snapshot is never overwritten.
	query := `
		INSERT INTO contents (
			content_id, platform, url, author, title, description,
			thumbnail_url, media_url, extra_media_urls,
			views, likes, comments, shares, duration, hashtags,
			published_at, extracted_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (platform, content_id) DO UPDATE
		SET content_id = contents.content_id
		RETURNING id, extracted_at
	`

	err = r.pool.QueryRow(ctx, query,
		record.ContentID,
		string(record.Platform),
		record.URL,
		record.Author,
		record.Title,
		record.Description,
		record.ThumbnailURL,
		record.MediaURL,
		extraMedia,
		record.Views,
		record.Likes,
		record.Comments,
		record.Shares,
		record.Duration,
		hashtags,
		record.PublishedAt,
		record.ExtractedAt,
	).Scan(&record.ID, &record.ExtractedAt)

	if err != nil {
		return db.WrapError(err, "create content")
	}

	return nil
}

const contentColumns = `
	id, content_id, platform, url, author, title, description,
	thumbnail_url, media_url, extra_media_urls,
	views, likes, comments, shares, duration, hashtags,
	published_at, extracted_at
`

func (r *contentRepository) GetByNativeID(ctx context.Context, p platform.Platform, contentID string) (*models.ContentRecord, error) {
	query := `SELECT ` + contentColumns + ` FROM contents WHERE platform = $1 AND content_id = $2`

	record, err := scanContent(r.pool.QueryRow(ctx, query, string(p), contentID))
	if err != nil {
		return nil, db.WrapError(err, "get content by native id")
	}
	return record, nil
}

func (r *contentRepository) GetByID(ctx context.Context, id int64) (*models.ContentRecord, error) {
	query := `SELECT ` + contentColumns + ` FROM contents WHERE id = $1`

	record, err := scanContent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, db.WrapError(err, "get content by id")
	}
	return record, nil
}

func (r *contentRepository) CountContents(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contents`).Scan(&count); err != nil {
		return 0, db.WrapError(err, "count contents")
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (*models.ContentRecord, error) {
	record := &models.ContentRecord{}
	var platformStr string
	var extraMedia, hashtags []byte

	err := row.Scan(
		&record.ID,
		&record.ContentID,
		&platformStr,
		&record.URL,
		&record.Author,
		&record.Title,
		&record.Description,
		&record.ThumbnailURL,
		&record.MediaURL,
		&extraMedia,
		&record.Views,
		&record.Likes,
		&record.Comments,
		&record.Shares,
		&record.Duration,
		&hashtags,
		&record.PublishedAt,
		&record.ExtractedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Platform = platform.Platform(platformStr)
	if err := json.Unmarshal(extraMedia, &record.ExtraMediaURLs); err != nil {
		return nil, fmt.Errorf("unmarshal extra media urls: %w", err)
	}
	if err := json.Unmarshal(hashtags, &record.Hashtags); err != nil {
		return nil, fmt.Errorf("unmarshal hashtags: %w", err)
	}

	return record, nil
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factlens/social-factcheck-go/internal/db"
	"github.com/factlens/social-factcheck-go/internal/db/models"
	"github.com/factlens/social-factcheck-go/internal/db/testutil"
	"github.com/factlens/social-factcheck-go/internal/platform"
)

func newContentRecord(contentID string) *models.ContentRecord {
	now := time.Now()
	return &models.ContentRecord{
		ContentID:      contentID,
		Platform:       platform.TikTok,
		URL:            "https://www.tiktok.com/@creator/video/" + contentID,
		Author:         "creator",
		Title:          "Title",
		Description:    "Description #tag",
		ThumbnailURL:   "https://cdn.test/thumb.jpg",
		MediaURL:       "https://cdn.test/video.mp4",
		ExtraMediaURLs: []string{"https://cdn.test/extra.jpg"},
		Views:          100,
		Likes:          10,
		Comments:       5,
		Shares:         2,
		Duration:       "42",
		Hashtags:       []string{"tag"},
		PublishedAt:    now,
		ExtractedAt:    now,
	}
}

func TestContentRepository_CreateContent(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewContentRepository(td.Pool)
	ctx := context.Background()

	t.Run("creates new content", func(t *testing.T) {
		td.TruncateTables(t)

		record := newContentRecord("7123")
		err := repo.CreateContent(ctx, record)

		require.NoError(t, err)
		assert.NotZero(t, record.ID)
	})

	t.Run("duplicate resolves to the existing row", func(t *testing.T) {
		td.TruncateTables(t)

		first := newContentRecord("7123")
		require.NoError(t, repo.CreateContent(ctx, first))

		// Same native id with different metrics: the stored snapshot wins
		second := newContentRecord("7123")
		second.Views = 9999
		require.NoError(t, repo.CreateContent(ctx, second))

		assert.Equal(t, first.ID, second.ID)

		stored, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), stored.Views)
	})

	t.Run("same id on another platform is a separate row", func(t *testing.T) {
		td.TruncateTables(t)

		tiktok := newContentRecord("7123")
		require.NoError(t, repo.CreateContent(ctx, tiktok))

		insta := newContentRecord("7123")
		insta.Platform = platform.Instagram
		require.NoError(t, repo.CreateContent(ctx, insta))

		assert.NotEqual(t, tiktok.ID, insta.ID)
	})
}

func TestContentRepository_GetByNativeID(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewContentRepository(td.Pool)
	ctx := context.Background()

	t.Run("retrieves content successfully", func(t *testing.T) {
		td.TruncateTables(t)

		record := newContentRecord("7123")
		require.NoError(t, repo.CreateContent(ctx, record))

		retrieved, err := repo.GetByNativeID(ctx, platform.TikTok, "7123")
		require.NoError(t, err)
		assert.Equal(t, record.ID, retrieved.ID)
		assert.Equal(t, record.ContentID, retrieved.ContentID)
		assert.Equal(t, platform.TikTok, retrieved.Platform)
		assert.Equal(t, record.Author, retrieved.Author)
		assert.Equal(t, []string{"https://cdn.test/extra.jpg"}, retrieved.ExtraMediaURLs)
		assert.Equal(t, []string{"tag"}, retrieved.Hashtags)
	})

	t.Run("returns error for unknown content", func(t *testing.T) {
		td.TruncateTables(t)

		_, err := repo.GetByNativeID(ctx, platform.TikTok, "missing")
		require.Error(t, err)
		assert.True(t, db.IsNotFound(err))
	})
}

func TestContentRepository_CountContents(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	repo := NewContentRepository(td.Pool)
	ctx := context.Background()

	td.TruncateTables(t)

	count, err := repo.CountContents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, repo.CreateContent(ctx, newContentRecord("1")))
	require.NoError(t, repo.CreateContent(ctx, newContentRecord("2")))

	count, err = repo.CountContents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

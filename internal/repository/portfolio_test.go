package repository

import (
	"context"
	"regexp"
	"testing"

	"folio/internal/cache"
	"folio/internal/database"
	"folio/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestPortfolioRepository_GetByShareToken(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPortfolioRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "portfolios" WHERE share_token = $1`)).
		WithArgs("legacy-tok", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "share_token"}).
			AddRow(12, 10, "legacy-tok"))

	// content preloads; their relative order is a gorm detail
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectQuery(`SELECT \* FROM "projects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "media"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	portfolio, err := repo.GetByShareToken(ctx, "legacy-tok")
	require.NoError(t, err)
	assert.Equal(t, uint(12), portfolio.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPortfolioRepository_GetByShareTokenMiss(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPortfolioRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "portfolios" WHERE share_token = $1`)).
		WithArgs("unknown", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByShareToken(ctx, "unknown")
	assertNotFound(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPortfolioRepository_GetByIDCacheAside(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	db := newSQLiteDB(t)
	repo := NewPortfolioRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.User{Username: "ada", Email: "ada@example.com", Password: "hash"}).Error)
	token := "legacy-tok"
	portfolio := &models.Portfolio{UserID: 1, Title: "Studio Work", ShareToken: &token}
	require.NoError(t, repo.Create(ctx, portfolio))

	first, err := repo.GetByID(ctx, portfolio.ID)
	require.NoError(t, err)
	assert.Equal(t, "Studio Work", first.Title)
	require.True(t, mr.Exists(cache.PortfolioKey(portfolio.ID)))

	// Rename behind the repository's back; the next read must come from the
	// cache and still show the old title.
	require.NoError(t, db.Model(&models.Portfolio{}).Where("id = ?", portfolio.ID).
		Update("title", "renamed directly").Error)
	second, err := repo.GetByID(ctx, portfolio.ID)
	require.NoError(t, err)
	assert.Equal(t, "Studio Work", second.Title)

	// The cached copy never carries the token. Updating through it must not
	// clear the column, and must drop the cache entry.
	second.Title = "Selected Work"
	require.NoError(t, repo.Update(ctx, second))
	assert.False(t, mr.Exists(cache.PortfolioKey(portfolio.ID)))

	var reloaded models.Portfolio
	require.NoError(t, db.First(&reloaded, portfolio.ID).Error)
	assert.Equal(t, "Selected Work", reloaded.Title)
	require.NotNil(t, reloaded.ShareToken)
	assert.Equal(t, token, *reloaded.ShareToken)
}

func TestPortfolioRepository_BackfillShareToken(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPortfolioRepository(db)
	ctx := context.Background()

	// the IS NULL guard means a portfolio that already carries a token is
	// left untouched; zero rows affected is still success
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "portfolios" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.BackfillShareToken(ctx, 7, "tok")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPortfolioRepository_DeleteMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPortfolioRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "portfolios"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(ctx, 99)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

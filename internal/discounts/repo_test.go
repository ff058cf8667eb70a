package discounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/karavanrugs/karavan-backend/pkg/db/models"
)

func setupDiscountsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`DROP TABLE IF EXISTS discount_policies`).Error)
	require.NoError(t, db.Exec(`
CREATE TABLE discount_policies (
  id TEXT PRIMARY KEY,
  percent TEXT NOT NULL,
  created_by TEXT NOT NULL,
  created_at DATETIME
);`).Error)

	return db
}

func insertPolicy(t *testing.T, db *gorm.DB, percent string, createdAt time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO discount_policies (id, percent, created_by, created_at) VALUES (?, ?, ?, ?)`,
		id.String(), percent, uuid.NewString(), createdAt,
	).Error)
	return id
}

func TestLatestReturnsNewestPolicy(t *testing.T) {
	db := setupDiscountsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	insertPolicy(t, db, "5", base)
	insertPolicy(t, db, "12.5", base.Add(time.Hour))
	newest := insertPolicy(t, db, "20", base.Add(2*time.Hour))

	policy, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, newest, policy.ID)
	assert.True(t, policy.Percent.Equal(decimal.RequireFromString("20")))
}

func TestLatestEmptyTable(t *testing.T) {
	db := setupDiscountsTestDB(t)
	repo := NewRepository(db)

	_, err := repo.Latest(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestListOrdersNewestFirst(t *testing.T) {
	db := setupDiscountsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	insertPolicy(t, db, "5", base)
	insertPolicy(t, db, "10", base.Add(time.Hour))
	insertPolicy(t, db, "15", base.Add(2*time.Hour))

	rows, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Percent.Equal(decimal.RequireFromString("15")))
	assert.True(t, rows[1].Percent.Equal(decimal.RequireFromString("10")))
}

func TestInsertPersistsPolicy(t *testing.T) {
	db := setupDiscountsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	policy := &models.DiscountPolicy{
		ID:        uuid.New(),
		Percent:   decimal.RequireFromString("7.5"),
		CreatedBy: uuid.New(),
	}
	created, err := repo.Insert(ctx, policy)
	require.NoError(t, err)
	require.NotNil(t, created)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.True(t, latest.Percent.Equal(decimal.RequireFromString("7.5")))
}

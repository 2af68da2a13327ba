package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/buildledger/backend/internal/domain/budget"
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBudgetItemTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&budget.BudgetItem{})
	require.NoError(t, err)

	return db
}

func createBudgetItem(t *testing.T, repo *GormBudgetItemRepository, projectID uuid.UUID, category string, budgeted int64) *budget.BudgetItem {
	t.Helper()
	item, err := budget.NewBudgetItem(projectID, category, category, valueobject.NewMoneyZAR(decimal.NewFromInt(budgeted)))
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), item))
	return item
}

func TestGormBudgetItemRepository_FindByID(t *testing.T) {
	db := setupBudgetItemTestDB(t)
	repo := NewGormBudgetItemRepository(db)
	ctx := context.Background()

	item := createBudgetItem(t, repo, uuid.New(), "materials", 10000)

	t.Run("found", func(t *testing.T) {
		found, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, item.ID, found.ID)
		assert.Equal(t, "materials", found.Category)
		assert.True(t, found.Budgeted.Equal(decimal.NewFromInt(10000)))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormBudgetItemRepository_FindByProjectAndCategory(t *testing.T) {
	db := setupBudgetItemTestDB(t)
	repo := NewGormBudgetItemRepository(db)
	ctx := context.Background()

	projectID := uuid.New()
	createBudgetItem(t, repo, projectID, "materials", 10000)
	createBudgetItem(t, repo, uuid.New(), "materials", 5000)

	t.Run("scoped to project", func(t *testing.T) {
		found, err := repo.FindByProjectAndCategory(ctx, projectID, "materials")
		require.NoError(t, err)
		assert.Equal(t, projectID, found.ProjectID)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := repo.FindByProjectAndCategory(ctx, projectID, "ghost")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormBudgetItemRepository_FindAll(t *testing.T) {
	db := setupBudgetItemTestDB(t)
	repo := NewGormBudgetItemRepository(db)
	ctx := context.Background()

	projectID := uuid.New()
	createBudgetItem(t, repo, projectID, "materials", 10000)
	createBudgetItem(t, repo, projectID, "labour", 5000)
	createBudgetItem(t, repo, uuid.New(), "materials", 3000)

	t.Run("filters by project", func(t *testing.T) {
		items, err := repo.FindAll(ctx, shared.Filter{ProjectID: &projectID})
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("search matches category and name", func(t *testing.T) {
		items, err := repo.FindAll(ctx, shared.Filter{ProjectID: &projectID, Search: "lab"})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "labour", items[0].Category)
	})

	t.Run("pagination", func(t *testing.T) {
		items, err := repo.FindAll(ctx, shared.Filter{ProjectID: &projectID, Page: 1, PageSize: 1})
		require.NoError(t, err)
		assert.Len(t, items, 1)

		count, err := repo.Count(ctx, shared.Filter{ProjectID: &projectID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("unknown sort field falls back to category", func(t *testing.T) {
		items, err := repo.FindAll(ctx, shared.Filter{ProjectID: &projectID, OrderBy: "evil; drop table", OrderDir: "asc"})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "labour", items[0].Category)
	})
}

func TestGormBudgetItemRepository_SaveWithLock(t *testing.T) {
	db := setupBudgetItemTestDB(t)
	repo := NewGormBudgetItemRepository(db)
	ctx := context.Background()

	t.Run("persists the mutation and version", func(t *testing.T) {
		item := createBudgetItem(t, repo, uuid.New(), "materials", 10000)

		require.NoError(t, item.Reserve(decimal.NewFromInt(2000)))
		require.NoError(t, repo.SaveWithLock(ctx, item))

		found, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, found.Reserved.Equal(decimal.NewFromInt(2000)))
		assert.Equal(t, item.Version, found.Version)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		item := createBudgetItem(t, repo, uuid.New(), "labour", 5000)

		stale, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)

		require.NoError(t, item.Reserve(decimal.NewFromInt(100)))
		require.NoError(t, repo.SaveWithLock(ctx, item))

		require.NoError(t, stale.Reserve(decimal.NewFromInt(200)))
		err = repo.SaveWithLock(ctx, stale)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONCURRENT_MODIFICATION", domainErr.Code)
	})
}

func TestGormBudgetItemRepository_Delete(t *testing.T) {
	db := setupBudgetItemTestDB(t)
	repo := NewGormBudgetItemRepository(db)
	ctx := context.Background()

	item := createBudgetItem(t, repo, uuid.New(), "materials", 10000)

	require.NoError(t, repo.Delete(ctx, item.ID))
	_, err := repo.FindByID(ctx, item.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, item.ID), shared.ErrNotFound)
}

func TestTxManager_Transact(t *testing.T) {
	db := setupBudgetItemTestDB(t)
	repo := NewGormBudgetItemRepository(db)
	tx := NewTxManager(db)
	ctx := context.Background()

	t.Run("rollback discards repository writes", func(t *testing.T) {
		projectID := uuid.New()
		wantErr := errors.New("boom")

		err := tx.Transact(ctx, func(txCtx context.Context) error {
			item, err := budget.NewBudgetItem(projectID, "materials", "Materials", valueobject.NewMoneyZAR(decimal.NewFromInt(100)))
			if err != nil {
				return err
			}
			if err := repo.Save(txCtx, item); err != nil {
				return err
			}
			return wantErr
		})
		assert.ErrorIs(t, err, wantErr)

		_, err = repo.FindByProjectAndCategory(ctx, projectID, "materials")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("nested calls join the outer transaction", func(t *testing.T) {
		projectID := uuid.New()

		err := tx.Transact(ctx, func(outer context.Context) error {
			return tx.Transact(outer, func(inner context.Context) error {
				item, err := budget.NewBudgetItem(projectID, "labour", "Labour", valueobject.NewMoneyZAR(decimal.NewFromInt(100)))
				if err != nil {
					return err
				}
				return repo.Save(inner, item)
			})
		})
		require.NoError(t, err)

		_, err = repo.FindByProjectAndCategory(ctx, projectID, "labour")
		assert.NoError(t, err)
	})
}

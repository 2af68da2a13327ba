package budget

import (
	"testing"

	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBudgetItem(t *testing.T) {
	projectID := uuid.New()

	t.Run("valid item", func(t *testing.T) {
		item, err := NewBudgetItem(projectID, "materials", "Building materials", valueobject.NewMoneyZAR(decimal.NewFromInt(10000)))
		require.NoError(t, err)
		assert.Equal(t, projectID, item.ProjectID)
		assert.Equal(t, "materials", item.Category)
		assert.Equal(t, "Building materials", item.Name)
		assert.True(t, item.Budgeted.Equal(decimal.NewFromInt(10000)))
		assert.True(t, item.Reserved.IsZero())
		assert.True(t, item.Actual.IsZero())
		assert.Len(t, item.GetDomainEvents(), 1)
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name      string
			projectID uuid.UUID
			category  string
			itemName  string
			budgeted  decimal.Decimal
			wantCode  string
		}{
			{"nil project", uuid.Nil, "materials", "Materials", decimal.NewFromInt(100), "INVALID_PROJECT"},
			{"empty category", projectID, "", "Materials", decimal.NewFromInt(100), "INVALID_CATEGORY"},
			{"empty name", projectID, "materials", "", decimal.NewFromInt(100), "INVALID_NAME"},
			{"negative budget", projectID, "materials", "Materials", decimal.NewFromInt(-1), "INVALID_AMOUNT"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewBudgetItem(tt.projectID, tt.category, tt.itemName, valueobject.NewMoneyZAR(tt.budgeted))
				require.Error(t, err)
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.wantCode, domainErr.Code)
			})
		}
	})

	t.Run("zero budget is allowed", func(t *testing.T) {
		item, err := NewBudgetItem(projectID, "contingency", "Contingency", valueobject.NewMoneyZAR(decimal.Zero))
		require.NoError(t, err)
		assert.True(t, item.Budgeted.IsZero())
	})
}

func TestBudgetItem_Reserve(t *testing.T) {
	item := newTestItem(t, 10000)

	err := item.Reserve(decimal.NewFromInt(3000))
	require.NoError(t, err)
	assert.True(t, item.Reserved.Equal(decimal.NewFromInt(3000)))

	err = item.Reserve(decimal.NewFromInt(2000))
	require.NoError(t, err)
	assert.True(t, item.Reserved.Equal(decimal.NewFromInt(5000)))

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		assert.Error(t, item.Reserve(decimal.Zero))
		assert.Error(t, item.Reserve(decimal.NewFromInt(-100)))
	})

	t.Run("may exceed budgeted", func(t *testing.T) {
		// Overspend is reported, not blocked
		require.NoError(t, item.Reserve(decimal.NewFromInt(20000)))
		assert.True(t, item.Remaining().IsNegative())
	})
}

func TestBudgetItem_Release(t *testing.T) {
	t.Run("releases a prior reservation", func(t *testing.T) {
		item := newTestItem(t, 10000)
		require.NoError(t, item.Reserve(decimal.NewFromInt(3000)))

		require.NoError(t, item.Release(decimal.NewFromInt(1000)))
		assert.True(t, item.Reserved.Equal(decimal.NewFromInt(2000)))
	})

	t.Run("clamps at zero", func(t *testing.T) {
		item := newTestItem(t, 10000)
		require.NoError(t, item.Reserve(decimal.NewFromInt(500)))

		require.NoError(t, item.Release(decimal.NewFromInt(800)))
		assert.True(t, item.Reserved.IsZero())
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		item := newTestItem(t, 10000)
		assert.Error(t, item.Release(decimal.Zero))
		assert.Error(t, item.Release(decimal.NewFromInt(-1)))
	})
}

func TestBudgetItem_RecordActual(t *testing.T) {
	item := newTestItem(t, 10000)

	require.NoError(t, item.RecordActual(decimal.NewFromInt(2500)))
	require.NoError(t, item.RecordActual(decimal.NewFromInt(1500)))
	assert.True(t, item.Actual.Equal(decimal.NewFromInt(4000)))

	assert.Error(t, item.RecordActual(decimal.Zero))
	assert.Error(t, item.RecordActual(decimal.NewFromInt(-10)))
}

func TestBudgetItem_Remaining(t *testing.T) {
	item := newTestItem(t, 10000)
	require.NoError(t, item.Reserve(decimal.NewFromInt(3000)))
	require.NoError(t, item.RecordActual(decimal.NewFromInt(2000)))

	assert.True(t, item.Remaining().Equal(decimal.NewFromInt(5000)))
}

func TestBudgetItem_UpdateBudgeted(t *testing.T) {
	item := newTestItem(t, 10000)

	require.NoError(t, item.UpdateBudgeted(valueobject.NewMoneyZAR(decimal.NewFromInt(12000))))
	assert.True(t, item.Budgeted.Equal(decimal.NewFromInt(12000)))

	err := item.UpdateBudgeted(valueobject.NewMoneyZAR(decimal.NewFromInt(-1)))
	assert.Error(t, err)
}

func TestBudgetItem_Rename(t *testing.T) {
	item := newTestItem(t, 10000)

	require.NoError(t, item.Rename("Site materials"))
	assert.Equal(t, "Site materials", item.Name)

	assert.Error(t, item.Rename(""))
}

func newTestItem(t *testing.T, budgeted int64) *BudgetItem {
	t.Helper()
	item, err := NewBudgetItem(uuid.New(), "materials", "Materials", valueobject.NewMoneyZAR(decimal.NewFromInt(budgeted)))
	require.NoError(t, err)
	return item
}

package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction selects whether a reservation is taken or released
type Direction string

const (
	DirectionReserve Direction = "reserve"
	DirectionRelease Direction = "release"
)

// CategoryAmounts maps a category name to the amount a document commits to it
type CategoryAmounts map[string]decimal.Decimal

// Total returns the sum over all categories
func (c CategoryAmounts) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range c {
		total = total.Add(amount)
	}
	return total
}

// Ledger is the single mutation path for budget reserved/actual caches.
// Workflow transition handlers are its only callers; nothing else may
// touch BudgetItem.Reserved or BudgetItem.Actual.
type Ledger struct {
	items BudgetItemRepository
}

// NewLedger creates a new budget ledger service
func NewLedger(items BudgetItemRepository) *Ledger {
	return &Ledger{items: items}
}

// Reserve applies a reservation (or release) for every category a document
// commits to. Zero amounts are skipped; a category without a budget item is
// a not-found error and aborts the whole operation, so callers must invoke
// it inside the transaction that performs the status transition.
func (l *Ledger) Reserve(ctx context.Context, projectID uuid.UUID, amounts CategoryAmounts, direction Direction) error {
	for category, amount := range amounts {
		if amount.IsZero() {
			continue
		}
		item, err := l.findItem(ctx, projectID, category)
		if err != nil {
			return err
		}
		switch direction {
		case DirectionRelease:
			err = item.Release(amount)
		default:
			err = item.Reserve(amount)
		}
		if err != nil {
			return err
		}
		if err := l.items.SaveWithLock(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// RecordActual applies paid amounts to the actual cache per category
func (l *Ledger) RecordActual(ctx context.Context, projectID uuid.UUID, amounts CategoryAmounts) error {
	for category, amount := range amounts {
		if amount.IsZero() {
			continue
		}
		item, err := l.findItem(ctx, projectID, category)
		if err != nil {
			return err
		}
		if err := item.RecordActual(amount); err != nil {
			return err
		}
		if err := l.items.SaveWithLock(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) findItem(ctx context.Context, projectID uuid.UUID, category string) (*BudgetItem, error) {
	item, err := l.items.FindByProjectAndCategory(ctx, projectID, category)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("No budget item for category %q in project", category))
		}
		return nil, err
	}
	return item, nil
}

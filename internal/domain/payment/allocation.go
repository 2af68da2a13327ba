package payment

import (
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationType determines how a line's payment amount is derived
type AllocationType string

const (
	AllocationTypeFull       AllocationType = "full"
	AllocationTypeFixed      AllocationType = "fixed"
	AllocationTypePercentage AllocationType = "percentage"
)

// IsValid checks if the allocation type is valid
func (t AllocationType) IsValid() bool {
	switch t {
	case AllocationTypeFull, AllocationTypeFixed, AllocationTypePercentage:
		return true
	}
	return false
}

// String returns the string representation of AllocationType
func (t AllocationType) String() string {
	return string(t)
}

var oneHundred = decimal.NewFromInt(100)

// DocumentLine is the allocator's view of one priced row of the referenced
// document. PreviouslyPaid is the replayed sum of this line's share across
// earlier completed payments.
type DocumentLine struct {
	LineItemID     uuid.UUID
	Description    string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	LineTotal      decimal.Decimal
	Category       string
	PreviouslyPaid decimal.Decimal
}

// Remaining returns the unpaid balance of the line, never negative
func (l DocumentLine) Remaining() decimal.Decimal {
	remaining := l.LineTotal.Sub(l.PreviouslyPaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// AllocationRequest asks for one line's share of a new payment
type AllocationRequest struct {
	LineItemID uuid.UUID
	Type       AllocationType
	// Value is the fixed amount or the requested percentage; ignored for full
	Value decimal.Decimal
}

// Allocation is the computed share of a new payment for one line.
// PaymentAmount is always within [0, Remaining]; out-of-range requests are
// clamped rather than rejected.
type Allocation struct {
	Line          DocumentLine
	Type          AllocationType
	Value         decimal.Decimal
	PaymentAmount decimal.Decimal
}

// AllocateLine computes a single line's payment amount. Fixed amounts clamp
// to the remaining balance; percentages clamp to [0, min(100,
// remainingPercentage)] and the resulting amount re-clamps to remaining to
// absorb rounding.
func AllocateLine(line DocumentLine, allocType AllocationType, value decimal.Decimal) (Allocation, error) {
	if !allocType.IsValid() {
		return Allocation{}, shared.NewDomainError("INVALID_ALLOCATION_TYPE", "Allocation type must be full, fixed or percentage")
	}

	remaining := line.Remaining()
	alloc := Allocation{Line: line, Type: allocType, Value: value}

	switch allocType {
	case AllocationTypeFull:
		alloc.PaymentAmount = remaining
	case AllocationTypeFixed:
		amount := value
		if amount.IsNegative() {
			amount = decimal.Zero
		}
		if amount.GreaterThan(remaining) {
			amount = remaining
		}
		alloc.PaymentAmount = amount
	case AllocationTypePercentage:
		percent := value
		if percent.IsNegative() {
			percent = decimal.Zero
		}
		limit := oneHundred
		if line.LineTotal.IsPositive() {
			remainingPercentage := remaining.Div(line.LineTotal).Mul(oneHundred)
			if remainingPercentage.LessThan(limit) {
				limit = remainingPercentage
			}
		} else {
			limit = decimal.Zero
		}
		if percent.GreaterThan(limit) {
			percent = limit
		}
		amount := line.LineTotal.Mul(percent).Div(oneHundred)
		if amount.GreaterThan(remaining) {
			amount = remaining
		}
		alloc.Value = percent
		alloc.PaymentAmount = amount
	}

	if alloc.PaymentAmount.IsNegative() {
		alloc.PaymentAmount = decimal.Zero
	}

	return alloc, nil
}

// AllocationResult is the full editable allocation for a new payment
type AllocationResult struct {
	Allocations []Allocation
	Breakdown   valueobject.VATBreakdown
}

// AllocatedTotal returns the sum of per-line payment amounts before VAT
// treatment is applied
func (r AllocationResult) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, alloc := range r.Allocations {
		total = total.Add(alloc.PaymentAmount)
	}
	return total
}

// Allocate splits a new payment across the document's lines. Requests address
// lines by ID; lines without a request are left out. The aggregate
// subtotal/VAT/total uses the referenced document's VAT treatment.
func Allocate(lines []DocumentLine, requests []AllocationRequest, treatment valueobject.VATTreatment) (AllocationResult, error) {
	if len(requests) == 0 {
		return AllocationResult{}, shared.NewDomainError("EMPTY_ALLOCATION", "At least one line allocation is required")
	}

	byID := make(map[uuid.UUID]DocumentLine, len(lines))
	for _, line := range lines {
		byID[line.LineItemID] = line
	}

	result := AllocationResult{Allocations: make([]Allocation, 0, len(requests))}
	for _, req := range requests {
		line, ok := byID[req.LineItemID]
		if !ok {
			return AllocationResult{}, shared.NewDomainError("ITEM_NOT_FOUND", "Allocation references an unknown line item")
		}
		alloc, err := AllocateLine(line, req.Type, req.Value)
		if err != nil {
			return AllocationResult{}, err
		}
		result.Allocations = append(result.Allocations, alloc)
	}

	allocated := result.AllocatedTotal()
	if !allocated.IsPositive() {
		return AllocationResult{}, shared.NewDomainError("NOTHING_TO_PAY", "Total allocated amount must be greater than zero")
	}

	result.Breakdown = valueobject.ComputeVAT(allocated, treatment)
	return result, nil
}

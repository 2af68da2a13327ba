package valueobject

import (
	"github.com/shopspring/decimal"
)

// VATTreatment governs how subtotal/VAT/total are derived from a raw amount
type VATTreatment string

const (
	VATNotApplicable VATTreatment = "not_applicable"
	VATInclusive     VATTreatment = "inclusive"
	VATExclusive     VATTreatment = "exclusive"
)

// VATRate is the statutory VAT rate (15%)
var VATRate = decimal.New(15, -2)

// vatFactor is 1 + VATRate, used to back out VAT from inclusive amounts
var vatFactor = decimal.New(115, -2)

// IsValid checks if the treatment is a known VATTreatment
func (t VATTreatment) IsValid() bool {
	switch t {
	case VATNotApplicable, VATInclusive, VATExclusive:
		return true
	}
	return false
}

// String returns the string representation of VATTreatment
func (t VATTreatment) String() string {
	return string(t)
}

// VATBreakdown is the result of applying a VAT treatment to a raw amount
type VATBreakdown struct {
	Subtotal decimal.Decimal
	VAT      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeVAT derives subtotal, VAT and total from a raw amount:
//   - not_applicable: subtotal = raw, vat = 0, total = raw
//   - exclusive: subtotal = raw, vat = raw * rate, total = subtotal + vat
//   - inclusive: total = raw, subtotal = raw / (1 + rate), vat = raw - subtotal
//
// Amounts are kept at full precision; rounding is a presentation concern.
func ComputeVAT(raw decimal.Decimal, treatment VATTreatment) VATBreakdown {
	switch treatment {
	case VATExclusive:
		vat := raw.Mul(VATRate)
		return VATBreakdown{
			Subtotal: raw,
			VAT:      vat,
			Total:    raw.Add(vat),
		}
	case VATInclusive:
		subtotal := raw.Div(vatFactor)
		return VATBreakdown{
			Subtotal: subtotal,
			VAT:      raw.Sub(subtotal),
			Total:    raw,
		}
	default:
		return VATBreakdown{
			Subtotal: raw,
			VAT:      decimal.Zero,
			Total:    raw,
		}
	}
}

package pricing

import (
	"github.com/fixmarket/backend/internal/domain/shared"
	"github.com/fixmarket/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Calculator derives the customer-facing total from an executor's net
// price. The commission percentage is configured process-wide and is not
// negotiable per order. Every total shown to a customer must come from
// Quote so that the bid list and the selection confirmation can never
// disagree.
type Calculator struct {
	pct      decimal.Decimal
	currency valueobject.Currency
}

// NewCalculator creates a commission calculator with the given ratio
// (e.g. 0.10 for a 10% commission)
func NewCalculator(pct decimal.Decimal) (Calculator, error) {
	if pct.IsNegative() {
		return Calculator{}, shared.NewDomainError("INVALID_COMMISSION", "Commission ratio cannot be negative")
	}
	return Calculator{pct: pct, currency: valueobject.DefaultCurrency}, nil
}

// Ratio returns the configured commission ratio
func (c Calculator) Ratio() decimal.Decimal {
	return c.pct
}

// Quote represents the three figures shown for a bid
type Quote struct {
	Net        valueobject.Money `json:"net"`
	Commission valueobject.Money `json:"commission"`
	Total      valueobject.Money `json:"total"`
}

// Quote computes commission and total for a net price:
//
//	commission = round(net * pct, 2)
//	total      = net + commission
//
// Rounding is decimal.Round, i.e. half away from zero, which for the
// positive prices this domain allows is plain half-up rounding.
func (c Calculator) Quote(net decimal.Decimal) (Quote, error) {
	if net.LessThanOrEqual(decimal.Zero) {
		return Quote{}, shared.ErrInvalidPrice
	}

	netMoney, _ := valueobject.NewMoney(net, c.currency)
	commission := netMoney.Multiply(c.pct).Round(2)
	total := netMoney.MustAdd(commission)

	return Quote{
		Net:        netMoney,
		Commission: commission,
		Total:      total,
	}, nil
}

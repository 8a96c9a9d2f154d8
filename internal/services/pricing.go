package services

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Pricing engine: pure functions computing sale totals and the
// discount/tax breakdown. No I/O happens here; price lookups are injected.

// PricingRates holds the discount and tax rates applied to stock-in amounts.
type PricingRates struct {
	DiscountRate decimal.Decimal
	TaxRate      decimal.Decimal
}

// DefaultPricingRates returns the standard rates: 10% discount, 18% GST.
func DefaultPricingRates() PricingRates {
	return PricingRates{
		DiscountRate: decimal.NewFromFloat(0.10),
		TaxRate:      decimal.NewFromFloat(0.18),
	}
}

// DiscountTaxBreakdown is the result of applying PricingRates to a base amount.
type DiscountTaxBreakdown struct {
	Discount  decimal.Decimal
	Tax       decimal.Decimal
	NetAmount decimal.Decimal
}

// PriceLookup resolves a product's current unit price.
type PriceLookup func(productID int64) (float64, error)

// SaleLine is one priced line of a prospective sale.
type SaleLine struct {
	ProductID int64
	Quantity  int64
}

// ComputeSaleTotal sums price(productID) * quantity over all lines using
// each product's current price. Lookup failures propagate unchanged so that
// callers keep their not-found semantics.
func ComputeSaleTotal(lines []SaleLine, lookup PriceLookup) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range lines {
		price, err := lookup(line.ProductID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("looking up price for product ID %d: %w", line.ProductID, err)
		}
		lineTotal := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(line.Quantity))
		total = total.Add(lineTotal)
	}
	return total, nil
}

// ComputeDiscountAndTax applies the discount rate to the base amount, then
// the tax rate to the discounted amount:
//
//	discount = base * DiscountRate
//	tax      = (base - discount) * TaxRate
//	net      = base - discount + tax
//
// Deterministic: equal inputs always produce equal breakdowns.
func ComputeDiscountAndTax(baseAmount decimal.Decimal, rates PricingRates) DiscountTaxBreakdown {
	discount := baseAmount.Mul(rates.DiscountRate)
	taxable := baseAmount.Sub(discount)
	tax := taxable.Mul(rates.TaxRate)
	return DiscountTaxBreakdown{
		Discount:  discount,
		Tax:       tax,
		NetAmount: taxable.Add(tax),
	}
}

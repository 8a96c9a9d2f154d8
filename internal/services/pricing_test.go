package services_test

import (
	"errors"
	"testing"

	"ims_backend/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeDiscountAndTax_DefaultRates(t *testing.T) {
	rates := services.DefaultPricingRates()

	tests := []struct {
		name         string
		base         string
		wantDiscount string
		wantTax      string
		wantNet      string
	}{
		{"hundred", "100", "10", "16.2", "106.2"},
		{"zero", "0", "0", "0", "0"},
		{"unit price", "1", "0.1", "0.162", "1.062"},
		{"large", "2500", "250", "405", "2655"},
		{"fractional", "99.99", "9.999", "16.19838", "106.18938"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.ComputeDiscountAndTax(dec(tt.base), rates)
			assert.True(t, got.Discount.Equal(dec(tt.wantDiscount)), "discount: got %s", got.Discount)
			assert.True(t, got.Tax.Equal(dec(tt.wantTax)), "tax: got %s", got.Tax)
			assert.True(t, got.NetAmount.Equal(dec(tt.wantNet)), "net: got %s", got.NetAmount)
		})
	}
}

func TestComputeDiscountAndTax_Deterministic(t *testing.T) {
	rates := services.DefaultPricingRates()
	base := dec("123.45")

	first := services.ComputeDiscountAndTax(base, rates)
	for i := 0; i < 10; i++ {
		again := services.ComputeDiscountAndTax(base, rates)
		assert.True(t, first.Discount.Equal(again.Discount))
		assert.True(t, first.Tax.Equal(again.Tax))
		assert.True(t, first.NetAmount.Equal(again.NetAmount))
	}
}

func TestComputeDiscountAndTax_CustomRates(t *testing.T) {
	rates := services.PricingRates{
		DiscountRate: dec("0.25"),
		TaxRate:      dec("0.05"),
	}
	got := services.ComputeDiscountAndTax(dec("200"), rates)
	assert.True(t, got.Discount.Equal(dec("50")), "discount: got %s", got.Discount)
	assert.True(t, got.Tax.Equal(dec("7.5")), "tax: got %s", got.Tax)
	assert.True(t, got.NetAmount.Equal(dec("157.5")), "net: got %s", got.NetAmount)
}

func TestComputeSaleTotal(t *testing.T) {
	prices := map[int64]float64{1: 10.50, 2: 3.25, 3: 0}
	lookup := func(productID int64) (float64, error) {
		price, ok := prices[productID]
		if !ok {
			return 0, services.ErrProductNotFound
		}
		return price, nil
	}

	t.Run("sums price times quantity across lines", func(t *testing.T) {
		total, err := services.ComputeSaleTotal([]services.SaleLine{
			{ProductID: 1, Quantity: 2}, // 21.00
			{ProductID: 2, Quantity: 4}, // 13.00
			{ProductID: 3, Quantity: 9}, // 0
		}, lookup)
		require.NoError(t, err)
		assert.True(t, total.Equal(dec("34")), "total: got %s", total)
	})

	t.Run("empty line set totals zero", func(t *testing.T) {
		total, err := services.ComputeSaleTotal(nil, lookup)
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})

	t.Run("unknown product propagates the lookup error", func(t *testing.T) {
		_, err := services.ComputeSaleTotal([]services.SaleLine{{ProductID: 99, Quantity: 1}}, lookup)
		assert.True(t, errors.Is(err, services.ErrProductNotFound))
	})
}

package services_test

import (
	"errors"
	"testing"

	"ims_backend/internal/models"
	"ims_backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillingCRUDAndOriginFilter(t *testing.T) {
	env := newTestEnv(t)
	widget := env.createProduct(t, "Widget", 10.0)
	user := env.createUser(t, "clerk")
	supplier := env.createCustomer(t, "Acme Supplies")
	env.seedStock(t, widget.ID, 10)

	// One stock-in (invoice + payment) and one sale (invoice only).
	_, err := env.stockService.CreateStockIn(services.CreateStockInRequest{
		Date: "2026-05-01", ProductID: widget.ID, Quantity: 2, UserID: user.ID, CustomerID: supplier.ID,
	})
	require.NoError(t, err)
	_, err = env.saleService.CreateSale(services.CreateSaleRequest{
		Date:  "2026-05-02",
		Items: []services.CreateSaleItemRequest{{ProductID: widget.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	t.Run("origin filter splits the ledgers", func(t *testing.T) {
		saleOrigin := models.OriginSale
		stockOrigin := models.OriginStockIn

		invoices, total, err := env.billingService.GetInvoices(&saleOrigin, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, invoices, 1)
		assert.NotNil(t, invoices[0].SaleID)
		assert.Nil(t, invoices[0].StockInID)

		invoices, total, err = env.billingService.GetInvoices(&stockOrigin, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, invoices, 1)
		assert.Nil(t, invoices[0].SaleID)
		assert.NotNil(t, invoices[0].StockInID)

		payments, total, err := env.billingService.GetPayments(&stockOrigin, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Len(t, payments, 1)
	})

	t.Run("invalid origin filter rejected", func(t *testing.T) {
		bad := "refund"
		_, _, err := env.billingService.GetInvoices(&bad, 1, 10)
		assert.True(t, errors.Is(err, services.ErrValidation))
	})

	t.Run("patch invoice keeps absent fields", func(t *testing.T) {
		invoices, _, err := env.billingService.GetInvoices(nil, 1, 10)
		require.NoError(t, err)
		require.NotEmpty(t, invoices)
		target := invoices[0]

		newAmount := 55.5
		updated, err := env.billingService.UpdateInvoice(target.ID, services.UpdateInvoiceRequest{Amount: &newAmount})
		require.NoError(t, err)
		assert.Equal(t, 55.5, updated.Amount)
		assert.Equal(t, target.Origin, updated.Origin)
		assert.Equal(t, target.InvoiceDate.Format("2006-01-02"), updated.InvoiceDate.Format("2006-01-02"))
	})

	t.Run("manual creation validates origin", func(t *testing.T) {
		_, err := env.billingService.CreateInvoice(services.CreateInvoiceRequest{
			Origin: "refund",
			Amount: 10,
			Date:   "2026-05-03",
		})
		assert.True(t, errors.Is(err, services.ErrValidation))
	})

	t.Run("delete payment", func(t *testing.T) {
		payments, _, err := env.billingService.GetPayments(nil, 1, 10)
		require.NoError(t, err)
		require.Len(t, payments, 1)

		require.NoError(t, env.billingService.DeletePayment(payments[0].ID))
		_, err = env.billingService.GetPaymentByID(payments[0].ID)
		assert.True(t, errors.Is(err, services.ErrPaymentNotFound))
	})

	t.Run("missing IDs", func(t *testing.T) {
		_, err := env.billingService.GetInvoiceByID(9999)
		assert.True(t, errors.Is(err, services.ErrInvoiceNotFound))
		_, err = env.billingService.GetPaymentByID(9999)
		assert.True(t, errors.Is(err, services.ErrPaymentNotFound))
	})
}

package services_test

import (
	"errors"
	"testing"

	"ims_backend/internal/models"
	"ims_backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStockIn_CreatesBalanceLazily(t *testing.T) {
	env := newTestEnv(t)
	monitor := env.createProduct(t, "Monitor", 100.0)
	user := env.createUser(t, "clerk")
	supplier := env.createCustomer(t, "Acme Supplies")

	stockIn, err := env.stockService.CreateStockIn(services.CreateStockInRequest{
		Date:       "2026-08-29",
		ProductID:  monitor.ID,
		Quantity:   7,
		UserID:     user.ID,
		CustomerID: supplier.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), stockIn.Quantity)
	assert.Equal(t, "2026-08-29", stockIn.StockInDate.Format("2006-01-02"))

	// First stock-in creates the balance row with exactly the received quantity.
	assert.Equal(t, int64(7), balanceQuantity(t, env, monitor.ID))
	assert.Equal(t, 1, countRows(t, env.db, "stock_balances"))
}

func TestCreateStockIn_IncrementsExistingBalance(t *testing.T) {
	env := newTestEnv(t)
	monitor := env.createProduct(t, "Monitor", 100.0)
	user := env.createUser(t, "clerk")
	supplier := env.createCustomer(t, "Acme Supplies")
	env.seedStock(t, monitor.ID, 5)

	_, err := env.stockService.CreateStockIn(services.CreateStockInRequest{
		Date:       "2026-08-29",
		ProductID:  monitor.ID,
		Quantity:   3,
		UserID:     user.ID,
		CustomerID: supplier.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(8), balanceQuantity(t, env, monitor.ID))
	assert.Equal(t, 1, countRows(t, env.db, "stock_balances"))
}

func TestCreateStockIn_DerivesInvoiceAndPayment(t *testing.T) {
	env := newTestEnv(t)
	monitor := env.createProduct(t, "Monitor", 100.0)
	user := env.createUser(t, "clerk")
	supplier := env.createCustomer(t, "Acme Supplies")

	stockIn, err := env.stockService.CreateStockIn(services.CreateStockInRequest{
		Date:       "2026-08-29",
		ProductID:  monitor.ID,
		Quantity:   1,
		UserID:     user.ID,
		CustomerID: supplier.ID,
	})
	require.NoError(t, err)

	// base=100: discount=10, gst=(100-10)*0.18=16.2, net=106.2
	invoices, _, err := env.billingService.GetInvoices(nil, 1, 10)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	invoice := invoices[0]
	assert.Equal(t, models.OriginStockIn, invoice.Origin)
	require.NotNil(t, invoice.StockInID)
	assert.Equal(t, stockIn.ID, *invoice.StockInID)
	assert.Nil(t, invoice.SaleID)
	assert.InDelta(t, 106.2, invoice.Amount, 1e-9)
	require.NotNil(t, invoice.GST)
	assert.InDelta(t, 16.2, *invoice.GST, 1e-9)
	require.NotNil(t, invoice.Discount)
	assert.InDelta(t, 10.0, *invoice.Discount, 1e-9)
	require.NotNil(t, invoice.UserID)
	assert.Equal(t, user.ID, *invoice.UserID)
	require.NotNil(t, invoice.CustomerID)
	assert.Equal(t, supplier.ID, *invoice.CustomerID)
	assert.Equal(t, "2026-08-29", invoice.InvoiceDate.Format("2006-01-02"))

	payments, _, err := env.billingService.GetPayments(nil, 1, 10)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	payment := payments[0]
	assert.Equal(t, models.OriginStockIn, payment.Origin)
	require.NotNil(t, payment.StockInID)
	assert.Equal(t, stockIn.ID, *payment.StockInID)
	assert.Nil(t, payment.InvoiceID)
	assert.InDelta(t, 106.2, payment.Amount, 1e-9)
	require.NotNil(t, payment.ProfitLoss)
	assert.InDelta(t, 6.2, *payment.ProfitLoss, 1e-9) // net minus base
	assert.Equal(t, "2026-08-29", payment.PaymentDate.Format("2006-01-02"))
}

func TestCreateStockIn_Validation(t *testing.T) {
	env := newTestEnv(t)
	monitor := env.createProduct(t, "Monitor", 100.0)
	user := env.createUser(t, "clerk")
	supplier := env.createCustomer(t, "Acme Supplies")

	valid := services.CreateStockInRequest{
		Date:       "2026-08-29",
		ProductID:  monitor.ID,
		Quantity:   1,
		UserID:     user.ID,
		CustomerID: supplier.ID,
	}

	t.Run("non-positive quantity", func(t *testing.T) {
		req := valid
		req.Quantity = 0
		_, err := env.stockService.CreateStockIn(req)
		assert.True(t, errors.Is(err, services.ErrValidation))
	})

	t.Run("bad date format", func(t *testing.T) {
		req := valid
		req.Date = "last tuesday"
		_, err := env.stockService.CreateStockIn(req)
		assert.True(t, errors.Is(err, services.ErrDateFormat))
	})

	t.Run("unknown product", func(t *testing.T) {
		req := valid
		req.ProductID = 9999
		_, err := env.stockService.CreateStockIn(req)
		assert.True(t, errors.Is(err, services.ErrProductNotFound))
	})

	t.Run("unknown user", func(t *testing.T) {
		req := valid
		req.UserID = 9999
		_, err := env.stockService.CreateStockIn(req)
		assert.True(t, errors.Is(err, services.ErrUserNotFound))
	})

	t.Run("unknown customer", func(t *testing.T) {
		req := valid
		req.CustomerID = 9999
		_, err := env.stockService.CreateStockIn(req)
		assert.True(t, errors.Is(err, services.ErrCustomerNotFound))
	})

	// Rejected requests leave no trace in any ledger table.
	assert.Equal(t, 0, countRows(t, env.db, "stock_in"))
	assert.Equal(t, 0, countRows(t, env.db, "stock_balances"))
	assert.Equal(t, 0, countRows(t, env.db, "invoices"))
	assert.Equal(t, 0, countRows(t, env.db, "payments"))
}

func TestUpdateStockIn_DoesNotReplayLedgerEffect(t *testing.T) {
	env := newTestEnv(t)
	monitor := env.createProduct(t, "Monitor", 100.0)
	user := env.createUser(t, "clerk")
	supplier := env.createCustomer(t, "Acme Supplies")

	stockIn, err := env.stockService.CreateStockIn(services.CreateStockInRequest{
		Date:       "2026-08-29",
		ProductID:  monitor.ID,
		Quantity:   5,
		UserID:     user.ID,
		CustomerID: supplier.ID,
	})
	require.NoError(t, err)

	newQty := int64(50)
	updated, err := env.stockService.UpdateStockIn(stockIn.ID, services.UpdateStockInRequest{Quantity: &newQty})
	require.NoError(t, err)
	assert.Equal(t, int64(50), updated.Quantity)

	// The edit rewrites the event row only; the balance keeps the quantity
	// applied at creation time.
	assert.Equal(t, int64(5), balanceQuantity(t, env, monitor.ID))
	assert.Equal(t, 1, countRows(t, env.db, "invoices"))
	assert.Equal(t, 1, countRows(t, env.db, "payments"))
}

func TestStockInCRUD(t *testing.T) {
	env := newTestEnv(t)
	monitor := env.createProduct(t, "Monitor", 100.0)
	speaker := env.createProduct(t, "Speaker", 30.0)
	user := env.createUser(t, "clerk")
	supplier := env.createCustomer(t, "Acme Supplies")

	for _, productID := range []int64{monitor.ID, monitor.ID, speaker.ID} {
		_, err := env.stockService.CreateStockIn(services.CreateStockInRequest{
			Date:       "2026-08-01",
			ProductID:  productID,
			Quantity:   2,
			UserID:     user.ID,
			CustomerID: supplier.ID,
		})
		require.NoError(t, err)
	}

	t.Run("list filters by product", func(t *testing.T) {
		entries, total, err := env.stockService.GetStockIns(&monitor.ID, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, entries, 2)
		for _, entry := range entries {
			assert.Equal(t, monitor.ID, entry.ProductID)
		}
	})

	t.Run("get by ID joins references", func(t *testing.T) {
		entries, _, err := env.stockService.GetStockIns(&speaker.ID, 1, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		entry, err := env.stockService.GetStockInByID(entries[0].ID)
		require.NoError(t, err)
		require.NotNil(t, entry.Product)
		assert.Equal(t, "Speaker", entry.Product.ProductName)
		require.NotNil(t, entry.User)
		assert.Equal(t, "clerk", entry.User.Name)
		require.NotNil(t, entry.Customer)
		assert.Equal(t, "Acme Supplies", entry.Customer.Name)
	})

	t.Run("get missing ID", func(t *testing.T) {
		_, err := env.stockService.GetStockInByID(9999)
		assert.True(t, errors.Is(err, services.ErrStockInNotFound))
	})

	t.Run("delete", func(t *testing.T) {
		entries, _, err := env.stockService.GetStockIns(&speaker.ID, 1, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		require.NoError(t, env.stockService.DeleteStockIn(entries[0].ID))
		_, err = env.stockService.GetStockInByID(entries[0].ID)
		assert.True(t, errors.Is(err, services.ErrStockInNotFound))
	})
}

func TestStockBalanceCRUD(t *testing.T) {
	env := newTestEnv(t)
	monitor := env.createProduct(t, "Monitor", 100.0)

	balance, err := env.stockService.CreateBalance(services.CreateStockBalanceRequest{
		ProductID: monitor.ID,
		Quantity:  4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), balance.Quantity)

	t.Run("duplicate product rejected", func(t *testing.T) {
		_, err := env.stockService.CreateBalance(services.CreateStockBalanceRequest{ProductID: monitor.ID, Quantity: 1})
		assert.True(t, errors.Is(err, services.ErrValidation))
	})

	t.Run("unknown product rejected", func(t *testing.T) {
		_, err := env.stockService.CreateBalance(services.CreateStockBalanceRequest{ProductID: 9999, Quantity: 1})
		assert.True(t, errors.Is(err, services.ErrProductNotFound))
	})

	t.Run("patch quantity", func(t *testing.T) {
		newQty := int64(9)
		updated, err := env.stockService.UpdateBalance(balance.ID, services.UpdateStockBalanceRequest{Quantity: &newQty})
		require.NoError(t, err)
		assert.Equal(t, int64(9), updated.Quantity)
		assert.Equal(t, monitor.ID, updated.ProductID) // untouched field survives
	})

	t.Run("negative quantity rejected", func(t *testing.T) {
		bad := int64(-1)
		_, err := env.stockService.UpdateBalance(balance.ID, services.UpdateStockBalanceRequest{Quantity: &bad})
		assert.True(t, errors.Is(err, services.ErrValidation))
	})

	t.Run("lookup by product", func(t *testing.T) {
		found, err := env.stockService.GetBalanceByProductID(monitor.ID)
		require.NoError(t, err)
		assert.Equal(t, balance.ID, found.ID)

		_, err = env.stockService.GetBalanceByProductID(9999)
		assert.True(t, errors.Is(err, services.ErrStockBalanceNotFound))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, env.stockService.DeleteBalance(balance.ID))
		_, err := env.stockService.GetBalanceByID(balance.ID)
		assert.True(t, errors.Is(err, services.ErrStockBalanceNotFound))
	})
}

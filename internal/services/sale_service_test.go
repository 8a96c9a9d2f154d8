package services_test

import (
	"errors"
	"sync"
	"testing"

	"ims_backend/internal/models"
	"ims_backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSale_Success(t *testing.T) {
	env := newTestEnv(t)
	keyboard := env.createProduct(t, "Keyboard", 10.50)
	mouse := env.createProduct(t, "Mouse", 3.25)
	env.seedStock(t, keyboard.ID, 10)
	env.seedStock(t, mouse.ID, 5)

	result, err := env.saleService.CreateSale(services.CreateSaleRequest{
		Date: "2026-08-29",
		Items: []services.CreateSaleItemRequest{
			{ProductID: keyboard.ID, Quantity: 2},
			{ProductID: mouse.ID, Quantity: 4},
		},
	})
	require.NoError(t, err)

	// Total is 2*10.50 + 4*3.25 computed from current prices.
	assert.Equal(t, 34.0, result.Sale.TotalAmount)
	assert.Len(t, result.Sale.Items, 2)
	assert.Equal(t, "2026-08-29", result.Sale.SaleDate.Format("2006-01-02"))

	// One sale-origin invoice carrying the same total and date.
	require.NotNil(t, result.Invoice)
	assert.Equal(t, models.OriginSale, result.Invoice.Origin)
	require.NotNil(t, result.Invoice.SaleID)
	assert.Equal(t, result.Sale.ID, *result.Invoice.SaleID)
	assert.Equal(t, result.Sale.TotalAmount, result.Invoice.Amount)
	assert.Equal(t, "2026-08-29", result.Invoice.InvoiceDate.Format("2006-01-02"))

	// Balances decreased by exactly the sold quantities.
	assert.Equal(t, int64(8), balanceQuantity(t, env, keyboard.ID))
	assert.Equal(t, int64(1), balanceQuantity(t, env, mouse.ID))

	// Persisted and readable back with its items.
	fetched, err := env.saleService.GetSaleByID(result.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, 34.0, fetched.TotalAmount)
	assert.Len(t, fetched.Items, 2)
}

func TestCreateSale_AggregatesDuplicateProductLines(t *testing.T) {
	env := newTestEnv(t)
	widget := env.createProduct(t, "Widget", 2.0)
	env.seedStock(t, widget.ID, 5)

	// Two lines for the same product: 3+2=5 must be available as a whole.
	result, err := env.saleService.CreateSale(services.CreateSaleRequest{
		Date: "2026-01-15",
		Items: []services.CreateSaleItemRequest{
			{ProductID: widget.ID, Quantity: 3},
			{ProductID: widget.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 10.0, result.Sale.TotalAmount)
	assert.Len(t, result.Sale.Items, 2) // lines are preserved, not merged
	assert.Equal(t, int64(0), balanceQuantity(t, env, widget.ID))
}

func TestCreateSale_InsufficientStock_NothingPersisted(t *testing.T) {
	env := newTestEnv(t)
	cheap := env.createProduct(t, "Cheap", 1.0)
	scarce := env.createProduct(t, "Scarce", 5.0)
	env.seedStock(t, cheap.ID, 100)
	env.seedStock(t, scarce.ID, 2)

	_, err := env.saleService.CreateSale(services.CreateSaleRequest{
		Date: "2026-03-01",
		Items: []services.CreateSaleItemRequest{
			{ProductID: cheap.ID, Quantity: 10},
			{ProductID: scarce.ID, Quantity: 3},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrInsufficientStock))

	var stockErr *services.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, scarce.ID, stockErr.ProductID)
	assert.Equal(t, int64(3), stockErr.Requested)
	assert.Equal(t, int64(2), stockErr.Available)

	// The whole workflow rolled back: no sale, items or invoice rows, and
	// both balances are untouched, including the one that could have covered
	// its own quantity.
	assert.Equal(t, 0, countRows(t, env.db, "sales"))
	assert.Equal(t, 0, countRows(t, env.db, "sale_items"))
	assert.Equal(t, 0, countRows(t, env.db, "invoices"))
	assert.Equal(t, int64(100), balanceQuantity(t, env, cheap.ID))
	assert.Equal(t, int64(2), balanceQuantity(t, env, scarce.ID))
}

func TestCreateSale_MissingBalanceRowMeansZeroAvailable(t *testing.T) {
	env := newTestEnv(t)
	phantom := env.createProduct(t, "Phantom", 9.99)

	_, err := env.saleService.CreateSale(services.CreateSaleRequest{
		Date:  "2026-03-01",
		Items: []services.CreateSaleItemRequest{{ProductID: phantom.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrInsufficientStock))

	var stockErr *services.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, int64(0), stockErr.Available)
}

func TestCreateSale_Validation(t *testing.T) {
	env := newTestEnv(t)
	widget := env.createProduct(t, "Widget", 2.0)
	env.seedStock(t, widget.ID, 5)

	t.Run("empty item set", func(t *testing.T) {
		_, err := env.saleService.CreateSale(services.CreateSaleRequest{Date: "2026-03-01"})
		assert.True(t, errors.Is(err, services.ErrValidation))
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := env.saleService.CreateSale(services.CreateSaleRequest{
			Date:  "2026-03-01",
			Items: []services.CreateSaleItemRequest{{ProductID: widget.ID, Quantity: 0}},
		})
		assert.True(t, errors.Is(err, services.ErrValidation))
	})

	t.Run("bad date format", func(t *testing.T) {
		_, err := env.saleService.CreateSale(services.CreateSaleRequest{
			Date:  "29/08/2026",
			Items: []services.CreateSaleItemRequest{{ProductID: widget.ID, Quantity: 1}},
		})
		assert.True(t, errors.Is(err, services.ErrDateFormat))
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := env.saleService.CreateSale(services.CreateSaleRequest{
			Date:  "2026-03-01",
			Items: []services.CreateSaleItemRequest{{ProductID: 9999, Quantity: 1}},
		})
		assert.True(t, errors.Is(err, services.ErrProductNotFound))
	})

	// None of the rejected requests may have written anything.
	assert.Equal(t, 0, countRows(t, env.db, "sales"))
	assert.Equal(t, int64(5), balanceQuantity(t, env, widget.ID))
}

func TestCreateSale_ConcurrentSalesNeverOversell(t *testing.T) {
	env := newTestEnv(t)
	lastUnit := env.createProduct(t, "Last Unit", 49.99)
	env.seedStock(t, lastUnit.ID, 1)

	req := services.CreateSaleRequest{
		Date:  "2026-03-01",
		Items: []services.CreateSaleItemRequest{{ProductID: lastUnit.ID, Quantity: 1}},
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.saleService.CreateSale(req)
		}(i)
	}
	wg.Wait()

	var succeeded, short int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, services.ErrInsufficientStock):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one sale may claim the last unit")
	assert.Equal(t, 1, short, "the loser must see insufficient stock")

	assert.Equal(t, int64(0), balanceQuantity(t, env, lastUnit.ID))
	assert.Equal(t, 1, countRows(t, env.db, "sales"))
	assert.Equal(t, 1, countRows(t, env.db, "invoices"))
}

func TestGetSales_Pagination(t *testing.T) {
	env := newTestEnv(t)
	widget := env.createProduct(t, "Widget", 1.0)
	env.seedStock(t, widget.ID, 100)

	for i := 0; i < 3; i++ {
		_, err := env.saleService.CreateSale(services.CreateSaleRequest{
			Date:  "2026-03-01",
			Items: []services.CreateSaleItemRequest{{ProductID: widget.ID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	sales, total, err := env.saleService.GetSales(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, sales, 2)

	sales, total, err = env.saleService.GetSales(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, sales, 1)
}

func TestGetSaleByID_NotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.saleService.GetSaleByID(42)
	assert.True(t, errors.Is(err, services.ErrSaleNotFound))
}

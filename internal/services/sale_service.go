package services

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"ims_backend/internal/models"
	"ims_backend/internal/repositories"
)

// --- Sale DTOs ---

// CreateSaleItemRequest is one line of a sale creation request.
type CreateSaleItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int64 `json:"quantity" binding:"required,gt=0"`
}

// CreateSaleRequest is used for creating a new sale.
type CreateSaleRequest struct {
	Date  string                  `json:"date" binding:"required"` // YYYY-MM-DD
	Items []CreateSaleItemRequest `json:"items" binding:"required,dive"`
}

// CreateSaleResult carries the sale and its derived invoice.
type CreateSaleResult struct {
	Sale    *models.Sale    `json:"sale"`
	Invoice *models.Invoice `json:"invoice"`
}

// --- SaleService Interface ---

type SaleService interface {
	CreateSale(req CreateSaleRequest) (*CreateSaleResult, error)
	GetSaleByID(saleID int64) (*models.Sale, error)
	GetSales(page, pageSize int) ([]models.Sale, int, error)
}

// --- saleService Implementation ---

type saleService struct {
	saleRepo    repositories.SaleRepository
	productRepo repositories.ProductRepository
	stockRepo   repositories.StockRepository
	billingRepo repositories.BillingRepository
	locker      *ProductLocker
	db          *sql.DB // for managing transactions
}

// NewSaleService creates a new instance of SaleService.
func NewSaleService(
	sr repositories.SaleRepository,
	pr repositories.ProductRepository,
	str repositories.StockRepository,
	br repositories.BillingRepository,
	locker *ProductLocker,
	db *sql.DB,
) SaleService {
	return &saleService{
		saleRepo:    sr,
		productRepo: pr,
		stockRepo:   str,
		billingRepo: br,
		locker:      locker,
		db:          db,
	}
}

// parseWorkflowDate parses YYYY-MM-DD dates used by the sale and stock-in
// workflows.
func parseWorkflowDate(dateStr string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrDateFormat, dateStr)
	}
	return date, nil
}

// CreateSale validates and prices the request, pre-checks stock across the
// whole item set, then commits the sale, its items, the stock decrements and
// the sale-origin invoice in one transaction. On any failure nothing is
// persisted.
func (s *saleService) CreateSale(req CreateSaleRequest) (*CreateSaleResult, error) {
	saleDate, err := parseWorkflowDate(req.Date)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: sale must contain at least one item", ErrValidation)
	}

	lines := make([]SaleLine, 0, len(req.Items))
	required := make(map[int64]int64) // combined quantity per product
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for product ID %d must be positive", ErrValidation, item.ProductID)
		}
		lines = append(lines, SaleLine{ProductID: item.ProductID, Quantity: item.Quantity})
		required[item.ProductID] += item.Quantity
	}

	productIDs := make([]int64, 0, len(required))
	for id := range required {
		productIDs = append(productIDs, id)
	}
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	// Serialize against other workflows touching any of these products.
	unlock := s.locker.Lock(productIDs...)
	defer unlock()

	totalAmount, err := ComputeSaleTotal(lines, func(productID int64) (float64, error) {
		price, repoErr := s.productRepo.GetProductPrice(productID)
		if repoErr != nil {
			if errors.Is(repoErr, repositories.ErrNotFound) {
				return 0, fmt.Errorf("%w: ID %d", ErrProductNotFound, productID)
			}
			return 0, repoErr
		}
		return price, nil
	})
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to start sale transaction: %v", ErrTxAborted, err)
	}
	defer tx.Rollback()

	// Pre-flight stock check across the whole item set before any mutation.
	for _, productID := range productIDs {
		var available int64
		balance, repoErr := s.stockRepo.GetBalanceByProductID(tx, productID)
		if repoErr != nil && !errors.Is(repoErr, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to check stock for product ID %d: %w", productID, repoErr)
		}
		if balance != nil {
			available = balance.Quantity
		}
		if available < required[productID] {
			return nil, &InsufficientStockError{
				ProductID: productID,
				Requested: required[productID],
				Available: available,
			}
		}
	}

	sale := models.Sale{
		SaleDate:    saleDate,
		TotalAmount: totalAmount.InexactFloat64(),
	}
	if _, err := s.saleRepo.CreateSale(tx, &sale); err != nil {
		return nil, fmt.Errorf("failed to create sale record: %w", err)
	}

	items := make([]models.SaleItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		item := models.SaleItem{
			SaleID:    sale.ID,
			ProductID: itemReq.ProductID,
			Quantity:  itemReq.Quantity,
		}
		if _, err := s.saleRepo.CreateSaleItem(tx, &item); err != nil {
			return nil, fmt.Errorf("failed to create sale item (product_id: %d): %w", itemReq.ProductID, err)
		}
		items = append(items, item)
	}

	for _, productID := range productIDs {
		if _, err := s.stockRepo.DecrementBalance(tx, productID, required[productID]); err != nil {
			if errors.Is(err, repositories.ErrInsufficientStock) {
				return nil, &InsufficientStockError{
					ProductID: productID,
					Requested: required[productID],
				}
			}
			return nil, fmt.Errorf("failed to decrement stock for product ID %d: %w", productID, err)
		}
	}

	invoice := models.Invoice{
		Origin:      models.OriginSale,
		SaleID:      &sale.ID,
		Amount:      sale.TotalAmount,
		InvoiceDate: saleDate,
	}
	if _, err := s.billingRepo.CreateInvoice(tx, &invoice); err != nil {
		return nil, fmt.Errorf("failed to create sale invoice: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit sale transaction: %v", ErrTxAborted, err)
	}

	sale.Items = items
	return &CreateSaleResult{Sale: &sale, Invoice: &invoice}, nil
}

func (s *saleService) GetSaleByID(saleID int64) (*models.Sale, error) {
	sale, err := s.saleRepo.GetSaleByID(saleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to get sale by ID: %w", err)
	}
	items, err := s.saleRepo.GetSaleItemsBySaleID(saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale items for sale ID %d: %w", saleID, err)
	}
	sale.Items = items
	return sale, nil
}

func (s *saleService) GetSales(page, pageSize int) ([]models.Sale, int, error) {
	sales, totalCount, err := s.saleRepo.GetSales(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get sales: %w", err)
	}
	return sales, totalCount, nil
}

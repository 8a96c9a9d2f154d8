package services

import (
	"database/sql"
	"errors"
	"fmt"

	"ims_backend/internal/models"
	"ims_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// --- Stock DTOs ---

// CreateStockInRequest is used for recording a stock-in event.
type CreateStockInRequest struct {
	Date       string `json:"stock_in_date" binding:"required"` // YYYY-MM-DD
	ProductID  int64  `json:"product_id" binding:"required"`
	Quantity   int64  `json:"quantity" binding:"required,gt=0"`
	UserID     int64  `json:"user_id" binding:"required"`
	CustomerID int64  `json:"customer_id" binding:"required"`
}

// UpdateStockInRequest patches a stock-in entry as plain data. The ledger
// effect applied at creation (balance increment, invoice, payment) is not
// replayed. Only present fields are applied.
type UpdateStockInRequest struct {
	Date       *string `json:"stock_in_date"`
	ProductID  *int64  `json:"product_id"`
	Quantity   *int64  `json:"quantity"`
	UserID     *int64  `json:"user_id"`
	CustomerID *int64  `json:"customer_id"`
}

// CreateStockBalanceRequest seeds a balance row directly (plain CRUD).
type CreateStockBalanceRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int64 `json:"quantity" binding:"min=0"`
}

// UpdateStockBalanceRequest patches a balance row. Only present fields are applied.
type UpdateStockBalanceRequest struct {
	ProductID *int64 `json:"product_id"`
	Quantity  *int64 `json:"quantity"`
}

// --- StockService Interface ---

type StockService interface {
	// Workflow
	CreateStockIn(req CreateStockInRequest) (*models.StockIn, error)

	// Stock-in CRUD
	GetStockInByID(id int64) (*models.StockIn, error)
	GetStockIns(productID *int64, page, pageSize int) ([]models.StockIn, int, error)
	UpdateStockIn(id int64, req UpdateStockInRequest) (*models.StockIn, error)
	DeleteStockIn(id int64) error

	// Stock balance CRUD
	CreateBalance(req CreateStockBalanceRequest) (*models.StockBalance, error)
	GetBalanceByID(id int64) (*models.StockBalance, error)
	GetBalanceByProductID(productID int64) (*models.StockBalance, error)
	GetBalances(page, pageSize int) ([]models.StockBalance, int, error)
	UpdateBalance(id int64, req UpdateStockBalanceRequest) (*models.StockBalance, error)
	DeleteBalance(id int64) error
}

// --- stockService Implementation ---

type stockService struct {
	stockRepo    repositories.StockRepository
	productRepo  repositories.ProductRepository
	userRepo     repositories.UserRepository
	customerRepo repositories.CustomerRepository
	billingRepo  repositories.BillingRepository
	locker       *ProductLocker
	rates        PricingRates
	db           *sql.DB // for managing transactions
}

// NewStockService creates a new instance of StockService.
func NewStockService(
	str repositories.StockRepository,
	pr repositories.ProductRepository,
	ur repositories.UserRepository,
	cr repositories.CustomerRepository,
	br repositories.BillingRepository,
	locker *ProductLocker,
	rates PricingRates,
	db *sql.DB,
) StockService {
	return &stockService{
		stockRepo:    str,
		productRepo:  pr,
		userRepo:     ur,
		customerRepo: cr,
		billingRepo:  br,
		locker:       locker,
		rates:        rates,
		db:           db,
	}
}

// CreateStockIn validates the references, computes the discount/tax
// breakdown on price*quantity, then commits the stock-in event, the balance
// increment, the stock-in-origin invoice and the payment in one transaction.
func (s *stockService) CreateStockIn(req CreateStockInRequest) (*models.StockIn, error) {
	stockInDate, err := parseWorkflowDate(req.Date)
	if err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: stock-in quantity must be positive", ErrValidation)
	}

	product, err := s.productRepo.GetProductByID(req.ProductID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrProductNotFound, req.ProductID)
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", req.ProductID, err)
	}
	user, err := s.userRepo.GetUserByID(req.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrUserNotFound, req.UserID)
		}
		return nil, fmt.Errorf("failed to fetch user %d: %w", req.UserID, err)
	}
	customer, err := s.customerRepo.GetCustomerByID(req.CustomerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrCustomerNotFound, req.CustomerID)
		}
		return nil, fmt.Errorf("failed to fetch customer %d: %w", req.CustomerID, err)
	}

	baseAmount := decimal.NewFromFloat(product.Price).Mul(decimal.NewFromInt(req.Quantity))
	breakdown := ComputeDiscountAndTax(baseAmount, s.rates)
	netAmount := breakdown.NetAmount.InexactFloat64()
	gst := breakdown.Tax.InexactFloat64()
	discount := breakdown.Discount.InexactFloat64()
	profitLoss := breakdown.NetAmount.Sub(baseAmount).InexactFloat64()

	unlock := s.locker.Lock(req.ProductID)
	defer unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to start stock-in transaction: %v", ErrTxAborted, err)
	}
	defer tx.Rollback()

	stockIn := models.StockIn{
		StockInDate: stockInDate,
		Quantity:    req.Quantity,
		ProductID:   req.ProductID,
		UserID:      req.UserID,
		CustomerID:  req.CustomerID,
	}
	if _, err := s.stockRepo.CreateStockIn(tx, &stockIn); err != nil {
		return nil, fmt.Errorf("failed to create stock-in record: %w", err)
	}

	if _, err := s.stockRepo.IncrementBalance(tx, req.ProductID, req.Quantity); err != nil {
		return nil, fmt.Errorf("failed to increment stock for product ID %d: %w", req.ProductID, err)
	}

	invoice := models.Invoice{
		Origin:      models.OriginStockIn,
		StockInID:   &stockIn.ID,
		Amount:      netAmount,
		GST:         &gst,
		Discount:    &discount,
		UserID:      &stockIn.UserID,
		CustomerID:  &stockIn.CustomerID,
		InvoiceDate: stockInDate,
	}
	if _, err := s.billingRepo.CreateInvoice(tx, &invoice); err != nil {
		return nil, fmt.Errorf("failed to create stock-in invoice: %w", err)
	}

	payment := models.Payment{
		Origin:      models.OriginStockIn,
		StockInID:   &stockIn.ID,
		Amount:      netAmount,
		ProfitLoss:  &profitLoss,
		PaymentDate: stockInDate,
		UserID:      &stockIn.UserID,
		CustomerID:  &stockIn.CustomerID,
	}
	if _, err := s.billingRepo.CreatePayment(tx, &payment); err != nil {
		return nil, fmt.Errorf("failed to create stock-in payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit stock-in transaction: %v", ErrTxAborted, err)
	}

	stockIn.Product = product
	stockIn.User = user
	stockIn.Customer = customer
	return &stockIn, nil
}

// --- Stock-in CRUD ---

func (s *stockService) GetStockInByID(id int64) (*models.StockIn, error) {
	stockIn, err := s.stockRepo.GetStockInByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStockInNotFound
		}
		return nil, fmt.Errorf("failed to get stock-in entry by ID: %w", err)
	}
	return stockIn, nil
}

func (s *stockService) GetStockIns(productID *int64, page, pageSize int) ([]models.StockIn, int, error) {
	stockIns, totalCount, err := s.stockRepo.GetStockIns(productID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get stock-in entries: %w", err)
	}
	return stockIns, totalCount, nil
}

func (s *stockService) UpdateStockIn(id int64, req UpdateStockInRequest) (*models.StockIn, error) {
	stockIn, err := s.stockRepo.GetStockInByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStockInNotFound
		}
		return nil, fmt.Errorf("failed to fetch stock-in entry for update: %w", err)
	}

	if req.Date != nil {
		date, err := parseWorkflowDate(*req.Date)
		if err != nil {
			return nil, err
		}
		stockIn.StockInDate = date
	}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: stock-in quantity must be positive", ErrValidation)
		}
		stockIn.Quantity = *req.Quantity
	}
	if req.ProductID != nil {
		stockIn.ProductID = *req.ProductID
	}
	if req.UserID != nil {
		stockIn.UserID = *req.UserID
	}
	if req.CustomerID != nil {
		stockIn.CustomerID = *req.CustomerID
	}

	if err := s.stockRepo.UpdateStockIn(s.db, stockIn); err != nil {
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return nil, fmt.Errorf("%w: stock-in entry references a missing record", ErrValidation)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStockInNotFound
		}
		return nil, fmt.Errorf("failed to update stock-in entry: %w", err)
	}
	return s.GetStockInByID(id)
}

func (s *stockService) DeleteStockIn(id int64) error {
	err := s.stockRepo.DeleteStockIn(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrStockInNotFound
		}
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return ErrEntityInUse
		}
		return fmt.Errorf("failed to delete stock-in entry: %w", err)
	}
	return nil
}

// --- Stock balance CRUD ---

func (s *stockService) CreateBalance(req CreateStockBalanceRequest) (*models.StockBalance, error) {
	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: stock balance quantity cannot be negative", ErrValidation)
	}
	if _, err := s.productRepo.GetProductByID(req.ProductID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrProductNotFound, req.ProductID)
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", req.ProductID, err)
	}
	if _, err := s.stockRepo.GetBalanceByProductID(s.db, req.ProductID); err == nil {
		return nil, fmt.Errorf("%w: stock balance for product ID %d already exists", ErrValidation, req.ProductID)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing stock balance: %w", err)
	}

	balance := models.StockBalance{ProductID: req.ProductID, Quantity: req.Quantity}
	if _, err := s.stockRepo.CreateBalance(s.db, &balance); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: stock balance for product ID %d already exists", ErrValidation, req.ProductID)
		}
		return nil, fmt.Errorf("failed to create stock balance: %w", err)
	}
	return s.GetBalanceByID(balance.ID)
}

func (s *stockService) GetBalanceByID(id int64) (*models.StockBalance, error) {
	balance, err := s.stockRepo.GetBalanceByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStockBalanceNotFound
		}
		return nil, fmt.Errorf("failed to get stock balance by ID: %w", err)
	}
	return balance, nil
}

func (s *stockService) GetBalanceByProductID(productID int64) (*models.StockBalance, error) {
	balance, err := s.stockRepo.GetBalanceByProductID(s.db, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStockBalanceNotFound
		}
		return nil, fmt.Errorf("failed to get stock balance for product: %w", err)
	}
	return balance, nil
}

func (s *stockService) GetBalances(page, pageSize int) ([]models.StockBalance, int, error) {
	balances, totalCount, err := s.stockRepo.GetBalances(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get stock balances: %w", err)
	}
	return balances, totalCount, nil
}

func (s *stockService) UpdateBalance(id int64, req UpdateStockBalanceRequest) (*models.StockBalance, error) {
	balance, err := s.stockRepo.GetBalanceByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStockBalanceNotFound
		}
		return nil, fmt.Errorf("failed to fetch stock balance for update: %w", err)
	}

	if req.ProductID != nil {
		balance.ProductID = *req.ProductID
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, fmt.Errorf("%w: stock balance quantity cannot be negative", ErrValidation)
		}
		balance.Quantity = *req.Quantity
	}

	// Direct edits serialize against the sale/stock-in workflows too.
	unlock := s.locker.Lock(balance.ProductID)
	defer unlock()

	if err := s.stockRepo.UpdateBalance(s.db, balance); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: stock balance for product ID %d already exists", ErrValidation, balance.ProductID)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStockBalanceNotFound
		}
		return nil, fmt.Errorf("failed to update stock balance: %w", err)
	}
	return s.GetBalanceByID(id)
}

func (s *stockService) DeleteBalance(id int64) error {
	err := s.stockRepo.DeleteBalance(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrStockBalanceNotFound
		}
		return fmt.Errorf("failed to delete stock balance: %w", err)
	}
	return nil
}

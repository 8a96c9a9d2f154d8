package services

import (
	"database/sql"
	"errors"
	"fmt"

	"ims_backend/internal/models"
	"ims_backend/internal/repositories"
)

// --- Billing DTOs ---

// CreateInvoiceRequest covers manual invoice entry. Workflow-generated
// invoices are created by the sale and stock-in coordinators instead.
type CreateInvoiceRequest struct {
	Origin     string   `json:"origin" binding:"required"`
	SaleID     *int64   `json:"sale_id"`
	StockInID  *int64   `json:"stock_in_id"`
	Amount     float64  `json:"amount" binding:"min=0"`
	GST        *float64 `json:"gst"`
	Discount   *float64 `json:"discount"`
	UserID     *int64   `json:"user_id"`
	CustomerID *int64   `json:"customer_id"`
	Date       string   `json:"invoice_date" binding:"required"` // YYYY-MM-DD
}

// UpdateInvoiceRequest patches an invoice. Only present fields are applied.
// The origin and its sale/stock-in reference are fixed at creation.
type UpdateInvoiceRequest struct {
	Amount     *float64 `json:"amount"`
	GST        *float64 `json:"gst"`
	Discount   *float64 `json:"discount"`
	UserID     *int64   `json:"user_id"`
	CustomerID *int64   `json:"customer_id"`
	Date       *string  `json:"invoice_date"`
}

type CreatePaymentRequest struct {
	Origin     string   `json:"origin" binding:"required"`
	InvoiceID  *int64   `json:"invoice_id"`
	StockInID  *int64   `json:"stock_in_id"`
	Amount     float64  `json:"amount" binding:"min=0"`
	ProfitLoss *float64 `json:"profit_loss"`
	UserID     *int64   `json:"user_id"`
	CustomerID *int64   `json:"customer_id"`
	Date       string   `json:"payment_date" binding:"required"` // YYYY-MM-DD
}

// UpdatePaymentRequest patches a payment. Only present fields are applied.
type UpdatePaymentRequest struct {
	Amount     *float64 `json:"amount"`
	ProfitLoss *float64 `json:"profit_loss"`
	UserID     *int64   `json:"user_id"`
	CustomerID *int64   `json:"customer_id"`
	Date       *string  `json:"payment_date"`
}

// --- BillingService Interface ---

type BillingService interface {
	CreateInvoice(req CreateInvoiceRequest) (*models.Invoice, error)
	GetInvoiceByID(id int64) (*models.Invoice, error)
	GetInvoices(origin *string, page, pageSize int) ([]models.Invoice, int, error)
	UpdateInvoice(id int64, req UpdateInvoiceRequest) (*models.Invoice, error)
	DeleteInvoice(id int64) error

	CreatePayment(req CreatePaymentRequest) (*models.Payment, error)
	GetPaymentByID(id int64) (*models.Payment, error)
	GetPayments(origin *string, page, pageSize int) ([]models.Payment, int, error)
	UpdatePayment(id int64, req UpdatePaymentRequest) (*models.Payment, error)
	DeletePayment(id int64) error
}

// --- billingService Implementation ---

type billingService struct {
	billingRepo repositories.BillingRepository
	db          *sql.DB
}

// NewBillingService creates a new instance of BillingService.
func NewBillingService(br repositories.BillingRepository, db *sql.DB) BillingService {
	return &billingService{billingRepo: br, db: db}
}

func validateOrigin(origin string) error {
	if origin != models.OriginSale && origin != models.OriginStockIn {
		return fmt.Errorf("%w: origin must be %q or %q", ErrValidation, models.OriginSale, models.OriginStockIn)
	}
	return nil
}

// --- Invoices ---

func (s *billingService) CreateInvoice(req CreateInvoiceRequest) (*models.Invoice, error) {
	if err := validateOrigin(req.Origin); err != nil {
		return nil, err
	}
	if req.Amount < 0 {
		return nil, fmt.Errorf("%w: invoice amount cannot be negative", ErrValidation)
	}
	invoiceDate, err := parseWorkflowDate(req.Date)
	if err != nil {
		return nil, err
	}

	invoice := models.Invoice{
		Origin:      req.Origin,
		SaleID:      req.SaleID,
		StockInID:   req.StockInID,
		Amount:      req.Amount,
		GST:         req.GST,
		Discount:    req.Discount,
		UserID:      req.UserID,
		CustomerID:  req.CustomerID,
		InvoiceDate: invoiceDate,
	}
	if _, err := s.billingRepo.CreateInvoice(s.db, &invoice); err != nil {
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return nil, fmt.Errorf("%w: invoice references a missing record", ErrValidation)
		}
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return &invoice, nil
}

func (s *billingService) GetInvoiceByID(id int64) (*models.Invoice, error) {
	invoice, err := s.billingRepo.GetInvoiceByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice by ID: %w", err)
	}
	return invoice, nil
}

func (s *billingService) GetInvoices(origin *string, page, pageSize int) ([]models.Invoice, int, error) {
	if origin != nil {
		if err := validateOrigin(*origin); err != nil {
			return nil, 0, err
		}
	}
	invoices, totalCount, err := s.billingRepo.GetInvoices(origin, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get invoices: %w", err)
	}
	return invoices, totalCount, nil
}

func (s *billingService) UpdateInvoice(id int64, req UpdateInvoiceRequest) (*models.Invoice, error) {
	invoice, err := s.billingRepo.GetInvoiceByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to fetch invoice for update: %w", err)
	}

	if req.Amount != nil {
		if *req.Amount < 0 {
			return nil, fmt.Errorf("%w: invoice amount cannot be negative", ErrValidation)
		}
		invoice.Amount = *req.Amount
	}
	if req.GST != nil {
		invoice.GST = req.GST
	}
	if req.Discount != nil {
		invoice.Discount = req.Discount
	}
	if req.UserID != nil {
		invoice.UserID = req.UserID
	}
	if req.CustomerID != nil {
		invoice.CustomerID = req.CustomerID
	}
	if req.Date != nil {
		date, err := parseWorkflowDate(*req.Date)
		if err != nil {
			return nil, err
		}
		invoice.InvoiceDate = date
	}

	if err := s.billingRepo.UpdateInvoice(s.db, invoice); err != nil {
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return nil, fmt.Errorf("%w: invoice references a missing record", ErrValidation)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	return invoice, nil
}

func (s *billingService) DeleteInvoice(id int64) error {
	err := s.billingRepo.DeleteInvoice(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvoiceNotFound
		}
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return ErrEntityInUse
		}
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return nil
}

// --- Payments ---

func (s *billingService) CreatePayment(req CreatePaymentRequest) (*models.Payment, error) {
	if err := validateOrigin(req.Origin); err != nil {
		return nil, err
	}
	if req.Amount < 0 {
		return nil, fmt.Errorf("%w: payment amount cannot be negative", ErrValidation)
	}
	paymentDate, err := parseWorkflowDate(req.Date)
	if err != nil {
		return nil, err
	}

	payment := models.Payment{
		Origin:      req.Origin,
		InvoiceID:   req.InvoiceID,
		StockInID:   req.StockInID,
		Amount:      req.Amount,
		ProfitLoss:  req.ProfitLoss,
		PaymentDate: paymentDate,
		UserID:      req.UserID,
		CustomerID:  req.CustomerID,
	}
	if _, err := s.billingRepo.CreatePayment(s.db, &payment); err != nil {
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return nil, fmt.Errorf("%w: payment references a missing record", ErrValidation)
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return &payment, nil
}

func (s *billingService) GetPaymentByID(id int64) (*models.Payment, error) {
	payment, err := s.billingRepo.GetPaymentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by ID: %w", err)
	}
	return payment, nil
}

func (s *billingService) GetPayments(origin *string, page, pageSize int) ([]models.Payment, int, error) {
	if origin != nil {
		if err := validateOrigin(*origin); err != nil {
			return nil, 0, err
		}
	}
	payments, totalCount, err := s.billingRepo.GetPayments(origin, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get payments: %w", err)
	}
	return payments, totalCount, nil
}

func (s *billingService) UpdatePayment(id int64, req UpdatePaymentRequest) (*models.Payment, error) {
	payment, err := s.billingRepo.GetPaymentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment for update: %w", err)
	}

	if req.Amount != nil {
		if *req.Amount < 0 {
			return nil, fmt.Errorf("%w: payment amount cannot be negative", ErrValidation)
		}
		payment.Amount = *req.Amount
	}
	if req.ProfitLoss != nil {
		payment.ProfitLoss = req.ProfitLoss
	}
	if req.UserID != nil {
		payment.UserID = req.UserID
	}
	if req.CustomerID != nil {
		payment.CustomerID = req.CustomerID
	}
	if req.Date != nil {
		date, err := parseWorkflowDate(*req.Date)
		if err != nil {
			return nil, err
		}
		payment.PaymentDate = date
	}

	if err := s.billingRepo.UpdatePayment(s.db, payment); err != nil {
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return nil, fmt.Errorf("%w: payment references a missing record", ErrValidation)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}
	return payment, nil
}

func (s *billingService) DeletePayment(id int64) error {
	err := s.billingRepo.DeletePayment(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}

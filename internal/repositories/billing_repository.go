package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ims_backend/internal/models"

	"github.com/lib/pq"
)

// BillingRepository defines the interface for invoice and payment database
// operations. Both record kinds are origin-tagged (sale vs stock_in).
type BillingRepository interface {
	// Invoice methods
	CreateInvoice(executor SQLExecutor, invoice *models.Invoice) (int64, error)
	GetInvoiceByID(id int64) (*models.Invoice, error)
	GetInvoices(origin *string, page, pageSize int) ([]models.Invoice, int, error)
	UpdateInvoice(executor SQLExecutor, invoice *models.Invoice) error
	DeleteInvoice(executor SQLExecutor, id int64) error

	// Payment methods
	CreatePayment(executor SQLExecutor, payment *models.Payment) (int64, error)
	GetPaymentByID(id int64) (*models.Payment, error)
	GetPayments(origin *string, page, pageSize int) ([]models.Payment, int, error)
	UpdatePayment(executor SQLExecutor, payment *models.Payment) error
	DeletePayment(executor SQLExecutor, id int64) error
}

type billingRepository struct {
	db *sql.DB
}

// NewBillingRepository creates a new instance of BillingRepository.
func NewBillingRepository(db *sql.DB) BillingRepository {
	return &billingRepository{db: db}
}

// --- Invoice methods ---

func (r *billingRepository) CreateInvoice(executor SQLExecutor, invoice *models.Invoice) (int64, error) {
	query := `INSERT INTO invoices (origin, sale_id, stock_in_id, amount, gst, discount, user_id, customer_id, invoice_date, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		invoice.Origin, invoice.SaleID, invoice.StockInID, invoice.Amount, invoice.GST, invoice.Discount,
		invoice.UserID, invoice.CustomerID, invoice.InvoiceDate, currentTime, currentTime,
	).Scan(&invoice.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return 0, fmt.Errorf("%w: creating invoice (constraint: %s)", ErrForeignKeyViolation, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating invoice: %v", ErrDatabaseError, err)
	}
	return invoice.ID, nil
}

func (r *billingRepository) GetInvoiceByID(id int64) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	query := `SELECT id, origin, sale_id, stock_in_id, amount, gst, discount, user_id, customer_id, invoice_date, created_at, updated_at
	          FROM invoices WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&invoice.ID, &invoice.Origin, &invoice.SaleID, &invoice.StockInID, &invoice.Amount,
		&invoice.GST, &invoice.Discount, &invoice.UserID, &invoice.CustomerID, &invoice.InvoiceDate,
		&invoice.CreatedAt, &invoice.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting invoice by ID %d: %v", ErrDatabaseError, id, err)
	}
	return invoice, nil
}

func (r *billingRepository) GetInvoices(origin *string, page, pageSize int) ([]models.Invoice, int, error) {
	invoices := []models.Invoice{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, origin, sale_id, stock_in_id, amount, gst, discount, user_id, customer_id, invoice_date, created_at, updated_at,
	    COUNT(*) OVER() AS total_count
	  FROM invoices`)

	var args []interface{}
	argCount := 1
	if origin != nil && *origin != "" {
		queryBuilder.WriteString(fmt.Sprintf(" WHERE origin = $%d", argCount))
		args = append(args, *origin)
		argCount++
	}
	queryBuilder.WriteString(" ORDER BY invoice_date DESC, id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting invoices: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var invoice models.Invoice
		if err := rows.Scan(
			&invoice.ID, &invoice.Origin, &invoice.SaleID, &invoice.StockInID, &invoice.Amount,
			&invoice.GST, &invoice.Discount, &invoice.UserID, &invoice.CustomerID, &invoice.InvoiceDate,
			&invoice.CreatedAt, &invoice.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning invoice: %v", ErrDatabaseError, err)
		}
		invoices = append(invoices, invoice)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating invoices: %v", ErrDatabaseError, err)
	}
	return invoices, totalCount, nil
}

func (r *billingRepository) UpdateInvoice(executor SQLExecutor, invoice *models.Invoice) error {
	query := `UPDATE invoices SET amount = $1, gst = $2, discount = $3, user_id = $4, customer_id = $5, invoice_date = $6, updated_at = $7
	          WHERE id = $8`
	result, err := executor.Exec(query,
		invoice.Amount, invoice.GST, invoice.Discount, invoice.UserID, invoice.CustomerID, invoice.InvoiceDate,
		time.Now(), invoice.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("%w: updating invoice ID %d (constraint: %s)", ErrForeignKeyViolation, invoice.ID, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating invoice ID %d: %v", ErrDatabaseError, invoice.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *billingRepository) DeleteInvoice(executor SQLExecutor, id int64) error {
	query := `DELETE FROM invoices WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("%w: invoice ID %d is referenced by payment records (constraint: %s)",
				ErrForeignKeyViolation, id, pqErr.Constraint)
		}
		return fmt.Errorf("%w: deleting invoice ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Payment methods ---

func (r *billingRepository) CreatePayment(executor SQLExecutor, payment *models.Payment) (int64, error) {
	query := `INSERT INTO payments (origin, invoice_id, stock_in_id, amount, profit_loss, payment_date, user_id, customer_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		payment.Origin, payment.InvoiceID, payment.StockInID, payment.Amount, payment.ProfitLoss,
		payment.PaymentDate, payment.UserID, payment.CustomerID, currentTime, currentTime,
	).Scan(&payment.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return 0, fmt.Errorf("%w: creating payment (constraint: %s)", ErrForeignKeyViolation, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating payment: %v", ErrDatabaseError, err)
	}
	return payment.ID, nil
}

func (r *billingRepository) GetPaymentByID(id int64) (*models.Payment, error) {
	payment := &models.Payment{}
	query := `SELECT id, origin, invoice_id, stock_in_id, amount, profit_loss, payment_date, user_id, customer_id, created_at, updated_at
	          FROM payments WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&payment.ID, &payment.Origin, &payment.InvoiceID, &payment.StockInID, &payment.Amount,
		&payment.ProfitLoss, &payment.PaymentDate, &payment.UserID, &payment.CustomerID,
		&payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting payment by ID %d: %v", ErrDatabaseError, id, err)
	}
	return payment, nil
}

func (r *billingRepository) GetPayments(origin *string, page, pageSize int) ([]models.Payment, int, error) {
	payments := []models.Payment{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, origin, invoice_id, stock_in_id, amount, profit_loss, payment_date, user_id, customer_id, created_at, updated_at,
	    COUNT(*) OVER() AS total_count
	  FROM payments`)

	var args []interface{}
	argCount := 1
	if origin != nil && *origin != "" {
		queryBuilder.WriteString(fmt.Sprintf(" WHERE origin = $%d", argCount))
		args = append(args, *origin)
		argCount++
	}
	queryBuilder.WriteString(" ORDER BY payment_date DESC, id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting payments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var payment models.Payment
		if err := rows.Scan(
			&payment.ID, &payment.Origin, &payment.InvoiceID, &payment.StockInID, &payment.Amount,
			&payment.ProfitLoss, &payment.PaymentDate, &payment.UserID, &payment.CustomerID,
			&payment.CreatedAt, &payment.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning payment: %v", ErrDatabaseError, err)
		}
		payments = append(payments, payment)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating payments: %v", ErrDatabaseError, err)
	}
	return payments, totalCount, nil
}

func (r *billingRepository) UpdatePayment(executor SQLExecutor, payment *models.Payment) error {
	query := `UPDATE payments SET amount = $1, profit_loss = $2, payment_date = $3, user_id = $4, customer_id = $5, updated_at = $6
	          WHERE id = $7`
	result, err := executor.Exec(query,
		payment.Amount, payment.ProfitLoss, payment.PaymentDate, payment.UserID, payment.CustomerID,
		time.Now(), payment.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("%w: updating payment ID %d (constraint: %s)", ErrForeignKeyViolation, payment.ID, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating payment ID %d: %v", ErrDatabaseError, payment.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *billingRepository) DeletePayment(executor SQLExecutor, id int64) error {
	query := `DELETE FROM payments WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		return fmt.Errorf("%w: deleting payment ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

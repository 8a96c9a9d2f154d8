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

// StockRepository defines the interface for stock balance and stock-in
// database operations. Balance mutations take an executor because they run
// inside the workflow transactions owned by the service layer.
type StockRepository interface {
	// Stock balance methods
	GetBalanceByID(id int64) (*models.StockBalance, error)
	GetBalanceByProductID(executor SQLExecutor, productID int64) (*models.StockBalance, error)
	GetBalances(page, pageSize int) ([]models.StockBalance, int, error)
	CreateBalance(executor SQLExecutor, balance *models.StockBalance) (int64, error)
	IncrementBalance(executor SQLExecutor, productID, quantity int64) (int64, error)
	DecrementBalance(executor SQLExecutor, productID, quantity int64) (int64, error)
	UpdateBalance(executor SQLExecutor, balance *models.StockBalance) error
	DeleteBalance(executor SQLExecutor, id int64) error

	// Stock-in event methods
	CreateStockIn(executor SQLExecutor, stockIn *models.StockIn) (int64, error)
	GetStockInByID(id int64) (*models.StockIn, error)
	GetStockIns(productID *int64, page, pageSize int) ([]models.StockIn, int, error)
	UpdateStockIn(executor SQLExecutor, stockIn *models.StockIn) error
	DeleteStockIn(executor SQLExecutor, id int64) error
}

type stockRepository struct {
	db *sql.DB
}

// NewStockRepository creates a new instance of StockRepository.
func NewStockRepository(db *sql.DB) StockRepository {
	return &stockRepository{db: db}
}

// --- Stock balance methods ---

func (r *stockRepository) GetBalanceByID(id int64) (*models.StockBalance, error) {
	balance := &models.StockBalance{}
	query := `SELECT id, product_id, quantity, created_at, updated_at FROM stock_balances WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&balance.ID, &balance.ProductID, &balance.Quantity, &balance.CreatedAt, &balance.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting stock balance by ID %d: %v", ErrDatabaseError, id, err)
	}
	return balance, nil
}

func (r *stockRepository) GetBalanceByProductID(executor SQLExecutor, productID int64) (*models.StockBalance, error) {
	balance := &models.StockBalance{}
	query := `SELECT id, product_id, quantity, created_at, updated_at FROM stock_balances WHERE product_id = $1`
	err := executor.QueryRow(query, productID).Scan(
		&balance.ID, &balance.ProductID, &balance.Quantity, &balance.CreatedAt, &balance.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting stock balance for product ID %d: %v", ErrDatabaseError, productID, err)
	}
	return balance, nil
}

func (r *stockRepository) GetBalances(page, pageSize int) ([]models.StockBalance, int, error) {
	balances := []models.StockBalance{}
	totalCount := 0
	query := `SELECT sb.id, sb.product_id, sb.quantity, sb.created_at, sb.updated_at,
	            p.product_name, p.price,
	            COUNT(*) OVER() AS total_count
	          FROM stock_balances sb
	          JOIN products p ON sb.product_id = p.id
	          ORDER BY sb.product_id
	          LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting stock balances: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var balance models.StockBalance
		var product models.Product
		if err := rows.Scan(
			&balance.ID, &balance.ProductID, &balance.Quantity, &balance.CreatedAt, &balance.UpdatedAt,
			&product.ProductName, &product.Price, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning stock balance: %v", ErrDatabaseError, err)
		}
		product.ID = balance.ProductID
		balance.Product = &product
		balances = append(balances, balance)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating stock balances: %v", ErrDatabaseError, err)
	}
	return balances, totalCount, nil
}

func (r *stockRepository) CreateBalance(executor SQLExecutor, balance *models.StockBalance) (int64, error) {
	query := `INSERT INTO stock_balances (product_id, quantity, created_at, updated_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query, balance.ProductID, balance.Quantity, currentTime, currentTime).Scan(&balance.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return 0, fmt.Errorf("%w: stock balance for product ID %d already exists (constraint: %s)",
					ErrDuplicateKey, balance.ProductID, pqErr.Constraint)
			}
			if pqErr.Code.Name() == "foreign_key_violation" {
				return 0, fmt.Errorf("%w: invalid product_id %d (constraint: %s)",
					ErrForeignKeyViolation, balance.ProductID, pqErr.Constraint)
			}
		}
		return 0, fmt.Errorf("%w: creating stock balance: %v", ErrDatabaseError, err)
	}
	return balance.ID, nil
}

// IncrementBalance adds quantity to the product's balance, creating the row
// on first stock-in. Returns the new quantity.
func (r *stockRepository) IncrementBalance(executor SQLExecutor, productID, quantity int64) (int64, error) {
	var newQuantity int64
	query := `INSERT INTO stock_balances (product_id, quantity, created_at, updated_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (product_id) DO UPDATE
	            SET quantity = stock_balances.quantity + excluded.quantity,
	                updated_at = excluded.updated_at
	          RETURNING quantity`
	err := executor.QueryRow(query, productID, quantity, time.Now(), time.Now()).Scan(&newQuantity)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return 0, fmt.Errorf("%w: invalid product_id %d (constraint: %s)", ErrForeignKeyViolation, productID, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: incrementing stock for product ID %d: %v", ErrDatabaseError, productID, err)
	}
	return newQuantity, nil
}

// DecrementBalance subtracts quantity from the product's balance. The WHERE
// guard refuses any decrement that would go negative, so the UPDATE matches
// zero rows and ErrInsufficientStock is returned instead.
func (r *stockRepository) DecrementBalance(executor SQLExecutor, productID, quantity int64) (int64, error) {
	var newQuantity int64
	query := `UPDATE stock_balances
	          SET quantity = quantity - $1, updated_at = $2
	          WHERE product_id = $3 AND quantity >= $4
	          RETURNING quantity`
	err := executor.QueryRow(query, quantity, time.Now(), productID, quantity).Scan(&newQuantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either no balance row exists or the remaining quantity is short;
			// both mean the product cannot cover the requested amount.
			return 0, fmt.Errorf("%w: product ID %d cannot cover quantity %d", ErrInsufficientStock, productID, quantity)
		}
		return 0, fmt.Errorf("%w: decrementing stock for product ID %d: %v", ErrDatabaseError, productID, err)
	}
	return newQuantity, nil
}

func (r *stockRepository) UpdateBalance(executor SQLExecutor, balance *models.StockBalance) error {
	query := `UPDATE stock_balances SET product_id = $1, quantity = $2, updated_at = $3 WHERE id = $4`
	result, err := executor.Exec(query, balance.ProductID, balance.Quantity, time.Now(), balance.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: stock balance for product ID %d already exists (constraint: %s)",
				ErrDuplicateKey, balance.ProductID, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating stock balance ID %d: %v", ErrDatabaseError, balance.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *stockRepository) DeleteBalance(executor SQLExecutor, id int64) error {
	query := `DELETE FROM stock_balances WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		return fmt.Errorf("%w: deleting stock balance ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Stock-in event methods ---

func (r *stockRepository) CreateStockIn(executor SQLExecutor, stockIn *models.StockIn) (int64, error) {
	query := `INSERT INTO stock_in (stock_in_date, quantity, product_id, user_id, customer_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		stockIn.StockInDate, stockIn.Quantity, stockIn.ProductID, stockIn.UserID, stockIn.CustomerID,
		currentTime, currentTime,
	).Scan(&stockIn.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return 0, fmt.Errorf("%w: creating stock-in entry (constraint: %s)", ErrForeignKeyViolation, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating stock-in entry: %v", ErrDatabaseError, err)
	}
	return stockIn.ID, nil
}

func (r *stockRepository) GetStockInByID(id int64) (*models.StockIn, error) {
	stockIn := &models.StockIn{}
	var product models.Product
	var user models.User
	var customer models.Customer
	query := `SELECT si.id, si.stock_in_date, si.quantity, si.product_id, si.user_id, si.customer_id,
	            si.created_at, si.updated_at,
	            p.product_name, p.price, u.name, c.name
	          FROM stock_in si
	          JOIN products p ON si.product_id = p.id
	          JOIN users u ON si.user_id = u.id
	          JOIN customers c ON si.customer_id = c.id
	          WHERE si.id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&stockIn.ID, &stockIn.StockInDate, &stockIn.Quantity, &stockIn.ProductID, &stockIn.UserID, &stockIn.CustomerID,
		&stockIn.CreatedAt, &stockIn.UpdatedAt,
		&product.ProductName, &product.Price, &user.Name, &customer.Name,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting stock-in entry by ID %d: %v", ErrDatabaseError, id, err)
	}
	product.ID = stockIn.ProductID
	user.ID = stockIn.UserID
	customer.ID = stockIn.CustomerID
	stockIn.Product = &product
	stockIn.User = &user
	stockIn.Customer = &customer
	return stockIn, nil
}

func (r *stockRepository) GetStockIns(productID *int64, page, pageSize int) ([]models.StockIn, int, error) {
	stockIns := []models.StockIn{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT si.id, si.stock_in_date, si.quantity, si.product_id, si.user_id, si.customer_id,
	    si.created_at, si.updated_at,
	    p.product_name, p.price, u.name, c.name,
	    COUNT(*) OVER() AS total_count
	  FROM stock_in si
	  JOIN products p ON si.product_id = p.id
	  JOIN users u ON si.user_id = u.id
	  JOIN customers c ON si.customer_id = c.id`)

	var args []interface{}
	argCount := 1
	if productID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" WHERE si.product_id = $%d", argCount))
		args = append(args, *productID)
		argCount++
	}
	queryBuilder.WriteString(" ORDER BY si.stock_in_date DESC, si.id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting stock-in entries: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var stockIn models.StockIn
		var product models.Product
		var user models.User
		var customer models.Customer
		if err := rows.Scan(
			&stockIn.ID, &stockIn.StockInDate, &stockIn.Quantity, &stockIn.ProductID, &stockIn.UserID, &stockIn.CustomerID,
			&stockIn.CreatedAt, &stockIn.UpdatedAt,
			&product.ProductName, &product.Price, &user.Name, &customer.Name,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning stock-in entry: %v", ErrDatabaseError, err)
		}
		product.ID = stockIn.ProductID
		user.ID = stockIn.UserID
		customer.ID = stockIn.CustomerID
		stockIn.Product = &product
		stockIn.User = &user
		stockIn.Customer = &customer
		stockIns = append(stockIns, stockIn)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating stock-in entries: %v", ErrDatabaseError, err)
	}
	return stockIns, totalCount, nil
}

// UpdateStockIn rewrites the event row as plain data. The ledger effect the
// event caused at creation time is not re-applied here.
func (r *stockRepository) UpdateStockIn(executor SQLExecutor, stockIn *models.StockIn) error {
	query := `UPDATE stock_in SET stock_in_date = $1, quantity = $2, product_id = $3, user_id = $4, customer_id = $5, updated_at = $6
	          WHERE id = $7`
	result, err := executor.Exec(query,
		stockIn.StockInDate, stockIn.Quantity, stockIn.ProductID, stockIn.UserID, stockIn.CustomerID,
		time.Now(), stockIn.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("%w: updating stock-in entry ID %d (constraint: %s)", ErrForeignKeyViolation, stockIn.ID, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating stock-in entry ID %d: %v", ErrDatabaseError, stockIn.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *stockRepository) DeleteStockIn(executor SQLExecutor, id int64) error {
	query := `DELETE FROM stock_in WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("%w: stock-in entry ID %d is referenced by invoice or payment records (constraint: %s)",
				ErrForeignKeyViolation, id, pqErr.Constraint)
		}
		return fmt.Errorf("%w: deleting stock-in entry ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

package models

import "time"

// StockBalance holds the current on-hand quantity for a product.
// Exactly one row per product, created lazily on first stock-in.
// Invariant: Quantity is never negative.
type StockBalance struct {
	ID        int64     `json:"id" db:"id"`
	ProductID int64     `json:"product_id" db:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" db:"quantity" binding:"min=0"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	Product   *Product  `json:"product,omitempty"`
}

// StockIn records a quantity received for a product at a point in time,
// attributed to a user and a customer. The ledger effect (balance increment,
// derived invoice/payment) is applied once at creation; later CRUD edits
// touch the row as plain data only.
type StockIn struct {
	ID          int64     `json:"id" db:"id"`
	StockInDate time.Time `json:"stock_in_date" db:"stock_in_date"`
	Quantity    int64     `json:"quantity" db:"quantity" binding:"required,gt=0"`
	ProductID   int64     `json:"product_id" db:"product_id" binding:"required"`
	UserID      int64     `json:"user_id" db:"user_id" binding:"required"`
	CustomerID  int64     `json:"customer_id" db:"customer_id" binding:"required"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	Product     *Product  `json:"product,omitempty"`
	User        *User     `json:"user,omitempty"`
	Customer    *Customer `json:"customer,omitempty"`
}

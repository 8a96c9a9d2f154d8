package models

import "time"

// Sale is a dated total computed from its items' product prices at creation
// time. A sale exclusively owns its items; both are immutable once created.
type Sale struct {
	ID          int64      `json:"id" db:"id"`
	SaleDate    time.Time  `json:"sale_date" db:"sale_date"`
	TotalAmount float64    `json:"total_amount" db:"total_amount"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	Items       []SaleItem `json:"items,omitempty"`
}

// SaleItem is one line of a sale: a product reference and a quantity.
type SaleItem struct {
	ID        int64     `json:"id" db:"id"`
	SaleID    int64     `json:"sale_id" db:"sale_id"`
	ProductID int64     `json:"product_id" db:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" db:"quantity" binding:"required,gt=0"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Product   *Product  `json:"product,omitempty"`
}

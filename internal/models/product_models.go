package models

import "time"

// Product is master data referenced by stock and sale records.
// Price is the current unit price; sale totals are computed from it at
// sale-creation time, not from a frozen snapshot.
type Product struct {
	ID          int64     `json:"id" db:"id"`
	ProductName string    `json:"product_name" db:"product_name" binding:"required"`
	Price       float64   `json:"price" db:"price" binding:"min=0"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Customer is a counterparty on stock-in, invoice and payment records.
type Customer struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	Address   *string   `json:"address,omitempty" db:"address"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

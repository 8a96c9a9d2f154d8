package models

import "time"

// Origin values for invoices and payments. A record's origin says which
// initiating event produced it and which optional columns it uses.
const (
	OriginSale    = "sale"
	OriginStockIn = "stock_in"
)

// Invoice is a derived financial record. Sale-origin invoices reference the
// sale and carry its total; stock-in-origin invoices reference the stock-in
// event and additionally carry the gst/discount breakdown plus the
// actor/counterparty references.
type Invoice struct {
	ID          int64     `json:"id" db:"id"`
	Origin      string    `json:"origin" db:"origin"`
	SaleID      *int64    `json:"sale_id,omitempty" db:"sale_id"`
	StockInID   *int64    `json:"stock_in_id,omitempty" db:"stock_in_id"`
	Amount      float64   `json:"amount" db:"amount"`
	GST         *float64  `json:"gst,omitempty" db:"gst"`
	Discount    *float64  `json:"discount,omitempty" db:"discount"`
	UserID      *int64    `json:"user_id,omitempty" db:"user_id"`
	CustomerID  *int64    `json:"customer_id,omitempty" db:"customer_id"`
	InvoiceDate time.Time `json:"invoice_date" db:"invoice_date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Payment is a derived financial record. Stock-in-origin payments carry the
// profit/loss relative to the pre-markup amount.
type Payment struct {
	ID          int64     `json:"id" db:"id"`
	Origin      string    `json:"origin" db:"origin"`
	InvoiceID   *int64    `json:"invoice_id,omitempty" db:"invoice_id"`
	StockInID   *int64    `json:"stock_in_id,omitempty" db:"stock_in_id"`
	Amount      float64   `json:"amount" db:"amount"`
	ProfitLoss  *float64  `json:"profit_loss,omitempty" db:"profit_loss"`
	PaymentDate time.Time `json:"payment_date" db:"payment_date"`
	UserID      *int64    `json:"user_id,omitempty" db:"user_id"`
	CustomerID  *int64    `json:"customer_id,omitempty" db:"customer_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

package services_test

import (
	"database/sql"
	"testing"

	"ims_backend/internal/models"
	"ims_backend/internal/repositories"
	"ims_backend/internal/services"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// Schema mirror of db_schema.sql for the in-memory test database.
const testSchema = `
CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    username TEXT NOT NULL UNIQUE,
    email TEXT,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE products (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    product_name TEXT NOT NULL,
    price REAL NOT NULL CHECK (price >= 0),
    description TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE customers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    address TEXT,
    phone TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE stock_balances (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    product_id INTEGER NOT NULL UNIQUE,
    quantity INTEGER NOT NULL CHECK (quantity >= 0),
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE stock_in (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    stock_in_date DATE NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity > 0),
    product_id INTEGER NOT NULL,
    user_id INTEGER NOT NULL,
    customer_id INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE sales (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sale_date DATE NOT NULL,
    total_amount REAL NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE sale_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sale_id INTEGER NOT NULL,
    product_id INTEGER NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity > 0),
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE invoices (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    origin TEXT NOT NULL CHECK (origin IN ('sale', 'stock_in')),
    sale_id INTEGER,
    stock_in_id INTEGER,
    amount REAL NOT NULL,
    gst REAL,
    discount REAL,
    user_id INTEGER,
    customer_id INTEGER,
    invoice_date DATE NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE payments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    origin TEXT NOT NULL CHECK (origin IN ('sale', 'stock_in')),
    invoice_id INTEGER,
    stock_in_id INTEGER,
    amount REAL NOT NULL,
    profit_loss REAL,
    payment_date DATE NOT NULL,
    user_id INTEGER,
    customer_id INTEGER,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

// newTestDB opens an in-memory database restricted to a single connection so
// that concurrent workflow transactions serialize the same way they would on
// a server with row locks.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv bundles the repositories and services wired the way the router
// wires them, sharing one product locker across both workflows.
type testEnv struct {
	db *sql.DB

	productRepo  repositories.ProductRepository
	customerRepo repositories.CustomerRepository
	userRepo     repositories.UserRepository
	stockRepo    repositories.StockRepository
	saleRepo     repositories.SaleRepository
	billingRepo  repositories.BillingRepository

	authService     services.AuthService
	userService     services.UserService
	productService  services.ProductService
	customerService services.CustomerService
	stockService    services.StockService
	saleService     services.SaleService
	billingService  services.BillingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	env := &testEnv{
		db:           db,
		productRepo:  repositories.NewProductRepository(db),
		customerRepo: repositories.NewCustomerRepository(db),
		userRepo:     repositories.NewUserRepository(db),
		stockRepo:    repositories.NewStockRepository(db),
		saleRepo:     repositories.NewSaleRepository(db),
		billingRepo:  repositories.NewBillingRepository(db),
	}

	locker := services.NewProductLocker()
	rates := services.DefaultPricingRates()

	env.authService = services.NewAuthService(env.userRepo, db)
	env.userService = services.NewUserService(env.userRepo, db)
	env.productService = services.NewProductService(env.productRepo, db)
	env.customerService = services.NewCustomerService(env.customerRepo, db)
	env.stockService = services.NewStockService(env.stockRepo, env.productRepo, env.userRepo, env.customerRepo, env.billingRepo, locker, rates, db)
	env.saleService = services.NewSaleService(env.saleRepo, env.productRepo, env.stockRepo, env.billingRepo, locker, db)
	env.billingService = services.NewBillingService(env.billingRepo, db)
	return env
}

// --- Fixtures ---

func (env *testEnv) createProduct(t *testing.T, name string, price float64) *models.Product {
	t.Helper()
	product := &models.Product{ProductName: name, Price: price}
	_, err := env.productRepo.CreateProduct(env.db, product)
	require.NoError(t, err)
	return product
}

func (env *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Name: username, Username: username, PasswordHash: "x"}
	_, err := env.userRepo.CreateUser(env.db, user)
	require.NoError(t, err)
	return user
}

func (env *testEnv) createCustomer(t *testing.T, name string) *models.Customer {
	t.Helper()
	customer := &models.Customer{Name: name}
	_, err := env.customerRepo.CreateCustomer(env.db, customer)
	require.NoError(t, err)
	return customer
}

// seedStock sets up a balance row directly, bypassing the workflows.
func (env *testEnv) seedStock(t *testing.T, productID, quantity int64) {
	t.Helper()
	_, err := env.stockRepo.CreateBalance(env.db, &models.StockBalance{ProductID: productID, Quantity: quantity})
	require.NoError(t, err)
}

// countRows is used to assert that failed workflows leave no partial writes.
func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func balanceQuantity(t *testing.T, env *testEnv, productID int64) int64 {
	t.Helper()
	balance, err := env.stockRepo.GetBalanceByProductID(env.db, productID)
	require.NoError(t, err)
	return balance.Quantity
}

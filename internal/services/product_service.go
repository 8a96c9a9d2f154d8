package services

import (
	"database/sql"
	"errors"
	"fmt"

	"ims_backend/internal/models"
	"ims_backend/internal/repositories"
)

// --- Product DTOs ---

type CreateProductRequest struct {
	ProductName string  `json:"product_name" binding:"required"`
	Price       float64 `json:"price" binding:"min=0"`
	Description *string `json:"description"`
}

// UpdateProductRequest patches a product. Only present fields are applied.
type UpdateProductRequest struct {
	ProductName *string  `json:"product_name"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
}

// --- ProductService Interface ---

type ProductService interface {
	CreateProduct(req CreateProductRequest) (*models.Product, error)
	GetProductByID(id int64) (*models.Product, error)
	GetProducts(page, pageSize int) ([]models.Product, int, error)
	UpdateProduct(id int64, req UpdateProductRequest) (*models.Product, error)
	DeleteProduct(id int64) error
}

// --- productService Implementation ---

type productService struct {
	productRepo repositories.ProductRepository
	db          *sql.DB
}

// NewProductService creates a new instance of ProductService.
func NewProductService(pr repositories.ProductRepository, db *sql.DB) ProductService {
	return &productService{productRepo: pr, db: db}
}

func (s *productService) CreateProduct(req CreateProductRequest) (*models.Product, error) {
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: product price cannot be negative", ErrValidation)
	}
	product := models.Product{
		ProductName: req.ProductName,
		Price:       req.Price,
		Description: req.Description,
	}
	if _, err := s.productRepo.CreateProduct(s.db, &product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

func (s *productService) GetProductByID(id int64) (*models.Product, error) {
	product, err := s.productRepo.GetProductByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID: %w", err)
	}
	return product, nil
}

func (s *productService) GetProducts(page, pageSize int) ([]models.Product, int, error) {
	products, totalCount, err := s.productRepo.GetProducts(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get products: %w", err)
	}
	return products, totalCount, nil
}

func (s *productService) UpdateProduct(id int64, req UpdateProductRequest) (*models.Product, error) {
	product, err := s.productRepo.GetProductByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to fetch product for update: %w", err)
	}

	if req.ProductName != nil {
		product.ProductName = *req.ProductName
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("%w: product price cannot be negative", ErrValidation)
		}
		product.Price = *req.Price
	}
	if req.Description != nil {
		product.Description = req.Description
	}

	if err := s.productRepo.UpdateProduct(s.db, product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

func (s *productService) DeleteProduct(id int64) error {
	err := s.productRepo.DeleteProduct(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return ErrEntityInUse
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

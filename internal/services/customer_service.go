package services

import (
	"database/sql"
	"errors"
	"fmt"

	"ims_backend/internal/models"
	"ims_backend/internal/repositories"
)

// --- Customer DTOs ---

type CreateCustomerRequest struct {
	Name    string  `json:"name" binding:"required"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

// UpdateCustomerRequest patches a customer. Only present fields are applied.
type UpdateCustomerRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

// --- CustomerService Interface ---

type CustomerService interface {
	CreateCustomer(req CreateCustomerRequest) (*models.Customer, error)
	GetCustomerByID(id int64) (*models.Customer, error)
	GetCustomers(page, pageSize int) ([]models.Customer, int, error)
	UpdateCustomer(id int64, req UpdateCustomerRequest) (*models.Customer, error)
	DeleteCustomer(id int64) error
}

// --- customerService Implementation ---

type customerService struct {
	customerRepo repositories.CustomerRepository
	db           *sql.DB
}

// NewCustomerService creates a new instance of CustomerService.
func NewCustomerService(cr repositories.CustomerRepository, db *sql.DB) CustomerService {
	return &customerService{customerRepo: cr, db: db}
}

func (s *customerService) CreateCustomer(req CreateCustomerRequest) (*models.Customer, error) {
	customer := models.Customer{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	}
	if _, err := s.customerRepo.CreateCustomer(s.db, &customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &customer, nil
}

func (s *customerService) GetCustomerByID(id int64) (*models.Customer, error) {
	customer, err := s.customerRepo.GetCustomerByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer by ID: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetCustomers(page, pageSize int) ([]models.Customer, int, error) {
	customers, totalCount, err := s.customerRepo.GetCustomers(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get customers: %w", err)
	}
	return customers, totalCount, nil
}

func (s *customerService) UpdateCustomer(id int64, req UpdateCustomerRequest) (*models.Customer, error) {
	customer, err := s.customerRepo.GetCustomerByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to fetch customer for update: %w", err)
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Address != nil {
		customer.Address = req.Address
	}
	if req.Phone != nil {
		customer.Phone = req.Phone
	}

	if err := s.customerRepo.UpdateCustomer(s.db, customer); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

func (s *customerService) DeleteCustomer(id int64) error {
	err := s.customerRepo.DeleteCustomer(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCustomerNotFound
		}
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return ErrEntityInUse
		}
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}

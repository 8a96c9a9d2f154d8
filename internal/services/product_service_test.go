package services_test

import (
	"errors"
	"testing"

	"ims_backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestProductCRUD(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.productService.CreateProduct(services.CreateProductRequest{
		ProductName: "Desk Lamp",
		Price:       24.99,
		Description: strPtr("LED, adjustable arm"),
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	t.Run("get by ID", func(t *testing.T) {
		fetched, err := env.productService.GetProductByID(created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Desk Lamp", fetched.ProductName)
		assert.Equal(t, 24.99, fetched.Price)
		require.NotNil(t, fetched.Description)
		assert.Equal(t, "LED, adjustable arm", *fetched.Description)
	})

	t.Run("missing ID", func(t *testing.T) {
		_, err := env.productService.GetProductByID(9999)
		assert.True(t, errors.Is(err, services.ErrProductNotFound))
	})

	t.Run("negative price rejected", func(t *testing.T) {
		_, err := env.productService.CreateProduct(services.CreateProductRequest{ProductName: "Bad", Price: -1})
		assert.True(t, errors.Is(err, services.ErrValidation))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, env.productService.DeleteProduct(created.ID))
		_, err := env.productService.GetProductByID(created.ID)
		assert.True(t, errors.Is(err, services.ErrProductNotFound))
		assert.True(t, errors.Is(env.productService.DeleteProduct(created.ID), services.ErrProductNotFound))
	})
}

func TestUpdateProduct_AppliesOnlyPresentFields(t *testing.T) {
	env := newTestEnv(t)
	created, err := env.productService.CreateProduct(services.CreateProductRequest{
		ProductName: "Desk Lamp",
		Price:       24.99,
		Description: strPtr("LED"),
	})
	require.NoError(t, err)

	newPrice := 19.99
	updated, err := env.productService.UpdateProduct(created.ID, services.UpdateProductRequest{Price: &newPrice})
	require.NoError(t, err)

	// Absent fields keep their stored values.
	assert.Equal(t, 19.99, updated.Price)
	assert.Equal(t, "Desk Lamp", updated.ProductName)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "LED", *updated.Description)

	t.Run("negative price rejected", func(t *testing.T) {
		bad := -5.0
		_, err := env.productService.UpdateProduct(created.ID, services.UpdateProductRequest{Price: &bad})
		assert.True(t, errors.Is(err, services.ErrValidation))

		unchanged, err := env.productService.GetProductByID(created.ID)
		require.NoError(t, err)
		assert.Equal(t, 19.99, unchanged.Price)
	})

	t.Run("missing ID", func(t *testing.T) {
		name := "Nope"
		_, err := env.productService.UpdateProduct(9999, services.UpdateProductRequest{ProductName: &name})
		assert.True(t, errors.Is(err, services.ErrProductNotFound))
	})
}

func TestCustomerCRUD(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.customerService.CreateCustomer(services.CreateCustomerRequest{
		Name:    "Globex",
		Address: strPtr("12 Main St"),
		Phone:   strPtr("+1-555-0100"),
	})
	require.NoError(t, err)

	t.Run("patch keeps absent fields", func(t *testing.T) {
		updated, err := env.customerService.UpdateCustomer(created.ID, services.UpdateCustomerRequest{
			Phone: strPtr("+1-555-0199"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Globex", updated.Name)
		require.NotNil(t, updated.Address)
		assert.Equal(t, "12 Main St", *updated.Address)
		require.NotNil(t, updated.Phone)
		assert.Equal(t, "+1-555-0199", *updated.Phone)
	})

	t.Run("list pagination", func(t *testing.T) {
		for _, name := range []string{"Initech", "Umbrella"} {
			_, err := env.customerService.CreateCustomer(services.CreateCustomerRequest{Name: name})
			require.NoError(t, err)
		}
		customers, total, err := env.customerService.GetCustomers(1, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, customers, 2)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, env.customerService.DeleteCustomer(created.ID))
		_, err := env.customerService.GetCustomerByID(created.ID)
		assert.True(t, errors.Is(err, services.ErrCustomerNotFound))
	})
}

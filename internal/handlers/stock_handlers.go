package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"ims_backend/internal/models"
	"ims_backend/internal/services"
	"ims_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// StockHandler holds the stock service.
type StockHandler struct {
	stockService services.StockService
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(ss services.StockService) *StockHandler {
	return &StockHandler{stockService: ss}
}

// CreateStockIn records a stock-in event with its invoice and payment.
func (h *StockHandler) CreateStockIn(c *gin.Context) {
	var req services.CreateStockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateStockIn: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	stockIn, err := h.stockService.CreateStockIn(req)
	if err != nil {
		utils.LogError(err, "CreateStockIn: Error from stockService.CreateStockIn")
		if errors.Is(err, services.ErrProductNotFound) || errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Referenced record not found: "+err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrValidation) || errors.Is(err, services.ErrDateFormat) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrTxAborted) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeTransactionAborted, "Stock-in transaction aborted, no changes were applied.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to record stock-in.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, stockIn)
}

// GetStockIns handles fetching stock-in entries with pagination and an optional product filter.
func (h *StockHandler) GetStockIns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	var pProductID *int64
	if productIDStr := c.Query("product_id"); productIDStr != "" {
		productID, err := strconv.ParseInt(productIDStr, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid product_id filter format.", err.Error()))
			return
		}
		pProductID = &productID
	}

	stockIns, totalCount, err := h.stockService.GetStockIns(pProductID, page, pageSize)
	if err != nil {
		utils.LogError(err, "GetStockIns: Error from stockService.GetStockIns")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch stock-in entries.", "Internal error"))
		return
	}
	if stockIns == nil {
		stockIns = []models.StockIn{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      stockIns,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetStockInByID handles fetching a single stock-in entry by ID.
func (h *StockHandler) GetStockInByID(c *gin.Context) {
	idStr := c.Param("id")
	stockInID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid stock-in ID format.", err.Error()))
		return
	}

	stockIn, err := h.stockService.GetStockInByID(stockInID)
	if err != nil {
		if errors.Is(err, services.ErrStockInNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Stock-in entry not found.", err.Error()))
		} else {
			utils.LogError(err, "GetStockInByID: Error from stockService.GetStockInByID for ID "+idStr)
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch stock-in entry.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, stockIn)
}

// UpdateStockIn handles partial updates of a stock-in entry as plain data.
func (h *StockHandler) UpdateStockIn(c *gin.Context) {
	idStr := c.Param("id")
	stockInID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid stock-in ID format.", err.Error()))
		return
	}

	var req services.UpdateStockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	stockIn, err := h.stockService.UpdateStockIn(stockInID, req)
	if err != nil {
		utils.LogError(err, "UpdateStockIn: Error from stockService.UpdateStockIn for ID "+idStr)
		if errors.Is(err, services.ErrStockInNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Stock-in entry not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) || errors.Is(err, services.ErrDateFormat) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update stock-in entry.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, stockIn)
}

// DeleteStockIn handles deleting a stock-in entry.
func (h *StockHandler) DeleteStockIn(c *gin.Context) {
	idStr := c.Param("id")
	stockInID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid stock-in ID format.", err.Error()))
		return
	}

	if err := h.stockService.DeleteStockIn(stockInID); err != nil {
		utils.LogError(err, "DeleteStockIn: Error from stockService.DeleteStockIn for ID "+idStr)
		if errors.Is(err, services.ErrStockInNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Stock-in entry not found.", err.Error()))
		} else if errors.Is(err, services.ErrEntityInUse) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Stock-in entry is referenced by other records and cannot be deleted.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete stock-in entry.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock-in entry deleted successfully"})
}

// CreateStockBalance handles seeding a stock balance row directly.
func (h *StockHandler) CreateStockBalance(c *gin.Context) {
	var req services.CreateStockBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	balance, err := h.stockService.CreateBalance(req)
	if err != nil {
		utils.LogError(err, "CreateStockBalance: Error from stockService.CreateBalance")
		if errors.Is(err, services.ErrProductNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create stock balance.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, balance)
}

// GetStockBalances handles fetching all stock balances with pagination.
func (h *StockHandler) GetStockBalances(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	balances, totalCount, err := h.stockService.GetBalances(page, pageSize)
	if err != nil {
		utils.LogError(err, "GetStockBalances: Error from stockService.GetBalances")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch stock balances.", "Internal error"))
		return
	}
	if balances == nil {
		balances = []models.StockBalance{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      balances,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetStockBalanceByID handles fetching a single stock balance by ID.
func (h *StockHandler) GetStockBalanceByID(c *gin.Context) {
	idStr := c.Param("id")
	balanceID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid stock balance ID format.", err.Error()))
		return
	}

	balance, err := h.stockService.GetBalanceByID(balanceID)
	if err != nil {
		if errors.Is(err, services.ErrStockBalanceNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Stock balance not found.", err.Error()))
		} else {
			utils.LogError(err, "GetStockBalanceByID: Error from stockService.GetBalanceByID for ID "+idStr)
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch stock balance.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, balance)
}

// GetStockBalanceByProductID handles fetching the balance for a given product.
func (h *StockHandler) GetStockBalanceByProductID(c *gin.Context) {
	idStr := c.Param("product_id")
	productID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid product ID format.", err.Error()))
		return
	}

	balance, err := h.stockService.GetBalanceByProductID(productID)
	if err != nil {
		if errors.Is(err, services.ErrStockBalanceNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Stock balance not found for product.", err.Error()))
		} else {
			utils.LogError(err, "GetStockBalanceByProductID: Error from stockService.GetBalanceByProductID for product "+idStr)
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch stock balance.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, balance)
}

// UpdateStockBalance handles partial updates of a stock balance.
func (h *StockHandler) UpdateStockBalance(c *gin.Context) {
	idStr := c.Param("id")
	balanceID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid stock balance ID format.", err.Error()))
		return
	}

	var req services.UpdateStockBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	balance, err := h.stockService.UpdateBalance(balanceID, req)
	if err != nil {
		utils.LogError(err, "UpdateStockBalance: Error from stockService.UpdateBalance for ID "+idStr)
		if errors.Is(err, services.ErrStockBalanceNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Stock balance not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update stock balance.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, balance)
}

// DeleteStockBalance handles deleting a stock balance row.
func (h *StockHandler) DeleteStockBalance(c *gin.Context) {
	idStr := c.Param("id")
	balanceID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid stock balance ID format.", err.Error()))
		return
	}

	if err := h.stockService.DeleteBalance(balanceID); err != nil {
		utils.LogError(err, "DeleteStockBalance: Error from stockService.DeleteBalance for ID "+idStr)
		if errors.Is(err, services.ErrStockBalanceNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Stock balance not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete stock balance.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock balance deleted successfully"})
}

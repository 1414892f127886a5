package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lifeonloan/wealth-api/middleware"
	"github.com/lifeonloan/wealth-api/models"
	"github.com/lifeonloan/wealth-api/services"
)

type BudgetHandler struct {
	Service *services.BudgetService
}

func NewBudgetHandler(service *services.BudgetService) *BudgetHandler {
	return &BudgetHandler{Service: service}
}

// SubmitBudget runs the analysis pipeline for one monthly submission.
// Accepts the category amounts either as form fields or as a flat JSON
// object keyed by category.
func (h *BudgetHandler) SubmitBudget(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	raw, err := collectRawAmounts(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.Service.Submit(c.Request.Context(), userID, raw)
	if err != nil {
		var invalid *services.InvalidAmountError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "invalid amounts",
				"fields": invalid.Reasons,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process budget"})
		return
	}

	c.JSON(http.StatusCreated, toBudgetResponse(*record))
}

// GetDashboard returns the five most recent submissions.
func (h *BudgetHandler) GetDashboard(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	records, err := h.Service.GetRecent(c.Request.Context(), userID, 5)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch budgets"})
		return
	}

	c.JSON(http.StatusOK, toBudgetResponses(records))
}

// GetHistory returns the full submission history, newest first.
func (h *BudgetHandler) GetHistory(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	records, err := h.Service.GetAll(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch budgets"})
		return
	}

	c.JSON(http.StatusOK, toBudgetResponses(records))
}

// GetBudget returns a single record, only when owned by the caller.
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	record, err := h.Service.GetByID(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch budget"})
		return
	}

	c.JSON(http.StatusOK, toBudgetResponse(*record))
}

func collectRawAmounts(c *gin.Context) (map[string]string, error) {
	raw := make(map[string]string)

	if c.ContentType() == "application/json" {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, err
		}
		for key, value := range body {
			switch v := value.(type) {
			case string:
				raw[key] = v
			case float64:
				raw[key] = strconv.FormatFloat(v, 'f', -1, 64)
			case nil:
				// treated as absent
			default:
				raw[key] = "unsupported value"
			}
		}
		return raw, nil
	}

	for _, category := range models.EssentialCategories {
		if value, ok := c.GetPostForm(category); ok {
			raw[category] = value
		}
	}
	for _, category := range models.DiscretionaryCategories {
		if value, ok := c.GetPostForm(category); ok {
			raw[category] = value
		}
	}
	return raw, nil
}

func toBudgetResponse(record models.BudgetRecord) models.BudgetResponse {
	essentialPct, discretionaryPct := services.Percentages(models.BudgetTotals{
		Essential:     record.TotalEssential,
		Discretionary: record.TotalDiscretionary,
		Grand:         record.TotalExpenses,
	})
	return models.BudgetResponse{
		BudgetRecord:            record,
		EssentialPercentage:     essentialPct,
		DiscretionaryPercentage: discretionaryPct,
	}
}

func toBudgetResponses(records []models.BudgetRecord) []models.BudgetResponse {
	responses := make([]models.BudgetResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, toBudgetResponse(record))
	}
	return responses
}

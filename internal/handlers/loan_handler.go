package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lendbook/lendbook-api/internal/middleware"
	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/lendbook/lendbook-api/internal/repository"
	"github.com/lendbook/lendbook-api/internal/services"
	"github.com/shopspring/decimal"
)

type LoanHandler struct {
	loanService *services.LoanService
}

func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

type CreateLoanRequest struct {
	ClientID  uint            `json:"client_id"`
	Principal decimal.Decimal `json:"principal"`
	LoanDate  string          `json:"loan_date"`
	DueDate   string          `json:"due_date"`
}

// @Summary Create Loan
// @Description Issue a loan to a client
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body CreateLoanRequest true "Loan Data"
// @Success 201 {object} models.LoanResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /loans [post]
func (h *LoanHandler) Create(c *gin.Context) {
	var req CreateLoanRequest
	if err := BindNestedOrFlat(c, "loan", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ClientID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id is required"})
		return
	}

	loanDate, err := time.Parse("2006-01-02", req.LoanDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid loan_date, expected YYYY-MM-DD"})
		return
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due_date, expected YYYY-MM-DD"})
		return
	}

	ownerID := middleware.GetUserID(c)
	loan, err := h.loanService.CreateLoan(c.Request.Context(), ownerID, services.CreateLoanInput{
		ClientID:  req.ClientID,
		Principal: req.Principal,
		LoanDate:  loanDate,
		DueDate:   dueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.loanService.BuildResponse(c.Request.Context(), ownerID, loan)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"loan": resp, "message": "Loan created successfully"})
}

// @Summary List Loans
// @Description Get a paginated list of loans
// @Tags Loans
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search query string false "Search by client name"
// @Param status query string false "Filter by status"
// @Param client_id query int false "Filter by client"
// @Param group_id query int false "Filter by group"
// @Param due_before query string false "Due on or before (YYYY-MM-DD)"
// @Param due_after query string false "Due on or after (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /loans [get]
func (h *LoanHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search")
	query.Filters["status"] = c.Query("status")
	query.Filters["client_id"] = c.Query("client_id")
	query.Filters["group_id"] = c.Query("group_id")
	query.Filters["due_before"] = c.Query("due_before")
	query.Filters["due_after"] = c.Query("due_after")

	// Parse sort parameter (format: field-direction)
	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	ownerID := middleware.GetUserID(c)
	loans, total, err := h.loanService.List(c.Request.Context(), ownerID, query)
	if err != nil {
		respondError(c, err)
		return
	}

	responses, err := h.loanService.BuildResponses(c.Request.Context(), ownerID, loans)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"loans": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Loan
// @Description Get a loan by ID
// @Tags Loans
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} models.LoanResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id} [get]
func (h *LoanHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	ownerID := middleware.GetUserID(c)

	loan, err := h.loanService.GetLoan(c.Request.Context(), ownerID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.loanService.BuildResponse(c.Request.Context(), ownerID, loan)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan": resp})
}

// @Summary Loan Summary
// @Description Get a loan's live balances after accruing any missed interest
// @Tags Loans
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} models.LoanSummary
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id}/summary [get]
func (h *LoanHandler) Summary(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	summary, err := h.loanService.GetLoanSummary(c.Request.Context(), middleware.GetUserID(c), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Loan Interest Entries
// @Description Get a loan's interest accrual history, oldest first
// @Tags Loans
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Param unpaid query string false "Only unpaid entries (1)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /loans/{loan_id}/interest_entries [get]
func (h *LoanHandler) InterestEntries(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	ownerID := middleware.GetUserID(c)

	var entries []models.InterestEntry
	var err error
	if c.Query("unpaid") == "1" {
		entries, err = h.loanService.ListUnpaidInterest(c.Request.Context(), ownerID, uint(id))
	} else {
		entries, err = h.loanService.ListInterestEntries(c.Request.Context(), ownerID, uint(id))
	}
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.InterestEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, entries[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"interest_entries": responses})
}

type EditLoanRequest struct {
	Principal decimal.Decimal `json:"principal"`
	LoanDate  string          `json:"loan_date"`
	DueDate   string          `json:"due_date"`
}

// @Summary Edit Loan
// @Description Reset a loan to new terms. Interest history is rebuilt from the new due date; payments stay as history.
// @Tags Loans
// @Accept json
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Param request body EditLoanRequest true "New Terms"
// @Success 200 {object} models.LoanResponse
// @Security BearerAuth
// @Router /loans/{loan_id} [put]
func (h *LoanHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)

	var req EditLoanRequest
	if err := BindNestedOrFlat(c, "loan", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loanDate, err := time.Parse("2006-01-02", req.LoanDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid loan_date, expected YYYY-MM-DD"})
		return
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due_date, expected YYYY-MM-DD"})
		return
	}

	ownerID := middleware.GetUserID(c)
	loan, err := h.loanService.EditLoan(c.Request.Context(), ownerID, uint(id), services.EditLoanInput{
		Principal: req.Principal,
		LoanDate:  loanDate,
		DueDate:   dueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.loanService.BuildResponse(c.Request.Context(), ownerID, loan)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan": resp, "message": "Loan updated successfully"})
}

// @Summary Delete Loan
// @Description Delete a loan along with its interest entries and payments
// @Tags Loans
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /loans/{loan_id} [delete]
func (h *LoanHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	if err := h.loanService.DeleteLoan(c.Request.Context(), middleware.GetUserID(c), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Loan deleted successfully"})
}

// @Summary Refresh Loan
// @Description Accrue missed interest for a loan and recompute its status
// @Tags Loans
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} models.LoanResponse
// @Security BearerAuth
// @Router /loans/{loan_id}/refresh [post]
func (h *LoanHandler) Refresh(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("loan_id"), 10, 32)
	ownerID := middleware.GetUserID(c)

	loan, err := h.loanService.RefreshLoan(c.Request.Context(), ownerID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.loanService.BuildResponse(c.Request.Context(), ownerID, loan)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan": resp, "message": "Loan refreshed"})
}

// @Summary Refresh All Loans
// @Description Accrue missed interest across the user's open loans
// @Tags Loans
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /loans/refresh [post]
func (h *LoanHandler) RefreshAll(c *gin.Context) {
	refreshed, err := h.loanService.RefreshOwnedLoans(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refreshed": refreshed, "message": "Loans refreshed"})
}

// @Summary Dashboard Stats
// @Description Aggregate figures for the dashboard
// @Tags Loans
// @Produce json
// @Success 200 {object} services.DashboardStats
// @Security BearerAuth
// @Router /dashboard [get]
func (h *LoanHandler) Dashboard(c *gin.Context) {
	stats, err := h.loanService.GetDashboardStats(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

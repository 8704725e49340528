package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lendbook/lendbook-api/internal/jobs"
	"github.com/lendbook/lendbook-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health  *HealthHandler
	Auth    *AuthHandler
	User    *UserHandler
	Group   *GroupHandler
	Client  *ClientHandler
	Loan    *LoanHandler
	Payment *PaymentHandler
	Report  *ReportHandler
	Audit   *AuditHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, worker *jobs.Worker) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(worker),
		Auth:    NewAuthHandler(svcs.Auth),
		User:    NewUserHandler(svcs.User),
		Group:   NewGroupHandler(svcs.Group),
		Client:  NewClientHandler(svcs.Client),
		Loan:    NewLoanHandler(svcs.Loan),
		Payment: NewPaymentHandler(svcs.Payment),
		Report:  NewReportHandler(svcs.Report, svcs.Export),
		Audit:   NewAuditHandler(svcs.Audit),
	}
}

// respondError maps service errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidPassword), errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lendbook/lendbook-api/internal/middleware"
	"github.com/lendbook/lendbook-api/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
	exportService *services.ExportService
}

func NewReportHandler(reportService *services.ReportService, exportService *services.ExportService) *ReportHandler {
	return &ReportHandler{reportService: reportService, exportService: exportService}
}

// @Summary Client Statement PDF
// @Description Generate a PDF statement for a client covering all their loans
// @Tags Reports
// @Produce application/pdf
// @Param client_id path int true "Client ID"
// @Success 200 {file} file "statement"
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /reports/clients/{client_id}/statement [get]
func (h *ReportHandler) ClientStatement(c *gin.Context) {
	clientID, _ := strconv.ParseUint(c.Param("client_id"), 10, 32)

	buf, err := h.reportService.GenerateClientStatementPDF(c.Request.Context(), middleware.GetUserID(c), uint(clientID))
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("statement_%d_%s.pdf", clientID, time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// @Summary Loan Book PDF
// @Description Generate a PDF of the user's full loan book
// @Tags Reports
// @Produce application/pdf
// @Success 200 {file} file "loan book"
// @Security BearerAuth
// @Router /reports/loan_book [get]
func (h *ReportHandler) LoanBook(c *gin.Context) {
	buf, err := h.reportService.GenerateLoanBookPDF(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("loan_book_%s.pdf", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// @Summary Monthly Overview
// @Description Issuance and collection figures for one month plus the current status split
// @Tags Reports
// @Produce json
// @Param year query int true "Year (YYYY)"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} services.MonthlyOverview
// @Security BearerAuth
// @Router /reports/monthly [get]
func (h *ReportHandler) MonthlyOverview(c *gin.Context) {
	now := time.Now()
	year, _ := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	month, _ := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))

	overview, err := h.reportService.GetMonthlyOverview(c.Request.Context(), middleware.GetUserID(c), year, month)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// @Summary Export Loans CSV
// @Description Export the user's loan book as CSV
// @Tags Reports
// @Produce text/csv
// @Success 200 {file} file "loans.csv"
// @Security BearerAuth
// @Router /reports/loans.csv [get]
func (h *ReportHandler) ExportLoansCSV(c *gin.Context) {
	data, filename, err := h.exportService.ExportLoansCSV(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}

// @Summary Export Loans XLSX
// @Description Export the user's loan book as an Excel workbook
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "loans.xlsx"
// @Security BearerAuth
// @Router /reports/loans.xlsx [get]
func (h *ReportHandler) ExportLoansXLSX(c *gin.Context) {
	data, filename, err := h.exportService.ExportLoansXLSX(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/jung-kurt/gofpdf"
	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/lendbook/lendbook-api/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportService builds the printable and aggregate views of the loan book.
type ReportService struct {
	repos   *repository.Repositories
	userSvc *UserService
	now     func() time.Time
}

func NewReportService(repos *repository.Repositories, userSvc *UserService) *ReportService {
	return &ReportService{
		repos:   repos,
		userSvc: userSvc,
		now:     time.Now,
	}
}

func money(d decimal.Decimal) string {
	return "R" + d.StringFixed(2)
}

// generatePDF renders an HTML template and converts it with wkhtmltopdf
func (s *ReportService) generatePDF(templateName string, data interface{}) (*bytes.Buffer, error) {
	tmplPath := fmt.Sprintf("internal/services/templates/reports/%s", templateName)
	if _, err := os.Stat(tmplPath); os.IsNotExist(err) {
		// Path relative to the package, for tests
		tmplPath = fmt.Sprintf("templates/reports/%s", templateName)
	}

	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(buf.Bytes()))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}

	return pdfg.Buffer(), nil
}

// GenerateClientStatementPDF builds a full statement for one client: every
// loan with its interest history, payments and live balances.
func (s *ReportService) GenerateClientStatementPDF(ctx context.Context, ownerID, clientID uint) (*bytes.Buffer, error) {
	client, err := s.repos.Client.FindByID(ctx, ownerID, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	businessName, err := s.userSvc.GetBusinessName(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	loans, err := s.repos.Loan.FindByClient(ctx, ownerID, clientID)
	if err != nil {
		return nil, err
	}

	type entryRow struct {
		DueDate         string
		Amount          string
		PrincipalAtTime string
		Paid            string
	}
	type paymentRow struct {
		Date        string
		Amount      string
		ToInterest  string
		ToPrincipal string
		Remaining   string
	}
	type loanBlock struct {
		ID             uint
		LoanDate       string
		DueDate        string
		Status         string
		Principal      string
		UnpaidInterest string
		TotalOwed      string
		Entries        []entryRow
		Payments       []paymentRow
	}

	totalOutstanding := decimal.Zero
	totalPaid := decimal.Zero
	blocks := make([]loanBlock, 0, len(loans))

	for _, loan := range loans {
		entries, err := s.repos.Interest.FindByLoan(ctx, ownerID, loan.ID)
		if err != nil {
			return nil, err
		}
		payments, err := s.repos.Payment.FindByLoan(ctx, ownerID, loan.ID)
		if err != nil {
			return nil, err
		}

		unpaid := decimal.Zero
		entryRows := make([]entryRow, 0, len(entries))
		for _, e := range entries {
			if !e.IsPaid {
				unpaid = unpaid.Add(e.InterestAmount)
			}
			settled := "no"
			if e.IsPaid {
				settled = "yes"
			}
			entryRows = append(entryRows, entryRow{
				DueDate:         e.DueDate.Format("2006-01-02"),
				Amount:          money(e.InterestAmount),
				PrincipalAtTime: money(e.PrincipalAtTime),
				Paid:            settled,
			})
		}

		paymentRows := make([]paymentRow, 0, len(payments))
		for _, p := range payments {
			totalPaid = totalPaid.Add(p.Amount)
			paymentRows = append(paymentRows, paymentRow{
				Date:        p.PaymentDate.Format("2006-01-02"),
				Amount:      money(p.Amount),
				ToInterest:  money(p.AppliedToInterest),
				ToPrincipal: money(p.AppliedToPrincipal),
				Remaining:   money(p.RemainingAmount),
			})
		}

		owed := TotalOwed(loan.CurrentPrincipal, unpaid)
		totalOutstanding = totalOutstanding.Add(owed)

		blocks = append(blocks, loanBlock{
			ID:             loan.ID,
			LoanDate:       loan.LoanDate.Format("2006-01-02"),
			DueDate:        loan.CurrentDueDate.Format("2006-01-02"),
			Status:         loan.Status,
			Principal:      money(loan.CurrentPrincipal),
			UnpaidInterest: money(unpaid),
			TotalOwed:      money(owed),
			Entries:        entryRows,
			Payments:       paymentRows,
		})
	}

	groupName := ""
	if client.Group.ID != 0 {
		groupName = client.Group.Name
	}

	data := map[string]interface{}{
		"BusinessName":     businessName,
		"ClientName":       client.Name,
		"GroupName":        groupName,
		"Date":             s.now().Format("2006-01-02"),
		"Loans":            blocks,
		"TotalOutstanding": money(totalOutstanding),
		"TotalPaid":        money(totalPaid),
	}

	return s.generatePDF("client_statement.html", data)
}

// GenerateLoanBookPDF builds a one-page-per-40-rows table of every loan
func (s *ReportService) GenerateLoanBookPDF(ctx context.Context, ownerID uint) (*bytes.Buffer, error) {
	businessName, err := s.userSvc.GetBusinessName(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	query := repository.NewListQuery()
	query.PerPage = 0
	loans, _, err := s.repos.Loan.List(ctx, ownerID, query)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(120, 10, businessName)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(120, 8, "Loan book as of "+s.now().Format("2006-01-02"))
	pdf.Ln(10)

	header := []string{"ID", "Client", "Group", "Loan date", "Due date", "Principal", "Unpaid interest", "Total owed", "Status"}
	widths := []float64{14, 48, 38, 26, 26, 30, 34, 30, 24}

	pdf.SetFont("Arial", "B", 9)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	outstanding := decimal.Zero
	for i := range loans {
		loan := &loans[i]

		unpaid, err := s.repos.Interest.SumUnpaidByLoan(ctx, ownerID, loan.ID)
		if err != nil {
			return nil, err
		}
		owed := TotalOwed(loan.CurrentPrincipal, unpaid)
		if !loan.IsPaid() {
			outstanding = outstanding.Add(owed)
		}

		groupName := ""
		clientName := ""
		if loan.Client.ID != 0 {
			clientName = loan.Client.Name
			if loan.Client.Group.ID != 0 {
				groupName = loan.Client.Group.Name
			}
		}

		row := []string{
			fmt.Sprintf("%d", loan.ID),
			clientName,
			groupName,
			loan.LoanDate.Format("2006-01-02"),
			loan.CurrentDueDate.Format("2006-01-02"),
			money(loan.CurrentPrincipal),
			money(unpaid),
			money(owed),
			loan.Status,
		}
		for j, cell := range row {
			pdf.CellFormat(widths[j], 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(80, 8, "Total outstanding: "+money(outstanding))

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// MonthlyOverview aggregates one calendar month of activity
type MonthlyOverview struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	LoansIssued  int             `json:"loans_issued"`
	PrincipalOut decimal.Decimal `json:"principal_issued"`
	Collected    decimal.Decimal `json:"collected"`
	OverdueLoans int             `json:"overdue_loans"`
	PaidLoans    int             `json:"paid_loans"`
	PartialLoans int             `json:"partial_loans"`
}

// GetMonthlyOverview computes the month's issuance and collections plus the
// current status split of the whole book.
func (s *ReportService) GetMonthlyOverview(ctx context.Context, ownerID uint, year, month int) (*MonthlyOverview, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month out of range", ErrInvalidArgument)
	}

	query := repository.NewListQuery()
	query.PerPage = 0
	loans, _, err := s.repos.Loan.List(ctx, ownerID, query)
	if err != nil {
		return nil, err
	}

	overview := &MonthlyOverview{
		Year:         year,
		Month:        month,
		PrincipalOut: decimal.Zero,
	}
	for i := range loans {
		if loans[i].LoanDate.Year() == year && int(loans[i].LoanDate.Month()) == month {
			overview.LoansIssued++
			overview.PrincipalOut = overview.PrincipalOut.Add(loans[i].OriginalPrincipal)
		}
		switch loans[i].Status {
		case models.LoanStatusOverdue:
			overview.OverdueLoans++
		case models.LoanStatusPaid:
			overview.PaidLoans++
		default:
			overview.PartialLoans++
		}
	}

	collected, err := s.repos.Payment.SumByMonth(ctx, ownerID, year, month)
	if err != nil {
		return nil, err
	}
	overview.Collected = collected.Round(2)
	overview.PrincipalOut = overview.PrincipalOut.Round(2)

	return overview, nil
}

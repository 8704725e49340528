package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/lendbook/lendbook-api/internal/models"
	"github.com/lendbook/lendbook-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService produces spreadsheet exports of the loan book.
type ExportService struct {
	repos *repository.Repositories
}

func NewExportService(repos *repository.Repositories) *ExportService {
	return &ExportService{repos: repos}
}

type loanExportRow struct {
	ID             uint
	Client         string
	Group          string
	LoanDate       string
	DueDate        string
	Principal      string
	UnpaidInterest string
	TotalOwed      string
	Status         string
}

func (s *ExportService) loanRows(ctx context.Context, ownerID uint) ([]loanExportRow, error) {
	query := repository.NewListQuery()
	query.PerPage = 0
	loans, _, err := s.repos.Loan.List(ctx, ownerID, query)
	if err != nil {
		return nil, err
	}

	rows := make([]loanExportRow, 0, len(loans))
	for i := range loans {
		loan := &loans[i]

		unpaid, err := s.repos.Interest.SumUnpaidByLoan(ctx, ownerID, loan.ID)
		if err != nil {
			return nil, err
		}

		clientName := ""
		groupName := ""
		if loan.Client.ID != 0 {
			clientName = loan.Client.Name
			if loan.Client.Group.ID != 0 {
				groupName = loan.Client.Group.Name
			}
		}

		rows = append(rows, loanExportRow{
			ID:             loan.ID,
			Client:         clientName,
			Group:          groupName,
			LoanDate:       loan.LoanDate.Format("2006-01-02"),
			DueDate:        loan.CurrentDueDate.Format("2006-01-02"),
			Principal:      loan.CurrentPrincipal.StringFixed(2),
			UnpaidInterest: unpaid.StringFixed(2),
			TotalOwed:      TotalOwed(loan.CurrentPrincipal, unpaid).StringFixed(2),
			Status:         loan.Status,
		})
	}
	return rows, nil
}

var loanExportHeader = []string{
	"Loan ID", "Client", "Group", "Loan Date", "Due Date",
	"Principal", "Unpaid Interest", "Total Owed", "Status",
}

// ExportLoansCSV writes the full loan book as CSV
func (s *ExportService) ExportLoansCSV(ctx context.Context, ownerID uint) ([]byte, string, error) {
	rows, err := s.loanRows(ctx, ownerID)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write(loanExportHeader)
	for _, r := range rows {
		_ = writer.Write([]string{
			fmt.Sprintf("%d", r.ID), r.Client, r.Group, r.LoanDate, r.DueDate,
			r.Principal, r.UnpaidInterest, r.TotalOwed, r.Status,
		})
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("loans_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportLoansXLSX writes the full loan book as a spreadsheet
func (s *ExportService) ExportLoansXLSX(ctx context.Context, ownerID uint) ([]byte, string, error) {
	rows, err := s.loanRows(ctx, ownerID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Loans"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, h := range loanExportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	overdueStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#B91C1C"},
	})

	for i, r := range rows {
		rowNum := i + 2
		values := []interface{}{
			r.ID, r.Client, r.Group, r.LoanDate, r.DueDate,
			r.Principal, r.UnpaidInterest, r.TotalOwed, r.Status,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, rowNum)
			_ = f.SetCellValue(sheet, cell, v)
		}
		if r.Status == models.LoanStatusOverdue {
			start, _ := excelize.CoordinatesToCellName(1, rowNum)
			end, _ := excelize.CoordinatesToCellName(len(values), rowNum)
			_ = f.SetCellStyle(sheet, start, end, overdueStyle)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("loans_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

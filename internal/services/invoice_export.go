package services

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/AnshRaj112/serenify-care/internal/models"
)

const InvoiceSheet = "Invoices"

var invoiceHeaders = []string{"Invoice ID", "Issued", "Description", "Amount", "Paid", "Paid At"}

// WriteInvoicesXLSX writes the invoices as a single-sheet workbook with a total row.
func WriteInvoicesXLSX(w io.Writer, invoices []models.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", InvoiceSheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}

	for i, h := range invoiceHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(InvoiceSheet, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(InvoiceSheet, "A1", "F1", bold); err != nil {
		return err
	}

	var total, outstanding float64
	for i, inv := range invoices {
		row := i + 2
		paidAt := ""
		if inv.PaidAt != nil {
			paidAt = inv.PaidAt.UTC().Format("2006-01-02 15:04")
		}
		values := []interface{}{
			inv.ID.String(),
			inv.IssuedAt.UTC().Format("2006-01-02"),
			inv.Description,
			inv.Amount,
			yesNo(inv.IsPaid),
			paidAt,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(InvoiceSheet, cell, v); err != nil {
				return err
			}
		}
		total += inv.Amount
		if !inv.IsPaid {
			outstanding += inv.Amount
		}
	}

	last := len(invoices) + 1
	if len(invoices) > 0 {
		if err := f.SetCellStyle(InvoiceSheet, "D2", fmt.Sprintf("D%d", last), money); err != nil {
			return err
		}
	}

	summary := [][2]interface{}{{"Total", total}, {"Outstanding", outstanding}}
	for i, kv := range summary {
		row := last + 2 + i
		if err := f.SetCellValue(InvoiceSheet, fmt.Sprintf("C%d", row), kv[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(InvoiceSheet, fmt.Sprintf("D%d", row), kv[1]); err != nil {
			return err
		}
		if err := f.SetCellStyle(InvoiceSheet, fmt.Sprintf("C%d", row), fmt.Sprintf("D%d", row), bold); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(InvoiceSheet, "A", "A", 38); err != nil {
		return err
	}
	if err := f.SetColWidth(InvoiceSheet, "B", "F", 16); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

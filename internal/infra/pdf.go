package infra

// pdf.go — invoice PDF generation using go-pdf/fpdf.
// Renders an A4 invoice with:
//   - Invoice reference and dates header
//   - Bill-to block (client name, address, email)
//   - Line item table (item, quantity, unit price, amount)
//   - Totals block (total, paid, balance due)
//
// The output file is written to storagePath/{reference}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/YousofDev/Invoice-Tracker/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateInvoicePDF renders an invoice (with its lines and client preloaded)
// to a PDF file under storagePath, creating the directory if needed.
// Returns the path to the generated file.
func GenerateInvoicePDF(inv *model.Invoice, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	filePath := filepath.Join(storagePath, inv.Reference+".pdf")

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 36

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(contentW/2, 10, "INVOICE", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW/2, 10, inv.Reference, "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW/2, 5, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, "Issued: "+inv.IssuingDate.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW/2, 5, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, "Due: "+inv.DueDate.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	// ── Bill to ──────────────────────────────────────────────────────────────
	if inv.Client != nil {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 5, "Bill to", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		name := inv.Client.FirstName
		if inv.Client.LastName != nil {
			name += " " + *inv.Client.LastName
		}
		pdf.CellFormat(contentW, 5, name, "", 1, "L", false, 0, "")
		if inv.Client.Address != nil {
			pdf.CellFormat(contentW, 5, *inv.Client.Address, "", 1, "L", false, 0, "")
		}
		if inv.Client.Email != nil {
			pdf.CellFormat(contentW, 5, *inv.Client.Email, "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(6)

	// ── Line item table ──────────────────────────────────────────────────────
	col1 := contentW * 0.46 // item
	col2 := contentW * 0.14 // qty
	col3 := contentW * 0.20 // unit price
	col4 := contentW * 0.20 // amount

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 7, "Unit Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range inv.Lines {
		name := ""
		if line.Item != nil {
			name = line.Item.Name
		}
		if len(name) > 48 {
			name = name[:47] + "…"
		}
		pdf.CellFormat(col1, 6, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, fmt.Sprintf("%d", line.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, line.Price.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, line.ItemAmount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	pdf.Line(18, pdf.GetY(), pageW-18, pdf.GetY())
	pdf.Ln(3)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col1+col2+col3, 6, "Total ("+inv.Currency+"):", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, inv.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(col1+col2+col3, 5, "Paid:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 5, inv.PaidAmount.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(col1+col2+col3, 5, "Balance due:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 5, inv.RemainingAmount().StringFixed(2), "", 1, "R", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	if inv.Description != nil && *inv.Description != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentW, 5, *inv.Description, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}

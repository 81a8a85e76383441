package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/clm-workflow/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders a contract summary with its approval history.
func (g *Generator) Generate(doc model.ContractDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Contract Summary", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s - %s", doc.Contract.Reference, doc.Contract.Title), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Status: %s", doc.Contract.Status), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Parties", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Organization: %s", doc.Organization.Name), "", 1, "L", false, 0, "")
	counterparty := doc.Contract.CounterpartyName
	if counterparty == "" {
		counterparty = "-"
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Counterparty: %s", counterparty), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Terms", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s - %s", formatOptionalDate(doc.Contract.StartDate), formatOptionalDate(doc.Contract.EndDate)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Amount: %.2f", doc.Contract.Amount), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Approval history", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	headers := []string{"Type", "Status", "Due", "Created", "Resolved", "Comment"}
	colWidths := []float64{22, 28, 24, 24, 24, 58}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)

	if len(doc.Approvals) == 0 {
		pdf.CellFormat(0, 6, "No approvals recorded.", "", 1, "L", false, 0, "")
	}
	for _, approval := range doc.Approvals {
		row := []string{
			string(approval.Type),
			string(approval.Status),
			formatOptionalDate(approval.DueDate),
			formatDate(approval.CreatedAt),
			formatOptionalDate(approval.ResolvedAt),
			derefString(approval.Comment),
		}
		drawTableRow(pdf, g.fontName, row, colWidths, false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cells []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 9)
	for i, cell := range cells {
		pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006")
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

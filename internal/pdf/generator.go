package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/askhat/gigledger/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() (*Generator, error) {
	return &Generator{fontName: "Helvetica"}, nil
}

func (g *Generator) Generate(report model.EarningsReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Earnings report", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s - %s", formatDate(report.PeriodStart), formatDate(report.PeriodEnd)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total paid: %s", report.TotalPaid.StringFixed(2)), "", 1, "L", false, 0, "")
	profession := report.BestProfession
	if profession == "" {
		profession = "-"
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Best profession: %s", profession), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Top clients", "", 1, "L", false, 0, "")

	headers := []string{"Client", "Client ID", "Paid"}
	colWidths := []float64{60, 85, 35}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)
	for _, client := range report.Clients {
		row := []string{
			client.FullName,
			client.ID.String(),
			client.Paid.StringFixed(2),
		}
		drawTableRow(pdf, g.fontName, row, colWidths, false)
	}
	if len(report.Clients) == 0 {
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 8, "No paid jobs in the selected period.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i == len(cols)-1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

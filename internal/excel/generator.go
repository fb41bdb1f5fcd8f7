package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/askhat/gigledger/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.EarningsReport) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Earnings"
	file.SetSheetName("Sheet1", sheet)
	if err := g.writeSummary(file, sheet, report); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.EarningsReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Period start")
	set("B1", formatDate(report.PeriodStart))
	set("A2", "Period end")
	set("B2", formatDate(report.PeriodEnd))
	set("A3", "Total paid")
	set("B3", report.TotalPaid.StringFixed(2))
	set("A4", "Best profession")
	set("B4", report.BestProfession)

	tableRow := 6
	set(fmt.Sprintf("A%d", tableRow), "Client")
	set(fmt.Sprintf("B%d", tableRow), "Client ID")
	set(fmt.Sprintf("C%d", tableRow), "Paid")

	for i, client := range report.Clients {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), client.FullName)
		set(fmt.Sprintf("B%d", row), client.ID.String())
		set(fmt.Sprintf("C%d", row), client.Paid.StringFixed(2))
	}

	_ = file.SetColWidth(sheet, "A", "A", 36)
	_ = file.SetColWidth(sheet, "B", "B", 40)
	_ = file.SetColWidth(sheet, "C", "C", 16)
	return nil
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

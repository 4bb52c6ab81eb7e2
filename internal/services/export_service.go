package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/prestia/prestia-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

type ExportService struct {
	analyticsSvc *AnalyticsService
}

func NewExportService(analyticsSvc *AnalyticsService) *ExportService {
	return &ExportService{analyticsSvc: analyticsSvc}
}

func (s *ExportService) ExportCSV(ctx context.Context, overview *repository.PortfolioOverview, dist []repository.StatusCount) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Reporte de Cartera", time.Now().Format("2006-01-02 15:04")})
	_ = writer.Write([]string{""})

	_ = writer.Write([]string{"Resumen General"})
	_ = writer.Write([]string{"Métrica", "Valor"})
	_ = writer.Write([]string{"Clientes Totales", fmt.Sprintf("%d", overview.TotalCustomers)})
	_ = writer.Write([]string{"Clientes Activos", fmt.Sprintf("%d", overview.ActiveCustomers)})
	_ = writer.Write([]string{"Préstamos Totales", fmt.Sprintf("%d", overview.TotalLoans)})
	_ = writer.Write([]string{"Préstamos Activos", fmt.Sprintf("%d", overview.ActiveLoans)})
	_ = writer.Write([]string{"Préstamos Vencidos", fmt.Sprintf("%d", overview.OverdueLoans)})
	_ = writer.Write([]string{"Total Desembolsado", fmt.Sprintf("%.2f", overview.TotalDisbursed)})
	_ = writer.Write([]string{"Capital Pendiente", fmt.Sprintf("%.2f", overview.OutstandingPrincipal)})
	_ = writer.Write([]string{"Intereses Ganados", fmt.Sprintf("%.2f", overview.TotalInterestEarned)})
	_ = writer.Write([]string{"Total Recuperado", fmt.Sprintf("%.2f", overview.TotalRepaid)})
	_ = writer.Write([]string{""})

	_ = writer.Write([]string{"Distribución por Estado"})
	_ = writer.Write([]string{"Estado", "Cantidad"})
	for _, sc := range dist {
		_ = writer.Write([]string{sc.Status, fmt.Sprintf("%d", sc.Count)})
	}

	writer.Flush()

	filename := fmt.Sprintf("portfolio_report_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func (s *ExportService) ExportXLSX(ctx context.Context, overview *repository.PortfolioOverview, dist []repository.StatusCount) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Cartera"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", "Reporte de Cartera")
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	_ = f.SetCellValue(sheet, "A3", "Resumen General")
	_ = f.SetCellValue(sheet, "A4", "Métrica")
	_ = f.SetCellValue(sheet, "B4", "Valor")

	rows := [][2]interface{}{
		{"Clientes Totales", overview.TotalCustomers},
		{"Clientes Activos", overview.ActiveCustomers},
		{"Préstamos Totales", overview.TotalLoans},
		{"Préstamos Activos", overview.ActiveLoans},
		{"Préstamos Vencidos", overview.OverdueLoans},
		{"Total Desembolsado", overview.TotalDisbursed},
		{"Capital Pendiente", overview.OutstandingPrincipal},
		{"Intereses Ganados", overview.TotalInterestEarned},
		{"Total Recuperado", overview.TotalRepaid},
	}
	for i, row := range rows {
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", 5+i), row[0])
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", 5+i), row[1])
	}

	distStart := 5 + len(rows) + 1
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", distStart), "Distribución por Estado")
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", distStart+1), "Estado")
	_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", distStart+1), "Cantidad")
	for i, sc := range dist {
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", distStart+2+i), sc.Status)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", distStart+2+i), sc.Count)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("portfolio_report_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func (s *ExportService) ExportPDF(ctx context.Context, overview *repository.PortfolioOverview, dist []repository.StatusCount) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Reporte de Cartera")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Resumen General")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	writeRow := func(label, value string) {
		pdf.Cell(60, 10, label)
		pdf.Cell(40, 10, value)
		pdf.Ln(6)
	}

	writeRow("Clientes Totales:", fmt.Sprintf("%d", overview.TotalCustomers))
	writeRow("Clientes Activos:", fmt.Sprintf("%d", overview.ActiveCustomers))
	writeRow("Prestamos Totales:", fmt.Sprintf("%d", overview.TotalLoans))
	writeRow("Prestamos Activos:", fmt.Sprintf("%d", overview.ActiveLoans))
	writeRow("Prestamos Vencidos:", fmt.Sprintf("%d", overview.OverdueLoans))
	writeRow("Total Desembolsado:", fmt.Sprintf("%.2f HNL", overview.TotalDisbursed))
	writeRow("Capital Pendiente:", fmt.Sprintf("%.2f HNL", overview.OutstandingPrincipal))
	writeRow("Intereses Ganados:", fmt.Sprintf("%.2f HNL", overview.TotalInterestEarned))
	writeRow("Total Recuperado:", fmt.Sprintf("%.2f HNL", overview.TotalRepaid))
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Distribucion por Estado")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	for _, sc := range dist {
		writeRow(sc.Status+":", fmt.Sprintf("%d", sc.Count))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("portfolio_report_%s.pdf", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

package invoice

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"chargedash/internal/models"
)

// PDFGenerator produces archival invoice PDFs for completed sessions. Labels
// are Latin because the core PDF fonts carry no CJK glyphs.
type PDFGenerator struct {
	dir string
}

// NewPDFGenerator returns a generator writing under dir.
func NewPDFGenerator(dir string) *PDFGenerator {
	return &PDFGenerator{dir: dir}
}

// Generate writes the invoice PDF for rec and returns its path.
func (g *PDFGenerator) Generate(rec models.ChargingRecord, now time.Time) (string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("invoice: output dir: %w", err)
	}
	path := filepath.Join(g.dir, fmt.Sprintf("invoice_%s.pdf", rec.RecordNumber))
	pdf := buildPDF(rec, now)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("invoice: write pdf: %w", err)
	}
	return path, nil
}

// Write streams the invoice PDF for rec to w.
func (g *PDFGenerator) Write(rec models.ChargingRecord, now time.Time, w io.Writer) error {
	pdf := buildPDF(rec, now)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("invoice: write pdf: %w", err)
	}
	return nil
}

func buildPDF(rec models.ChargingRecord, now time.Time) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 123, 255)
	pdf.Cell(0, 10, "Charging Invoice")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.Cell(0, 6, "#"+rec.RecordNumber)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Date: "+models.FormatDate(rec.StartTime))
	pdf.Ln(12)

	// Deep link back to the dashboard record view.
	if png, err := qrcode.Encode(fmt.Sprintf("/user/records?record_id=%d", rec.ID), qrcode.Medium, 256); err == nil {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("deeplink-qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("deeplink-qr", 162, 15, 32, 32, false, opts, 0, "")
	}

	sectionTitle(pdf, "Charging")
	itemRow(pdf, "Start time", models.FormatDateTime(rec.StartTime))
	itemRow(pdf, "End time", models.FormatDateTime(rec.EndTime))
	itemRow(pdf, "Duration", fmt.Sprintf("%.2f h", rec.ChargingDuration))
	itemRow(pdf, "Energy", fmt.Sprintf("%.2f kWh", rec.ChargingAmount))
	pdf.Ln(6)

	sectionTitle(pdf, "Fees")
	itemRow(pdf, "Tariff period", string(rec.TimePeriod))
	itemRow(pdf, "Unit price", fmt.Sprintf("%.2f CNY/kWh", rec.UnitPrice))
	itemRow(pdf, "Electricity fee", fmt.Sprintf("%.2f CNY", rec.ElectricityFee))
	itemRow(pdf, "Service fee", fmt.Sprintf("%.2f CNY", rec.ServiceFee))

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.Cell(50, 7, "Total")
	pdf.Cell(0, 7, fmt.Sprintf("%.2f CNY", rec.TotalFee))
	pdf.Ln(16)

	pdf.SetFont("Arial", "I", 9)
	pdf.SetTextColor(150, 150, 150)
	pdf.Cell(0, 5, "Generated at "+now.Format("2006-01-02 15:04:05"))
	pdf.Ln(5)
	pdf.Cell(0, 5, "This document serves as a charging fee voucher only.")

	return pdf
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 13)
	pdf.SetTextColor(0, 0, 0)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
}

func itemRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.Cell(50, 6, label)
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.Cell(0, 6, value)
	pdf.Ln(6)
}

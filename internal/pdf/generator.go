// Package pdf renders a refined daily inspection report as a printable
// PDF with a verification QR code in the footer.
package pdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/fieldvoice/fieldvoicego/internal/models"
	"github.com/fieldvoice/fieldvoicego/internal/refine"
)

const (
	pageWidth  = 210.0
	marginLeft = 15.0
	marginTop  = 15.0
	contentW   = pageWidth - 2*marginLeft
)

// Generator renders report PDFs. baseURL is embedded in the footer QR
// so a printed copy links back to the live report.
type Generator struct {
	baseURL string
}

// NewGenerator creates a report PDF generator.
func NewGenerator(baseURL string) *Generator {
	return &Generator{baseURL: strings.TrimRight(baseURL, "/")}
}

// Generate renders the report. The report must be refined; a report
// without generated content cannot be printed.
func (g *Generator) Generate(report *models.Report, project *models.Project, inspectorName string) ([]byte, error) {
	if len(report.AIGenerated) == 0 {
		return nil, fmt.Errorf("report %s has no generated content", report.ID)
	}

	var generated refine.Generated
	if err := json.Unmarshal(report.AIGenerated, &generated); err != nil {
		return nil, fmt.Errorf("failed to parse generated content: %w", err)
	}

	var draft models.Draft
	if len(report.RawCapture) > 0 {
		// Raw capture enriches the weather block; a decode failure only
		// costs us that section.
		_ = json.Unmarshal(report.RawCapture, &draft)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginLeft)
	pdf.SetAutoPageBreak(true, 25)
	pdf.AddPage()

	g.writeHeader(pdf, report, project, inspectorName)
	g.writeWeather(pdf, &draft)
	g.writeSection(pdf, "Executive Summary", generated.ExecutiveSummary)
	g.writeSection(pdf, "Work Performed", generated.WorkPerformed)
	g.writeActivities(pdf, generated.Activities)
	g.writeOperations(pdf, generated.Operations)
	g.writeEquipment(pdf, generated.Equipment)
	g.writeSection(pdf, "Delays / Issues", generated.DelaysIssues)
	g.writeList(pdf, "General Issues", generated.GeneralIssues)
	g.writeList(pdf, "QA/QC Notes", generated.QaqcNotes)
	g.writeSafety(pdf, generated.Safety)
	g.writePhotoLog(pdf, draft.Photos)

	if err := g.writeFooterQR(pdf, report.ID); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeHeader(pdf *gofpdf.Fpdf, report *models.Report, project *models.Project, inspectorName string) {
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(contentW, 8, "Daily Inspection Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	projectName := report.ProjectID
	projectNumber := ""
	location := ""
	if project != nil {
		projectName = project.Name
		projectNumber = project.ProjectNumber
		location = project.Location
	}

	pdf.Ln(2)
	g.headerLine(pdf, "Project", projectName)
	if projectNumber != "" {
		g.headerLine(pdf, "Project No.", projectNumber)
	}
	if location != "" {
		g.headerLine(pdf, "Location", location)
	}
	g.headerLine(pdf, "Report Date", report.ReportDate)
	if inspectorName != "" {
		g.headerLine(pdf, "Inspector", inspectorName)
	}
	g.headerLine(pdf, "Status", string(report.Status))

	pdf.Ln(2)
	pdf.SetDrawColor(120, 120, 120)
	x, y := pdf.GetXY()
	pdf.Line(x, y, x+contentW, y)
	pdf.Ln(3)
}

func (g *Generator) headerLine(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(32, 5.5, label+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(contentW-32, 5.5, value, "", "L", false)
}

func (g *Generator) writeWeather(pdf *gofpdf.Fpdf, draft *models.Draft) {
	w := draft.Weather
	var parts []string
	if w.HighTemp != nil && w.LowTemp != nil {
		parts = append(parts, fmt.Sprintf("High %.0f / Low %.0f", *w.HighTemp, *w.LowTemp))
	}
	if w.GeneralCondition != "" {
		parts = append(parts, w.GeneralCondition)
	}
	if w.Precipitation != "" {
		parts = append(parts, "Precipitation: "+w.Precipitation)
	}
	if w.JobSiteCondition != "" {
		parts = append(parts, "Site: "+w.JobSiteCondition)
	}
	if w.AdverseConditions != "" {
		parts = append(parts, "Adverse: "+w.AdverseConditions)
	}
	if len(parts) == 0 {
		return
	}
	g.writeSection(pdf, "Weather", strings.Join(parts, "  |  "))
}

func (g *Generator) writeSection(pdf *gofpdf.Fpdf, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(contentW, 7, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(contentW, 5, body, "", "L", false)
	pdf.Ln(3)
}

func (g *Generator) writeList(pdf *gofpdf.Fpdf, title string, items []string) {
	if len(items) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(contentW, 7, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, item := range items {
		pdf.MultiCell(contentW, 5, "- "+item, "", "L", false)
	}
	pdf.Ln(3)
}

func (g *Generator) writeActivities(pdf *gofpdf.Fpdf, activities []refine.GeneratedActivity) {
	if len(activities) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(contentW, 7, "Contractor Activities", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, a := range activities {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(contentW, 5, a.Contractor, "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(contentW, 5, a.Description, "", "L", false)
		pdf.Ln(1)
	}
	pdf.Ln(2)
}

func (g *Generator) writeOperations(pdf *gofpdf.Fpdf, ops []refine.GeneratedOperation) {
	if len(ops) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(contentW, 7, "Personnel & Operations", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, op := range ops {
		line := op.Contractor
		if op.Personnel != "" {
			line += " (" + op.Personnel + ")"
		}
		if op.Description != "" {
			line += ": " + op.Description
		}
		pdf.MultiCell(contentW, 5, line, "", "L", false)
	}
	pdf.Ln(3)
}

func (g *Generator) writeEquipment(pdf *gofpdf.Fpdf, equipment []refine.GeneratedEquipment) {
	if len(equipment) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(contentW, 7, "Equipment", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, e := range equipment {
		line := e.Name
		if e.Usage != "" {
			line += ": " + e.Usage
		}
		pdf.MultiCell(contentW, 5, line, "", "L", false)
	}
	pdf.Ln(3)
}

func (g *Generator) writeSafety(pdf *gofpdf.Fpdf, safety refine.SafetySummary) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(contentW, 7, "Safety", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	if safety.HasIncidents {
		pdf.SetTextColor(180, 0, 0)
		pdf.CellFormat(contentW, 5, "INCIDENTS REPORTED", "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	} else {
		pdf.CellFormat(contentW, 5, "No incidents reported.", "", 1, "L", false, 0, "")
	}
	if strings.TrimSpace(safety.Notes) != "" {
		pdf.MultiCell(contentW, 5, safety.Notes, "", "L", false)
	}
	pdf.Ln(3)
}

func (g *Generator) writePhotoLog(pdf *gofpdf.Fpdf, photos []models.PhotoMeta) {
	if len(photos) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(contentW, 7, "Photo Log", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for i, photo := range photos {
		caption := photo.Caption
		if caption == "" {
			caption = "(no caption)"
		}
		stamp := photo.Date
		if photo.Time != "" {
			stamp += " " + photo.Time
		}
		pdf.MultiCell(contentW, 5, fmt.Sprintf("%d. %s  [%s]", i+1, caption, stamp), "", "L", false)
	}
	pdf.Ln(3)
}

// writeFooterQR stamps a verification QR linking back to the report on
// the bottom of the last page.
func (g *Generator) writeFooterQR(pdf *gofpdf.Fpdf, reportID string) error {
	url := fmt.Sprintf("%s/api/reports/%s", g.baseURL, reportID)

	qrPng, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to encode QR: %w", err)
	}

	imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("footer_qr", imgOptions, bytes.NewReader(qrPng))

	_, pageHeight := pdf.GetPageSize()
	qrSize := 18.0
	pdf.ImageOptions("footer_qr", marginLeft, pageHeight-qrSize-8, qrSize, qrSize, false, imgOptions, 0, "")

	pdf.SetFont("Arial", "", 7)
	pdf.SetXY(marginLeft+qrSize+3, pageHeight-14)
	pdf.CellFormat(contentW-qrSize-3, 4, "Scan to view the live report", "", 1, "L", false, 0, "")
	pdf.SetX(marginLeft + qrSize + 3)
	pdf.CellFormat(contentW-qrSize-3, 4, url, "", 0, "L", false, 0, "")

	return nil
}

package export

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/jung-kurt/gofpdf"

	"depuente/internal/domain/absence"
)

// SummaryPDF renders one year's stats as a single-page report: totals, the
// per-type breakdown, and the per-person table (already sorted by business
// days descending).
func SummaryPDF(year int, stats absence.YearlyStats) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Resumen de ausencias %d", year))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total ausencias: %d", stats.TotalAbsences))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total dias laborables: %d", stats.TotalBusinessDays))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Por tipo")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, code := range absence.KnownTypes() {
		count, ok := stats.ByType[code]
		if !ok {
			continue
		}
		pdf.Cell(0, 7, fmt.Sprintf("%s: %d", absence.InfoForType(code).Label, count))
		pdf.Ln(6)
	}
	for _, code := range unknownTypes(stats.ByType) {
		pdf.Cell(0, 7, fmt.Sprintf("%s: %d", code, stats.ByType[code]))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Por persona")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(90, 7, "Persona", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Ausencias", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Dias laborables", "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, person := range stats.ByPerson {
		pdf.CellFormat(90, 7, person.PersonName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%d", person.Count), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%d", person.BusinessDays), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unknownTypes returns the codes absent from KnownTypes, sorted so the PDF
// renders them in a stable order.
func unknownTypes(byType map[string]int) []string {
	var codes []string
	for code := range byType {
		if known(code) {
			continue
		}
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func known(code string) bool {
	for _, candidate := range absence.KnownTypes() {
		if candidate == code {
			return true
		}
	}
	return false
}

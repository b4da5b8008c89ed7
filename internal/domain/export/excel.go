package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"depuente/internal/domain/absence"
)

const absencesSheet = "Ausencias"

// AbsencesWorkbook renders a deduplicated absence list to an .xlsx file,
// one row per absence plus a totals block, matching the spreadsheet the
// export button has always produced.
func AbsencesWorkbook(records []absence.Record) ([]byte, error) {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	index, err := file.NewSheet(absencesSheet)
	if err != nil {
		return nil, err
	}
	file.SetActiveSheet(index)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []string{"Usuario", "Email", "Equipo", "Tipo", "Fecha inicio", "Fecha fin", "Días laborables", "Nota"}
	widths := []float64{25, 30, 20, 15, 15, 15, 18, 40}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(absencesSheet, cell, header); err != nil {
			return nil, err
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetColWidth(absencesSheet, col, col, widths[i]); err != nil {
			return nil, err
		}
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"3B82F6"}},
	})
	if err != nil {
		return nil, err
	}
	if err := file.SetRowStyle(absencesSheet, 1, 1, headerStyle); err != nil {
		return nil, err
	}

	totalDays := 0
	for i, record := range records {
		row := i + 2
		note := record.Note
		if note == "" {
			note = "-"
		}
		values := []any{
			record.PersonName,
			record.Email,
			record.TeamName,
			absence.InfoForType(record.Type).Label,
			record.StartDate.String(),
			record.EndDate.String(),
			record.BusinessDays,
			note,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := file.SetCellValue(absencesSheet, cell, value); err != nil {
				return nil, err
			}
		}
		totalDays += record.BusinessDays
	}

	summaryRow := len(records) + 4
	if err := file.SetCellValue(absencesSheet, fmt.Sprintf("A%d", summaryRow), "RESUMEN"); err != nil {
		return nil, err
	}
	if err := file.SetCellValue(absencesSheet, fmt.Sprintf("A%d", summaryRow+1), "Total días laborables:"); err != nil {
		return nil, err
	}
	if err := file.SetCellValue(absencesSheet, fmt.Sprintf("G%d", summaryRow+1), totalDays); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

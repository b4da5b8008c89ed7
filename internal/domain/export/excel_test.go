package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"depuente/internal/domain/absence"
)

func TestAbsencesWorkbook(t *testing.T) {
	start := absence.NewDate(2025, time.June, 2)
	end := absence.NewDate(2025, time.June, 6)
	records := []absence.Record{
		{
			ID: "a1", PersonID: "p-ana", PersonName: "Ana García", Email: "ana@example.com",
			TeamID: "t1", TeamName: "Plataforma", Type: absence.TypeVacation,
			StartDate: start, EndDate: end,
			BusinessDays: absence.CountBusinessDays(start, end),
			Note:         "Semana completa",
		},
	}

	raw, err := AbsencesWorkbook(records)
	if err != nil {
		t.Fatalf("workbook error: %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("workbook is not readable xlsx: %v", err)
	}
	defer func() { _ = file.Close() }()

	rows, err := file.GetRows("Ausencias")
	if err != nil {
		t.Fatalf("sheet missing: %v", err)
	}
	if len(rows) < 2 {
		t.Fatalf("expected header and data rows, got %d", len(rows))
	}

	if rows[0][0] != "Usuario" || rows[0][6] != "Días laborables" {
		t.Fatalf("unexpected headers: %v", rows[0])
	}
	if rows[1][0] != "Ana García" || rows[1][3] != "Vacaciones" || rows[1][6] != "5" {
		t.Fatalf("unexpected data row: %v", rows[1])
	}

	// Totals block sits a few rows under the data.
	total, err := file.GetCellValue("Ausencias", "G6")
	if err != nil {
		t.Fatalf("totals cell: %v", err)
	}
	if total != "5" {
		t.Fatalf("expected total 5 business days, got %q", total)
	}
}

func TestAbsencesWorkbookEmpty(t *testing.T) {
	raw, err := AbsencesWorkbook(nil)
	if err != nil {
		t.Fatalf("empty workbook error: %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("workbook is not readable xlsx: %v", err)
	}
	defer func() { _ = file.Close() }()

	total, err := file.GetCellValue("Ausencias", "G5")
	if err != nil {
		t.Fatalf("totals cell: %v", err)
	}
	if total != "0" {
		t.Fatalf("expected total 0, got %q", total)
	}
}

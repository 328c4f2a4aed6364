package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/carelog/internal/models"
	"github.com/julianstephens/carelog/internal/questions"
	"github.com/julianstephens/carelog/internal/records"
	"github.com/julianstephens/carelog/internal/reminders"
)

type sheet struct {
	name   string
	header []string
	widths []float64
	rows   [][]any
}

// WriteWorkbook writes the record book as an xlsx workbook with one sheet
// per collection.
func WriteWorkbook(w io.Writer, catalog *questions.Catalog, snap records.Snapshot) error {
	sheets := []sheet{
		answerSheet(catalog, snap.Answers),
		medicineSheet(snap.Medicines),
		{
			name:   "Contacts",
			header: []string{"Name", "Relationship", "Phone", "Email"},
			widths: []float64{25, 18, 18, 28},
			rows: rowsOf(snap.Contacts, func(c models.EmergencyContact) []any {
				return []any{c.Name, c.Relationship, c.Phone, c.Email}
			}),
		},
		{
			name:   "Doctors",
			header: []string{"Name", "Specialty", "Phone", "Address"},
			widths: []float64{25, 20, 18, 40},
			rows: rowsOf(snap.Doctors, func(d models.Doctor) []any {
				return []any{d.Name, d.Specialty, d.Phone, d.Address}
			}),
		},
		{
			name:   "Insurance",
			header: []string{"Provider", "Policy Number", "Group Number", "Phone"},
			widths: []float64{25, 20, 20, 18},
			rows: rowsOf(snap.Insurance, func(i models.Insurance) []any {
				return []any{i.Provider, i.PolicyNumber, i.GroupNumber, i.Phone}
			}),
		},
		{
			name:   "Pharmacies",
			header: []string{"Name", "Phone", "Address"},
			widths: []float64{25, 18, 40},
			rows: rowsOf(snap.Pharmacies, func(p models.Pharmacy) []any {
				return []any{p.Name, p.Phone, p.Address}
			}),
		},
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	header := make([]any, len(s.header))
	for i, h := range s.header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", s.name, err)
	}

	last, err := excelize.CoordinatesToCellName(len(s.header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", s.name, err)
	}

	for i, width := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.name, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", s.name, i+2, err)
		}
	}

	return f.SetPanes(s.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func answerSheet(catalog *questions.Catalog, slots []models.AnswerSlot) sheet {
	s := sheet{
		name:   "Answers",
		header: []string{"#", "Section", "Question", "Answer", "Summary"},
		widths: []float64{5, 14, 40, 40, 24},
	}
	for _, q := range catalog.All() {
		var slot models.AnswerSlot
		if q.Index < len(slots) {
			slot = slots[q.Index]
		}
		s.rows = append(s.rows, []any{q.Index + 1, q.Section, q.Prompt, slot.Answer, slot.Summary})
	}
	return s
}

func medicineSheet(meds []models.Medicine) sheet {
	return sheet{
		name:   "Medicines",
		header: []string{"Name", "Dosage", "Time", "Schedule", "Notes"},
		widths: []float64{25, 14, 10, 24, 40},
		rows: rowsOf(meds, func(m models.Medicine) []any {
			return []any{m.Name, m.Dosage, m.Time, ScheduleLabel(m), m.Notes}
		}),
	}
}

// ScheduleLabel describes when a medicine's reminder repeats.
func ScheduleLabel(m models.Medicine) string {
	rule, err := reminders.RuleFor(m)
	if err != nil {
		return "invalid: " + err.Error()
	}
	return rule.String()
}

func rowsOf[T any](items []T, row func(T) []any) [][]any {
	out := make([][]any, 0, len(items))
	for _, item := range items {
		out = append(out, row(item))
	}
	return out
}

package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"formscan/internal/domain"
	"formscan/internal/scores"
)

// Sheet names in the exported workbook.
const (
	SheetAssessments = "Assessments"
	SheetScores      = "Scores"
)

var scoreColumns = []string{"Assessment ID", "Patient Name", "Form Type", "Bucket", "Score", "Value"}

// WriteXLSX writes a workbook with one summary row per assessment on the
// Assessments sheet and one row per individual score on the Scores sheet.
func WriteXLSX(w io.Writer, items []domain.Assessment) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetAssessments); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetScores); err != nil {
		return fmt.Errorf("creating scores sheet: %w", err)
	}

	if err := writeRow(f, SheetAssessments, 1, stringsToAny(columns)); err != nil {
		return err
	}
	if err := writeRow(f, SheetScores, 1, stringsToAny(scoreColumns)); err != nil {
		return err
	}

	scoreRow := 2
	for i := range items {
		a := &items[i]
		if err := writeRow(f, SheetAssessments, i+2, stringsToAny(assessmentToRow(a))); err != nil {
			return err
		}
		for _, bucket := range scores.Buckets {
			m := scores.Get(&a.Record.Scores, bucket)
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				row := []any{a.ID.String(), a.Record.PatientInfo.Name, a.Record.FormType, string(bucket), k, cellValue(m[k])}
				if err := writeRow(f, SheetScores, scoreRow, row); err != nil {
					return err
				}
				scoreRow++
			}
		}
	}

	if err := f.SetPanes(SheetAssessments, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

// cellValue keeps numbers numeric in the sheet and renders the rest as text.
func cellValue(v any) any {
	switch t := v.(type) {
	case float64, float32, int, int64, int32, bool:
		return t
	default:
		return formatValue(v)
	}
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

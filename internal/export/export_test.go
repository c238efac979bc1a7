package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"formscan/internal/domain"
	"formscan/internal/export"
)

func sampleAssessment() domain.Assessment {
	rec := domain.NewAssessmentRecord("PLS-5")
	rec.PatientInfo.Name = "Harry S."
	rec.PatientInfo.FirstName = "Harry"
	rec.PatientInfo.LastName = "S."
	rec.PatientInfo.Sex = "M"
	rec.TestDate = "2024-03-15"
	rec.BirthDate = "2020-01-10"
	rec.ChronologicalAge = domain.ChronologicalAge{Years: 4, Months: 2}
	rec.Scores.RawScores["Auditory Comprehension Raw"] = float64(45)
	rec.Scores.StandardScores["Auditory Comprehension"] = float64(102)
	rec.Scores.StandardScores["Expressive Communication"] = float64(98)
	rec.Scores.StandardScores["Total Language"] = float64(100)
	rec.Scores.Percentiles["Auditory Comprehension"] = float64(55)
	rec.Scores.ConfidenceIntervals["Total Language"] = []any{float64(94), float64(106)}

	return domain.Assessment{
		ID:               uuid.MustParse("6f1c1a7e-1b61-4b7e-9a55-2f0c4f1b8a01"),
		FormType:         "PLS-5",
		TypeSource:       domain.TypeSourceClassifier,
		Record:           rec,
		ValidationStatus: domain.ValidationStatusValid,
		CreatedAt:        time.Date(2024, 3, 16, 9, 0, 0, 0, time.UTC),
	}
}

func TestCSVWriter_HeaderAndRow(t *testing.T) {
	var buf bytes.Buffer
	w := export.NewCSVWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteAssessments([]domain.Assessment{sampleAssessment()}))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	header, row := rows[0], rows[1]
	require.Len(t, header, 20)
	require.Len(t, row, 20)
	assert.Equal(t, "Assessment ID", header[0])
	assert.Equal(t, "Created At", header[19])

	assert.Equal(t, "6f1c1a7e-1b61-4b7e-9a55-2f0c4f1b8a01", row[0])
	assert.Equal(t, "PLS-5", row[1])
	assert.Equal(t, "classifier", row[2])
	assert.Equal(t, "Harry S.", row[3])
	assert.Equal(t, "2024-03-15", row[8])
	assert.Equal(t, "4;2", row[10])
	assert.Equal(t, "valid", row[11])
	assert.Equal(t, "102", row[12])
	assert.Equal(t, "98", row[13])
	assert.Equal(t, "100", row[14])
	assert.Equal(t, "55", row[15])
	assert.Equal(t, "", row[16])
	assert.Equal(t, "", row[17])
	assert.Equal(t, "6", row[18])
	assert.Equal(t, "2024-03-16T09:00:00Z", row[19])
}

func TestCSVWriter_SummaryScoresStayInRegion(t *testing.T) {
	tests := []struct {
		name     string
		standard map[string]any
		want     []string
	}{
		{
			name:     "only AC present",
			standard: map[string]any{"acStandardScore": float64(75)},
			want:     []string{"75", "", ""},
		},
		{
			name: "camel case keys",
			standard: map[string]any{
				"acStandardScore":            float64(75),
				"ecStandardScore":            float64(81),
				"totalLanguageStandardScore": float64(77),
			},
			want: []string{"75", "81", "77"},
		},
		{
			name:     "accuracy is not AC",
			standard: map[string]any{"accuracyScore": float64(9), "EC": float64(90)},
			want:     []string{"", "90", ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := sampleAssessment()
			a.Record.Scores = domain.NewScoreBuckets()
			for k, v := range tt.standard {
				a.Record.Scores.StandardScores[k] = v
			}

			var buf bytes.Buffer
			w := export.NewCSVWriter(&buf)
			require.NoError(t, w.WriteAssessments([]domain.Assessment{a}))
			w.Flush()

			rows, err := csv.NewReader(&buf).ReadAll()
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, tt.want, rows[0][12:15])
		})
	}
}

func TestCSVWriter_EmptyRecordLeavesBlanks(t *testing.T) {
	a := domain.Assessment{ID: uuid.New(), Record: domain.NewAssessmentRecord(domain.FormTypeUnknown)}

	var buf bytes.Buffer
	w := export.NewCSVWriter(&buf)
	require.NoError(t, w.WriteAssessments([]domain.Assessment{a}))
	w.Flush()

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Unknown", rows[0][1])
	assert.Equal(t, "", rows[0][10])
	assert.Equal(t, "0", rows[0][18])
}

func TestWriteXLSX_Sheets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, []domain.Assessment{sampleAssessment()}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{export.SheetAssessments, export.SheetScores}, f.GetSheetList())

	summary, err := f.GetRows(export.SheetAssessments)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "Assessment ID", summary[0][0])
	assert.Equal(t, "PLS-5", summary[1][1])
	assert.Equal(t, "102", summary[1][12])

	scoreRows, err := f.GetRows(export.SheetScores)
	require.NoError(t, err)
	require.Len(t, scoreRows, 7)
	assert.Equal(t, []string{"Assessment ID", "Patient Name", "Form Type", "Bucket", "Score", "Value"}, scoreRows[0])
	// Buckets in canonical order, keys sorted within a bucket.
	assert.Equal(t, "rawScores", scoreRows[1][3])
	assert.Equal(t, "45", scoreRows[1][5])
	assert.Equal(t, "standardScores", scoreRows[2][3])
	assert.Equal(t, "Auditory Comprehension", scoreRows[2][4])
	assert.Equal(t, "Total Language", scoreRows[4][4])
	assert.Equal(t, "confidenceIntervals", scoreRows[6][3])
	assert.Equal(t, "94-106", scoreRows[6][5])
}

func TestWriteXLSX_NoItems(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(export.SheetAssessments)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"PLS-5 export", "PLS-5_export"},
		{"a//b??c", "a_b_c"},
		{"__x__", "x"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, export.SanitizeFilename(tt.in), tt.in)
	}
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "PLS-5_2024-03-16.xlsx", export.BuildFilename("PLS-5", "xlsx", now))
	assert.Equal(t, "assessments_2024-03-16.csv", export.BuildFilename("", "csv", now))
}

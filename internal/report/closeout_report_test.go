package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/plantline/opsconsole/internal/domain/shift"
	"github.com/plantline/opsconsole/internal/domain/wizard"
)

func sampleClosedShift() *shift.ClosedShift {
	start := time.Date(2025, 6, 3, 6, 0, 0, 0, time.UTC)
	return &shift.ClosedShift{
		Shift: shift.Shift{
			ID:          "c4f6e9aa-1111-4b2c-9f00-2d5a8e7b4c21",
			ShiftNumber: 2,
			Supervisor:  "m.okafor",
			StartTime:   start,
		},
		EndTime:  start.Add(8 * time.Hour),
		Duration: 8 * time.Hour,
		Accumulator: wizard.Snapshot{
			Version: 6,
			Outputs: map[string]wizard.StepOutput{
				wizard.StepConfirmAttendance: {
					Key:        wizard.StepConfirmAttendance,
					IsValid:    true,
					Payload:    map[string]interface{}{"headcount_expected": 10, "headcount_present": 9},
					RecordedAt: start.Add(7 * time.Hour),
				},
				wizard.StepShiftSummary: {
					Key:        wizard.StepShiftSummary,
					IsValid:    true,
					Payload:    map[string]interface{}{"reviewed": true},
					RecordedAt: start.Add(8 * time.Hour),
				},
			},
		},
	}
}

func TestCloseoutReportWriter_WritesWorkbook(t *testing.T) {
	tempDir := t.TempDir()
	logger := zap.NewNop()

	writer, err := NewCloseoutReportWriter(tempDir, "Plant 7", logger)
	require.NoError(t, err)

	path, err := writer.WriteCloseoutReport(sampleClosedShift())
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, filepath.Join(tempDir, "closeout_20250603_shift2.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)

	title, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Shift closeout report", title)

	supervisor, err := f.GetCellValue(sheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "m.okafor", supervisor)

	// steps are written in key order: confirm-attendance before shift-summary
	firstStep, err := f.GetCellValue(sheet, "A11")
	require.NoError(t, err)
	assert.Equal(t, wizard.StepConfirmAttendance, firstStep)

	secondStep, err := f.GetCellValue(sheet, "A12")
	require.NoError(t, err)
	assert.Equal(t, wizard.StepShiftSummary, secondStep)

	payload, err := f.GetCellValue(sheet, "D11")
	require.NoError(t, err)
	assert.Contains(t, payload, "headcount_present=9")
}

func TestCloseoutReportWriter_CreatesOutputDir(t *testing.T) {
	tempDir := t.TempDir()
	nested := filepath.Join(tempDir, "reports", "closeouts")

	_, err := NewCloseoutReportWriter(nested, "Plant 7", zap.NewNop())
	require.NoError(t, err)
	assert.DirExists(t, nested)
}

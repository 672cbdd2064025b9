// Package report renders closed-shift summaries as Excel workbooks for the
// plant office.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/plantline/opsconsole/internal/domain/shift"
)

// CloseoutReportWriter writes one workbook per closed shift into the
// output directory
type CloseoutReportWriter struct {
	outputDir string
	plantName string
	logger    *zap.Logger
}

// NewCloseoutReportWriter creates a new closeout report writer
func NewCloseoutReportWriter(outputDir, plantName string, logger *zap.Logger) (*CloseoutReportWriter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report output dir: %w", err)
	}
	return &CloseoutReportWriter{
		outputDir: outputDir,
		plantName: plantName,
		logger:    logger,
	}, nil
}

// WriteCloseoutReport renders the closed shift and its accumulator into a
// workbook and returns the written path
func (w *CloseoutReportWriter) WriteCloseoutReport(record *shift.ClosedShift) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := f.GetSheetName(0)

	w.setCell(f, sheetName, "A1", "Shift closeout report")
	w.setCell(f, sheetName, "B2", w.plantName)
	w.setCell(f, sheetName, "B3", record.ID)
	w.setCell(f, sheetName, "B4", fmt.Sprintf("Shift %d", record.ShiftNumber))
	w.setCell(f, sheetName, "B5", record.Supervisor)
	w.setCell(f, sheetName, "B6", record.StartTime.Format("2006-01-02 15:04"))
	w.setCell(f, sheetName, "B7", record.EndTime.Format("2006-01-02 15:04"))
	w.setCell(f, sheetName, "B8", record.Duration.String())

	w.setCell(f, sheetName, "A10", "Step")
	w.setCell(f, sheetName, "B10", "Valid")
	w.setCell(f, sheetName, "C10", "Recorded at")
	w.setCell(f, sheetName, "D10", "Output")

	// stable row order for diffable reports
	keys := make([]string, 0, len(record.Accumulator.Outputs))
	for key := range record.Accumulator.Outputs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	row := 11
	for _, key := range keys {
		out := record.Accumulator.Outputs[key]
		w.setCell(f, sheetName, fmt.Sprintf("A%d", row), key)
		w.setCell(f, sheetName, fmt.Sprintf("B%d", row), fmt.Sprintf("%t", out.IsValid))
		w.setCell(f, sheetName, fmt.Sprintf("C%d", row), out.RecordedAt.Format("2006-01-02 15:04:05"))
		w.setCell(f, sheetName, fmt.Sprintf("D%d", row), formatPayload(out.Payload))
		row++
	}

	outputPath := filepath.Join(w.outputDir,
		fmt.Sprintf("closeout_%s_shift%d.xlsx", record.EndTime.Format("20060102"), record.ShiftNumber))

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save closeout report: %w", err)
	}

	w.logger.Info("Closeout report written",
		zap.String("shift_id", record.ID),
		zap.String("output_path", outputPath))
	return outputPath, nil
}

// setCell sets a cell value, logging failures without aborting the report
func (w *CloseoutReportWriter) setCell(f *excelize.File, sheet, cell, value string) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		w.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}

// formatPayload renders a step payload as "k=v" pairs in key order
func formatPayload(payload map[string]interface{}) string {
	if len(payload) == 0 {
		return ""
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s=%v", k, payload[k])
	}
	return out
}

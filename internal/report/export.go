package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"tidy/internal/fault"
)

// WriteJSON encodes the report with its summary.
func (r *Report) WriteJSON(w io.Writer) error {
	payload := struct {
		*Report
		Summary Summary `json:"summary"`
	}{Report: r, Summary: r.Summary()}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// Export writes the report to path, choosing the format from the extension
// (.json or .xlsx).
func (r *Report) Export(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		f, err := os.Create(path)
		if err != nil {
			return fault.Wrap(fault.ErrAccess, "report", "create json", path, err)
		}
		if err := r.WriteJSON(f); err != nil {
			_ = f.Close()
			return fault.Wrap(fault.ErrAccess, "report", "write json", path, err)
		}
		return f.Close()
	case ".xlsx":
		return r.WriteXLSX(path)
	default:
		return fault.Wrap(fault.ErrConfig, "report", "export", "unsupported report format "+filepath.Ext(path), nil)
	}
}

const (
	entriesSheet = "Entries"
	summarySheet = "Summary"
)

var entryHeader = []any{"File", "Decision", "Rule", "Status", "Target", "Bytes", "Error kind", "Error"}

// WriteXLSX saves the report as a workbook with an entries sheet and a
// summary sheet.
func (r *Report) WriteXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", entriesSheet); err != nil {
		return fault.Wrap(fault.ErrAccess, "report", "xlsx sheet", entriesSheet, err)
	}
	if err := f.SetSheetRow(entriesSheet, "A1", &entryHeader); err != nil {
		return fault.Wrap(fault.ErrAccess, "report", "xlsx header", entriesSheet, err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(entriesSheet, "A1", "H1", bold)
	}

	for i, e := range r.Entries {
		row := []any{
			e.File.Path,
			e.Decision.String(),
			e.Decision.Rule,
			string(e.Status),
			e.Target,
			e.Bytes,
			e.ErrorKind,
			e.Error,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fault.Wrap(fault.ErrAccess, "report", "xlsx cell", "", err)
		}
		if err := f.SetSheetRow(entriesSheet, cell, &row); err != nil {
			return fault.Wrap(fault.ErrAccess, "report", "xlsx row", cell, err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fault.Wrap(fault.ErrAccess, "report", "xlsx sheet", summarySheet, err)
	}
	s := r.Summary()
	rows := [][]any{
		{"Run ID", r.RunID},
		{"Mode", r.Mode},
		{"Root", r.Root},
		{"Dry run", r.DryRun},
		{"Applied", s.Applied},
		{"Dry-run", s.DryRun},
		{"Skipped", s.Skipped},
		{"Failed", s.Failed},
		{"Reclaimed bytes", s.Reclaimed},
		{"Aborted", r.Aborted},
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fault.Wrap(fault.ErrAccess, "report", "xlsx row", cell, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fault.Wrap(fault.ErrAccess, "report", "save xlsx", path, err)
	}
	return nil
}

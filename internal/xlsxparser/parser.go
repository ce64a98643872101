// =============================================================================
// rcli - XLSX Parser Module
// =============================================================================
//
// This module reads a worksheet from an XLSX workbook into a RecordSet, so a
// spreadsheet exported by hand converts exactly like its CSV equivalent.
//
// SHEET LAYOUT:
//   Row 1      : column names
//   Row 2..N   : data rows, every cell read as its formatted text
//
// The workbook reader trims trailing empty cells from each row, so short rows
// are padded back to the header width. Rows wider than the header are
// rejected, as are fully empty rows, which are skipped.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/rcli/internal/types"
	"github.com/xuri/excelize/v2"
)

// Parse reads a worksheet from an XLSX file.
//
// PARAMETERS:
//   - workbookPath: The path to the XLSX file.
//   - sheetName: The worksheet to read. Empty selects the first sheet.
//
// RETURNS:
//   - The RecordSet read from the sheet.
//   - ErrIO if the workbook cannot be opened, ErrConfig if the sheet does
//     not exist, ErrParse if the rows are inconsistent with the header.
func Parse(workbookPath, sheetName string) (*types.RecordSet, error) {
	f, err := excelize.OpenFile(workbookPath)
	if err != nil {
		return nil, types.NewIOError("open workbook", err)
	}
	defer f.Close()

	sheetName, err = resolveSheet(f, sheetName)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, types.NewParseError(fmt.Sprintf("read sheet %q", sheetName), err)
	}

	rs, err := buildRecordSet(rows)
	if err != nil {
		return nil, err
	}
	rs.SourceFile = workbookPath

	return rs, nil
}

// SheetNames lists the worksheets of a workbook in tab order.
func SheetNames(workbookPath string) ([]string, error) {
	f, err := excelize.OpenFile(workbookPath)
	if err != nil {
		return nil, types.NewIOError("open workbook", err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// resolveSheet returns the sheet to read, defaulting to the first one.
func resolveSheet(f *excelize.File, sheetName string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", types.NewParseError("open workbook", errors.New("workbook has no sheets"))
	}

	if sheetName == "" {
		return sheets[0], nil
	}

	for _, name := range sheets {
		if name == sheetName {
			return name, nil
		}
	}

	return "", types.NewConfigError("sheet",
		fmt.Errorf("sheet %q not found (available: %s)", sheetName, strings.Join(sheets, ", ")))
}

// buildRecordSet zips the header row with every data row.
func buildRecordSet(rows [][]string) (*types.RecordSet, error) {
	if len(rows) == 0 || isRowEmpty(rows[0]) {
		return nil, types.NewParseError("read sheet", errors.New("sheet is empty: no header row"))
	}

	header := rows[0]
	if err := types.CheckHeader(header); err != nil {
		return nil, err
	}

	rs := types.NewRecordSet(header, "")
	for i := 1; i < len(rows); i++ {
		row := rows[i]

		if isRowEmpty(row) {
			continue
		}

		if len(row) > len(header) {
			return nil, types.NewParseError(fmt.Sprintf("read sheet row %d", i+1),
				fmt.Errorf("row has %d cells, header has %d", len(row), len(header)))
		}

		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}

		rs.Append(row)
	}

	return rs, nil
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads the first sheet of a workbook. The first row is the
// header. Cells are re-encoded as CSV so qframe infers column types the
// same way it does for CSV uploads.
func LoadXLSX(r io.Reader) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &LoadError{Op: "open workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &LoadError{Op: "open workbook", Err: ErrEmpty}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &LoadError{Op: "read sheet", Err: err}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, &LoadError{Op: "read sheet", Err: ErrEmpty}
	}

	width := len(rows[0])
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	for i, row := range rows {
		// GetRows drops trailing empty cells
		if len(row) > width {
			return nil, &LoadError{Op: "read sheet", Err: fmt.Errorf("row %d has %d cells, header has %d", i+1, len(row), width)}
		}
		padded := make([]string, width)
		copy(padded, row)
		if err := cw.Write(padded); err != nil {
			return nil, &LoadError{Op: "convert sheet", Err: err}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, &LoadError{Op: "convert sheet", Err: err}
	}
	return LoadCSV(&buf)
}

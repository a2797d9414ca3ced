package dataset

import (
	"bufio"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Sheet1"

// WriteCSV writes the dataset as UTF-8 CSV with a header row
func (d *Dataset) WriteCSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := d.frame.ToCSV(bw); err != nil {
		return fmt.Errorf("failed to encode CSV: %w", err)
	}
	return bw.Flush()
}

// WriteXLSX writes the dataset as a single-sheet workbook. Numeric and
// boolean cells keep their type; nulls are left blank.
func (d *Dataset) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(d.columns))
	columns := make([][]interface{}, len(d.columns))
	for i, name := range d.columns {
		header[i] = name
		values, err := d.Values(name)
		if err != nil {
			return err
		}
		columns[i] = values
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for r := 0; r < d.Len(); r++ {
		row := make([]interface{}, len(columns))
		for c := range columns {
			row[c] = columns[c][r]
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to encode workbook: %w", err)
	}
	return nil
}

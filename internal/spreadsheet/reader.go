// Package spreadsheet reads and writes the xlsx/xls files used for bulk
// import and export, and validates rows against a column schema.
package spreadsheet

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

const maxRows = 100000

// ReadRows returns every row of the first worksheet, header included.
func ReadRows(r io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, unreadable(err)
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		rows, err = readXLS(data)
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(data)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	return rows, nil
}

// readXLS recovers from panics, which the xls parser raises on some
// malformed files.
func readXLS(data []byte) (rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, unreadable(fmt.Errorf("malformed xls: %v", r))
		}
	}()

	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, unreadable(err)
	}
	if workbook.NumSheets() == 0 {
		return nil, ErrEmptySheet
	}
	return workbook.ReadAllCells(maxRows), nil
}

func readXLSX(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, unreadable(err)
	}
	defer func() { _ = file.Close() }()

	sheet := file.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptySheet
	}
	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, unreadable(err)
	}
	return rows, nil
}

func unreadable(err error) error {
	return ErrUnreadableFile.WithDetails(map[string]string{"reason": err.Error()})
}

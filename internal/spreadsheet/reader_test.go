package spreadsheet_test

import (
	"bytes"
	"strings"
	"testing"

	"cerven-ot/internal/spreadsheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWorkbookThenReadRows(t *testing.T) {
	var buf bytes.Buffer
	err := spreadsheet.WriteWorkbook(&buf, "Inventory", itemSchema.Headers(), [][]string{
		{"ST01", "SKU-1", "Router", "network"},
		{"ST02", "SKU-2", "Switch", ""},
	})
	require.NoError(t, err)

	rows, err := spreadsheet.ReadRows(&buf, "items.XLSX")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Store Code", "SKU", "Item Name", "Category"}, rows[0])
	assert.Equal(t, "Switch", rows[2][2])

	parsed, err := itemSchema.Parse(rows)
	require.NoError(t, err)
	assert.Len(t, parsed.Rows, 2)
}

func TestReadRows_Errors(t *testing.T) {
	_, err := spreadsheet.ReadRows(strings.NewReader("a,b"), "items.csv")
	assert.ErrorIs(t, err, spreadsheet.ErrUnsupportedFormat)

	_, err = spreadsheet.ReadRows(strings.NewReader("not a zip"), "items.xlsx")
	assert.ErrorIs(t, err, spreadsheet.ErrUnreadableFile)
}

package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	appErrors "github.com/workbridge/ims-api/pkg/errors"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))
	return buf.Bytes()
}

func internSpecs() []ColumnSpec {
	return []ColumnSpec{
		{Field: "name", Aliases: []string{"name"}, Required: true},
		{Field: "email", Aliases: []string{"email", "email id"}, Required: true},
		{Field: "password", Aliases: []string{"password"}, Required: false},
	}
}

func TestDecodeResolvesHeaderAliases(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Name", "  EMAIL ID ", "Password"},
		{"Jane Doe", "jane@example.com", "secret"},
	})

	sheet, err := Decode(data, internSpecs())
	require.NoError(t, err)
	rows := sheet.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, "Jane Doe", rows[0].Get("name"))
	assert.Equal(t, "jane@example.com", rows[0].Get("email"))
	assert.Equal(t, "secret", rows[0].Get("password"))
}

func TestDecodeMissingRequiredColumns(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"name"},
		{"Jane Doe"},
	})

	_, err := Decode(data, internSpecs())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrMissingColumns))
	assert.Contains(t, err.Error(), "email")
}

func TestDecodeOptionalColumnAbsent(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"name", "email"},
		{"Jane Doe", "jane@example.com"},
	})

	sheet, err := Decode(data, internSpecs())
	require.NoError(t, err)
	row := sheet.Rows()[0]
	assert.False(t, row.Has("password"))
	assert.Empty(t, row.Get("password"))
}

func TestDecodeShortRowYieldsEmptyCells(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"name", "email", "password"},
		{"Jane Doe"},
	})

	sheet, err := Decode(data, internSpecs())
	require.NoError(t, err)
	row := sheet.Rows()[0]
	assert.Equal(t, "Jane Doe", row.Get("name"))
	assert.Empty(t, row.Get("email"))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not a spreadsheet"), internSpecs())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidFile))
}

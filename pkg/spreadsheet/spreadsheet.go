package spreadsheet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	appErrors "github.com/workbridge/ims-api/pkg/errors"
)

// ColumnSpec maps a canonical field name to the spreadsheet headers that may
// carry it. Header matching is case-insensitive and trims surrounding space.
type ColumnSpec struct {
	Field    string
	Aliases  []string
	Required bool
}

// Row is a single data row resolved against the column mapping.
type Row struct {
	// Number is the spreadsheet row number as a user would see it: the
	// header occupies row 1, so the first data row reports as 2.
	Number int

	values map[string]string
}

// Get returns the trimmed cell value for a canonical field, or "" when the
// column is absent or the cell empty.
func (r Row) Get(field string) string {
	return r.values[field]
}

// Has reports whether the resolved sheet carried a column for the field at all.
func (r Row) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Sheet is the decoded first worksheet of an uploaded spreadsheet.
type Sheet struct {
	Headers []string
	rows    []Row
}

// Rows returns the data rows in file order.
func (s *Sheet) Rows() []Row {
	return s.rows
}

// Decode parses an xlsx/xls payload and resolves the header row against the
// provided column specs. It is a pure transform: no storage is touched.
//
// Decode fails with INVALID_FILE when the payload cannot be read, contains no
// sheets, or the first sheet has no rows, and with MISSING_COLUMNS listing
// every absent required header. Optional columns that are absent simply yield
// empty values for every row.
func Decode(data []byte, specs []ColumnSpec) (*Sheet, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidFile.Code, appErrors.ErrInvalidFile.Status, "unable to read spreadsheet")
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidFile, "spreadsheet contains no sheets")
	}

	grid, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidFile.Code, appErrors.ErrInvalidFile.Status, "unable to parse sheet")
	}
	if len(grid) == 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidFile, "spreadsheet contains no data")
	}

	headers := grid[0]
	headerIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		headerIndex[normalise(h)] = i
	}

	columns := make(map[string]int, len(specs))
	missing := make([]string, 0)
	for _, spec := range specs {
		idx, found := -1, false
		for _, alias := range spec.Aliases {
			if i, ok := headerIndex[normalise(alias)]; ok {
				idx, found = i, true
				break
			}
		}
		if found {
			columns[spec.Field] = idx
		} else if spec.Required {
			missing = append(missing, spec.Aliases[0])
		}
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrMissingColumns,
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	rows := make([]Row, 0, len(grid)-1)
	for i, raw := range grid[1:] {
		values := make(map[string]string, len(columns))
		for field, idx := range columns {
			if idx < len(raw) {
				values[field] = strings.TrimSpace(raw[idx])
			} else {
				values[field] = ""
			}
		}
		rows = append(rows, Row{Number: i + 2, values: values})
	}

	return &Sheet{Headers: headers, rows: rows}, nil
}

func normalise(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

// Package xlsx loads the unit registry from a spreadsheet maintained by the
// lore editors. Column A is the unit id, column B the display name; the
// first row is treated as a header and skipped.
package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

type Registry struct {
	names map[string]string
}

func Load(path string) (*Registry, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open unit registry: %w", err)
	}
	defer file.Close()
	return fromWorkbook(file)
}

func LoadReader(r io.Reader) (*Registry, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open unit registry: %w", err)
	}
	defer file.Close()
	return fromWorkbook(file)
}

func fromWorkbook(file *excelize.File) (*Registry, error) {
	sheet := file.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("unit registry has no sheets")
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read unit registry rows: %w", err)
	}

	names := make(map[string]string)
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 2 {
			continue
		}
		unitID := strings.TrimSpace(row[0])
		unitName := strings.TrimSpace(row[1])
		if unitID == "" || unitName == "" {
			continue
		}
		names[unitID] = unitName
	}

	return &Registry{names: names}, nil
}

// UnitName implements ports.UnitRegistry. Unknown units return "" and the
// caller falls back to the raw id.
func (r *Registry) UnitName(unitID string) string {
	return r.names[unitID]
}

func (r *Registry) Len() int {
	return len(r.names)
}

package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"Helix/internal/calc/calcerr"
)

// ReadDuty reads Miner groups from the first sheet of an xlsx workbook. Each
// row is repetition, a, b; a first row that is not numeric is taken as a
// header. Blank rows are skipped.
func ReadDuty(r io.Reader) ([][3]float64, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}

	var groups [][3]float64
	for i, row := range rows {
		if blank(row) {
			continue
		}
		g, err := parseRow(row)
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, calcerr.Invalid("row %d: %v", i+1, err)
		}
		groups = append(groups, g)
	}
	if len(groups) == 0 {
		return nil, calcerr.Invalid("sheet has no duty rows")
	}
	return groups, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRow(row []string) ([3]float64, error) {
	var g [3]float64
	if len(row) < 3 {
		return g, fmt.Errorf("expected 3 columns, got %d", len(row))
	}
	for j := range g {
		v, err := toFloat(row[j])
		if err != nil {
			return g, fmt.Errorf("column %d: %q is not a number", j+1, row[j])
		}
		g[j] = v
	}
	return g, nil
}

func toFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

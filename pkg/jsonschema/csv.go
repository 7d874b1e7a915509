package jsonschema

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// MaxCSVRows bounds the rows RowsFromCSV turns into samples.
const MaxCSVRows = 100

// RowsFromCSV converts CSV text into object samples for Infer. The first row
// names the columns unless it looks like data, in which case columns are
// named col_0, col_1, ... Each column is typed as a whole: number when every
// non-empty cell parses as one, then boolean, otherwise string. Empty cells
// are left out of their row, so sparse columns infer as optional.
func RowsFromCSV(data []byte) ([]any, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("CSV parse error: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV")
	}

	headers := records[0]
	rows := records[1:]
	if looksLikeData(headers, rows) {
		rows = records
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("col_%d", i)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV has a header row but no data")
	}
	if len(rows) > MaxCSVRows {
		rows = rows[:MaxCSVRows]
	}

	names := make([]string, len(headers))
	for i, h := range headers {
		names[i] = strings.TrimSpace(h)
		if names[i] == "" {
			names[i] = fmt.Sprintf("col_%d", i)
		}
	}
	kinds := make([]string, len(names))
	for i := range names {
		kinds[i] = columnType(column(rows, i))
	}

	samples := make([]any, len(rows))
	for r, row := range rows {
		obj := make(map[string]any, len(names))
		for i, name := range names {
			if i >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			obj[name] = cellValue(cell, kinds[i])
		}
		samples[r] = obj
	}
	return samples, nil
}

func column(rows [][]string, idx int) []string {
	var values []string
	for _, row := range rows {
		if idx < len(row) {
			if v := strings.TrimSpace(row[idx]); v != "" {
				values = append(values, v)
			}
		}
	}
	return values
}

func columnType(values []string) string {
	if len(values) == 0 {
		return "string"
	}
	allNumber, allBool := true, true
	for _, v := range values {
		if allNumber {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				allNumber = false
			}
		}
		if allBool {
			if lower := strings.ToLower(v); lower != "true" && lower != "false" {
				allBool = false
			}
		}
		if !allNumber && !allBool {
			break
		}
	}
	switch {
	case allNumber:
		return "number"
	case allBool:
		return "boolean"
	}
	return "string"
}

func cellValue(cell, kind string) any {
	switch kind {
	case "number":
		f, _ := strconv.ParseFloat(cell, 64)
		return f
	case "boolean":
		return strings.EqualFold(cell, "true")
	}
	return cell
}

// looksLikeData reports whether the first row is data rather than headers:
// more than half of its cells are numeric.
func looksLikeData(firstRow []string, rows [][]string) bool {
	if len(rows) == 0 {
		return false
	}
	numeric := 0
	for _, v := range firstRow {
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			numeric++
		}
	}
	return numeric > len(firstRow)/2
}

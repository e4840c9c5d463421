package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/strokeguard/strokeguard/internal/application/dto"
)

// readDataset reads a CSV file with a header row into raw records keyed by
// column name. Cells are passed through as strings; validation parses them.
func readDataset(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseDataset(f)
}

func parseDataset(r io.Reader) ([]map[string]any, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("dataset is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]any
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := make(map[string]any, len(header))
		for i, name := range header {
			row[name] = rec[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// labelRows splits the label column off each row. A missing or non-integer
// label yields -1, which evaluation skips.
func labelRows(rows []map[string]any, column string) []dto.LabeledRow {
	out := make([]dto.LabeledRow, len(rows))
	for i, row := range rows {
		label := -1
		if v, ok := row[column].(string); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				label = n
			}
		}
		delete(row, column)
		out[i] = dto.LabeledRow{Raw: row, Label: label}
	}
	return out
}

// Package corpus reads Common Voice release directories into raw rows.
package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/verte-zerg/cvsheet/internal/model"
)

// ReadTSV reads a tab-separated file with a header row. Short rows leave the
// trailing columns absent and extra fields are dropped.
func ReadTSV(path string) ([]model.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only corpus file.
			_ = cerr
		}
	}()
	rows, err := DecodeTSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// DecodeTSV decodes tab-separated rows keyed by the header row.
func DecodeTSV(r io.Reader) ([]model.Row, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []model.Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	columns := append([]string(nil), header...)
	if len(columns) > 0 {
		// Strip a UTF-8 byte order mark from the first column name.
		columns[0] = trimBOM(columns[0])
	}

	rows := []model.Row{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(model.Row, len(columns))
		for i, value := range record {
			if i >= len(columns) {
				break
			}
			row[columns[i]] = value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}

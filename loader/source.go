package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// row is one data row of a source table with its original line number,
// kept for error reporting.
type row struct {
	line   int
	fields []string
}

// readTable reads every row of a delimited source table. CSV and XLSX
// sources share the same downstream validation path. Header rows and
// '#'-prefixed comment lines are skipped here; headerField names the
// first column of the header row (e.g. "call_id").
func readTable(path, headerField string) ([]row, error) {
	var rows []row
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err = readXLSX(path)
	} else {
		rows, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}

	out := make([]row, 0, len(rows))
	for _, r := range rows {
		if len(r.fields) == 0 {
			continue
		}
		first := strings.TrimSpace(r.fields[0])
		if first == "" && len(r.fields) == 1 {
			continue
		}
		if strings.HasPrefix(first, "#") {
			continue
		}
		if strings.EqualFold(first, headerField) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func readCSV(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var rows []row
	lineNum := 0
	for {
		record, err := reader.Read()
		lineNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}
		rows = append(rows, row{line: lineNum, fields: record})
	}
	return rows, nil
}

func readXLSX(path string) ([]row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in %s", path)
	}
	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	rows := make([]row, 0, len(raw))
	for i, fields := range raw {
		rows = append(rows, row{line: i + 1, fields: fields})
	}
	return rows, nil
}

// tablePath resolves the source file for a table name, preferring CSV
// over XLSX when both exist.
func tablePath(dataDir, name string) (string, error) {
	for _, ext := range []string{".csv", ".xlsx"} {
		p := filepath.Join(dataDir, name+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s table not found in %s", name, dataDir)
}

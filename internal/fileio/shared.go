package fileio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Table — распарсенная таблица: заголовки в исходном порядке и строки map[header]value.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// HasColumn reports whether the header row contains name exactly (after trimming).
func (t Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// MissingColumns returns the required columns absent from the header row, in the given order.
func (t Table) MissingColumns(required ...string) []string {
	var out []string
	for _, c := range required {
		if !t.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

// ReadAny — выберет парсер по расширению. headerRow — номер строки заголовков (1-based).
func ReadAny(r io.Reader, filename string, headerRow int) (Table, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(r, headerRow)
	case ".xls":
		return readXLS(r, headerRow)
	case ".csv":
		return readCSV(r, headerRow)
	default:
		return Table{}, fmt.Errorf("unsupported file: %s", filename)
	}
}

// ReadFile opens path and parses it with ReadAny.
func ReadFile(path string, headerRow int) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	t, err := ReadAny(f, path, headerRow)
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// pickHeader — берёт строку заголовков и подставляет Column N для пустых.
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	h := rows[idx]
	out := make([]string, len(h))
	for i, v := range h {
		v = strings.TrimSpace(strings.TrimPrefix(v, "\ufeff"))
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		out[i] = v
	}
	return out
}

// buildTable — AoA -> Table, пропуская полностью пустые строки.
func buildTable(rows [][]string, headerRow int) Table {
	if len(rows) == 0 {
		return Table{}
	}
	if headerRow < 1 {
		headerRow = 1
	}
	headers := pickHeader(rows, headerRow)
	t := Table{Headers: headers}
	for r := headerRow; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]string, len(headers))
		empty := true
		for c, h := range headers {
			var v string
			if c < len(rec) {
				v = rec[c]
			}
			if strings.TrimSpace(v) != "" {
				empty = false
			}
			m[h] = v
		}
		if !empty {
			t.Rows = append(t.Rows, m)
		}
	}
	return t
}

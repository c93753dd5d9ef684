// Package csvreader tokenizes CSV exports into ordered rows.
//
// The dialect is RFC-4180-ish but deliberately forgiving: rows may have
// ragged field counts, quotes may appear mid-cell, and line endings may mix
// \r\n and \n. Human-edited exports violate the RFC constantly, so the
// tokenizer accepts anything it can segment rather than erroring out.
package csvreader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoData is returned when the input contains zero non-blank rows.
var ErrNoData = errors.New("csv: no data rows")

// Row is one parsed CSV record. Line is the 1-based line number of the row's
// first physical line, for error reporting.
type Row struct {
	Fields []string
	Line   int
}

// IsBlank reports whether every field in the row is empty or whitespace.
func (r Row) IsBlank() bool {
	for _, f := range r.Fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Field returns the trimmed field at index i, or "" when the row is too
// short. Ragged rows are normal in hand-edited exports.
func (r Row) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return strings.TrimSpace(r.Fields[i])
}

// Parse tokenizes the entire input into rows, skipping blank rows. Quoted
// cells may contain commas, doubled quotes, and embedded newlines. Returns
// ErrNoData when no non-blank row survives.
func Parse(r io.Reader) ([]Row, error) {
	br := bufio.NewReader(r)
	data, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("csv: read failed: %w", err)
	}
	return ParseString(string(data))
}

// ParseString tokenizes CSV text. See Parse.
func ParseString(text string) ([]Row, error) {
	var rows []Row
	var fields []string
	var cell strings.Builder

	line := 1
	rowLine := 1
	inQuotes := false
	cellStarted := false

	endCell := func() {
		fields = append(fields, cell.String())
		cell.Reset()
		cellStarted = false
	}
	endRow := func() {
		endCell()
		row := Row{Fields: fields, Line: rowLine}
		if !row.IsBlank() {
			rows = append(rows, row)
		}
		fields = nil
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes {
				// Doubled quote is an escaped literal quote.
				if i+1 < len(runes) && runes[i+1] == '"' {
					cell.WriteRune('"')
					i++
				} else {
					inQuotes = false
				}
			} else if !cellStarted {
				inQuotes = true
				cellStarted = true
			} else {
				// Stray quote mid-cell: keep it verbatim.
				cell.WriteRune('"')
			}
		case ch == ',' && !inQuotes:
			endCell()
		case ch == '\r':
			if inQuotes {
				cell.WriteRune('\r')
			}
			// Bare \r outside quotes is consumed; the \n that usually
			// follows terminates the row.
		case ch == '\n':
			line++
			if inQuotes {
				cell.WriteRune('\n')
			} else {
				endRow()
				rowLine = line
			}
		default:
			if !cellStarted {
				cellStarted = true
			}
			cell.WriteRune(ch)
		}
	}
	// Unterminated quote: treat the remainder as the final cell.
	if cellStarted || len(fields) > 0 {
		endRow()
	}

	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return rows, nil
}

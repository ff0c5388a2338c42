// Package sheet reads operator-supplied provisioning sheets (delimited text
// or XLSX workbooks) into a header-keyed table. Files are read fully into
// memory; inputs are provisioning batches, not telemetry streams.
package sheet

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrEmptyFile means the file contained no non-blank lines.
	ErrEmptyFile = errors.New("sheet: file is empty")
	// ErrNoColumns means the header line parsed to zero columns.
	ErrNoColumns = errors.New("sheet: header has no columns")
)

// Row is one data row keyed by header name. Line is the 1-indexed line
// number in the original file (the header is line 1), kept for diagnostics.
type Row struct {
	Line   int
	Values map[string]string
}

func (r Row) Get(column string) string {
	return r.Values[column]
}

type Table struct {
	Headers []string
	Rows    []Row
}

// candidate delimiters, checked against the header line.
var delimiters = []rune{',', ';', '\t', '|'}

// DetectDelimiter picks the candidate with the strictly highest count in
// the header line, defaulting to comma on a tie or when nothing matches.
func DetectDelimiter(headerLine string) rune {
	best := ','
	bestCount := 0
	tied := false
	for _, d := range delimiters {
		n := strings.Count(headerLine, string(d))
		switch {
		case n > bestCount:
			best = d
			bestCount = n
			tied = false
		case n == bestCount && n > 0:
			tied = true
		}
	}
	if tied {
		return ','
	}
	return best
}

// Read dispatches on the file extension: .xlsx workbooks go through
// excelize, everything else is treated as delimited text. delimiter 0
// means auto-detect.
func Read(path string, delimiter rune) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path)
	}
	return ReadFile(path, delimiter)
}

// ReadFile parses a delimited text file. The first non-blank line is the
// header; subsequent lines become rows keyed by header name, with missing
// trailing fields defaulting to "".
func ReadFile(path string, delimiter rune) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "sheet: read file")
	}
	return Parse(string(raw), delimiter)
}

// Parse parses delimited text. Exported separately so tests and callers
// holding in-memory content can skip the filesystem.
func Parse(content string, delimiter rune) (*Table, error) {
	content = strings.TrimPrefix(content, "\ufeff")

	type numbered struct {
		line int
		text string
	}
	var lines []numbered
	for i, text := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, numbered{line: i + 1, text: text})
	}
	if len(lines) == 0 {
		return nil, ErrEmptyFile
	}

	if delimiter == 0 {
		delimiter = DetectDelimiter(lines[0].text)
	}

	headers := splitLine(lines[0].text, delimiter)
	if len(headers) == 0 {
		return nil, ErrNoColumns
	}

	table := &Table{Headers: headers}
	for _, ln := range lines[1:] {
		fields := splitLine(ln.text, delimiter)
		values := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(fields) {
				values[h] = fields[i]
			} else {
				values[h] = ""
			}
		}
		table.Rows = append(table.Rows, Row{Line: ln.line, Values: values})
	}
	return table, nil
}

// splitLine scans one line into trimmed fields, honoring double-quoted
// fields with embedded delimiters and escaped "" quotes.
func splitLine(line string, delimiter rune) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == delimiter && !inQuotes:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteRune(ch)
		}
	}
	fields = append(fields, strings.TrimSpace(field.String()))

	// a line of pure delimiters still yields empty fields; a fully empty
	// single field means no columns at all
	if len(fields) == 1 && fields[0] == "" {
		return nil
	}
	return fields
}

// ReadXLSX reads the first sheet of a workbook into the same table shape:
// first row is the header, blank rows are skipped, short rows are padded.
func ReadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "sheet: open workbook")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "sheet: read rows")
	}

	var headers []string
	table := &Table{}
	line := 0
	for _, cells := range rows {
		line++
		blank := true
		for _, c := range cells {
			if strings.TrimSpace(c) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}

		if headers == nil {
			for _, c := range cells {
				headers = append(headers, strings.TrimSpace(c))
			}
			if len(headers) == 0 {
				return nil, ErrNoColumns
			}
			table.Headers = headers
			continue
		}

		values := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				values[h] = strings.TrimSpace(cells[i])
			} else {
				values[h] = ""
			}
		}
		table.Rows = append(table.Rows, Row{Line: line, Values: values})
	}
	if headers == nil {
		return nil, ErrEmptyFile
	}
	return table, nil
}

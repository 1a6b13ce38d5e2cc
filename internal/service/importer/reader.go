package importer

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"lunch/backend/internal/pkg/errs"
)

// Row is one data row and the line of the file it was read from.
type Row struct {
	Line  int
	Cells []string
}

// Table is a decoded upload: the header row and the data rows after it.
type Table struct {
	Header []string
	Rows   []Row
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read decodes an upload by file extension. Person files may use either ','
// or ';' as delimiter.
func Read(filename string, kind Kind, r io.Reader) (Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		var comma rune
		if kind == KindDepartments {
			comma = ','
		}
		return ReadCSV(r, comma)
	case ".xlsx":
		return ReadXLSX(r)
	}

	return Table{}, errs.New(errs.Validation, "invalid file format, upload a .csv or .xlsx file")
}

// ReadCSV decodes r as UTF-8 (optional BOM) or, when the bytes are not valid
// UTF-8, as Latin-1. A zero comma sniffs ',' or ';' from the header line.
func ReadCSV(r io.Reader, comma rune) (Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Table{}, errors.Wrap(err, "reading upload")
	}

	text, err := decode(raw)
	if err != nil {
		return Table{}, err
	}
	if comma == 0 {
		comma = sniffComma(text)
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var (
		table  Table
		next   int
		offset int64
	)
	for first := true; ; first = false {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, errs.Wrap(errs.Validation, err, "the file is not a valid CSV: "+err.Error())
		}

		line, _ := cr.FieldPos(0)
		record = normalize(record)
		if first {
			table.Header = record
		} else {
			// encoding/csv skips empty lines; they come back as rows without cells.
			for ; next < line; next++ {
				table.Rows = append(table.Rows, Row{Line: next})
			}
			table.Rows = append(table.Rows, Row{Line: line, Cells: record})
		}

		end := cr.InputOffset()
		next = line + strings.Count(text[offset:end], "\n")
		offset = end
	}

	if table.Header == nil {
		return Table{}, errs.New(errs.Validation, "the file is empty")
	}

	return table, nil
}

// ReadXLSX reads the first sheet of a workbook. Short rows are padded to the
// header width and fully blank rows are kept without cells.
func ReadXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, errs.Wrap(errs.Validation, err, "the file is not a valid .xlsx workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, errs.New(errs.Validation, "the workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, errors.Wrapf(err, "reading sheet %q", sheets[0])
	}
	if len(rows) == 0 {
		return Table{}, errs.New(errs.Validation, "the file is empty")
	}

	table := Table{Header: normalize(rows[0])}
	width := len(table.Header)

	for i, cells := range rows[1:] {
		if blank(cells) {
			table.Rows = append(table.Rows, Row{Line: i + 2})
			continue
		}
		for len(cells) < width {
			cells = append(cells, "")
		}
		table.Rows = append(table.Rows, Row{Line: i + 2, Cells: normalize(cells)})
	}

	return table, nil
}

func decode(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", errs.Wrap(errs.Validation, err, "the file encoding is not supported")
	}
	return string(out), nil
}

func sniffComma(text string) rune {
	line := text
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		line = text[:i]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}

// normalize composes accented characters so "María" typed on different
// systems compares equal.
func normalize(cells []string) []string {
	for i, c := range cells {
		cells[i] = norm.NFC.String(c)
	}
	return cells
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

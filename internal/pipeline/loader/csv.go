package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/ougirez/thaitourism/internal/pkg/constants"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readCSV reads a header row and all records. A leading UTF-8 or UTF-16 BOM is
// consumed; rows whose width differs from the header fail the load.
func readCSV(r io.Reader, source string) (*rawTable, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("empty source")
		}
		return nil, &constants.LoadError{Source: source, Line: 1, Err: err}
	}
	for i := range header {
		header[i] = cleanCell(header[i])
	}

	raw := &rawTable{header: header}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			line := 0
			if errors.As(err, &parseErr) {
				line = parseErr.StartLine
			}
			return nil, &constants.LoadError{Source: source, Line: line, Err: err}
		}

		line, _ := reader.FieldPos(0)
		for i := range row {
			row[i] = cleanCell(row[i])
		}
		raw.rows = append(raw.rows, row)
		raw.lines = append(raw.lines, line)
	}

	return raw, nil
}

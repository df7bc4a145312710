package loader

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
)

// readHTML reads the first table matching selector. The header comes from the
// first row's th cells, data rows from td cells; rows without td are skipped.
// Line numbers are 1-based table row positions.
func readHTML(r io.Reader, source, selector string) (*rawTable, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &constants.LoadError{Source: source, Err: fmt.Errorf("goquery.NewDocumentFromReader: %w", err)}
	}

	table := doc.Find(selector).First()
	if table.Length() == 0 {
		return nil, &constants.LoadError{Source: source, Err: fmt.Errorf("no table matches %q", selector)}
	}

	raw := &rawTable{}
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if raw.header == nil {
			if ths := tr.Find("th"); ths.Length() > 0 {
				ths.Each(func(_ int, th *goquery.Selection) {
					raw.header = append(raw.header, cleanCell(th.Text()))
				})
				return
			}
		}

		tds := tr.Find("td")
		if tds.Length() == 0 {
			// скипаем
			return
		}
		row := make([]string, 0, tds.Length())
		tds.Each(func(_ int, td *goquery.Selection) {
			row = append(row, cleanCell(td.Text()))
		})
		raw.rows = append(raw.rows, row)
		raw.lines = append(raw.lines, i+1)
	})

	if raw.header == nil {
		return nil, &constants.LoadError{Source: source, Err: fmt.Errorf("table %q has no header row", selector)}
	}
	for i, row := range raw.rows {
		if len(row) != len(raw.header) {
			return nil, &constants.LoadError{
				Source: source,
				Line:   raw.lines[i],
				Err:    fmt.Errorf("wrong number of fields: got %d, want %d", len(row), len(raw.header)),
			}
		}
	}

	return raw, nil
}

// Package loader reads the long ("original") and wide ("cleansed") tourism
// tables from CSV or HTML sources, local or remote. It validates structure
// only: expected columns, numeric cells and the closed region/variable codes.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ougirez/thaitourism/internal/domain"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
	"github.com/ougirez/thaitourism/internal/pkg/logger"
	"golang.org/x/text/unicode/norm"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// Source locates one table. URL takes precedence over Path.
type Source struct {
	Path     string
	URL      string
	Format   Format
	Selector string
}

func (s Source) name() string {
	if s.URL != "" {
		return s.URL
	}
	return s.Path
}

type Loader struct {
	client     *http.Client
	maxRetries uint64
	retryDelay time.Duration
}

type Option func(*Loader)

func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithRetry sets how often a failed fetch is retried and the constant delay between tries.
func WithRetry(maxRetries uint64, delay time.Duration) Option {
	return func(l *Loader) {
		l.maxRetries = maxRetries
		l.retryDelay = delay
	}
}

func New(opts ...Option) *Loader {
	l := &Loader{
		client:     &http.Client{Timeout: 30 * time.Second},
		maxRetries: 10,
		retryDelay: 10 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadLong reads a long-form source.
func (l *Loader) LoadLong(ctx context.Context, src Source) ([]domain.Record, error) {
	raw, err := l.read(ctx, src)
	if err != nil {
		return nil, err
	}
	return decodeLong(raw, src.name())
}

// LoadWide reads a wide-form source.
func (l *Loader) LoadWide(ctx context.Context, src Source) ([]domain.WideRecord, error) {
	raw, err := l.read(ctx, src)
	if err != nil {
		return nil, err
	}
	return decodeWide(raw, src.name())
}

// ReadLong decodes long-form CSV from r.
func ReadLong(r io.Reader, source string) ([]domain.Record, error) {
	raw, err := readCSV(r, source)
	if err != nil {
		return nil, err
	}
	return decodeLong(raw, source)
}

// ReadWide decodes wide-form CSV from r.
func ReadWide(r io.Reader, source string) ([]domain.WideRecord, error) {
	raw, err := readCSV(r, source)
	if err != nil {
		return nil, err
	}
	return decodeWide(raw, source)
}

func (l *Loader) read(ctx context.Context, src Source) (*rawTable, error) {
	name := src.name()

	var body io.Reader
	if src.URL != "" {
		data, err := l.fetch(ctx, src.URL)
		if err != nil {
			return nil, &constants.LoadError{Source: name, Err: err}
		}
		body = bytes.NewReader(data)
	} else {
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, &constants.LoadError{Source: name, Err: err}
		}
		defer f.Close()
		body = f
	}

	switch src.Format {
	case "", FormatCSV:
		return readCSV(body, name)
	case FormatHTML:
		return readHTML(body, name, src.Selector)
	}
	return nil, &constants.LoadError{Source: name, Err: fmt.Errorf("unknown format %q", src.Format)}
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	err := backoff.Retry(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return backoff.Permanent(fmt.Errorf("http.NewRequest: %w", err))
			}

			resp, err := l.client.Do(req)
			if err != nil {
				return fmt.Errorf("http.Get: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				err = fmt.Errorf("status code error: %d %s", resp.StatusCode, resp.Status)
				if resp.StatusCode >= 400 && resp.StatusCode < 500 {
					return backoff.Permanent(err)
				}
				logger.Warnf(ctx, "fetch %s: %s, retrying", url, err.Error())
				return err
			}

			data, err = io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("io.ReadAll: %w", err)
			}
			return nil
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(l.retryDelay), l.maxRetries),
			ctx,
		),
	)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return nil, permanent.Err
		}
		return nil, err
	}

	return data, nil
}

// rawTable is a parsed source before typing. lines[i] is the source line of rows[i].
type rawTable struct {
	header []string
	rows   [][]string
	lines  []int
}

func (t *rawTable) columns(source string, expected []string) (map[string]int, error) {
	idx := make(map[string]int, len(t.header))
	for i, h := range t.header {
		idx[h] = i
	}

	var missing []string
	for _, col := range expected {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &constants.SchemaError{Source: source, Missing: missing}
	}

	return idx, nil
}

var (
	longColumns = []string{domain.ColTravelDate, domain.ColRegion, domain.ColProvince, domain.ColVariable, domain.ColValue}
	wideColumns = func() []string {
		cols := []string{domain.ColTravelDate, domain.ColRegion, domain.ColProvince}
		for _, v := range domain.Variables() {
			cols = append(cols, string(v))
		}
		return cols
	}()
)

func decodeLong(raw *rawTable, source string) ([]domain.Record, error) {
	idx, err := raw.columns(source, longColumns)
	if err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(raw.rows))
	for i, row := range raw.rows {
		line := raw.lines[i]

		region, err := parseRegion(row[idx[domain.ColRegion]])
		if err != nil {
			return nil, &constants.LoadError{Source: source, Line: line, Err: err}
		}

		variable := domain.Variable(row[idx[domain.ColVariable]])
		if !variable.Valid() {
			return nil, &constants.LoadError{Source: source, Line: line, Err: fmt.Errorf("unknown variable %q", variable)}
		}

		value, err := parseNumber(row[idx[domain.ColValue]])
		if err != nil {
			return nil, &constants.LoadError{Source: source, Line: line, Err: fmt.Errorf("column %s: %w", domain.ColValue, err)}
		}

		records = append(records, domain.Record{
			TravelDate: row[idx[domain.ColTravelDate]],
			Region:     region,
			Province:   row[idx[domain.ColProvince]],
			Variable:   variable,
			Value:      value,
		})
	}

	return records, nil
}

func decodeWide(raw *rawTable, source string) ([]domain.WideRecord, error) {
	idx, err := raw.columns(source, wideColumns)
	if err != nil {
		return nil, err
	}

	records := make([]domain.WideRecord, 0, len(raw.rows))
	for i, row := range raw.rows {
		line := raw.lines[i]

		region, err := parseRegion(row[idx[domain.ColRegion]])
		if err != nil {
			return nil, &constants.LoadError{Source: source, Line: line, Err: err}
		}

		var values [7]float64
		for j, v := range domain.Variables() {
			values[j], err = parseNumber(row[idx[string(v)]])
			if err != nil {
				return nil, &constants.LoadError{Source: source, Line: line, Err: fmt.Errorf("column %s: %w", v, err)}
			}
		}

		records = append(records, domain.WideRecord{
			TravelDate:       row[idx[domain.ColTravelDate]],
			Region:           region,
			Province:         row[idx[domain.ColProvince]],
			NoTouristAll:     values[0],
			NoTouristForeign: values[1],
			NoTouristThai:    values[2],
			RevenueAll:       values[3],
			RevenueForeign:   values[4],
			RevenueThai:      values[5],
			RatioTouristStay: values[6],
		})
	}

	return records, nil
}

func parseRegion(s string) (domain.Region, error) {
	r := domain.Region(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown region %q", s)
	}
	return r, nil
}

func parseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return f, nil
}

func cleanCell(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

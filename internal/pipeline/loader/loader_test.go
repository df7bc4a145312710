package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ougirez/thaitourism/internal/domain"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
)

const longCSV = "travel_date,region_eng,province_eng,variable,value\n" +
	"2019-01-01,north,Chiang Mai,no_tourist_all,100\n" +
	"2019-01-01, south ,Phuket,revenue_all,\"1,500.5\"\n" +
	"2023-01-01,north,Chiang Mai,no_tourist_all,80\n"

const wideHeader = "travel_date,region_eng,province_eng,no_tourist_all,no_tourist_foreign,no_tourist_thai,revenue_all,revenue_foreign,revenue_thai,ratio_tourist_stay\n"

func TestReadLong(t *testing.T) {
	records, err := ReadLong(strings.NewReader("\uFEFF"+longCSV), "long.csv")
	if err != nil {
		t.Fatalf("ReadLong: %v", err)
	}

	want := []domain.Record{
		{TravelDate: "2019-01-01", Region: domain.RegionNorth, Province: "Chiang Mai", Variable: domain.NoTouristAll, Value: 100},
		{TravelDate: "2019-01-01", Region: domain.RegionSouth, Province: "Phuket", Variable: domain.RevenueAll, Value: 1500.5},
		{TravelDate: "2023-01-01", Region: domain.RegionNorth, Province: "Chiang Mai", Variable: domain.NoTouristAll, Value: 80},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i := range want {
		if records[i] != want[i] {
			t.Errorf("record %d: got %+v, want %+v", i, records[i], want[i])
		}
	}
}

func TestReadLongErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sentinel error
		line     int
		missing  []string
	}{
		{
			name:     "missing columns",
			input:    "travel_date,province_eng,value\n2019-01-01,Krabi,1\n",
			sentinel: constants.ErrSchema,
			missing:  []string{domain.ColRegion, domain.ColVariable},
		},
		{
			name:     "bad number",
			input:    "travel_date,region_eng,province_eng,variable,value\n2019-01-01,north,Nan,no_tourist_all,1\n2019-02-01,north,Nan,no_tourist_all,abc\n",
			sentinel: constants.ErrLoad,
			line:     3,
		},
		{
			name:     "nan value",
			input:    "travel_date,region_eng,province_eng,variable,value\n2019-01-01,north,Nan,no_tourist_all,NaN\n",
			sentinel: constants.ErrLoad,
			line:     2,
		},
		{
			name:     "infinite value",
			input:    "travel_date,region_eng,province_eng,variable,value\n2019-01-01,north,Nan,no_tourist_all,1\n2019-02-01,north,Nan,revenue_all,-Infinity\n",
			sentinel: constants.ErrLoad,
			line:     3,
		},
		{
			name:     "unknown variable",
			input:    "travel_date,region_eng,province_eng,variable,value\n2019-01-01,north,Nan,occupancy,1\n",
			sentinel: constants.ErrLoad,
			line:     2,
		},
		{
			name:     "unknown region",
			input:    "travel_date,region_eng,province_eng,variable,value\n2019-01-01,west,Nan,no_tourist_all,1\n",
			sentinel: constants.ErrLoad,
			line:     2,
		},
		{
			name:     "ragged row",
			input:    "travel_date,region_eng,province_eng,variable,value\n2019-01-01,north,Nan\n",
			sentinel: constants.ErrLoad,
			line:     2,
		},
		{
			name:     "empty",
			input:    "",
			sentinel: constants.ErrLoad,
			line:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadLong(strings.NewReader(tt.input), "test.csv")
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("got %v, want %v", err, tt.sentinel)
			}

			var loadErr *constants.LoadError
			if tt.line > 0 {
				if !errors.As(err, &loadErr) {
					t.Fatalf("got %T, want *LoadError", err)
				}
				if loadErr.Line != tt.line {
					t.Errorf("line = %d, want %d", loadErr.Line, tt.line)
				}
			}

			var schemaErr *constants.SchemaError
			if tt.missing != nil {
				if !errors.As(err, &schemaErr) {
					t.Fatalf("got %T, want *SchemaError", err)
				}
				if strings.Join(schemaErr.Missing, ",") != strings.Join(tt.missing, ",") {
					t.Errorf("missing = %v, want %v", schemaErr.Missing, tt.missing)
				}
			}
		})
	}
}

func TestReadWide(t *testing.T) {
	input := wideHeader + "2019-01-01,central,Bangkok,50,20,30,900,600,300,0.75\n"

	records, err := ReadWide(strings.NewReader(input), "wide.csv")
	if err != nil {
		t.Fatalf("ReadWide: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	r := records[0]
	if r.Province != "Bangkok" || r.NoTouristAll != 50 || r.NoTouristForeign != 20 || r.NoTouristThai != 30 ||
		r.RevenueAll != 900 || r.RevenueForeign != 600 || r.RevenueThai != 300 || r.RatioTouristStay != 0.75 {
		t.Errorf("unexpected record %+v", r)
	}
}

func TestReadWideNonFinite(t *testing.T) {
	input := wideHeader + "2019-01-01,central,Bangkok,50,20,30,900,600,300,0.75\n" +
		"2019-02-01,central,Bangkok,50,20,30,900,600,300,inf\n"

	_, err := ReadWide(strings.NewReader(input), "wide.csv")

	var loadErr *constants.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("got %v, want *LoadError", err)
	}
	if loadErr.Line != 3 {
		t.Errorf("line = %d, want 3", loadErr.Line)
	}
}

func TestLoadMissingFile(t *testing.T) {
	l := New()
	_, err := l.LoadLong(context.Background(), Source{Path: filepath.Join(t.TempDir(), "absent.csv")})
	if !errors.Is(err, constants.ErrLoad) {
		t.Fatalf("got %v, want ErrLoad", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("cause not kept: %v", err)
	}
}

func TestLoadHTML(t *testing.T) {
	page := `<html><body>
<table class="other"><tr><th>x</th></tr></table>
<table id="stats">
  <tr>` + thCells(wideHeader) + `</tr>
  <tr><td>2019-01-01</td><td>north</td><td>Chiang Mai</td><td>10</td><td>4</td><td>6</td><td>100</td><td>40</td><td>60</td><td>0.5</td></tr>
  <tr><td colspan="10"></td></tr>
  <tr><td>2019-02-01</td><td>north</td><td>Chiang Mai</td><td>12</td><td>5</td><td>7</td><td>120</td><td>50</td><td>70</td><td>0.6</td></tr>
</table></body></html>`

	path := filepath.Join(t.TempDir(), "stats.html")
	if err := os.WriteFile(path, []byte(page), 0o600); err != nil {
		t.Fatal(err)
	}

	l := New()
	src := Source{Path: path, Format: FormatHTML, Selector: "table#stats"}

	_, err := l.LoadWide(context.Background(), src)
	if !errors.Is(err, constants.ErrLoad) {
		t.Fatalf("colspan row: got %v, want ErrLoad", err)
	}

	page = strings.Replace(page, `<tr><td colspan="10"></td></tr>`, "", 1)
	if err := os.WriteFile(path, []byte(page), 0o600); err != nil {
		t.Fatal(err)
	}

	records, err := l.LoadWide(context.Background(), src)
	if err != nil {
		t.Fatalf("LoadWide: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].NoTouristAll != 10 || records[1].RevenueAll != 120 {
		t.Errorf("unexpected records %+v", records)
	}
}

func TestLoadURLRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(longCSV))
	}))
	defer srv.Close()

	l := New(WithRetry(5, time.Millisecond))
	records, err := l.LoadLong(context.Background(), Source{URL: srv.URL})
	if err != nil {
		t.Fatalf("LoadLong: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestLoadURLClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	l := New(WithRetry(5, time.Millisecond))
	_, err := l.LoadLong(context.Background(), Source{URL: srv.URL})
	if !errors.Is(err, constants.ErrLoad) {
		t.Fatalf("got %v, want ErrLoad", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1", got)
	}
}

func thCells(header string) string {
	var b strings.Builder
	for _, h := range strings.Split(strings.TrimSpace(header), ",") {
		b.WriteString("<th>" + h + "</th>")
	}
	return b.String()
}

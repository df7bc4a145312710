package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/ougirez/thaitourism/internal/domain"
	"github.com/ougirez/thaitourism/internal/domain/dto"
	"github.com/ougirez/thaitourism/internal/pipeline/display"
	"github.com/ougirez/thaitourism/internal/pipeline/loader"
	"github.com/ougirez/thaitourism/internal/pipeline/normalize"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
	"github.com/ougirez/thaitourism/internal/pkg/store"
	"github.com/ougirez/thaitourism/internal/service/auth"
	"github.com/ougirez/thaitourism/internal/service/insight"
	"github.com/ougirez/thaitourism/internal/service/tourism"
)

const (
	originalCSV = "travel_date,region_eng,province_eng,variable,value\n" +
		"2019-01-01,north,Chiang Mai,no_tourist_all,100\n" +
		"2019-01-01,north,Chiang Mai,revenue_all,1000\n" +
		"2023-01-01,south,Phuket,no_tourist_all,300\n" +
		"2023-01-01,south,Phuket,revenue_all,5000\n"
	cleansedCSV = "travel_date,region_eng,province_eng,no_tourist_all,no_tourist_foreign,no_tourist_thai,revenue_all,revenue_foreign,revenue_thai,ratio_tourist_stay\n" +
		"2019-01-01,north,Chiang Mai,100,30,70,1000,400,600,0.5\n" +
		"2023-01-01,north,Chiang Mai,80,20,60,900,300,600,0.6\n" +
		"2019-01-01,east,Trat,0,0,0,0,0,0,0.2\n" +
		"2023-01-01,east,Trat,15,5,10,150,50,100,0.3\n"
)

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func newAPI(t *testing.T, secret string, gen insight.Generator) *APIService {
	t.Helper()

	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	svc := tourism.NewService(
		store.NewStore(),
		loader.New(),
		normalize.New(normalize.DatePolicyAbort, nil),
		display.New(display.DefaultLabels()),
		tourism.Options{
			Original: loader.Source{Path: write("original.csv", originalCSV)},
			Cleansed: loader.Source{Path: write("cleansed.csv", cleansedCSV)},
			BaseYear: 2019,
			TopN:     10,
			Forecast: tourism.ForecastOptions{Alpha: 0.8, Beta: 0.2, Horizon: 3},
		},
	)

	api, err := NewAPIService(svc, auth.NewService(secret), gen, Options{
		AllowOrigins:   []string{"*"},
		InsightTimeout: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	return api
}

func do(t *testing.T, api *APIService, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := sonic.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func reload(t *testing.T, api *APIService) {
	t.Helper()
	if rec := do(t, api, http.MethodPost, "/api/v1/datasets/reload", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("reload: %d %s", rec.Code, rec.Body.String())
	}
}

func TestNotLoadedAnswers503(t *testing.T) {
	api := newAPI(t, "", nil)

	rec := do(t, api, http.MethodGet, "/api/v1/summary", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d", rec.Code)
	}

	var resp domain.ErrorResponse
	decode(t, rec, &resp)
	if resp.Code != http.StatusServiceUnavailable || resp.Message != constants.ErrDatasetNotLoaded.Error() {
		t.Errorf("got %+v", resp)
	}
}

func TestViews(t *testing.T) {
	api := newAPI(t, "", nil)
	reload(t, api)

	tests := []struct {
		target string
		code   int
		want   string
	}{
		{target: "/api/v1/regions/distribution", code: http.StatusOK, want: `"group_label":"North"`},
		{target: "/api/v1/regions/distribution?context=revenue", code: http.StatusOK, want: "Revenue from all tourists"},
		{target: "/api/v1/regions/distribution?context=chart", code: http.StatusBadRequest},
		{target: "/api/v1/provinces/distribution?context=comparison", code: http.StatusOK, want: "Tourist numbers"},
		{target: "/api/v1/provinces/top?n=1", code: http.StatusOK, want: `"province":"Phuket"`},
		{target: "/api/v1/provinces/top?n=abc", code: http.StatusBadRequest},
		{target: "/api/v1/provinces/top?n=-1", code: http.StatusBadRequest},
		{target: "/api/v1/provinces/top?variable=revenue_all", code: http.StatusOK, want: `"display":"0B"`},
		{target: "/api/v1/provinces/top/2023?n=1", code: http.StatusOK, want: `"province":"Chiang Mai","region":"North"`},
		{target: "/api/v1/provinces/comparison?n=1", code: http.StatusOK, want: `"variable_label":"Revenue"`},
		{target: "/api/v1/trends/yearly", code: http.StatusOK, want: `"years":[2019,2023]`},
		{target: "/api/v1/trends/forecast?horizon=2", code: http.StatusOK, want: `"2025"`},
		{target: "/api/v1/trends/forecast?horizon=50", code: http.StatusBadRequest},
		{target: "/api/v1/recovery", code: http.StatusOK, want: `"state":"infinite"`},
		{target: "/api/v1/recovery?base_year=2023&latest_year=2023", code: http.StatusOK, want: `"rate":100`},
		{target: "/api/v1/summary", code: http.StatusOK, want: `"total_tourists":195`},
		{target: "/api/v1/summary", code: http.StatusOK, want: `"top_provinces_revenue":[{"key":"Chiang Mai"`},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, api, http.MethodGet, tt.target, "", nil)
			if rec.Code != tt.code {
				t.Fatalf("got %d %s, want %d", rec.Code, rec.Body.String(), tt.code)
			}
			if tt.want != "" && !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body %s lacks %s", rec.Body.String(), tt.want)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	api := newAPI(t, "", nil)

	rec := do(t, api, http.MethodGet, "/api/v1/summary", "", http.Header{constants.HeaderRequestID: {"abc-123"}})
	if got := rec.Header().Get(constants.HeaderRequestID); got != "abc-123" {
		t.Errorf("request id %q", got)
	}

	rec = do(t, api, http.MethodGet, "/api/v1/summary", "", nil)
	if rec.Header().Get(constants.HeaderRequestID) == "" {
		t.Error("request id not generated")
	}
}

func TestInsights(t *testing.T) {
	release := make(chan struct{})
	gen := generatorFunc(func(_ context.Context, prompt string) (string, error) {
		if strings.HasPrefix(prompt, "slow") {
			<-release
		}
		return "answer to " + strings.SplitN(prompt, "\n", 2)[0], nil
	})

	api := newAPI(t, "s3cret", gen)
	reload(t, api)

	token, err := auth.NewService("s3cret").IssueToken("analyst", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	bearer := http.Header{"Authorization": {"Bearer " + token}}

	if rec := do(t, api, http.MethodPost, "/api/v1/insights", `{"question":"q"}`, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: got %d", rec.Code)
	}
	if rec := do(t, api, http.MethodPost, "/api/v1/insights", `{"question":""}`, bearer); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty question: got %d", rec.Code)
	}

	rec := do(t, api, http.MethodPost, "/api/v1/insights", `{"question":"fast"}`, bearer)
	if rec.Code != http.StatusOK {
		t.Fatalf("fast: got %d %s", rec.Code, rec.Body.String())
	}
	var done dto.InsightResponse
	decode(t, rec, &done)
	if done.Status != "done" || done.Text != "answer to fast" {
		t.Errorf("fast: %+v", done)
	}

	rec = do(t, api, http.MethodPost, "/api/v1/insights", `{"question":"slow"}`, bearer)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("slow: got %d %s", rec.Code, rec.Body.String())
	}
	var running dto.InsightResponse
	decode(t, rec, &running)
	if running.Status != "running" || running.ID == "" {
		t.Fatalf("slow: %+v", running)
	}

	close(release)
	rec = do(t, api, http.MethodGet, "/api/v1/insights/"+running.ID+"?wait=1s", "", bearer)
	if rec.Code != http.StatusOK {
		t.Fatalf("poll: got %d %s", rec.Code, rec.Body.String())
	}
	var polled dto.InsightResponse
	decode(t, rec, &polled)
	if polled.Status != "done" || polled.Text != "answer to slow" {
		t.Errorf("poll: %+v", polled)
	}

	if rec := do(t, api, http.MethodGet, "/api/v1/insights/"+running.ID, "", bearer); rec.Code != http.StatusNotFound {
		t.Errorf("second poll: got %d", rec.Code)
	}
	if rec := do(t, api, http.MethodGet, "/api/v1/insights/nope", "", bearer); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: got %d", rec.Code)
	}
}

func TestInsightsDisabled(t *testing.T) {
	api := newAPI(t, "", nil)
	reload(t, api)

	if rec := do(t, api, http.MethodPost, "/api/v1/insights", `{"question":"q"}`, nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("got %d", rec.Code)
	}
}

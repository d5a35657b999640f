package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikeshare-dashboard/services"
	"bikeshare-dashboard/storage"
	"bikeshare-dashboard/testutil"
	"bikeshare-dashboard/utils"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	csv := testutil.DailyCSV(testutil.Day(2011, time.January, 1), 731)
	table, err := storage.ReadCSV(context.Background(), strings.NewReader(csv), "day.csv", utils.Discard())
	require.NoError(t, err)

	s, err := New(services.NewDataView(table, utils.Discard()), utils.Discard(), prometheus.NewRegistry())
	require.NoError(t, err)
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestBounds(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/bounds")
	require.Equal(t, http.StatusOK, rec.Code)

	var got boundsResponse
	decode(t, rec, &got)
	assert.Equal(t, boundsResponse{Min: "2011-01-01", Max: "2012-12-31", Days: 731}, got)
}

func TestRecordsFirstWeek(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/records?start=2011-01-01&end=2011-01-07&categorize=true")
	require.Equal(t, http.StatusOK, rec.Code)

	var got recordsResponse
	decode(t, rec, &got)
	assert.Equal(t, 7, got.Count)
	require.Len(t, got.Records, 7)
	assert.Equal(t, "2011-01-01", got.Records[0].Date)
	assert.Equal(t, "2011-01-07", got.Records[6].Date)
	assert.Equal(t, "Low", got.Records[0].Category)
	assert.Equal(t, "High", got.Records[6].Category)
	require.NotNil(t, got.Records[0].Covariates["temp"])
}

func TestRecordsClampsToBounds(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/records?start=2010-01-01&end=2011-01-03")
	require.Equal(t, http.StatusOK, rec.Code)

	var got recordsResponse
	decode(t, rec, &got)
	assert.Equal(t, "2011-01-01", got.Start)
	assert.Equal(t, 3, got.Count)
}

func TestTotal(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/total?start=2011-01-01&end=2011-01-07")
	require.Equal(t, http.StatusOK, rec.Code)
	var got totalResponse
	decode(t, rec, &got)
	assert.Equal(t, totalResponse{Start: "2011-01-01", End: "2011-01-07", Days: 7, Total: 7777}, got)

	rec = get(t, s, "/api/total?start=2011-06-02&end=2011-06-01")
	decode(t, rec, &got)
	assert.Equal(t, 0, got.Total)
	assert.Equal(t, 0, got.Days)
}

func TestRangeOutsideDataMatchesNothing(t *testing.T) {
	s := newTestServer(t)

	for _, q := range []string{"start=2013-01-01&end=2013-02-01", "start=2010-01-01&end=2010-06-01"} {
		t.Run(q, func(t *testing.T) {
			var total totalResponse
			decode(t, get(t, s, "/api/total?"+q), &total)
			assert.Equal(t, 0, total.Days)
			assert.Equal(t, 0, total.Total)

			var recs recordsResponse
			decode(t, get(t, s, "/api/records?"+q), &recs)
			assert.Equal(t, 0, recs.Count)

			assert.Contains(t, get(t, s, "/api/views/trend?"+q).Body.String(), `"empty":true`)
		})
	}
}

func TestDashboardPageFutureDay(t *testing.T) {
	body := get(t, newTestServer(t), "/?day=2020-01-01").Body.String()
	assert.Contains(t, body, "No data for 01 January 2020")
	assert.NotContains(t, body, "31 December 2012")
}

func TestDay(t *testing.T) {
	s := newTestServer(t)

	var got dayResponse
	decode(t, get(t, s, "/api/day?day=2011-01-02"), &got)
	assert.True(t, got.Found)
	assert.Equal(t, 1037, got.Count)
	require.NotNil(t, got.Record)

	got = dayResponse{}
	decode(t, get(t, s, "/api/day?day=2013-05-01"), &got)
	assert.False(t, got.Found)
	assert.Nil(t, got.Record)
}

func TestBadParams(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{
		"/api/total?start=yesterday",
		"/api/day?day=31/31/2011",
		"/api/records?categorize=maybe",
		"/charts?end=2011-13-01",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, s, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var got errorResponse
			decode(t, rec, &got)
			assert.NotEmpty(t, got.Error)
		})
	}
}

func TestUnknownViewAndGroup(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/views/pie").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/groups/colour").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/charts?view=pie").Code)
}

func TestViewEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/views/correlation?start=2011-01-01&end=2011-12-31")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Total int `json:"total"`
		View  struct {
			Kind        string `json:"kind"`
			Empty       bool   `json:"empty"`
			Correlation struct {
				Columns []string     `json:"columns"`
				Values  [][]*float64 `json:"values"`
			} `json:"correlation"`
			Categories []struct {
				Key string `json:"key"`
				N   int    `json:"n"`
			} `json:"categories"`
		} `json:"view"`
	}
	decode(t, rec, &got)
	assert.Equal(t, "correlation", got.View.Kind)
	assert.False(t, got.View.Empty)
	assert.Contains(t, got.View.Correlation.Columns, "temp")
	require.Len(t, got.View.Categories, 3)

	days := 0
	for _, c := range got.View.Categories {
		days += c.N
	}
	assert.Equal(t, 365, days)
}

func TestViewEndpointEmptyRange(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/views/weather?start=2011-06-02&end=2011-06-01")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"empty":true`)
}

func TestCorrelationExclude(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/correlation?exclude=instant,casual")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Columns []string `json:"columns"`
	}
	decode(t, rec, &got)
	assert.NotContains(t, got.Columns, "instant")
	assert.NotContains(t, got.Columns, "casual")
	assert.Contains(t, got.Columns, "count")
}

func TestGroups(t *testing.T) {
	s := newTestServer(t)

	var got groupsResponse
	decode(t, get(t, s, "/api/groups/weather?start=2011-01-01&end=2011-01-31"), &got)
	assert.Equal(t, "weather", got.Key)
	require.Len(t, got.Groups, 3)
	assert.Equal(t, "1", got.Groups[0].Key)

	got = groupsResponse{}
	decode(t, get(t, s, "/api/groups/rental_category"), &got)
	require.Len(t, got.Groups, 3)
	assert.Equal(t, "Low", got.Groups[0].Key)
}

func TestDashboardPage(t *testing.T) {
	rec := get(t, newTestServer(t), "/?start=2011-01-01&end=2011-01-07&day=2011-01-02&view=weekday")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "7,777")
	assert.Contains(t, body, "02 January 2011")
	assert.Contains(t, body, "1,037")
	assert.Contains(t, body, "Rental Distribution by Weekday")
	assert.Contains(t, body, "view=weekday")
	assert.Contains(t, body, dataSourceURL)
}

func TestDashboardPageEmptyRange(t *testing.T) {
	body := get(t, newTestServer(t), "/?start=2011-06-02&end=2011-06-01").Body.String()
	assert.Contains(t, body, "No data for the selected date range.")
}

func TestChartsPage(t *testing.T) {
	rec := get(t, newTestServer(t), "/charts?view=trend&start=2011-01-01&end=2011-03-31")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Daily bike rentals")
}

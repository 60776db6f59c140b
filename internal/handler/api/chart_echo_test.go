package api

import (
	"net/http"
	"strings"
	"testing"

	xhttp "PortfolioAssist/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartSVG(t *testing.T) {
	app := newTestApp(t, nil)
	app.postJSON(`{"name":"Stocks","amount":"3"}`)
	app.postJSON(`{"name":"Bonds","amount":"7"}`)

	rec := app.do(http.MethodGet, "/api/chart.svg", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "private, max-age=5", rec.Header().Get("Cache-Control"))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "<svg"))
	assert.Contains(t, body, "30.0%")
	assert.Contains(t, body, "70.0%")
}

func TestChartPartialFrameIsNotCached(t *testing.T) {
	app := newTestApp(t, nil)
	app.postJSON(`{"name":"Stocks","amount":"3"}`)

	rec := app.do(http.MethodGet, "/api/chart.svg?progress=0.25&width=40&height=5000", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestChartEmptyPortfolio(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodGet, "/api/chart.svg", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No investments yet")
}

func TestChartPNG(t *testing.T) {
	app := newTestApp(t, nil)
	app.postJSON(`{"name":"Cash","amount":"1"}`)

	rec := app.do(http.MethodGet, "/api/chart.png?width=120&height=120", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", rec.Body.String()[:4])
}

func TestChartRejectsBadQuery(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodGet, "/api/chart.svg?progress=half", "", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errs []xhttp.ValidationError
	decode(t, rec, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_NUMERIC", errs[0].Code)
	assert.Equal(t, "progress", errs[0].Field)

	rec = app.do(http.MethodGet, "/api/chart.svg?width=-5", "", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

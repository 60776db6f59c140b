package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageEmpty(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodGet, "/", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Smart Portfolio Assistant</title>")
	assert.Contains(t, body, "Connection: <span id=\"network-type\">unknown</span>")
	assert.Contains(t, body, "Total Portfolio: <span id=\"total\">$0</span>")
	assert.Contains(t, body, `id="clear-all" hidden`)
	assert.Contains(t, body, `id="investments" hidden`)
	assert.Contains(t, body, "No investments yet")
}

func TestPageWithEntries(t *testing.T) {
	app := newTestApp(t, nil)
	app.postJSON(`{"name":"Real Estate","amount":"2500"}`)
	app.postJSON(`{"name":"<b>Bitcoin</b>","amount":"7500"}`)

	rec := app.do(http.MethodGet, "/", "", "", http.Header{"Ect": {"slow-2g"}})
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Total Portfolio: <span id=\"total\">$10,000</span>")
	assert.Contains(t, body, "<td>Real Estate</td>")
	assert.Contains(t, body, "&lt;b&gt;Bitcoin&lt;/b&gt;")
	assert.NotContains(t, body, "<b>Bitcoin</b>")
	assert.NotContains(t, body, `id="investments" hidden`)
	assert.NotContains(t, body, `id="network-slow" hidden`)
	assert.Contains(t, body, "75.0%")
}

func TestPageLegendShowsAmounts(t *testing.T) {
	app := newTestApp(t, nil)
	app.postJSON(`{"name":"Stocks","amount":"3000"}`)
	app.postJSON(`{"name":"Bonds","amount":"7000.5"}`)

	rec := app.do(http.MethodGet, "/", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `<span class="swatch" style="background: #3B82F6"></span><span>Stocks: $3,000</span>`)
	assert.Contains(t, body, `<span class="swatch" style="background: #EF4444"></span><span>Bonds: $7,000.5</span>`)
	assert.NotContains(t, body, "Stocks (")
}

func TestStaticAssets(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(http.MethodGet, "/static/app.js", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "WebSocket")
}

package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"PortfolioAssist/internal/repository"
	icache "PortfolioAssist/internal/service/cache"
	"PortfolioAssist/internal/service/chart"
	"PortfolioAssist/internal/service/network"
	"PortfolioAssist/internal/service/ratelimit"
	"PortfolioAssist/internal/usecase"
	"PortfolioAssist/internal/view"
	pkgcache "PortfolioAssist/pkg/cache"
	xhttp "PortfolioAssist/pkg/http"
	xlogger "PortfolioAssist/pkg/logger"
	"PortfolioAssist/pkg/metrics"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	server    *xhttp.Server
	portfolio *usecase.PortfolioService
	views     *view.Manager
	clock     *clockwork.FakeClock
}

func newTestApp(t *testing.T, limiter *ratelimit.Limiter) *testApp {
	t.Helper()
	reg := prometheus.NewRegistry()
	rec := metrics.NewWithRegistry(reg)
	logger := xlogger.NewNop()

	store := repository.NewMemoryPortfolioStore()
	portfolio := usecase.NewPortfolioService(store, rec)
	renderer := chart.NewRenderer(chart.WithSize(300, 300))
	frames := usecase.NewChartFrames(renderer,
		icache.NewFrameCache(pkgcache.NewMemoryCache(pkgcache.WithMemoryCleanup(0))),
		rec, logger, time.Minute)
	advisor := network.NewAdvisor()

	fc := clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	views := view.NewManager(store, renderer, rec, logger,
		view.WithClock(fc),
		view.WithSyncInterval(time.Hour),
	)

	page, err := NewPageHandler(logger, portfolio, frames, advisor, 15*time.Second)
	require.NoError(t, err)

	server := xhttp.NewServer([]xhttp.Handler{
		page,
		NewPortfolioEchoHandler(logger, portfolio, limiter, rec),
		NewChartEchoHandler(logger, portfolio, frames),
		NewNetworkEchoHandler(advisor),
		NewViewSocketHandler(logger, views),
	}, xhttp.WithRegistry(reg), xhttp.WithLogger(logger))

	return &testApp{server: server, portfolio: portfolio, views: views, clock: fc}
}

func (a *testApp) do(method, target, contentType, body string, header http.Header) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	a.server.Echo().ServeHTTP(rec, req)
	return rec
}

func (a *testApp) postJSON(body string) *httptest.ResponseRecorder {
	return a.do(http.MethodPost, "/api/investments", "application/json", body, nil)
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

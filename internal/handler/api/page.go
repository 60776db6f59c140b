package api

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"PortfolioAssist/internal/domain/models"
	"PortfolioAssist/internal/service/chart"
	"PortfolioAssist/internal/service/network"
	"PortfolioAssist/internal/usecase"
	xhttp "PortfolioAssist/pkg/http"
	xlogger "PortfolioAssist/pkg/logger"
	"PortfolioAssist/web"

	"github.com/labstack/echo/v4"
)

// PageTitle is shown in the header, footer and window title.
const PageTitle = "Smart Portfolio Assistant"

type pageData struct {
	Title               string
	Network             models.NetworkAdvice
	Allocation          models.Allocation
	Chart               template.HTML
	Width               int
	Height              int
	LastSync            string
	SyncIntervalSeconds int
}

// PageHandler renders the initial page; the view connection keeps it live.
type PageHandler struct {
	logger       *xlogger.Logger
	portfolio    *usecase.PortfolioService
	frames       *usecase.ChartFrames
	advisor      *network.Advisor
	syncInterval time.Duration
	tmpl         *template.Template
}

func NewPageHandler(logger *xlogger.Logger, portfolio *usecase.PortfolioService, frames *usecase.ChartFrames, advisor *network.Advisor, syncInterval time.Duration) (*PageHandler, error) {
	tmpl, err := template.ParseFS(web.FS, web.IndexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &PageHandler{
		logger:       logger.Component("page"),
		portfolio:    portfolio,
		frames:       frames,
		advisor:      advisor,
		syncInterval: syncInterval,
		tmpl:         tmpl,
	}, nil
}

func (h *PageHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.StaticFS("/static", echo.MustSubFS(web.FS, "static"))
}

// Index renders the page with the final chart frame inline.
func (h *PageHandler) Index(c echo.Context) error {
	ctx := c.Request().Context()
	requestClientHints(c)

	snap := h.portfolio.Snapshot()
	svg, err := h.frames.Frame(ctx, snap, chart.FormatSVG, 1, 0, 0)
	if err != nil {
		h.logger.Error("render initial chart failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Could not render chart").WithError(err))
	}
	w, ht := h.frames.FrameSize(0, 0)

	// the chart is renderer output and carries only percentage labels
	data := pageData{
		Title:               PageTitle,
		Network:             h.advisor.Advise(network.SignalFromHeaders(c.Request().Header)),
		Allocation:          usecase.Summarize(snap),
		Chart:               template.HTML(svg),
		Width:               w,
		Height:              ht,
		LastSync:            time.Now().Format("15:04:05"),
		SyncIntervalSeconds: int(h.syncInterval / time.Second),
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		h.logger.Error("render page failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

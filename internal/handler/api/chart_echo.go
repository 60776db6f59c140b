package api

import (
	"net/http"

	"PortfolioAssist/internal/domain/models"
	"PortfolioAssist/internal/service/chart"
	"PortfolioAssist/internal/usecase"
	xhttp "PortfolioAssist/pkg/http"
	xlogger "PortfolioAssist/pkg/logger"
	"PortfolioAssist/pkg/util"

	"github.com/labstack/echo/v4"
)

// ChartEchoHandler serves single chart frames as images.
type ChartEchoHandler struct {
	logger    *xlogger.Logger
	portfolio *usecase.PortfolioService
	frames    *usecase.ChartFrames
}

func NewChartEchoHandler(logger *xlogger.Logger, portfolio *usecase.PortfolioService, frames *usecase.ChartFrames) *ChartEchoHandler {
	return &ChartEchoHandler{logger: logger.Component("chart"), portfolio: portfolio, frames: frames}
}

func (h *ChartEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/chart.svg", h.frame(chart.FormatSVG))
	g.GET("/chart.png", h.frame(chart.FormatPNG))
}

func (h *ChartEchoHandler) frame(format chart.Format) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := &models.ChartRequest{}
		if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
			return xhttp.BadRequestResponse(c, verr)
		}
		progress, ok := util.ParseFiniteFloat(req.Progress)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("progress must be a finite number"))
		}

		b, err := h.frames.Frame(c.Request().Context(), h.portfolio.Snapshot(), format, progress, req.Width, req.Height)
		if err != nil {
			h.logger.Error("render frame failed",
				xlogger.String("format", string(format)),
				xlogger.Error(err),
			)
			return xhttp.AppErrorResponse(c, xhttp.InternalError("Could not render chart").WithError(err))
		}

		if progress >= 1 {
			c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=5")
		} else {
			c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
		}
		return c.Blob(http.StatusOK, format.ContentType(), b)
	}
}

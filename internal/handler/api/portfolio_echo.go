package api

import (
	"errors"

	"PortfolioAssist/internal/domain/models"
	domrepo "PortfolioAssist/internal/domain/repository"
	"PortfolioAssist/internal/service/ratelimit"
	"PortfolioAssist/internal/usecase"
	xhttp "PortfolioAssist/pkg/http"
	xlogger "PortfolioAssist/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PortfolioEchoHandler serves the investment form and the portfolio summary.
type PortfolioEchoHandler struct {
	logger    *xlogger.Logger
	portfolio *usecase.PortfolioService
	limiter   *ratelimit.Limiter
	metrics   domrepo.Metrics
}

// NewPortfolioEchoHandler builds the handler. A nil limiter disables rate limiting.
func NewPortfolioEchoHandler(logger *xlogger.Logger, portfolio *usecase.PortfolioService, limiter *ratelimit.Limiter, metrics domrepo.Metrics) *PortfolioEchoHandler {
	return &PortfolioEchoHandler{
		logger:    logger.Component("portfolio"),
		portfolio: portfolio,
		limiter:   limiter,
		metrics:   metrics,
	}
}

func (h *PortfolioEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/portfolio", h.Portfolio)
	g.POST("/investments", h.Add)
	g.DELETE("/investments", h.Clear)
}

// Portfolio returns the current allocation.
func (h *PortfolioEchoHandler) Portfolio(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.portfolio.Summary(c.Request().Context()))
}

// Add validates the form and appends one investment.
func (h *PortfolioEchoHandler) Add(c echo.Context) error {
	if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
		h.metrics.RecordError("rate_limited")
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("Too many submissions, slow down"))
	}

	req := &models.AddInvestmentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		if errs, ok := verr.([]xhttp.ValidationError); ok {
			for _, e := range errs {
				h.metrics.RecordValidationRejected(e.Field)
			}
		}
		return xhttp.BadRequestResponse(c, verr)
	}

	alloc, err := h.portfolio.Add(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInvestment) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
		}
		h.logger.Error("add investment failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	h.logger.Debug("investment added",
		xlogger.Int("count", alloc.Count),
		xlogger.Float64("total", alloc.Total),
	)
	return xhttp.CreatedResponse(c, alloc)
}

// Clear removes every investment.
func (h *PortfolioEchoHandler) Clear(c echo.Context) error {
	alloc := h.portfolio.Clear(c.Request().Context())
	h.logger.Info("portfolio cleared")
	return xhttp.SuccessResponse(c, alloc)
}

package api

import (
	"PortfolioAssist/internal/service/network"
	xhttp "PortfolioAssist/pkg/http"

	"github.com/labstack/echo/v4"
)

// NetworkEchoHandler reports connection advice derived from client hints.
type NetworkEchoHandler struct {
	advisor *network.Advisor
}

func NewNetworkEchoHandler(advisor *network.Advisor) *NetworkEchoHandler {
	return &NetworkEchoHandler{advisor: advisor}
}

func (h *NetworkEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/network", h.Network)
}

// Network advises on the request's ECT and Save-Data hints.
func (h *NetworkEchoHandler) Network(c echo.Context) error {
	requestClientHints(c)
	advice := h.advisor.Advise(network.SignalFromHeaders(c.Request().Header))
	return xhttp.SuccessResponse(c, advice)
}

// requestClientHints asks the browser to send connection hints on later requests.
func requestClientHints(c echo.Context) {
	h := c.Response().Header()
	h.Set(network.HeaderAcceptCH, network.AcceptCHValue)
	h.Add(echo.HeaderVary, network.HeaderECT)
	h.Add(echo.HeaderVary, network.HeaderSaveData)
}

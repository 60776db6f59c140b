package api

import (
	"context"
	"errors"
	"time"

	"PortfolioAssist/internal/domain/models"
	"PortfolioAssist/internal/service/network"
	"PortfolioAssist/internal/view"
	xlogger "PortfolioAssist/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingPeriod   = (wsPongWait * 9) / 10
	wsReadLimit    = 4096
)

// ViewSocketHandler upgrades /ws and serves one view session per connection.
type ViewSocketHandler struct {
	logger   *xlogger.Logger
	views    *view.Manager
	upgrader websocket.Upgrader
}

func NewViewSocketHandler(logger *xlogger.Logger, views *view.Manager) *ViewSocketHandler {
	return &ViewSocketHandler{
		logger: logger.Component("ws"),
		views:  views,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
		},
	}
}

func (h *ViewSocketHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Serve)
}

// Serve runs the view session until the page disconnects or the server shuts down.
func (h *ViewSocketHandler) Serve(c echo.Context) error {
	initial := network.SignalFromHeaders(c.Request().Header)
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already wrote the error response
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	out := &socketOutbox{conn: conn, timeout: wsWriteTimeout}
	s := h.views.NewSession(out, initial)

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	in := make(chan *models.NetworkSignal)
	go h.read(ctx, cancel, conn, in)
	go h.ping(ctx, conn)

	if err := h.views.Serve(ctx, s, in); err != nil {
		h.logger.Warn("view session ended", xlogger.String("view_id", s.ID()), xlogger.Error(err))
		return nil
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteTimeout))
	return nil
}

// read forwards inbound network signals and cancels the session when the
// page goes away.
func (h *ViewSocketHandler) read(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, in chan<- *models.NetworkSignal) {
	defer cancel()
	defer close(in)

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var msg models.InboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !errors.Is(err, context.Canceled) {
				h.logger.Debug("websocket read ended", xlogger.Error(err))
			}
			return
		}
		if msg.Type != models.MessageNetwork {
			continue
		}
		sig := &models.NetworkSignal{EffectiveType: msg.EffectiveType, SaveData: msg.SaveData}
		select {
		case in <- sig:
		case <-ctx.Done():
			return
		}
	}
}

func (h *ViewSocketHandler) ping(ctx context.Context, conn *websocket.Conn) {
	t := time.NewTicker(wsPingPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}

// socketOutbox writes view messages as JSON text frames.
type socketOutbox struct {
	conn    *websocket.Conn
	timeout time.Duration
}

func (o *socketOutbox) Send(msg models.ViewMessage) error {
	if err := o.conn.SetWriteDeadline(time.Now().Add(o.timeout)); err != nil {
		return err
	}
	return o.conn.WriteJSON(msg)
}

var _ view.Outbox = (*socketOutbox)(nil)

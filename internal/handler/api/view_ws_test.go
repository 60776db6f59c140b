package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"PortfolioAssist/internal/domain/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rawMessage struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

func dialView(t *testing.T, app *testApp, header http.Header) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(app.server.Echo())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readView(t *testing.T, conn *websocket.Conn) rawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg rawMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestViewSocketMountAndNetworkChange(t *testing.T) {
	app := newTestApp(t, nil)
	app.postJSON(`{"name":"Stocks","amount":"100"}`)
	conn := dialView(t, app, http.Header{"Ect": {"4g"}})

	msg := readView(t, conn)
	require.Equal(t, models.MessageNetwork, msg.Type)
	assert.Equal(t, "4g", msg.Data["connectionType"])
	assert.Equal(t, false, msg.Data["isSlowConnection"])

	msg = readView(t, conn)
	require.Equal(t, models.MessageSnapshot, msg.Type)
	assert.Equal(t, "$100", msg.Data["totalLabel"])

	msg = readView(t, conn)
	require.Equal(t, models.MessageSync, msg.Type)
	assert.Equal(t, 100.0, msg.Data["total"])
	assert.NotEmpty(t, msg.Data["viewId"])
	assert.Equal(t, 1, app.views.Active())

	require.NoError(t, conn.WriteJSON(models.InboundMessage{Type: "network", EffectiveType: "2g"}))

	msg = readView(t, conn)
	require.Equal(t, models.MessageNetwork, msg.Type)
	assert.Equal(t, true, msg.Data["isSlowConnection"])

	msg = readView(t, conn)
	require.Equal(t, models.MessageFrame, msg.Type)
	assert.Equal(t, 1.0, msg.Data["progress"])
	assert.Contains(t, msg.Data["svg"], "100.0%")
}

func TestViewSocketPublishesStoreChanges(t *testing.T) {
	app := newTestApp(t, nil)
	conn := dialView(t, app, nil)
	for _, want := range []string{models.MessageNetwork, models.MessageSnapshot, models.MessageSync} {
		require.Equal(t, want, readView(t, conn).Type)
	}

	app.postJSON(`{"name":"Gold","amount":"42"}`)

	msg := readView(t, conn)
	require.Equal(t, models.MessageSnapshot, msg.Type)
	assert.Equal(t, "$42", msg.Data["totalLabel"])
	rows := msg.Data["rows"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Gold", rows[0].(map[string]interface{})["name"])
}

func TestViewSocketUnmountsOnDisconnect(t *testing.T) {
	app := newTestApp(t, nil)
	conn := dialView(t, app, nil)
	readView(t, conn)
	require.Equal(t, 1, app.views.Active())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return app.views.Active() == 0 }, 2*time.Second, 10*time.Millisecond)
}

package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hub *Hub, companyID int64) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set("companyId", companyID)
	}, ServeWS(hub))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	// Give the hub's run loop a moment to register the client.
	time.Sleep(50 * time.Millisecond)
	return conn
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(msg)
}

func TestBroadcastReachesCompanyScope(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub, 1)
	conn := dial(t, srv, "")

	hub.Broadcast(CompanyScope(1), []byte("activity_changed"))
	assert.Equal(t, "activity_changed", readText(t, conn))
}

func TestBroadcastScopedToOwnCompany(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub, 1)
	conn := dial(t, srv, "")

	hub.Broadcast(CompanyScope(2), []byte("other-company"))
	hub.Broadcast(CompanyScope(1), []byte("mine"))
	assert.Equal(t, "mine", readText(t, conn))
}

func TestCameraQuerySubscribesCameraScope(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub, 1)
	conn := dial(t, srv, "?camera=12")

	hub.Broadcast(CameraScope(12), []byte("activity_changed"))
	assert.Equal(t, "activity_changed", readText(t, conn))
}

func TestUnauthenticatedUpgradeRejected(t *testing.T) {
	hub := NewHub()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", ServeWS(hub)) // no companyId in context
	srv := httptest.NewServer(r)
	defer srv.Close()

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

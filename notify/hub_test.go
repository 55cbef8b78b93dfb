package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edpharma/events"
	"edpharma/logger"
	"edpharma/models"
)

func serve(t *testing.T, hub *Hub, p models.Principal) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, p)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, hub *Hub, p models.Principal) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(serve(t, hub, p), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) (Message, map[string]interface{}) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	data, _ := msg.Data.(map[string]interface{})
	return msg, data
}

func TestHub_DeliversToOwnerAndAdmins(t *testing.T) {
	hub := NewHub(logger.NewNop())
	owner := dial(t, hub, models.Principal{ID: "u1", Role: models.RoleUser})
	stranger := dial(t, hub, models.Principal{ID: "u2", Role: models.RoleUser})
	admin := dial(t, hub, models.Principal{ID: "a1", Role: models.RoleAdmin})

	require.Eventually(t, func() bool { return hub.Count() == 3 }, 2*time.Second, 10*time.Millisecond)

	order := models.Order{ID: "ORD-1", UserID: "u1", Status: models.StatusShipped, UpdatedAt: time.Now()}
	require.NoError(t, hub.OrderStatusChanged(context.Background(), order, models.StatusProcessing))

	for _, conn := range []*websocket.Conn{owner, admin} {
		msg, data := readMessage(t, conn)
		assert.Equal(t, events.SubjectOrderStatusChanged, msg.Type)
		assert.Equal(t, "ORD-1", data["order_id"])
		assert.Equal(t, "shipped", data["to"])
	}

	require.NoError(t, stranger.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := stranger.ReadMessage()
	assert.Error(t, err, "a foreign order must not reach another shopper")
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub := NewHub(logger.NewNop())
	conn := dial(t, hub, models.Principal{ID: "u1", Role: models.RoleUser})
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_ChecksOrigin(t *testing.T) {
	hub := NewHub(logger.NewNop(), "https://shop.example/")
	url := serve(t, hub, models.Principal{ID: "u1", Role: models.RoleUser})

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://SHOP.example"}})
	require.NoError(t, err)
	conn.Close()

	open := NewHub(logger.NewNop(), "*")
	conn, _, err = websocket.DefaultDialer.Dial(serve(t, open, models.Principal{ID: "u1"}), http.Header{"Origin": {"https://evil.example"}})
	require.NoError(t, err)
	conn.Close()
}

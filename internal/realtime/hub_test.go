package realtime_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elite-decor-web/internal/models"
	"elite-decor-web/internal/realtime"
	"elite-decor-web/internal/session"
)

func startHub(t *testing.T, registry *session.Registry, handle realtime.MessageHandler) (*realtime.Hub, string) {
	t.Helper()
	hub := realtime.NewHub(registry, zerolog.Nop())
	upgrader := realtime.NewUpgrader(nil)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, r.URL.Query().Get("sid"), handle)
	}))
	t.Cleanup(server.Close)
	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitConnected(t *testing.T, hub *realtime.Hub, sid string) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Connections(sid) > 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_IdentityChangedReachesSession(t *testing.T) {
	hub, url := startHub(t, session.NewRegistry(), nil)
	conn := dial(t, url+"?sid=s1")
	waitConnected(t, hub, "s1")

	hub.IdentityChanged("s1")

	var event realtime.Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, realtime.EventIdentityChanged, event.Type)
}

func TestHub_RoleChangedReachesEverySessionOfEmail(t *testing.T) {
	registry := session.NewRegistry()
	registry.Get("s1").SignIn(models.Identity{Email: "u@example.com"}, session.Tokens{})
	registry.Get("s2").SignIn(models.Identity{Email: "other@example.com"}, session.Tokens{})
	hub, url := startHub(t, registry, nil)

	mine := dial(t, url+"?sid=s1")
	theirs := dial(t, url+"?sid=s2")
	waitConnected(t, hub, "s1")
	waitConnected(t, hub, "s2")

	hub.RoleChanged("u@example.com")

	var event realtime.Event
	require.NoError(t, mine.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, mine.ReadJSON(&event))
	assert.Equal(t, realtime.EventRoleChanged, event.Type)

	require.NoError(t, theirs.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	assert.Error(t, theirs.ReadJSON(&event))
}

func TestHub_DeliversClientMessages(t *testing.T) {
	got := make(chan realtime.ClientMessage, 1)
	hub, url := startHub(t, session.NewRegistry(), func(sid string, msg realtime.ClientMessage) {
		if sid == "s1" {
			got <- msg
		}
	})
	conn := dial(t, url+"?sid=s1")
	waitConnected(t, hub, "s1")

	require.NoError(t, conn.WriteJSON(realtime.ClientMessage{Type: realtime.MessageSearch, Text: "sofa"}))

	select {
	case msg := <-got:
		assert.Equal(t, "sofa", msg.Text)
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub, url := startHub(t, session.NewRegistry(), nil)
	conn := dial(t, url+"?sid=s1")
	waitConnected(t, hub, "s1")

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return hub.Connections("s1") == 0 }, time.Second, 5*time.Millisecond)
}

package wsplayer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-cfr/internal/game"
	"github.com/lox/holdem-cfr/internal/player"
)

// serverUpgradeOnce starts an httptest server that upgrades its one
// connection to a websocket and hands it to onConn.
func serverUpgradeOnce(t *testing.T, onConn func(*websocket.Conn)) string {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		onConn(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestNotifySendsOverWire(t *testing.T) {
	received := make(chan Message, 1)
	url := serverUpgradeOnce(t, func(conn *websocket.Conn) {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		received <- msg
	})

	p, err := Dial(url)
	require.NoError(t, err)
	defer p.Close()

	p.Notify(player.Event{Kind: player.HandStart})

	select {
	case msg := <-received:
		require.Equal(t, MsgNotify, msg.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notify")
	}
}

func TestDecideRoundTripsAction(t *testing.T) {
	url := serverUpgradeOnce(t, func(conn *websocket.Conn) {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		require.Equal(t, MsgDecideRequest, msg.Type)
		require.NoError(t, conn.WriteJSON(Message{Type: MsgDecideResponse, Data: mustMarshal(wireAction{Kind: "call", Amount: 100})}))
	})

	p, err := Dial(url)
	require.NoError(t, err)
	defer p.Close()

	action, err := p.Decide(context.Background(), player.PartialRecall{Pot: 300})
	require.NoError(t, err)
	require.Equal(t, game.Action{Kind: game.Call, Amount: 100}, action)
}

func TestDecideHonorsContextCancellation(t *testing.T) {
	url := serverUpgradeOnce(t, func(conn *websocket.Conn) {
		var msg Message
		_ = conn.ReadJSON(&msg) // read the request but never reply
	})

	p, err := Dial(url)
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = p.Decide(ctx, player.PartialRecall{Pot: 50})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func mustMarshal(v wireAction) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

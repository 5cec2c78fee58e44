package ws

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

	"happyBot/internal/app/events"
	"happyBot/internal/domain"
	"happyBot/internal/usecase/commands"
)

type fakeGames struct {
	sessions []string
	pending  *domain.RestartRequest
}

func (f fakeGames) Sessions() []string { return f.sessions }

func (f fakeGames) Pending() (domain.RestartRequest, bool) {
	if f.pending == nil {
		return domain.RestartRequest{}, false
	}
	return *f.pending, true
}

func TestCommandsEndpoint(t *testing.T) {
	srv := NewServer(Config{Catalog: func() []commands.CommandDescriptor {
		return []commands.CommandDescriptor{{Name: "ping", Category: "General", Usage: "!ping"}}
	}})
	rec := httptest.NewRecorder()

	srv.Handler(context.Background()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/commands", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	var got []commands.CommandDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "ping", got[0].Name)
}

func TestCommandsEndpointRejectsPost(t *testing.T) {
	srv := NewServer(Config{})
	rec := httptest.NewRecorder()

	srv.Handler(context.Background()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/commands", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler(context.Background()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/commands", nil))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGamesEndpoint(t *testing.T) {
	pending := domain.RestartRequest{ExitCode: 10, Source: "SSH/Dropbox"}
	srv := NewServer(Config{Games: fakeGames{sessions: []string{"trivia"}, pending: &pending}})
	rec := httptest.NewRecorder()

	srv.Handler(context.Background()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/games", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"active":["trivia"],"pending_restart":{"exit_code":10,"source":"SSH/Dropbox"}}`, rec.Body.String())
}

func dialEvents(ctx context.Context, t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	httpSrv := httptest.NewServer(srv.Handler(ctx))
	t.Cleanup(httpSrv.Close)

	url := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool {
		srv.mu.RLock()
		defer srv.mu.RUnlock()
		return len(srv.clients) == 1
	}, time.Second, 10*time.Millisecond)
	return conn
}

func TestWebsocketCommandsReachHandler(t *testing.T) {
	srv := NewServer(Config{})
	received := make(chan domain.Message, 1)
	srv.SetHandler(func(_ context.Context, msg domain.Message) error {
		received <- msg
		return nil
	})
	conn := dialEvents(context.Background(), t, srv)

	require.NoError(t, conn.WriteJSON(map[string]string{"text": " !ping "}))

	select {
	case msg := <-received:
		assert.Equal(t, domain.PlatformWeb, msg.Platform)
		assert.Equal(t, "!ping", msg.Text)
		assert.Equal(t, WebActorID, msg.UserID)
		assert.Equal(t, "web-user", msg.Username)
	case <-time.After(2 * time.Second):
		t.Fatal("handler not called")
	}
}

func TestWebsocketIgnoresClientSuppliedUserID(t *testing.T) {
	srv := NewServer(Config{})
	received := make(chan domain.Message, 3)
	srv.SetHandler(func(_ context.Context, msg domain.Message) error {
		received <- msg
		return nil
	})
	conn := dialEvents(context.Background(), t, srv)

	for _, userID := range []string{"alice", "bob", "dev"} {
		require.NoError(t, conn.WriteJSON(map[string]string{"text": "!ping", "user_id": userID, "username": userID}))
	}

	var actors []string
	var names []string
	for range 3 {
		select {
		case msg := <-received:
			actors = append(actors, msg.ActorKey())
			names = append(names, msg.Username)
		case <-time.After(2 * time.Second):
			t.Fatal("handler not called")
		}
	}
	assert.Equal(t, []string{"web:web", "web:web", "web:web"}, actors)
	assert.Equal(t, []string{"alice", "bob", "dev"}, names)
}

func TestWebsocketOriginCheck(t *testing.T) {
	srv := NewServer(Config{AllowedOrigins: []string{"https://Dash.Example.com/"}})
	httpSrv := httptest.NewServer(srv.Handler(context.Background()))
	t.Cleanup(httpSrv.Close)
	url := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws/events"

	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{name: "no origin", origin: "", ok: true},
		{name: "same host", origin: httpSrv.URL, ok: true},
		{name: "allow list", origin: "https://dash.example.com", ok: true},
		{name: "foreign page", origin: "https://evil.example.com", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(url, header)
			if tt.ok {
				require.NoError(t, err)
				_ = conn.Close()
				return
			}
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestWebsocketReceivesReplies(t *testing.T) {
	srv := NewServer(Config{})
	conn := dialEvents(context.Background(), t, srv)

	require.NoError(t, srv.SendMessage(context.Background(), domain.PlatformWeb, "console", "pong from web"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "bot:reply", got.Type)
	assert.Equal(t, "pong from web", got.Data["text"])

	assert.Error(t, srv.SendMessage(context.Background(), domain.PlatformTwitch, "#x", "nope"))
}

func TestForwardStreamsBusEvents(t *testing.T) {
	bus := events.NewBus()
	srv := NewServer(Config{Bus: bus})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conn := dialEvents(ctx, t, srv)

	go srv.forward(ctx, events.TopicRestart)
	// Events published before the forwarder subscribes are dropped, so
	// keep publishing until one arrives.
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				bus.Publish(events.TopicRestart, map[string]string{"state": "deferred"})
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, events.TopicRestart, got.Type)
	assert.Equal(t, "deferred", got.Data["state"])
}

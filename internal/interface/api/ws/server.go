package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"happyBot/internal/app/events"
	"happyBot/internal/domain"
)

// Server streams bus events to WebSocket clients and accepts command text
// from them.
type Server struct {
	addr     string
	bus      *events.Bus
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	handler MessageHandler

	api *apiHandlers
}

type MessageHandler func(ctx context.Context, msg domain.Message) error

// WebActorID is the user id of every web-originated message. Clients can
// set a display name but not the identity roles and cooldowns key on.
const WebActorID = "web"

type Config struct {
	Addr    string
	Bus     *events.Bus
	Catalog CatalogProvider
	Games   GamesReporter
	// AllowedOrigins lists browser origins accepted besides the server's
	// own host.
	AllowedOrigins []string
}

func (c *Config) addr() string {
	if strings.TrimSpace(c.Addr) == "" {
		return ":8080"
	}
	return c.Addr
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func NewServer(cfg Config) *Server {
	return &Server{
		addr: cfg.addr(),
		bus:  cfg.Bus,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(cfg.AllowedOrigins),
		},
		clients: make(map[*wsClient]struct{}),
		api:     newAPIHandlers(cfg),
	}
}

// Handler returns the HTTP handler serving the websocket and API routes.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/events", func(w http.ResponseWriter, r *http.Request) {
		s.handleWS(ctx, w, r)
	})
	s.api.register(mux)
	return mux
}

// Start serves HTTP and forwards bus events until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(ctx),
	}

	if s.bus != nil {
		for _, topic := range events.Topics {
			go s.forward(ctx, topic)
		}
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("ws: shutdown error: %v", err)
		}
		s.closeClients()
	}()

	log.Printf("ws: listening on %s", s.addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) forward(ctx context.Context, topic string) {
	ch, unsubscribe := s.bus.Subscribe(topic)
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-ch:
			if !ok {
				return
			}
			s.broadcast(envelope{Type: topic, Data: payload})
		}
	}
}

// originChecker accepts requests without an Origin header (non-browser
// clients), same-host origins and the configured allow list.
func originChecker(allowed []string) func(r *http.Request) bool {
	allow := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		origin = strings.TrimRight(strings.ToLower(strings.TrimSpace(origin)), "/")
		if origin != "" {
			allow[origin] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allow[strings.ToLower(origin)]; ok {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}

func (s *Server) handleWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade error: %v", err)
		return
	}

	client := &wsClient{conn: conn}

	s.mu.Lock()
	s.clients[client] = struct{}{}
	clientCount := len(s.clients)
	s.mu.Unlock()

	log.Printf("ws: new connection from %s (%d active clients)", r.RemoteAddr, clientCount)

	go s.handleClient(ctx, client)
}

func (s *Server) handleClient(ctx context.Context, client *wsClient) {
	defer func() {
		s.removeClient(client)
	}()

	for {
		msgType, data, err := client.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws: read error: %v", err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}

		if msgType != websocket.TextMessage {
			continue
		}

		if err := s.dispatchIncoming(ctx, data); err != nil {
			log.Printf("ws: incoming dispatch error: %v", err)
		}
	}
}

type incomingPayload struct {
	Text      string `json:"text"`
	ChannelID string `json:"channel_id"`
	Username  string `json:"username"`
}

func (s *Server) dispatchIncoming(ctx context.Context, data []byte) error {
	handler := s.getHandler()
	if handler == nil {
		return nil
	}

	payload := incomingPayload{}
	if err := json.Unmarshal(data, &payload); err != nil {
		payload.Text = string(data)
	}
	payload.Text = strings.TrimSpace(payload.Text)
	if payload.Text == "" {
		return fmt.Errorf("ws: empty incoming text")
	}

	msg := domain.Message{
		Platform:  domain.PlatformWeb,
		ChannelID: strings.TrimSpace(payload.ChannelID),
		UserID:    WebActorID,
		Username:  strings.TrimSpace(payload.Username),
		Text:      payload.Text,
	}
	if msg.Username == "" {
		msg.Username = "web-user"
	}

	return handler(ctx, msg)
}

func (s *Server) getHandler() MessageHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handler
}

func (s *Server) SetHandler(h MessageHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// SendMessage delivers bot replies for web-originated commands.
func (s *Server) SendMessage(ctx context.Context, platform domain.Platform, channelID, text string) error {
	if platform != domain.PlatformWeb {
		return fmt.Errorf("ws: unsupported platform %s", platform)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.broadcast(envelope{Type: "bot:reply", Data: map[string]string{
		"channel_id": channelID,
		"text":       text,
	}})
	return nil
}

func (s *Server) broadcast(v envelope) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("ws: encoding %s: %v", v.Type, err)
		return
	}

	s.mu.RLock()
	clients := make([]*wsClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(json.RawMessage(payload)); err != nil {
			log.Printf("ws: removing client due to write error: %v", err)
			s.removeClient(c)
		}
	}
}

func (s *Server) removeClient(c *wsClient) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	clientCount := len(s.clients)
	s.mu.Unlock()
	if ok {
		c.conn.Close()
		log.Printf("ws: connection closed (%d active clients)", clientCount)
	}
}

func (s *Server) closeClients() {
	s.mu.RLock()
	clients := make([]*wsClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()
	for _, c := range clients {
		s.removeClient(c)
	}
}

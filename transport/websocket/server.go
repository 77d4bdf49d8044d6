package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout   = 10 * time.Second
	readTimeout    = 60 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 256

	pageQuery = "page"
	pageHome  = "home"
)

type gateway interface {
	Connect(ctx context.Context, handle string, lobby bool)
	JoinLobby(ctx context.Context, handle string)
	JoinRoom(ctx context.Context, handle, token string)
	MakeMove(ctx context.Context, handle string, row, col int)
	PassTurn(ctx context.Context, handle string)
	ResetRequest(ctx context.Context, handle string)
	Disconnect(ctx context.Context, handle string)
}

type handlerFunc func(ctx context.Context, conn *connection, message *Message) error

// Server accepts client connections and delivers outbound events to them by handle.
type Server struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	gateway  gateway

	mu          sync.RWMutex
	connections map[string]*connection

	handlers map[string]handlerFunc
}

type connection struct {
	handle string
	conn   *websocket.Conn
	send   chan []byte
}

func New(logger *slog.Logger) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},

		connections: make(map[string]*connection),
		handlers:    make(map[string]handlerFunc),
	}

	server.handlers["joinLobby"] = server.handleJoinLobby
	server.handlers["joinRoom"] = server.handleJoinRoom
	server.handlers["makeMove"] = server.handleMakeMove
	server.handlers["passTurn"] = server.handlePassTurn
	server.handlers["resetRequest"] = server.handleResetRequest

	return server
}

// Handler serves websocket upgrades on /ws and routes inbound messages to gw.
func (that *Server) Handler(ctx context.Context, gw gateway) http.Handler {
	that.gateway = gw

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string, gw gateway) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx, gw),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Notify queues an event for each handle. It never blocks: a connection whose buffer is full
// is dropped.
func (that *Server) Notify(handles []string, action string, payload any) {
	log := that.logger.With("method", "Notify", "action", action)

	data, err := json.Marshal(outMessage{Action: action, Payload: payload})
	if err != nil {
		log.Error("failed to marshal message", "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, handle := range handles {
		conn, ok := that.connections[handle]
		if !ok {
			continue
		}

		select {
		case conn.send <- data:
		default:
			log.Warn("send buffer full, dropping connection", "handle", handle)
			go conn.conn.Close()
		}
	}
}

func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeConnection")

	wsConn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := &connection{
		handle: uuid.NewString(),
		conn:   wsConn,
		send:   make(chan []byte, sendBufferSize),
	}

	that.register(conn)
	go that.writePump(conn)

	log.Info("WebSocket connection established", "handle", conn.handle)

	that.gateway.Connect(ctx, conn.handle, req.URL.Query().Get(pageQuery) == pageHome)

	that.readPump(ctx, conn)

	that.unregister(conn)
	that.gateway.Disconnect(ctx, conn.handle)

	log.Info("WebSocket connection closed", "handle", conn.handle)
}

func (that *Server) register(conn *connection) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.connections[conn.handle] = conn
}

func (that *Server) unregister(conn *connection) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.connections[conn.handle]; !ok {
		return
	}

	delete(that.connections, conn.handle)
	close(conn.send)
}

// readPump - processes messages from the client until the connection fails.
func (that *Server) readPump(ctx context.Context, conn *connection) {
	log := that.logger.With("method", "readPump", "handle", conn.handle)

	defer conn.conn.Close()

	conn.conn.SetReadLimit(maxMessageSize)
	_ = conn.conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("unexpected close", "error", err)
			}

			return
		}

		_ = conn.conn.SetReadDeadline(time.Now().Add(readTimeout))

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Debug("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Debug("unknown action", "action", message.Action)
			continue
		}

		if err = handler(ctx, conn, &message); err != nil {
			log.Debug("message ignored", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) writePump(conn *connection) {
	log := that.logger.With("method", "writePump", "handle", conn.handle)

	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.conn.Close()
	}()

	for {
		select {
		case data, ok := <-conn.send:
			_ = conn.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = conn.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = conn.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

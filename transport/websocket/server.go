package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

type roomRegistry interface {
	Join(ctx context.Context, roomID, connectionID string) (*usecase.JoinResult, error)
	Dispatch(ctx context.Context, roomID, connectionID string, event usecase.Event) error
	Disconnect(ctx context.Context, connectionID string)
}

type serverMetrics interface {
	IncConnections()
	DecConnections()
	IncEventsReceived(action string)
	ObserveEventLatency(seconds float64)
}

type handlerFunc func(ctx context.Context, c *client, msg *Message) error

type Server struct {
	logger   *slog.Logger
	hub      *Hub
	registry roomRegistry
	metrics  serverMetrics
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, hub *Hub, registry roomRegistry, metrics serverMetrics, allowedOrigins []string) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		hub:      hub,
		registry: registry,
		metrics:  metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionJoin] = server.handleJoin
	server.handlers[actionMove] = server.handleMove
	server.handlers[actionRestart] = server.handleRestart

	return server
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWebSocket(ctx, w, r)
	})

	return mux
}

// serveWebSocket - upgrades the connection and processes its messages until it closes.
func (that *Server) serveWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWebSocket")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(pkg.GenerateConnectionID(), conn)
	log = log.With("connectionID", c.id)

	that.hub.register(c)
	that.metrics.IncConnections()
	go c.writePump()

	log.Info("WebSocket connection established")

	that.hub.Send(c.id, actionConnected, ConnectedPayload{ConnectionID: c.id})

	that.handleMessages(ctx, c)

	that.registry.Disconnect(ctx, c.id)
	that.hub.unregister(c)
	that.metrics.DecConnections()

	log.Info("WebSocket connection closed")
}

// handleMessages - processes messages from the client until the connection fails.
func (that *Server) handleMessages(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleMessages", "connectionID", c.id)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Debug("failed to unmarshal message", "error", err)
			that.sendError(c, "malformed message")
			continue
		}

		that.processMessage(ctx, c, &message)
	}
}

// processMessage - runs the handler for one message; a panic only costs this message.
func (that *Server) processMessage(ctx context.Context, c *client, msg *Message) {
	log := that.logger.With("method", "processMessage", "connectionID", c.id, "action", msg.Action)

	defer func() {
		if r := recover(); r != nil {
			log.Error("recovered from panic", "panic", r)
		}
	}()

	handler, ok := that.handlers[msg.Action]
	if !ok {
		log.Debug("unknown action")
		that.sendError(c, "unknown action: "+msg.Action)
		return
	}

	started := time.Now()
	that.metrics.IncEventsReceived(msg.Action)

	if err := handler(ctx, c, msg); err != nil {
		log.Error("error processing message", "error", err)
	}

	that.metrics.ObserveEventLatency(time.Since(started).Seconds())
}

func (that *Server) sendError(c *client, message string) {
	that.hub.Send(c.id, actionError, ErrorPayload{Message: message})
}

func checkOrigin(allowedOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowedOrigins) == 0 {
			return true
		}

		return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
	}
}

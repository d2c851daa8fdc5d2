package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

type registry interface {
	CreateRoom(connID, name string) (*entity.Room, string, error)
	JoinRoom(code, connID, name string) (*entity.Room, string, error)
	Move(connID string, column int) (*entity.Room, error)
	Reset(connID string) (*entity.Room, error)
	RemoveConnection(connID string) *entity.Room
}

type handlerFunc func(connID string, message *Message) error

type Server struct {
	logger   *slog.Logger
	registry registry

	connectionsMutex sync.RWMutex
	connections      map[string]net.Conn

	// serializes frame writes so a broadcast and a private reply can
	// never interleave on the wire
	writeMutex sync.Mutex

	// one inbound event mutates and broadcasts to completion before the
	// next one starts, so every broadcast carries the state produced by
	// its own mutation and snapshots reach all seats in mutation order
	eventMutex sync.Mutex

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, registry registry) *Server {
	server := &Server{
		logger:      logger,
		registry:    registry,
		connections: make(map[string]net.Conn),
		handlers:    make(map[string]handlerFunc),
	}

	server.handlers[actionRoomCreate] = server.handleCreateRoom
	server.handlers[actionRoomJoin] = server.handleJoinRoom
	server.handlers[actionGameMove] = server.handleMove
	server.handlers[actionGameReset] = server.handleReset

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.RealIP)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet},
		AllowCredentials: false,
	}))
	router.Use(httprate.Limit(60, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint)))

	router.Get("/ws", that.serveWS)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     router,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS - upgrades the connection to WebSocket and pumps its messages
// until it drops.
func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	// the upgrade hijacked the connection; drop any deadline net/http left on it
	_ = conn.SetDeadline(time.Time{})

	connID := uuid.NewString()

	that.connectionsMutex.Lock()
	that.connections[connID] = conn
	that.connectionsMutex.Unlock()

	log.Info("WebSocket connection established", "connID", connID)

	that.handleMessages(connID, conn)
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(connID string, conn net.Conn) {
	log := that.logger.With("method", "handleMessages", "connID", connID)

	defer that.handleDisconnect(connID, conn)

	for {
		reqBody, err := wsutil.ReadClientText(conn)
		if err != nil {
			log.Info("connection read failed", "error", err)
			return
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			if err = that.sendErrorResponse(connID, message.Action, "malformed message", kindBadRequest); err != nil {
				log.Error("failed to send error response", "error", err)
			}
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			if err = that.sendErrorResponse(connID, message.Action, "unknown action", kindBadRequest); err != nil {
				log.Error("failed to send error response", "error", err)
			}
			continue
		}

		if err = handler(connID, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// handleDisconnect - releases the seat and notifies the remaining player,
// if any. Disconnection is a normal state transition, not an error.
func (that *Server) handleDisconnect(connID string, conn net.Conn) {
	log := that.logger.With("method", "handleDisconnect", "connID", connID)

	_ = conn.Close()

	that.connectionsMutex.Lock()
	delete(that.connections, connID)
	that.connectionsMutex.Unlock()

	that.eventMutex.Lock()
	defer that.eventMutex.Unlock()

	room := that.registry.RemoveConnection(connID)
	if room == nil {
		log.Info("player disconnected")
		return
	}

	that.broadcastRoomState(room)
	log.Info("player disconnected, remaining player notified", "roomCode", room.Code)
}

// broadcastRoomState - fans the room snapshot out to every seated
// connection. Called only after an accepted mutation.
func (that *Server) broadcastRoomState(room *entity.Room) {
	log := that.logger.With("method", "broadcastRoomState", "roomCode", room.Code)

	snapshot := room.Snapshot()

	for _, connID := range room.Connections() {
		that.connectionsMutex.RLock()
		conn, ok := that.connections[connID]
		that.connectionsMutex.RUnlock()

		if !ok {
			log.Warn("connection not found for seated player", "connID", connID)
			continue
		}

		if err := that.send(conn, actionRoomState, Payload{Room: snapshot}); err != nil {
			log.Error("failed to send room state", "connID", connID, "error", err)
		}
	}
}

func (that *Server) sendMessage(connID, action string, payload Payload) error {
	that.connectionsMutex.RLock()
	conn, ok := that.connections[connID]
	that.connectionsMutex.RUnlock()

	if !ok {
		return fmt.Errorf("connection not found: %s", connID)
	}

	return that.send(conn, action, payload)
}

func (that *Server) send(conn net.Conn, action string, payload Payload) error {
	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	responseBytes, err := json.Marshal(Message{Action: action, Payload: rawPayload})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	that.writeMutex.Lock()
	defer that.writeMutex.Unlock()

	if err = wsutil.WriteServerText(conn, responseBytes); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	return nil
}

package usecase

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

// RoomRegistry owns every live room, keyed by room code, together with
// the reverse index from connection id to room code. The room a
// connection acts on is always derived from that index, never from a
// client-supplied code, so a connection can never touch a room it did
// not join. The registry holds its own state only in process memory;
// rooms live exactly as long as their last seated participant.
type RoomRegistry struct {
	logger *slog.Logger

	mu    sync.Mutex
	rooms map[string]*entity.Room
	conns map[string]string
}

func NewRoomRegistry(logger *slog.Logger) *RoomRegistry {
	return &RoomRegistry{
		logger: logger.With("component", "registry"),
		rooms:  make(map[string]*entity.Room),
		conns:  make(map[string]string),
	}
}

// CreateRoom allocates a room under a fresh opaque code and seats the
// creator as red. A connection holds at most one seat, so any seat it
// already holds is released first.
func (that *RoomRegistry) CreateRoom(connID, name string) (*entity.Room, string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.release(connID)

	code := uuid.NewString()
	room := entity.NewRoom(code)

	color, err := room.Seat(connID, name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to seat creator: %w", err)
	}

	that.rooms[code] = room
	that.conns[connID] = code

	that.logger.Info("room created", "roomCode", code)

	return room, color, nil
}

// JoinRoom seats connID in the room known under code. Two connections
// racing for the last seat are serialized here, so the second one
// observes the filled seat and fails with ErrRoomFull. A successful
// join into a different room releases the seat connID held before; a
// rejected join leaves it untouched.
func (that *RoomRegistry) JoinRoom(code, connID, name string) (*entity.Room, string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[code]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, code)
	}

	color, err := room.Seat(connID, name)
	if err != nil {
		return nil, "", err
	}

	if previous, seated := that.conns[connID]; seated && previous != code {
		that.release(connID)
	}

	that.conns[connID] = code

	that.logger.Info("player joined room", "roomCode", code, "color", color)

	return room, color, nil
}

// RoomOf resolves the room connID currently belongs to.
func (that *RoomRegistry) RoomOf(connID string) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	code, ok := that.conns[connID]
	if !ok {
		return nil, apperror.ErrNotSeated
	}

	room, ok := that.rooms[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, code)
	}

	return room, nil
}

// Move applies a drop for connID in its room.
func (that *RoomRegistry) Move(connID string, column int) (*entity.Room, error) {
	room, err := that.RoomOf(connID)
	if err != nil {
		return nil, err
	}

	if err = room.ApplyMove(connID, column); err != nil {
		return nil, err
	}

	return room, nil
}

// Reset restarts the game in connID's room, keeping the seats.
func (that *RoomRegistry) Reset(connID string) (*entity.Room, error) {
	room, err := that.RoomOf(connID)
	if err != nil {
		return nil, err
	}

	if err = room.Reset(); err != nil {
		return nil, err
	}

	return room, nil
}

// RemoveConnection releases connID's seat. It returns the room when a
// participant remains, or nil when the room was destroyed with its last
// seat (or the connection was never seated). Rooms do not outlive their
// last participant.
func (that *RoomRegistry) RemoveConnection(connID string) *entity.Room {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.release(connID)
}

// release frees the seat connID currently holds, deleting the room when
// that was its last seat. Returns the surviving room, or nil. Callers
// must hold the registry mutex.
func (that *RoomRegistry) release(connID string) *entity.Room {
	code, ok := that.conns[connID]
	if !ok {
		return nil
	}
	delete(that.conns, connID)

	room, ok := that.rooms[code]
	if !ok {
		return nil
	}

	if remaining := room.Unseat(connID); !remaining {
		delete(that.rooms, code)
		that.logger.Info("room destroyed", "roomCode", code)
		return nil
	}

	return room
}

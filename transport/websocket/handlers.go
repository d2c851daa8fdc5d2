package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
)

const (
	kindInvalidColumn      = "invalid_column"
	kindColumnFull         = "column_full"
	kindNotYourTurn        = "not_your_turn"
	kindGameAlreadyDecided = "game_already_decided"
	kindGameNotStarted     = "game_not_started"
	kindRoomNotFound       = "room_not_found"
	kindRoomFull           = "room_full"
	kindNotSeated          = "not_seated"
	kindBadRequest         = "bad_request"
	kindInternal           = "internal"
)

func (that *Server) handleCreateRoom(connID string, msg *Message) error {
	log := that.logger.With("method", "handleCreateRoom", "connID", connID)

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Name == "" {
		log.Error("display name is missing in payload")
		return that.sendErrorResponse(connID, msg.Action, "display name is required", kindBadRequest)
	}

	that.eventMutex.Lock()
	defer that.eventMutex.Unlock()

	room, color, err := that.registry.CreateRoom(connID, payloadReq.Name)
	if err != nil {
		log.Error("failed to create room", "error", err)
		return that.sendRejection(connID, msg.Action, err)
	}

	log.Info("room created", "roomCode", room.Code)

	// private acknowledgement to the creator only
	return that.sendMessage(connID, msg.Action, Payload{RoomCode: room.Code, Color: color})
}

func (that *Server) handleJoinRoom(connID string, msg *Message) error {
	log := that.logger.With("method", "handleJoinRoom", "connID", connID)

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Name == "" {
		log.Error("display name is missing in payload")
		return that.sendErrorResponse(connID, msg.Action, "display name is required", kindBadRequest)
	}

	if payloadReq.RoomCode == "" {
		log.Error("room code is missing in payload")
		return that.sendErrorResponse(connID, msg.Action, "room code is required", kindBadRequest)
	}

	that.eventMutex.Lock()
	defer that.eventMutex.Unlock()

	room, color, err := that.registry.JoinRoom(payloadReq.RoomCode, connID, payloadReq.Name)
	if err != nil {
		log.Error("failed to join room", "roomCode", payloadReq.RoomCode, "error", err)
		return that.sendRejection(connID, msg.Action, err)
	}

	log.Info("player joined room", "roomCode", room.Code)

	if err = that.sendMessage(connID, msg.Action, Payload{RoomCode: room.Code, Color: color}); err != nil {
		log.Error("failed to send join acknowledgement", "error", err)
	}

	that.broadcastRoomState(room)

	return nil
}

func (that *Server) handleMove(connID string, msg *Message) error {
	log := that.logger.With("method", "handleMove", "connID", connID)

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Column == nil {
		log.Error("column is missing in payload")
		return that.sendErrorResponse(connID, msg.Action, "column is required", kindBadRequest)
	}

	that.eventMutex.Lock()
	defer that.eventMutex.Unlock()

	room, err := that.registry.Move(connID, *payloadReq.Column)
	if err != nil {
		// a rejected move is a user-visible fact for the mover only;
		// other participants are not notified
		return that.sendRejection(connID, msg.Action, err)
	}

	log.Info("player made a move", "roomCode", room.Code, "column", *payloadReq.Column)

	that.broadcastRoomState(room)

	return nil
}

func (that *Server) handleReset(connID string, msg *Message) error {
	log := that.logger.With("method", "handleReset", "connID", connID)

	that.eventMutex.Lock()
	defer that.eventMutex.Unlock()

	room, err := that.registry.Reset(connID)
	if err != nil {
		return that.sendRejection(connID, msg.Action, err)
	}

	log.Info("game reset", "roomCode", room.Code)

	that.broadcastRoomState(room)

	return nil
}

// sendRejection - sends a private error to the originating connection
// with the failure kind the client can dispatch on. Rejections are never
// retried and never swallowed.
func (that *Server) sendRejection(connID, action string, err error) error {
	return that.sendErrorResponse(connID, action, err.Error(), errorKind(err))
}

func (that *Server) sendErrorResponse(connID, action, errorMsg, kind string) error {
	payload := Payload{Error: errorMsg, Kind: kind}
	if err := that.sendMessage(connID, action, payload); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, apperror.ErrInvalidColumn):
		return kindInvalidColumn
	case errors.Is(err, apperror.ErrColumnFull):
		return kindColumnFull
	case errors.Is(err, apperror.ErrNotYourTurn):
		return kindNotYourTurn
	case errors.Is(err, apperror.ErrGameAlreadyDecided):
		return kindGameAlreadyDecided
	case errors.Is(err, apperror.ErrGameNotStarted):
		return kindGameNotStarted
	case errors.Is(err, apperror.ErrRoomNotFound):
		return kindRoomNotFound
	case errors.Is(err, apperror.ErrRoomFull):
		return kindRoomFull
	case errors.Is(err, apperror.ErrNotSeated):
		return kindNotSeated
	default:
		return kindInternal
	}
}

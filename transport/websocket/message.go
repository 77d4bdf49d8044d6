package websocket

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
)

// Message is the envelope of every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outMessage struct {
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}

type joinRoomPayload struct {
	Token string `json:"token"`
}

type movePayload struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

// parseToken accepts the room token either as a bare JSON string or as {"token": "..."}.
func parseToken(payload json.RawMessage) (string, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return "", fmt.Errorf("%w: missing room token", apperror.ErrMalformedPayload)
	}

	var token string
	if payload[0] == '"' {
		if err := json.Unmarshal(payload, &token); err != nil {
			return "", fmt.Errorf("%w: %w", apperror.ErrMalformedPayload, err)
		}
	} else {
		var req joinRoomPayload
		if err := json.Unmarshal(payload, &req); err != nil {
			return "", fmt.Errorf("%w: %w", apperror.ErrMalformedPayload, err)
		}

		token = req.Token
	}

	if token == "" {
		return "", fmt.Errorf("%w: empty room token", apperror.ErrMalformedPayload)
	}

	return token, nil
}

func parseMove(payload json.RawMessage) (int, int, error) {
	var req movePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return 0, 0, fmt.Errorf("%w: %w", apperror.ErrMalformedPayload, err)
	}

	if req.Row == nil || req.Col == nil {
		return 0, 0, fmt.Errorf("%w: row and col are required", apperror.ErrMalformedPayload)
	}

	return *req.Row, *req.Col, nil
}

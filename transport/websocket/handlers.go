package websocket

import (
	"context"
	"fmt"
)

func (that *Server) handleJoinLobby(ctx context.Context, conn *connection, _ *Message) error {
	that.gateway.JoinLobby(ctx, conn.handle)

	return nil
}

func (that *Server) handleJoinRoom(ctx context.Context, conn *connection, msg *Message) error {
	token, err := parseToken(msg.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse joinRoom payload: %w", err)
	}

	that.gateway.JoinRoom(ctx, conn.handle, token)

	return nil
}

func (that *Server) handleMakeMove(ctx context.Context, conn *connection, msg *Message) error {
	row, col, err := parseMove(msg.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse makeMove payload: %w", err)
	}

	that.gateway.MakeMove(ctx, conn.handle, row, col)

	return nil
}

func (that *Server) handlePassTurn(ctx context.Context, conn *connection, _ *Message) error {
	that.gateway.PassTurn(ctx, conn.handle)

	return nil
}

func (that *Server) handleResetRequest(ctx context.Context, conn *connection, _ *Message) error {
	that.gateway.ResetRequest(ctx, conn.handle)

	return nil
}

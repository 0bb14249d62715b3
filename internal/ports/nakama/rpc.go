package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
)

const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // no 0/O/1/I

var roomCodeRng = rand.New(rand.NewSource(time.Now().UnixNano()))

// RegisterRPCs registers the Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcCreateRoom, rpcCreateRoom); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcJoinRoom, rpcJoinRoom); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcVivoxToken, rpcVivoxToken)
}

// CreateRoomResponse carries the new private room's id and join code.
type CreateRoomResponse struct {
	MatchID string `json:"match_id"`
	Code    string `json:"code"`
}

func rpcCreateRoom(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	code := newRoomCode()
	matchID, err := nk.MatchCreate(ctx, MatchNameShanghai, map[string]interface{}{"code": code})
	if err != nil {
		logger.Error("rpcCreateRoom [User:%s]: Failed to create match: %v", userID, err)
		return "", runtime.NewError("failed to create room", 13) // INTERNAL
	}

	logger.Info("rpcCreateRoom [User:%s]: Created room %s (%s)", userID, code, matchID)
	b, _ := json.Marshal(CreateRoomResponse{MatchID: matchID, Code: code})
	return string(b), nil
}

// JoinRoomRequest resolves a join code typed in by a player.
type JoinRoomRequest struct {
	Code string `json:"code"`
}

// JoinRoomResponse carries the match id for the requested room.
type JoinRoomResponse struct {
	MatchID string `json:"match_id"`
}

func rpcJoinRoom(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req JoinRoomRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("invalid payload", 3) // INVALID_ARGUMENT
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return "", runtime.NewError("room code required", 3)
	}

	query := fmt.Sprintf("+label.game:shanghai +label.code:%s", code)
	limit := 1
	authoritative := true
	matches, err := nk.MatchList(ctx, limit, authoritative, "", nil, nil, query)
	if err != nil {
		logger.Error("rpcJoinRoom: Failed to list matches: %v", err)
		return "", runtime.NewError("failed to look up room", 13)
	}
	if len(matches) == 0 {
		return "", runtime.NewError("room not found", 5) // NOT_FOUND
	}

	var label MatchLabel
	if err := json.Unmarshal([]byte(matches[0].Label.GetValue()), &label); err == nil && label.Phase != "lobby" {
		return "", runtime.NewError("room already started", 9) // FAILED_PRECONDITION
	}

	b, _ := json.Marshal(JoinRoomResponse{MatchID: matches[0].MatchId})
	return string(b), nil
}

// QuickMatchResponse is returned to clients looking for any open public lobby.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	query := "+label.game:shanghai +label.phase:lobby +label.open:>=1"

	limit := 10
	authoritative := true
	minSize := 1
	maxSize := 3 // leave at least one open seat

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("rpcQuickMatch: MatchList error: %v", err)
		return "", err
	}
	if len(matches) > 0 {
		b, _ := json.Marshal(QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false})
		return string(b), nil
	}

	// Seat and owner assignment happen in MatchJoin (server-authoritative).
	matchID, err := nk.MatchCreate(ctx, MatchNameShanghai, map[string]interface{}{"code": newRoomCode()})
	if err != nil {
		logger.Error("rpcQuickMatch: MatchCreate error: %v", err)
		return "", err
	}

	b, _ := json.Marshal(QuickMatchResponse{MatchID: matchID, IsNew: true})
	return string(b), nil
}

func newRoomCode() string {
	var sb strings.Builder
	for i := 0; i < 6; i++ {
		sb.WriteByte(roomCodeAlphabet[roomCodeRng.Intn(len(roomCodeAlphabet))])
	}
	return sb.String()
}

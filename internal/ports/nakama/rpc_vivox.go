package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/MortisHD/SlatteryShanghai/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// VivoxTokenRequest asks for a signed voice token. Action is "login" or
// "join"; join tokens additionally need the room code of the table's
// voice channel.
type VivoxTokenRequest struct {
	Action   string `json:"action"`
	RoomCode string `json:"room_code"`
}

// VivoxTokenResponse carries the signed token back to the client.
type VivoxTokenResponse struct {
	Token string `json:"token"`
}

func rpcVivoxToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("authentication required", 16) // UNAUTHENTICATED
	}

	var req VivoxTokenRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("invalid payload", 3) // INVALID_ARGUMENT
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	service := app.NewVivoxService(env["vivox_secret"], env["vivox_issuer"], env["vivox_domain"])

	token, err := service.GenerateToken(userID, req.Action, req.RoomCode)
	if err != nil {
		logger.Warn("rpcVivoxToken [User:%s]: %v", userID, err)
		return "", runtime.NewError("failed to generate voice token", 3)
	}

	b, _ := json.Marshal(VivoxTokenResponse{Token: token})
	return string(b), nil
}

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/heroiclabs/nakama-common/rtapi"
	"github.com/heroiclabs/nakama-go/v2"
)

const (
	ServerKey = "defaultkey"
	Host      = "127.0.0.1"
	Port      = 7350
)

// Opcodes mirrored from the server module. These tests run against a live
// server over the socket API, so the values are pinned here rather than
// imported.
const (
	OpStartGame int64 = 1
	OpDrawStock int64 = 2
	OpDiscard   int64 = 6

	OpGameStarted   int64 = 101
	OpRoundStarted  int64 = 102
	OpHandDealt     int64 = 103
	OpCardDiscarded int64 = 111
)

type TestClient struct {
	Client  *nakama.Client
	Session *nakama.Session
	Socket  *nakama.Socket
	UserID  string
}

func NewTestClient(t *testing.T) *TestClient {
	client := nakama.NewClient(ServerKey, Host, Port, false)

	// Create unique ID
	deviceID := fmt.Sprintf("test_device_%d", time.Now().UnixNano())

	// Authenticate
	session, err := client.AuthenticateDevice(context.Background(), deviceID, true, "")
	if err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}

	// Create Socket
	socket := client.NewSocket()
	if err := socket.Connect(context.Background(), session, true); err != nil {
		t.Fatalf("Failed to connect socket: %v", err)
	}

	return &TestClient{
		Client:  client,
		Session: session,
		Socket:  socket,
		UserID:  session.UserId,
	}
}

func (tc *TestClient) Close() {
	if tc.Socket != nil {
		tc.Socket.Close()
	}
}

// CreateRoom calls the 'create_room' RPC, joins the new match and returns
// the match ID together with the shareable room code.
func (tc *TestClient) CreateRoom(t *testing.T) (string, string) {
	rpc, err := tc.Client.RpcFunc(context.Background(), tc.Session, "create_room", "{}")
	if err != nil {
		t.Fatalf("RPC create_room failed: %v", err)
	}

	var resp struct {
		MatchID string `json:"match_id"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal([]byte(rpc.Payload), &resp); err != nil {
		t.Fatalf("RPC create_room returned bad payload: %v", err)
	}
	if resp.MatchID == "" || resp.Code == "" {
		t.Fatalf("RPC create_room returned empty fields: %q", rpc.Payload)
	}

	if _, err := tc.Socket.JoinMatch(context.Background(), nil, resp.MatchID, nil); err != nil {
		t.Fatalf("Failed to join created match %s: %v", resp.MatchID, err)
	}
	return resp.MatchID, resp.Code
}

// JoinRoomByCode resolves a room code via the 'join_room' RPC and joins the match.
func (tc *TestClient) JoinRoomByCode(t *testing.T, code string) string {
	payload := fmt.Sprintf("{\"code\": %q}", code)
	rpc, err := tc.Client.RpcFunc(context.Background(), tc.Session, "join_room", payload)
	if err != nil {
		t.Fatalf("RPC join_room failed: %v", err)
	}

	var resp struct {
		MatchID string `json:"match_id"`
	}
	if err := json.Unmarshal([]byte(rpc.Payload), &resp); err != nil {
		t.Fatalf("RPC join_room returned bad payload: %v", err)
	}

	if _, err := tc.Socket.JoinMatch(context.Background(), nil, resp.MatchID, nil); err != nil {
		t.Fatalf("Failed to join match %s: %v", resp.MatchID, err)
	}
	return resp.MatchID
}

// WaitForMatchState waits for a specific opcode from the socket.
func (tc *TestClient) WaitForMatchState(t *testing.T, opCode int64, timeout time.Duration) *rtapi.MatchData {
	ch := make(chan *rtapi.MatchData)

	// Hook into socket (This is simplistic; robust tests might need a better event bus)
	// nakama-go socket callbacks are set on the socket object.
	// We need to overwrite OnMatchData.

	originalHandler := tc.Socket.OnMatchData
	tc.Socket.OnMatchData = func(data *rtapi.MatchData) {
		if data.OpCode == opCode {
			ch <- data
		}
		if originalHandler != nil {
			originalHandler(data)
		}
	}

	select {
	case data := <-ch:
		return data
	case <-time.After(timeout):
		t.Fatalf("Timeout waiting for OpCode %d", opCode)
		return nil
	}
}

// SendJSON marshals v and sends it as match state under the given opcode.
func (tc *TestClient) SendJSON(t *testing.T, matchID string, opCode int64, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal payload for op %d: %v", opCode, err)
	}
	if _, err := tc.Socket.SendMatchState(context.Background(), matchID, opCode, data, nil); err != nil {
		t.Fatalf("Failed to send op %d: %v", opCode, err)
	}
}

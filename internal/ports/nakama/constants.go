package nakama

const (
	// MatchNameShanghai is the authoritative match handler name registered with Nakama.
	MatchNameShanghai = "shanghai_match"

	// RpcCreateRoom creates a private room and returns its join code.
	RpcCreateRoom = "create_room"
	// RpcJoinRoom resolves a join code to a match id.
	RpcJoinRoom = "join_room"
	// RpcQuickMatch finds or creates a public lobby with an open seat.
	RpcQuickMatch = "quick_match"
	// RpcVivoxToken signs a voice-chat access token for the caller.
	RpcVivoxToken = "vivox_token"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame       int64 = 1
	OpDrawStock       int64 = 2
	OpPickUpDiscard   int64 = 3
	OpMakeMeld        int64 = 4
	OpLayOff          int64 = 5
	OpDiscard         int64 = 6
	OpRespondToBuy    int64 = 7
	OpMoveCard        int64 = 8
	OpRequestSnapshot int64 = 9

	// Server -> Client events
	OpLobbyState      int64 = 100
	OpGameStarted     int64 = 101
	OpRoundStarted    int64 = 102
	OpHandDealt       int64 = 103 // sent privately
	OpTurnAdvanced    int64 = 104
	OpCardDrawn       int64 = 105
	OpDiscardTaken    int64 = 106
	OpBuyWindowOpened int64 = 107
	OpCardBought      int64 = 108
	OpCardMelded      int64 = 109
	OpCardLaidOff     int64 = 110
	OpCardDiscarded   int64 = 111
	OpRoundEnded      int64 = 112
	OpGameCompleted   int64 = 113
	OpSnapshot        int64 = 114
	OpGameError       int64 = 115
)

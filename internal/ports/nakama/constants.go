package nakama

const (
	// RpcCreateTable is the Nakama RPC id clients call to open a table for their device.
	RpcCreateTable = "create_table"

	// MatchNameConcentration is the authoritative match handler name registered with Nakama.
	MatchNameConcentration = "concentration_table"

	// MetadataKeyTicket carries the join ticket in the match join metadata.
	MetadataKeyTicket = "ticket"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpFlipCard     int64 = 1
	OpResetGame    int64 = 2
	OpRequestState int64 = 3

	// Server -> Client events
	OpStateSnapshot int64 = 100
	OpCardFlipped   int64 = 101
	OpPairResolved  int64 = 102
	OpTurnAdvanced  int64 = 103
	OpGameEnded     int64 = 104
	OpGameReset     int64 = 105
	OpGameError     int64 = 110
)

// Error codes carried by OpGameError.
const (
	ErrCodeBadPayload    = 1
	ErrCodeNotYourTurn   = 2
	ErrCodeInvalidConfig = 3
)

package types

// TurnRole identifies who produced a conversation turn.
type TurnRole string

// Conversation roles. The caller supplies user turns; the follow-up service
// produces assistant turns.
const (
	TurnUser      TurnRole = "user"
	TurnAssistant TurnRole = "assistant"
)

// ConversationTurn is one entry in a follow-up session's history. The history
// is append-only and owned by the caller; the follow-up service replays it
// verbatim on every call and never mutates it.
type ConversationTurn struct {
	Role TurnRole `json:"role"`
	Text string   `json:"text"`
}

package table

// AgentType identifies whether a seat is occupied by a human or one of the
// bot strategies.
type AgentType int

const (
	Human AgentType = iota
	Fish
	TAG
	LAG
)

func (t AgentType) String() string {
	switch t {
	case Human:
		return "human"
	case Fish:
		return "fish"
	case TAG:
		return "tag"
	case LAG:
		return "lag"
	default:
		return "unknown"
	}
}

func (t AgentType) IsBot() bool { return t != Human }

// ParseAgentType parses the bot strategy names accepted by the add-bot
// endpoint ("fish", "tag", "lag").
func ParseAgentType(s string) (AgentType, bool) {
	switch s {
	case "fish":
		return Fish, true
	case "tag":
		return TAG, true
	case "lag":
		return LAG, true
	default:
		return 0, false
	}
}

// Agent is the process-wide identity of a player, human or bot. Agents
// belong to the game manager's registry; a Seat holds a pointer to one
// while it occupies a table.
type Agent struct {
	ID             string
	DisplayName    string
	Type           AgentType
	WalletAddress  string
	HandsPlayed    int
	HandsWon       int
	CumulativeProfit int
}

// IsBot reports whether the agent is a bot strategy rather than a human.
func (a *Agent) IsBot() bool { return a.Type.IsBot() }

package board

import "fmt"

// Move is a from→to proposal sent to the server. GameID and PlayerID are
// filled from the session right before submission.
type Move struct {
	From     Square `json:"from"`
	To       Square `json:"to"`
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

func (m Move) String() string {
	return fmt.Sprintf("%s-%s", m.From, m.To)
}

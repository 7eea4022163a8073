package chessdto

// NewGameResponse is returned by GET /chess/v1/newgame.
type NewGameResponse struct {
	GameID   ID     `json:"gameId"`
	PlayerID ID     `json:"playerId"`
	Colour   string `json:"colour,omitempty"`
}

// GameState is returned by GET /chess/v1/gamestate.
type GameState struct {
	Positions map[string]string `json:"positions"`
}

// MoveRequest is the body of POST /chess/v1/makemove.
type MoveRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type GameStatus string

const (
	StatusWaiting    GameStatus = "WAITING"
	StatusInProgress GameStatus = "IN_PROGRESS"
	StatusFinished   GameStatus = "FINISHED"
)

// GameSummary is one entry of GET /chess/v1/allgames/.
type GameSummary struct {
	GameID          ID         `json:"gameId"`
	GameStatus      GameStatus `json:"gameStatus"`
	WhitePlayerName string     `json:"whitePlayerName"`
	BlackPlayerName string     `json:"blackPlayerName"`
	CurrentTurn     string     `json:"currentTurn"`
}

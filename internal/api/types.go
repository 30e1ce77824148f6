package api

import (
	"github.com/pefman/w40k-sim/internal/game"
	"github.com/pefman/w40k-sim/internal/models"
	"github.com/pefman/w40k-sim/internal/sim"
)

// RunRequest asks for a simulation. Units listed inline take precedence over
// the server's roster when names collide.
type RunRequest struct {
	Units      []models.Unit    `json:"units,omitempty"`
	Attacker   string           `json:"attacker"`
	Weapon     string           `json:"weapon,omitempty"` // first weapon when empty
	Defender   string           `json:"defender"`
	Modifiers  models.Modifiers `json:"modifiers"`
	Iterations int              `json:"iterations,omitempty"`
	Seed       uint64           `json:"seed,omitempty"`
	Histogram  bool             `json:"histogram,omitempty"`
}

func (r RunRequest) Matchup() models.Matchup {
	return models.Matchup{Attacker: r.Attacker, Weapon: r.Weapon, Defender: r.Defender, Mods: r.Modifiers}
}

type RunResponse struct {
	ID       string      `json:"id"`
	Summary  sim.Summary `json:"summary"`
	Duration string      `json:"duration"`
}

// ShootResponse is a single explained trial.
type ShootResponse struct {
	Logs   []string              `json:"logs"`
	Damage int                   `json:"damage_total"`
	Kills  int                   `json:"kills"`
	Stats  game.AttackStatistics `json:"stats"`
}

// ProgressMessage is streamed over the websocket while a run executes.
// Type is "progress", "result" or "error".
type ProgressMessage struct {
	Type   string       `json:"type"`
	Done   int          `json:"done,omitempty"`
	Total  int          `json:"total,omitempty"`
	Result *RunResponse `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

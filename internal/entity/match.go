package entity

import "time"

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"

	WinnerDraw = "-"
)

// Outcome is the result of a match. It is decided at most once.
type Outcome int8

const (
	Pending Outcome = iota
	WinA
	WinB
	Draw
)

// WinFor returns the winning outcome for side.
func WinFor(side Side) Outcome {
	if side == SideA {
		return WinA
	}
	return WinB
}

// Winner returns the winning side, false for Pending and Draw.
func (that Outcome) Winner() (Side, bool) {
	switch that {
	case WinA:
		return SideA, true
	case WinB:
		return SideB, true
	default:
		return SideA, false
	}
}

func (that Outcome) IsDecided() bool {
	return that != Pending
}

func (that Outcome) String() string {
	switch that {
	case WinA:
		return "win_a"
	case WinB:
		return "win_b"
	case Draw:
		return "draw"
	default:
		return "pending"
	}
}

// Match is the snapshot of a running session kept in the match registry.
type Match struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Turn      string    `json:"player_turn,omitempty"`
	Winner    string    `json:"winner,omitempty"`
	Board     []string  `json:"board"`
	Players   []*Player `json:"players,omitempty"`
	Moves     int       `json:"moves"`
	StartedAt time.Time `json:"started_at"`
}

func NewMatch(id, addrA, addrB string) *Match {
	return &Match{
		ID:     id,
		Status: StatusWaiting,
		Board:  NewBoard().Rows(),
		Players: []*Player{
			{Side: SideA.String(), Mark: MarkA.String(), Addr: addrA},
			{Side: SideB.String(), Mark: MarkB.String(), Addr: addrB},
		},
		StartedAt: time.Now().UTC(),
	}
}

func (that *Match) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Match) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Match) IsWaiting() bool {
	return that.Status == StatusWaiting
}

// Finish records outcome on the snapshot.
func (that *Match) Finish(outcome Outcome) {
	that.Status = StatusFinished
	that.Turn = ""

	if side, ok := outcome.Winner(); ok {
		that.Winner = side.String()
		return
	}

	if outcome == Draw {
		that.Winner = WinnerDraw
	}
}

package engine

import (
	"sort"
	"time"

	"github.com/louisbranch/gridfall/internal/arena/board"
	"github.com/louisbranch/gridfall/internal/arena/movement"
	"github.com/louisbranch/gridfall/internal/arena/session"
	"github.com/louisbranch/gridfall/internal/arena/turns"
	"github.com/louisbranch/gridfall/internal/platform/errors"
)

// View structs are read-only snapshots handed to transports. They flatten
// internal types to plain fields so clients never import arena packages.

// ParticipantView is one roster slot.
type ParticipantView struct {
	Name    string `json:"name"`
	Profile string `json:"profile"`

	X      int  `json:"x"`
	Y      int  `json:"y"`
	Placed bool `json:"placed"`

	Life         int `json:"life"`
	MaxLife      int `json:"max_life"`
	Attack       int `json:"attack"`
	Defense      int `json:"defense"`
	Speed        int `json:"speed"`
	MovementLeft int `json:"movement_left"`
	ActionsLeft  int `json:"actions_left"`

	Inventory []string `json:"inventory,omitempty"`

	Active     bool `json:"active"`
	Eliminated bool `json:"eliminated,omitempty"`
	Observer   bool `json:"observer,omitempty"`

	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// TileView is one grid tile.
type TileView struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Terrain string `json:"terrain"`
	Door    bool   `json:"door,omitempty"`
	Open    bool   `json:"open,omitempty"`
	Item    string `json:"item,omitempty"`
}

// BoardView is the full grid snapshot.
type BoardView struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Tiles  []TileView `json:"tiles"`
}

// CombatView is the in-flight combat, when one exists.
type CombatView struct {
	Challenger string `json:"challenger"`
	Defender   string `json:"defender"`
	Turn       string `json:"turn"`
}

// SessionView is the full state of one match.
type SessionView struct {
	ID        string    `json:"id"`
	MapName   string    `json:"map_name"`
	Started   bool      `json:"started"`
	Locked    bool      `json:"locked"`
	TurnCount int       `json:"turn_count"`
	Current   string    `json:"current,omitempty"`
	Remaining int       `json:"remaining,omitempty"`
	PrizePool int64     `json:"prize_pool,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Elimination bool  `json:"elimination,omitempty"`
	EntryFee    int64 `json:"entry_fee,omitempty"`

	Board        BoardView         `json:"board"`
	Participants []ParticipantView `json:"participants"`
	Combat       *CombatView       `json:"combat,omitempty"`
}

// SessionSummary is the lobby-listing projection.
type SessionSummary struct {
	ID           string    `json:"id"`
	MapName      string    `json:"map_name"`
	Started      bool      `json:"started"`
	Participants int       `json:"participants"`
	EntryFee     int64     `json:"entry_fee,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// SessionView snapshots one session.
func (e *Engine) SessionView(sessionID string) (SessionView, error) {
	return callValue(e, func() (SessionView, error) {
		s, ok := e.registry.Session(sessionID)
		if !ok {
			return SessionView{}, errors.New(errors.CodeSessionNotFound, "session not found")
		}
		return e.viewSession(s), nil
	})
}

// Sessions lists summaries of every live session, newest first.
func (e *Engine) Sessions() []SessionSummary {
	summaries, _ := callValue(e, func() ([]SessionSummary, error) {
		all := e.registry.Sessions()
		out := make([]SessionSummary, 0, len(all))
		for _, s := range all {
			out = append(out, SessionSummary{
				ID:           s.ID,
				MapName:      s.MapName,
				Started:      s.Started,
				Participants: len(s.Participants),
				EntryFee:     s.Settings.EntryFee,
				CreatedAt:    s.CreatedAt,
			})
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].ID < out[j].ID
		})
		return out, nil
	})
	return summaries
}

// ReachableView is a participant's current movement options.
type ReachableView struct {
	Tiles []ReachableTileView `json:"tiles"`
}

// ReachableTileView is one tile within movement range.
type ReachableTileView struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Cost int `json:"cost"`
}

// AdjacentView lists what a participant could interact with from their
// current tile.
type AdjacentView struct {
	Opponents []string      `json:"opponents,omitempty"`
	Doors     []board.Coord `json:"doors,omitempty"`
	Walls     []board.Coord `json:"walls,omitempty"`
}

// Reachable computes the requesting participant's reachable tiles with
// their remaining movement budget.
func (e *Engine) Reachable(sessionID, channelID string) (ReachableView, error) {
	return callValue(e, func() (ReachableView, error) {
		s, p, err := e.resolve(sessionID, channelID)
		if err != nil {
			return ReachableView{}, err
		}
		reach := movement.ReachableTiles(s, p, p.MovementLeft)
		view := ReachableView{Tiles: make([]ReachableTileView, 0, len(reach))}
		for at, r := range reach {
			view.Tiles = append(view.Tiles, ReachableTileView{X: at.X, Y: at.Y, Cost: r.Cost})
		}
		sort.Slice(view.Tiles, func(i, j int) bool {
			if view.Tiles[i].Y != view.Tiles[j].Y {
				return view.Tiles[i].Y < view.Tiles[j].Y
			}
			return view.Tiles[i].X < view.Tiles[j].X
		})
		return view, nil
	})
}

// Adjacent reports the opponents, doors and breakable walls next to the
// requesting participant.
func (e *Engine) Adjacent(sessionID, channelID string) (AdjacentView, error) {
	return callValue(e, func() (AdjacentView, error) {
		s, p, err := e.resolve(sessionID, channelID)
		if err != nil {
			return AdjacentView{}, err
		}
		var view AdjacentView
		for _, opponent := range movement.AdjacentOpponents(s, p) {
			view.Opponents = append(view.Opponents, opponent.Name)
		}
		view.Doors = movement.AdjacentDoors(s, p)
		view.Walls = movement.AdjacentWalls(s, p)
		return view, nil
	})
}

func (e *Engine) viewSession(s *session.Session) SessionView {
	view := SessionView{
		ID:          s.ID,
		MapName:     s.MapName,
		Started:     s.Started,
		Locked:      s.Locked,
		TurnCount:   s.TurnCount,
		PrizePool:   s.PrizePool,
		CreatedAt:   s.CreatedAt,
		Elimination: s.Settings.Elimination,
		EntryFee:    s.Settings.EntryFee,
		Board:       viewBoard(s.Board),
	}

	if current, ok := s.Current(); ok {
		view.Current = current.Name
	}
	if countdown, ok := e.countdowns.Get(s.ID, turns.KindTurn); ok {
		view.Remaining = countdown.Remaining
	}

	view.Participants = make([]ParticipantView, 0, len(s.Participants))
	for _, p := range s.Participants {
		view.Participants = append(view.Participants, viewParticipant(p))
	}

	if c, ok := e.registry.Combat(s.ID); ok {
		view.Combat = &CombatView{
			Challenger: c.Challenger,
			Defender:   c.Defender,
			Turn:       c.Turn,
		}
		if countdown, ok := e.countdowns.Get(s.ID, turns.KindCombat); ok {
			view.Remaining = countdown.Remaining
		}
	}
	return view
}

func viewParticipant(p *session.Participant) ParticipantView {
	view := ParticipantView{
		Name:         p.Name,
		Profile:      p.Profile.String(),
		Life:         p.Life,
		MaxLife:      p.MaxLife,
		Attack:       p.Attack,
		Defense:      p.Defense,
		Speed:        p.Speed,
		MovementLeft: p.MovementLeft,
		ActionsLeft:  p.ActionsLeft,
		Active:       p.Active,
		Eliminated:   p.Eliminated,
		Observer:     p.Observer,
		Wins:         p.Wins,
		Losses:       p.Losses,
	}
	if p.Position != nil {
		view.X = p.Position.X
		view.Y = p.Position.Y
		view.Placed = true
	}
	for _, item := range p.Inventory {
		view.Inventory = append(view.Inventory, string(item))
	}
	return view
}

func viewBoard(b *board.Board) BoardView {
	view := BoardView{Width: b.Width(), Height: b.Height()}
	view.Tiles = make([]TileView, 0, b.Width()*b.Height())
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			at := board.Coord{X: x, Y: y}
			tile := TileView{X: x, Y: y, Terrain: b.TerrainAt(at).String()}
			if b.IsDoor(at) {
				tile.Door = true
				tile.Open = b.DoorOpen(at)
			}
			if category, ok := b.ItemAt(at); ok {
				tile.Item = string(category)
			}
			view.Tiles = append(view.Tiles, tile)
		}
	}
	return view
}

// Package movement computes reachability over a session's weighted grid.
//
// Every function is a pure query of (session, participant) state: no
// mutation, and invalid input yields empty results rather than errors.
package movement

import (
	"container/heap"

	"github.com/louisbranch/gridfall/internal/arena/board"
	"github.com/louisbranch/gridfall/internal/arena/session"
)

// Reach describes one reachable tile: its cheapest path from the origin
// (origin included) and the total terrain cost.
type Reach struct {
	Path []board.Coord
	Cost int
}

type searchNode struct {
	at    board.Coord
	cost  int
	order int // discovery order breaks cost ties
	index int
}

type searchQueue []*searchNode

func (q searchQueue) Len() int { return len(q) }

func (q searchQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].order < q[j].order
}

func (q searchQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *searchQueue) Push(x any) {
	node := x.(*searchNode)
	node.index = len(*q)
	*q = append(*q, node)
}

func (q *searchQueue) Pop() any {
	old := *q
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return node
}

// ReachableTiles runs a single-source shortest-path search from the
// participant's position over 4-directional adjacency. Walls, closed doors
// and tiles occupied by other active participants are impassable. Every
// returned tile's cost is within budget; the origin is always included at
// cost 0. Ties between equal-cost paths resolve by discovery order and are
// never re-optimized.
func ReachableTiles(s *session.Session, p *session.Participant, budget int) map[board.Coord]Reach {
	out := map[board.Coord]Reach{}
	if s == nil || s.Board == nil || p == nil || p.Position == nil {
		return out
	}

	origin := *p.Position
	dist := map[board.Coord]int{origin: 0}
	prev := map[board.Coord]board.Coord{}

	order := 0
	queue := &searchQueue{}
	heap.Init(queue)
	heap.Push(queue, &searchNode{at: origin, cost: 0, order: order})

	for queue.Len() > 0 {
		node := heap.Pop(queue).(*searchNode)
		if node.cost > dist[node.at] {
			continue // stale entry
		}

		out[node.at] = Reach{Path: pathFrom(prev, origin, node.at), Cost: node.cost}

		for _, next := range node.at.Neighbors() {
			cost, passable := s.Board.MoveCost(next)
			if !passable {
				continue
			}
			if occupant, ok := s.OccupiedBy(next); ok && occupant != p {
				continue
			}
			total := node.cost + cost
			if total > budget {
				continue
			}
			if known, seen := dist[next]; seen && known <= total {
				continue
			}
			dist[next] = total
			prev[next] = node.at
			order++
			heap.Push(queue, &searchNode{at: next, cost: total, order: order})
		}
	}

	return out
}

// PathTo returns the cheapest path from the participant to destination
// within budget, or nil when unreachable. The path is truncated at the
// first item-bearing tile encountered: items block further traversal in a
// single call, and the caller re-issues movement to continue.
func PathTo(s *session.Session, p *session.Participant, destination board.Coord, budget int) []board.Coord {
	reach := ReachableTiles(s, p, budget)
	target, ok := reach[destination]
	if !ok {
		return nil
	}

	path := target.Path
	for i, step := range path {
		if i == 0 {
			continue // origin never truncates
		}
		if _, hasItem := s.Board.ItemAt(step); hasItem {
			return path[:i+1]
		}
	}
	return path
}

// IsStuck reports whether the participant has actions exhausted, movement
// budget remaining, and nowhere to spend it.
func IsStuck(s *session.Session, p *session.Participant) bool {
	if p == nil || p.ActionsLeft > 0 || p.MovementLeft <= 0 {
		return false
	}
	reach := ReachableTiles(s, p, p.MovementLeft)
	return len(reach) <= 1
}

// AdjacentOpponents returns eligible participants standing next to p.
func AdjacentOpponents(s *session.Session, p *session.Participant) []*session.Participant {
	if s == nil || p == nil || p.Position == nil {
		return nil
	}
	var out []*session.Participant
	for _, n := range p.Position.Neighbors() {
		if occupant, ok := s.OccupiedBy(n); ok && occupant != p && occupant.Eligible() {
			out = append(out, occupant)
		}
	}
	return out
}

// AdjacentDoors returns door tiles next to p, excluding doors currently
// occupied by an adjacent participant.
func AdjacentDoors(s *session.Session, p *session.Participant) []board.Coord {
	if s == nil || s.Board == nil || p == nil || p.Position == nil {
		return nil
	}
	var out []board.Coord
	for _, n := range p.Position.Neighbors() {
		if !s.Board.IsDoor(n) {
			continue
		}
		if _, occupied := s.OccupiedBy(n); occupied {
			continue
		}
		out = append(out, n)
	}
	return out
}

// AdjacentWalls returns wall tiles next to p, excluding walls that have a
// door on one of their own adjacent tiles.
func AdjacentWalls(s *session.Session, p *session.Participant) []board.Coord {
	if s == nil || s.Board == nil || p == nil || p.Position == nil {
		return nil
	}
	var out []board.Coord
	for _, n := range p.Position.Neighbors() {
		if s.Board.TerrainAt(n) != board.TerrainWall || !s.Board.InBounds(n) {
			continue
		}
		if wallTouchesDoor(s.Board, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func wallTouchesDoor(b *board.Board, wall board.Coord) bool {
	for _, n := range wall.Neighbors() {
		if b.IsDoor(n) {
			return true
		}
	}
	return false
}

func pathFrom(prev map[board.Coord]board.Coord, origin, target board.Coord) []board.Coord {
	if target == origin {
		return []board.Coord{origin}
	}
	var reversed []board.Coord
	for at := target; ; {
		reversed = append(reversed, at)
		if at == origin {
			break
		}
		at = prev[at]
	}
	path := make([]board.Coord, len(reversed))
	for i, step := range reversed {
		path[len(reversed)-1-i] = step
	}
	return path
}

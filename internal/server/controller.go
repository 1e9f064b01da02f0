package server

import (
	"sync"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
)

// Controller serializes access to a game session shared by HTTP handlers.
type Controller struct {
	mu      sync.Mutex
	session *game.Session
}

func NewController(session *game.Session) *Controller {
	return &Controller{session: session}
}

func (gc *Controller) Status() StatusResponse {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.status()
}

func (gc *Controller) status() StatusResponse {
	resp := StatusResponse{Snapshot: gc.session.Snapshot()}
	if hist := gc.session.History(); len(hist) > 0 {
		last := moveToDTO(hist[len(hist)-1])
		resp.LastMove = &last
	}
	return resp
}

func (gc *Controller) Destinations(sq board.Square) ([]string, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	dests, err := gc.session.Destinations(sq)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, dests.PopCount())
	for _, d := range dests.Squares() {
		names = append(names, d.String())
	}
	return names, nil
}

// ApplyMove plays from -> to. promo may be NoPieceType, in which case a pawn
// reaching its last rank waits for Promote.
func (gc *Controller) ApplyMove(from, to board.Square, promo board.PieceType) (StatusResponse, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	var err error
	if promo == board.NoPieceType {
		_, err = gc.session.Move(from, to)
	} else {
		_, err = gc.session.MovePromote(from, to, promo)
	}
	if err != nil {
		return StatusResponse{}, err
	}
	return gc.status(), nil
}

func (gc *Controller) Promote(pt board.PieceType) (StatusResponse, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if _, err := gc.session.Promote(pt); err != nil {
		return StatusResponse{}, err
	}
	return gc.status(), nil
}

// Reset starts a new game from fen, or from the initial position when fen is empty.
func (gc *Controller) Reset(fen string) (StatusResponse, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if fen == "" {
		gc.session.Reset()
	} else if err := gc.session.LoadFEN(fen); err != nil {
		return StatusResponse{}, err
	}
	return gc.status(), nil
}

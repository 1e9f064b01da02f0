// Package server exposes a game session over HTTP with a websocket status stream.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
)

type StatusResponse struct {
	game.Snapshot
	LastMove *moveDTO `json:"last_move,omitempty"`
}

type moveDTO struct {
	Move      string `json:"move"`
	Piece     string `json:"piece"`
	Captured  string `json:"captured,omitempty"`
	Check     bool   `json:"check"`
	Checkmate bool   `json:"checkmate"`
	Stalemate bool   `json:"stalemate"`
}

type apiMove struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

type apiPromote struct {
	Piece string `json:"piece"`
}

type apiReset struct {
	FEN string `json:"fen,omitempty"`
}

type destinationsResponse struct {
	Square       string   `json:"square"`
	Destinations []string `json:"destinations"`
}

// Server routes API requests to a controller and pushes updates through a hub.
type Server struct {
	controller *Controller
	hub        *Hub
}

func New(session *game.Session) *Server {
	return &Server{
		controller: NewController(session),
		hub:        NewHub(),
	}
}

// Run drives the broadcast hub until done is closed.
func (s *Server) Run(done <-chan struct{}) {
	s.hub.Run(done)
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.controller.Status())
	})

	r.Get("/api/moves/{square}", func(w http.ResponseWriter, r *http.Request) {
		sq, err := board.ParseSquare(chi.URLParam(r, "square"))
		if err != nil {
			writeError(w, err)
			return
		}
		dests, err := s.controller.Destinations(sq)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, destinationsResponse{Square: sq.String(), Destinations: dests})
	})

	r.Post("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var payload apiMove
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		from, err := board.ParseSquare(payload.From)
		if err != nil {
			writeError(w, err)
			return
		}
		to, err := board.ParseSquare(payload.To)
		if err != nil {
			writeError(w, err)
			return
		}
		promo := board.NoPieceType
		if payload.Promotion != "" {
			if promo, err = parsePromotion(payload.Promotion); err != nil {
				writeError(w, err)
				return
			}
		}

		status, err := s.controller.ApplyMove(from, to, promo)
		if err != nil {
			writeError(w, err)
			return
		}
		s.hub.broadcastStatus <- status
		writeJSON(w, http.StatusOK, status)
	})

	r.Post("/api/promote", func(w http.ResponseWriter, r *http.Request) {
		var payload apiPromote
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		pt, err := parsePromotion(payload.Piece)
		if err != nil {
			writeError(w, err)
			return
		}
		status, err := s.controller.Promote(pt)
		if err != nil {
			writeError(w, err)
			return
		}
		s.hub.broadcastStatus <- status
		writeJSON(w, http.StatusOK, status)
	})

	r.Post("/api/reset", func(w http.ResponseWriter, r *http.Request) {
		var payload apiReset
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
				return
			}
		}
		status, err := s.controller.Reset(payload.FEN)
		if err != nil {
			writeError(w, err)
			return
		}
		s.hub.broadcastReset <- status
		writeJSON(w, http.StatusOK, status)
	})

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		serveWS(s.hub, s.controller, w, r)
	})

	return r
}

func serveWS(hub *Hub, controller *Controller, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(client)

	client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(controller.Status())})

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			return
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(controller.Status())})
		}
	}
}

var errBadPromotion = errors.New("promotion must be one of q, r, b, n")

func parsePromotion(s string) (board.PieceType, error) {
	if len(s) != 1 {
		return board.NoPieceType, errBadPromotion
	}
	pt := board.PieceTypeFromChar(s[0])
	if !pt.IsPromotable() {
		return board.NoPieceType, errBadPromotion
	}
	return pt, nil
}

func moveToDTO(rec board.MoveRecord) moveDTO {
	dto := moveDTO{
		Move:      rec.String(),
		Piece:     rec.Piece.String(),
		Check:     rec.Check,
		Checkmate: rec.Checkmate,
		Stalemate: rec.Stalemate,
	}
	if rec.IsCapture() {
		dto.Captured = rec.Captured.String()
	}
	return dto
}

// statusForError maps rule violations to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrPromotionRequired),
		errors.Is(err, game.ErrNoPromotion):
		return http.StatusConflict
	case errors.Is(err, board.ErrIllegalMove),
		errors.Is(err, game.ErrNotYourTurn):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Package cli implements a line-based text console for playing and inspecting games.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
	"github.com/hailam/chessrules/internal/storage"
)

// StatsSource provides stored game statistics.
type StatsSource interface {
	LoadStats() (*storage.GameStats, error)
	RecentGames(n int) ([]storage.GameRecord, error)
}

// Console reads commands and writes replies for a single game session.
type Console struct {
	session *game.Session
	stats   StatsSource // nil when statistics are disabled
	out     io.Writer
}

// New creates a console around a session. stats may be nil.
func New(session *game.Session, stats StatsSource) *Console {
	return &Console{session: session, stats: stats}
}

// Run processes commands from in until "quit" or end of input.
func (c *Console) Run(in io.Reader, out io.Writer) error {
	c.out = out
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		if board.DebugMoveValidation {
			c.printf("debug: %s\n", line)
		}

		switch cmd {
		case "new":
			c.session.Reset()
			c.printf("ok\n")
		case "d":
			c.printf("%s", c.session.Position().String())
		case "fen":
			c.printf("%s\n", c.session.FEN())
		case "position":
			c.handlePosition(args)
		case "moves":
			c.handleMoves(args)
		case "move":
			c.handleMove(args)
		case "promote":
			c.handlePromote(args)
		case "status":
			c.handleStatus()
		case "history":
			c.handleHistory()
		case "perft":
			c.handlePerft(args)
		case "stats":
			c.handleStats()
		case "debug":
			c.handleDebug(args)
		case "help":
			c.handleHelp()
		case "quit":
			return nil
		default:
			c.printf("error: unknown command %q\n", cmd)
		}
	}

	return scanner.Err()
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (c *Console) handlePosition(args []string) {
	if len(args) == 0 {
		c.printf("error: position needs startpos or fen\n")
		return
	}

	setup, moves := args, []string(nil)
	for i, arg := range args {
		if arg == "moves" {
			setup, moves = args[:i], args[i+1:]
			break
		}
	}

	if len(setup) == 0 {
		c.printf("error: position needs startpos or fen\n")
		return
	}

	switch setup[0] {
	case "startpos":
		c.session.Reset()
	case "fen":
		if err := c.session.LoadFEN(strings.Join(setup[1:], " ")); err != nil {
			c.printf("error: %v\n", err)
			return
		}
	default:
		c.printf("error: unknown position type %q\n", args[0])
		return
	}

	for _, moveStr := range moves {
		if _, err := c.play(moveStr); err != nil {
			c.printf("error: %s: %v\n", moveStr, err)
			return
		}
	}
	c.printf("ok\n")
}

func (c *Console) handleMoves(args []string) {
	if len(args) != 1 {
		c.printf("error: usage: moves <square>\n")
		return
	}
	sq, err := board.ParseSquare(args[0])
	if err != nil {
		c.printf("error: %v\n", err)
		return
	}
	dests, err := c.session.Destinations(sq)
	if err != nil {
		c.printf("error: %v\n", err)
		return
	}
	names := make([]string, 0, dests.PopCount())
	for _, d := range dests.Squares() {
		names = append(names, d.String())
	}
	c.printf("%s: %s\n", sq, strings.Join(names, " "))
}

func (c *Console) handleMove(args []string) {
	if len(args) != 1 {
		c.printf("error: usage: move <from><to>[q|r|b|n]\n")
		return
	}
	rec, err := c.play(args[0])
	if err != nil {
		c.printf("error: %v\n", err)
		return
	}
	c.report(rec)
}

// play applies a coordinate move through the session.
func (c *Console) play(moveStr string) (board.MoveRecord, error) {
	pos := c.session.Position()
	m, err := board.ParseMove(moveStr, pos)
	if err != nil {
		return board.MoveRecord{}, err
	}
	if m.IsPromotion() {
		return c.session.MovePromote(m.From(), m.To(), m.Promotion())
	}
	return c.session.Move(m.From(), m.To())
}

func (c *Console) handlePromote(args []string) {
	if len(args) != 1 || len(args[0]) != 1 {
		c.printf("error: usage: promote <q|r|b|n>\n")
		return
	}
	rec, err := c.session.Promote(board.PieceTypeFromChar(args[0][0]))
	if err != nil {
		c.printf("error: %v\n", err)
		return
	}
	c.report(rec)
}

// report prints the outcome of a move.
func (c *Console) report(rec board.MoveRecord) {
	var notes []string
	if rec.IsCapture() {
		notes = append(notes, "captures "+rec.Captured.Type.String())
	}
	switch c.session.Status() {
	case game.AwaitingPromotion:
		notes = append(notes, "promote with: promote <q|r|b|n>")
	case game.Checkmate:
		notes = append(notes, "checkmate")
	case game.Stalemate:
		notes = append(notes, "stalemate")
	default:
		if rec.Check {
			notes = append(notes, "check")
		}
	}
	if len(notes) == 0 {
		c.printf("played %s\n", rec)
		return
	}
	c.printf("played %s (%s)\n", rec, strings.Join(notes, ", "))
}

func (c *Console) handleStatus() {
	snap := c.session.Snapshot()
	c.printf("turn: %s\n", snap.Turn)
	c.printf("status: %s\n", snap.Status)
	if snap.Winner != "" {
		c.printf("winner: %s\n", snap.Winner)
	}
	if snap.Check {
		c.printf("check: yes\n")
	}
	if snap.Promotion != "" {
		c.printf("promotion pending on %s\n", snap.Promotion)
	}
	c.printf("fen: %s\n", snap.FEN)
}

func (c *Console) handleHistory() {
	pairs := c.session.MovePairs()
	if len(pairs) == 0 {
		c.printf("no moves\n")
		return
	}
	for _, p := range pairs {
		white := p.White
		if white == "" {
			white = "..."
		}
		c.printf("%d. %s %s\n", p.Number, white, p.Black)
	}
}

func (c *Console) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 1 {
			c.printf("error: invalid depth %q\n", args[0])
			return
		}
		depth = d
	}

	pos := c.session.Position()
	start := time.Now()
	counts := pos.Divide(depth)
	elapsed := time.Since(start)

	moves := make([]board.Move, 0, len(counts))
	for m := range counts {
		moves = append(moves, m)
	}
	sort.Slice(moves, func(i, j int) bool { return moves[i].String() < moves[j].String() })

	var nodes int64
	for _, m := range moves {
		c.printf("%s: %d\n", m, counts[m])
		nodes += counts[m]
	}
	c.printf("\nNodes: %d\n", nodes)
	c.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		c.printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}

func (c *Console) handleStats() {
	if c.stats == nil {
		c.printf("statistics disabled\n")
		return
	}
	stats, err := c.stats.LoadStats()
	if err != nil {
		c.printf("error: %v\n", err)
		return
	}
	c.printf("games: %d\n", stats.GamesPlayed)
	c.printf("white wins: %d\n", stats.WhiteWins)
	c.printf("black wins: %d\n", stats.BlackWins)
	c.printf("stalemates: %d\n", stats.Stalemates)
	c.printf("average plies: %.1f\n", stats.AveragePlies())

	recent, err := c.stats.RecentGames(5)
	if err != nil {
		c.printf("error: %v\n", err)
		return
	}
	for _, g := range recent {
		c.printf("  %s %s %s in %d plies\n", g.Finished.Format(time.DateTime), g.Status, g.Winner, g.Plies)
	}
}

func (c *Console) handleDebug(args []string) {
	if len(args) == 1 {
		switch args[0] {
		case "on":
			board.DebugMoveValidation = true
		case "off":
			board.DebugMoveValidation = false
		default:
			c.printf("error: usage: debug on|off\n")
			return
		}
	}
	c.printf("debug %v\n", board.DebugMoveValidation)
}

func (c *Console) handleHelp() {
	c.printf(`commands:
  new                              start a new game
  d                                show the board
  fen                              print the position as FEN
  position startpos|fen <fen> [moves ...]
  moves <square>                   legal destinations of a piece
  move <from><to>[q|r|b|n]         play a move
  promote <q|r|b|n>                finish a pending promotion
  status                           turn, check and game state
  history                          move list
  perft <depth>                    count leaf nodes per root move
  stats                            stored game statistics
  debug on|off                     toggle consistency checks
  quit
`)
}

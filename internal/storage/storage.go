package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
)

// Storage keys
const (
	keyStats      = "stats"
	prefixResults = "result/"
)

// GameStats stores game statistics
type GameStats struct {
	GamesPlayed   int           `json:"games_played"`
	WhiteWins     int           `json:"white_wins"`
	BlackWins     int           `json:"black_wins"`
	Stalemates    int           `json:"stalemates"`
	TotalPlies    int           `json:"total_plies"`
	LongestGame   int           `json:"longest_game"`
	TotalPlayTime time.Duration `json:"total_play_time"`
}

// AveragePlies returns the mean game length in plies.
func (s *GameStats) AveragePlies() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.TotalPlies) / float64(s.GamesPlayed)
}

// GameRecord is a stored finished game.
type GameRecord struct {
	Finished time.Time     `json:"finished"`
	Status   string        `json:"status"`
	Winner   string        `json:"winner,omitempty"`
	Plies    int           `json:"plies"`
	Duration time.Duration `json:"duration"`
	FinalFEN string        `json:"final_fen"`
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db  *badger.DB
	now func() time.Time
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens or creates the database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging
	return open(opts)
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Storage, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db, now: time.Now}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	})
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := &GameStats{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Use empty stats
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	return stats, err
}

// RecordGame stores a finished game and updates the statistics in one transaction.
// It implements game.Recorder.
func (s *Storage) RecordGame(result game.Result) error {
	finished := s.now()
	rec := GameRecord{
		Finished: finished,
		Status:   result.Status.String(),
		Plies:    result.Plies,
		Duration: result.Duration,
		FinalFEN: result.FinalFEN,
	}
	if result.Status == game.Checkmate {
		rec.Winner = result.Winner.String()
	}
	recData, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		stats := &GameStats{}
		item, err := txn.Get([]byte(keyStats))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, stats)
			}); err != nil {
				return err
			}
		}

		stats.GamesPlayed++
		stats.TotalPlies += result.Plies
		stats.TotalPlayTime += result.Duration
		if result.Plies > stats.LongestGame {
			stats.LongestGame = result.Plies
		}
		switch {
		case result.Status == game.Stalemate:
			stats.Stalemates++
		case result.Winner == board.White:
			stats.WhiteWins++
		case result.Winner == board.Black:
			stats.BlackWins++
		}

		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		if err := txn.Set([]byte(keyStats), data); err != nil {
			return err
		}
		return txn.Set(resultKey(finished), recData)
	})
}

// RecentGames returns up to n stored games, newest first.
func (s *Storage) RecentGames(n int) ([]GameRecord, error) {
	var games []GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(prefixResults)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration seeks from just past the prefix range
		seek := append([]byte(prefixResults), 0xFF)
		for it.Seek(seek); it.Valid() && len(games) < n; it.Next() {
			var rec GameRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			games = append(games, rec)
		}
		return nil
	})

	return games, err
}

// resultKey orders results by finish time.
func resultKey(t time.Time) []byte {
	key := make([]byte, len(prefixResults)+8)
	copy(key, prefixResults)
	binary.BigEndian.PutUint64(key[len(prefixResults):], uint64(t.UnixNano()))
	return key
}

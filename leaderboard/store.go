// Package leaderboard keeps the top scores and the last used player name in
// the local key-value store.
package leaderboard

import (
	"cmp"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"portfolio-snake/constants"
	"portfolio-snake/models"
	"portfolio-snake/storage"

	"golang.org/x/exp/slices"
)

type Store struct {
	kv      storage.KV
	nameKey string
	// shared by every client view so concurrent submissions don't lose entries
	mu *sync.Mutex
}

func NewStore(kv storage.KV) *Store {
	return &Store{
		kv:      kv,
		nameKey: constants.PLAYER_NAME_KEY,
		mu:      &sync.Mutex{},
	}
}

// ForClient returns a view of the same leaderboard whose saved name belongs
// to one client.
func (s *Store) ForClient(clientID string) *Store {
	return &Store{
		kv:      s.kv,
		nameKey: constants.PLAYER_NAME_KEY + ":" + clientID,
		mu:      s.mu,
	}
}

// Leaderboard returns at most five entries, highest score first. Unreadable
// or foreign data reads as an empty board.
func (s *Store) Leaderboard() []models.LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// AddScore records a run and returns the resulting top five. Non-positive
// scores are ignored.
func (s *Store) AddScore(name string, score int) []models.LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if score <= 0 {
		return s.load()
	}

	safeName := strings.TrimSpace(name)
	if safeName == "" {
		safeName = constants.DEFAULT_NAME
	}

	list := s.load()
	list = append(list, models.LeaderboardEntry{Name: safeName, Score: score})
	sortByScore(list)
	if err := s.save(list); err != nil {
		log.Printf("Failed to save leaderboard: %v", err)
	}
	return s.load()
}

func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(constants.LEADERBOARD_KEY); err != nil {
		return fmt.Errorf("resetting leaderboard: %w", err)
	}
	return nil
}

// HighScore is the best stored score, or 0 for an empty board.
func (s *Store) HighScore() int {
	board := s.Leaderboard()
	if len(board) == 0 {
		return 0
	}
	return board[0].Score
}

func (s *Store) SavedName() string {
	name, _, err := s.kv.Get(s.nameKey)
	if err != nil {
		log.Printf("Failed to read saved name: %v", err)
		return ""
	}
	return name
}

func (s *Store) SetSavedName(name string) {
	if err := s.kv.Set(s.nameKey, name); err != nil {
		log.Printf("Failed to save player name: %v", err)
	}
}

// load must be called with mu held.
func (s *Store) load() []models.LeaderboardEntry {
	raw, ok, err := s.kv.Get(constants.LEADERBOARD_KEY)
	if err != nil {
		log.Printf("Failed to read leaderboard: %v", err)
		return []models.LeaderboardEntry{}
	}
	if !ok {
		return []models.LeaderboardEntry{}
	}

	entries := decode(raw)
	sortByScore(entries)
	return top(entries)
}

// save must be called with mu held.
func (s *Store) save(entries []models.LeaderboardEntry) error {
	data, err := json.Marshal(top(sanitize(entries)))
	if err != nil {
		return fmt.Errorf("encoding leaderboard: %w", err)
	}
	return s.kv.Set(constants.LEADERBOARD_KEY, string(data))
}

// sortByScore orders entries highest first; equal scores keep insertion order.
func sortByScore(entries []models.LeaderboardEntry) {
	slices.SortStableFunc(entries, func(a, b models.LeaderboardEntry) int {
		return cmp.Compare(b.Score, a.Score)
	})
}

func top(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	if len(entries) > constants.LEADERBOARD_SIZE {
		return entries[:constants.LEADERBOARD_SIZE]
	}
	return entries
}

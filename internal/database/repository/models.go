package repository

import "time"

// PlayResult represents a play_results row.
type PlayResult struct {
	ID        string
	SessionID string
	GameID    string
	Score     int
	Items     int
	Furthest  int
	Checks    int
	Completed bool
	StartedAt time.Time
	EndedAt   time.Time
}

// Duration is how long the session lasted.
func (p PlayResult) Duration() time.Duration {
	return p.EndedAt.Sub(p.StartedAt)
}

// GameBest aggregates results for one game.
type GameBest struct {
	GameID    string
	BestScore int
	Plays     int
	LastPlay  time.Time
}

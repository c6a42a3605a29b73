package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jask/glyphtrace/internal/database"
	"github.com/jask/glyphtrace/internal/database/repository"
	"github.com/jask/glyphtrace/internal/game"
)

const defaultRecentLimit = 20

// ScoreboardService records finished sessions. A nil *ScoreboardService or
// one without a repo is a no-op scoreboard.
type ScoreboardService struct {
	Results *repository.ResultRepo
}

// Record stores sum. Sessions in which nothing was checked are skipped.
func (s *ScoreboardService) Record(ctx context.Context, sum game.Summary) (bool, error) {
	if s == nil || s.Results == nil {
		return false, nil
	}
	if sum.Checks == 0 {
		log.Debug().Str("session", sum.SessionID).Msg("skipping result with no checks")
		return false, nil
	}
	ended := sum.EndedAt
	if ended.IsZero() {
		ended = database.Now()
	}
	err := s.Results.Insert(ctx, repository.PlayResult{
		ID:        uuid.NewString(),
		SessionID: sum.SessionID,
		GameID:    sum.GameID,
		Score:     sum.Score,
		Items:     sum.Items,
		Furthest:  sum.Furthest,
		Checks:    sum.Checks,
		Completed: sum.Completed,
		StartedAt: sum.StartedAt,
		EndedAt:   ended,
	})
	if err != nil {
		return false, fmt.Errorf("record %s: %w", sum.SessionID, err)
	}
	return true, nil
}

// Best returns each played game's best score.
func (s *ScoreboardService) Best(ctx context.Context) (map[string]repository.GameBest, error) {
	if s == nil || s.Results == nil {
		return map[string]repository.GameBest{}, nil
	}
	return s.Results.BestByGame(ctx)
}

// Recent lists the latest results, newest first. limit <= 0 uses a default.
func (s *ScoreboardService) Recent(ctx context.Context, gameID string, limit int) ([]repository.PlayResult, error) {
	if s == nil || s.Results == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.Results.Recent(ctx, repository.ResultFilters{GameID: gameID, Limit: limit})
}

// Clear removes history for gameID, or everything when gameID is empty.
func (s *ScoreboardService) Clear(ctx context.Context, gameID string) (int64, error) {
	if s == nil || s.Results == nil {
		return 0, nil
	}
	n, err := s.Results.Clear(ctx, gameID)
	if err != nil {
		return 0, err
	}
	log.Info().Str("game", gameID).Int64("deleted", n).Msg("scoreboard cleared")
	return n, nil
}

package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// ResultFilters defines list filters.
type ResultFilters struct {
	GameID string
	Limit  int // zero = no limit
}

// ResultRepo handles play results.
type ResultRepo struct {
	db *sql.DB
}

func NewResultRepo(db *sql.DB) *ResultRepo { return &ResultRepo{db: db} }

func (r *ResultRepo) Insert(ctx context.Context, p PlayResult) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO play_results(
	 id, session_id, game_id, score, items, furthest, checks, completed, started_at, ended_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO NOTHING;
	`,
		p.ID, p.SessionID, p.GameID, p.Score, p.Items, p.Furthest, p.Checks, p.Completed,
		p.StartedAt.UTC(), p.EndedAt.UTC())
	return err
}

// Recent lists results newest first.
func (r *ResultRepo) Recent(ctx context.Context, f ResultFilters) ([]PlayResult, error) {
	var where []string
	var args []interface{}

	if f.GameID != "" {
		where = append(where, "game_id = ?")
		args = append(args, f.GameID)
	}

	q := `SELECT id, session_id, game_id, score, items, furthest, checks, completed, started_at, ended_at
	FROM play_results`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY ended_at DESC, id"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PlayResult
	for rows.Next() {
		var p PlayResult
		if err := rows.Scan(&p.ID, &p.SessionID, &p.GameID, &p.Score, &p.Items, &p.Furthest,
			&p.Checks, &p.Completed, &p.StartedAt, &p.EndedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// BestByGame returns one aggregate per played game, keyed by game id.
func (r *ResultRepo) BestByGame(ctx context.Context) (map[string]GameBest, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT game_id, MAX(score), COUNT(*), MAX(ended_at)
	FROM play_results
	GROUP BY game_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]GameBest{}
	for rows.Next() {
		var b GameBest
		var last string
		if err := rows.Scan(&b.GameID, &b.BestScore, &b.Plays, &last); err != nil {
			return nil, err
		}
		b.LastPlay = parseTimestamp(last)
		out[b.GameID] = b
	}
	return out, rows.Err()
}

// Clear deletes results for gameID, or all results when gameID is empty.
func (r *ResultRepo) Clear(ctx context.Context, gameID string) (int64, error) {
	var res sql.Result
	var err error
	if gameID == "" {
		res, err = r.db.ExecContext(ctx, `DELETE FROM play_results`)
	} else {
		res, err = r.db.ExecContext(ctx, `DELETE FROM play_results WHERE game_id = ?`, gameID)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// aggregates lose the column type, so MAX(ended_at) comes back as text
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

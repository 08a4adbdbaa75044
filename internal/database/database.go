package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/kiwikodes/Four-In-A-Row/internal/game"
	"github.com/kiwikodes/Four-In-A-Row/internal/logger"
)

// DB represents the database connection
type DB struct {
	*sql.DB
}

// Outcome values stored in games.outcome.
const (
	OutcomePlayerOne = "player_one"
	OutcomePlayerTwo = "player_two"
	OutcomeDraw      = "draw"
)

// GameResult is the summary of one finished game.
type GameResult struct {
	ID             uuid.UUID       `json:"id"`
	BoardSize      int             `json:"boardSize"`
	Players        int             `json:"players"`
	PlayerOneScore int             `json:"playerOneScore"`
	PlayerTwoScore int             `json:"playerTwoScore"`
	Outcome        string          `json:"outcome"`
	Moves          int             `json:"moves"`
	StartedAt      time.Time       `json:"startedAt"`
	EndedAt        time.Time       `json:"endedAt"`
	FinalBoard     [][]game.Player `json:"finalBoard"`
}

// BoardSizeStats aggregates finished games of one board size.
type BoardSizeStats struct {
	BoardSize     int     `json:"boardSize"`
	Games         int     `json:"games"`
	PlayerOneWins int     `json:"playerOneWins"`
	PlayerTwoWins int     `json:"playerTwoWins"`
	Draws         int     `json:"draws"`
	AvgPoints     float64 `json:"avgPoints"`
}

// Outcome names the result of a finished game.
func Outcome(winner game.Player) string {
	switch winner {
	case game.PlayerOne:
		return OutcomePlayerOne
	case game.PlayerTwo:
		return OutcomePlayerTwo
	default:
		return OutcomeDraw
	}
}

// NewGameResult summarises g, which must be finished.
func NewGameResult(id uuid.UUID, players int, startedAt, endedAt time.Time, g *game.Game) (*GameResult, error) {
	winner, ok := g.Winner()
	if !ok {
		return nil, fmt.Errorf("game %s is not finished", id)
	}
	snap := g.Snapshot()
	return &GameResult{
		ID:             id,
		BoardSize:      snap.Size,
		Players:        players,
		PlayerOneScore: snap.Scores[0],
		PlayerTwoScore: snap.Scores[1],
		Outcome:        Outcome(winner),
		Moves:          snap.Moves,
		StartedAt:      startedAt,
		EndedAt:        endedAt,
		FinalBoard:     snap.Board,
	}, nil
}

// NewDB opens a pooled connection and checks it.
func NewDB(dsn string) (*DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	logger.Info("Connected to database")
	return &DB{db}, nil
}

// EnsureSchema creates the results table and the stats view.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}
	return nil
}

// SaveResult records a finished game.
func (db *DB) SaveResult(ctx context.Context, r *GameResult) error {
	board, err := json.Marshal(r.FinalBoard)
	if err != nil {
		return fmt.Errorf("error marshaling final board: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO games (id, board_size, players, player_one_score, player_two_score,
		                   outcome, moves, started_at, ended_at, final_board)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`,
		r.ID, r.BoardSize, r.Players, r.PlayerOneScore, r.PlayerTwoScore,
		r.Outcome, r.Moves, r.StartedAt, r.EndedAt, board,
	)
	if err != nil {
		return fmt.Errorf("error saving game %s: %w", r.ID, err)
	}
	return nil
}

// GetResult loads one saved game, or nil when there is none.
func (db *DB) GetResult(ctx context.Context, id uuid.UUID) (*GameResult, error) {
	var (
		r     GameResult
		board []byte
	)
	err := db.QueryRowContext(ctx, `
		SELECT id, board_size, players, player_one_score, player_two_score,
		       outcome, moves, started_at, ended_at, final_board
		FROM games
		WHERE id = $1`, id,
	).Scan(&r.ID, &r.BoardSize, &r.Players, &r.PlayerOneScore, &r.PlayerTwoScore,
		&r.Outcome, &r.Moves, &r.StartedAt, &r.EndedAt, &board)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting game %s: %w", id, err)
	}
	if err := json.Unmarshal(board, &r.FinalBoard); err != nil {
		return nil, fmt.Errorf("error decoding final board of %s: %w", id, err)
	}
	return &r, nil
}

// GetStats returns the per board size aggregates, smallest board first.
func (db *DB) GetStats(ctx context.Context) ([]BoardSizeStats, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT board_size, games, player_one_wins, player_two_wins, draws, avg_points
		FROM board_size_stats
		ORDER BY board_size`)
	if err != nil {
		return nil, fmt.Errorf("error getting stats: %w", err)
	}
	defer rows.Close()

	stats := []BoardSizeStats{}
	for rows.Next() {
		var s BoardSizeStats
		if err := rows.Scan(&s.BoardSize, &s.Games, &s.PlayerOneWins, &s.PlayerTwoWins, &s.Draws, &s.AvgPoints); err != nil {
			return nil, fmt.Errorf("error scanning stats row: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

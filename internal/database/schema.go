package database

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id               UUID PRIMARY KEY,
	board_size       INTEGER NOT NULL CHECK (board_size > 0),
	players          SMALLINT NOT NULL CHECK (players IN (1, 2)),
	player_one_score INTEGER NOT NULL DEFAULT 0,
	player_two_score INTEGER NOT NULL DEFAULT 0,
	outcome          VARCHAR(16) NOT NULL,
	moves            INTEGER NOT NULL,
	started_at       TIMESTAMPTZ NOT NULL,
	ended_at         TIMESTAMPTZ NOT NULL,
	final_board      JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_games_board_size ON games (board_size);
CREATE INDEX IF NOT EXISTS idx_games_ended_at ON games (ended_at);

CREATE OR REPLACE VIEW board_size_stats AS
SELECT board_size,
       COUNT(*)                                          AS games,
       COUNT(*) FILTER (WHERE outcome = 'player_one')    AS player_one_wins,
       COUNT(*) FILTER (WHERE outcome = 'player_two')    AS player_two_wins,
       COUNT(*) FILTER (WHERE outcome = 'draw')          AS draws,
       COALESCE(AVG(player_one_score + player_two_score), 0)::float8 AS avg_points
FROM games
GROUP BY board_size;
`

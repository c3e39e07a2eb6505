// Package playlogstore persists captured play records per player, the
// dashboard's source of record between captures.
package playlogstore

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS play_records (
	player        TEXT NOT NULL,
	song_id       TEXT NOT NULL,
	difficulty    TEXT NOT NULL,
	score         INTEGER NOT NULL,
	clear_lamp    INTEGER NOT NULL DEFAULT 0,
	combo_lamp    INTEGER NOT NULL DEFAULT 0,
	chain_lamp    INTEGER NOT NULL DEFAULT 0,
	is_new_record INTEGER NOT NULL DEFAULT 0,
	played_at     INTEGER NOT NULL,
	PRIMARY KEY (player, song_id, difficulty, played_at)
);
CREATE INDEX IF NOT EXISTS idx_play_records_player ON play_records (player);
`

type Record struct {
	SongId      string
	Difficulty  string
	Score       int
	ClearLamp   int
	ComboLamp   int
	ChainLamp   int
	IsNewRecord bool
	PlayedAt    time.Time
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	_, err := db.Exec(schema)
	if err != nil {
		return Store{}, err
	}
	return Store{db: db}, nil
}

// Push stores one capture batch for a player. re-submitting the same
// capture is a no-op, the play timestamp makes rows unique.
func (s Store) Push(ctx context.Context, player string, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range records {
		_, err := tx.ExecContext(
			ctx,
			`INSERT OR REPLACE INTO play_records
			(player, song_id, difficulty, score, clear_lamp, combo_lamp, chain_lamp, is_new_record, played_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			player,
			r.SongId,
			r.Difficulty,
			r.Score,
			r.ClearLamp,
			r.ComboLamp,
			r.ChainLamp,
			r.IsNewRecord,
			r.PlayedAt.Unix(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Query returns a player's full catalogue, newest first.
func (s Store) Query(ctx context.Context, player string) ([]Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT song_id, difficulty, score, clear_lamp, combo_lamp, chain_lamp, is_new_record, played_at
		FROM play_records WHERE player = ? ORDER BY played_at DESC`,
		player,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var playedAt int64
		err := rows.Scan(
			&r.SongId,
			&r.Difficulty,
			&r.Score,
			&r.ClearLamp,
			&r.ComboLamp,
			&r.ChainLamp,
			&r.IsNewRecord,
			&playedAt,
		)
		if err != nil {
			return nil, err
		}
		r.PlayedAt = time.Unix(playedAt, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

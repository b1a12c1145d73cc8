package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BannedWordRepo backs the content-moderation keyword filter.
type BannedWordRepo struct {
	pool *pgxpool.Pool
}

func NewBannedWordRepo(pool *pgxpool.Pool) *BannedWordRepo {
	return &BannedWordRepo{pool: pool}
}

func (r *BannedWordRepo) ListWords(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT word FROM banned_words ORDER BY word ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func (r *BannedWordRepo) Add(ctx context.Context, word string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO banned_words (word) VALUES ($1) ON CONFLICT (word) DO NOTHING
	`, word)
	return err
}

func (r *BannedWordRepo) Remove(ctx context.Context, word string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM banned_words WHERE word = $1`, word)
	return err
}

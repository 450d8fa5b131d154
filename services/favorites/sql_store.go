package favorites

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"moma/models"
)

type favoriteRow struct {
	ID string `db:"id"`
	models.Favorite
}

// SQLStore keeps favorites in the SQLite favorites table.
type SQLStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Exists(ctx context.Context, docID string) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM favorites WHERE id = ?`, docID); err != nil {
		return false, fmt.Errorf("lookup favorite %s: %w", docID, err)
	}
	return count > 0, nil
}

func (s *SQLStore) Put(ctx context.Context, fav models.Favorite) error {
	query := `
		INSERT INTO favorites (id, user_id, movie_id, created_at)
		VALUES (:id, :user_id, :movie_id, :created_at)
		ON CONFLICT (id) DO NOTHING
	`
	row := favoriteRow{ID: fav.DocumentID(), Favorite: fav}
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("store favorite %s: %w", row.ID, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, docID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, docID); err != nil {
		return fmt.Errorf("delete favorite %s: %w", docID, err)
	}
	return nil
}

func (s *SQLStore) MovieIDs(ctx context.Context, userID string) ([]int64, error) {
	ids := make([]int64, 0)
	query := `SELECT movie_id FROM favorites WHERE user_id = ? ORDER BY created_at, movie_id`
	if err := s.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list favorites for %s: %w", userID, err)
	}
	return ids, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

package favorites

import (
	"context"

	"moma/models"
)

// Store persists favorite associations keyed by their document id
// ("<movieId>_<userId>"). Put is idempotent for an existing id.
type Store interface {
	Exists(ctx context.Context, docID string) (bool, error)
	Put(ctx context.Context, fav models.Favorite) error
	Delete(ctx context.Context, docID string) error
	// MovieIDs lists the user's favorite movie ids, oldest first.
	MovieIDs(ctx context.Context, userID string) ([]int64, error)
	Close() error
}

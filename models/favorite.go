package models

import (
	"strconv"
	"time"
)

// Favorite associates a user with a movie. Its existence is the whole state.
type Favorite struct {
	UserID    string    `json:"userId" db:"user_id"`
	MovieID   int64     `json:"movieId" db:"movie_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// DocumentID returns the synthetic document identity of the favorite.
func (f Favorite) DocumentID() string {
	return FavoriteDocumentID(f.MovieID, f.UserID)
}

// FavoriteDocumentID builds the "<movieId>_<userId>" key shared by every
// favorites backend.
func FavoriteDocumentID(movieID int64, userID string) string {
	return strconv.FormatInt(movieID, 10) + "_" + userID
}

package browse

import (
	"context"

	"moma/internal/reactive"
	"moma/models"
)

// Selection is the genre and movie a single view has selected. Each view
// owns its own Selection; nothing about it is process-wide.
type Selection struct {
	genre *reactive.Value[models.GenreID]
	movie *reactive.Value[int64]
}

// NewSelection starts with no movie selected and genre 0, which discovers
// across all genres.
func NewSelection() *Selection {
	return &Selection{
		genre: reactive.NewValue[models.GenreID](0),
		movie: reactive.NewValue[int64](0),
	}
}

// SelectGenre replaces the selected genre. Negative ids are ignored.
func (s *Selection) SelectGenre(id models.GenreID) {
	if id < 0 {
		return
	}
	s.genre.Set(id)
}

// SelectMovie replaces the selected movie. Once a movie is selected there is
// no way back to "nothing selected", so ids <= 0 are ignored and false is
// returned.
func (s *Selection) SelectMovie(id int64) bool {
	if id <= 0 {
		return false
	}
	s.movie.Set(id)
	return true
}

func (s *Selection) Genre() models.GenreID { return s.genre.Get() }

func (s *Selection) Movie() int64 { return s.movie.Get() }

// Genres streams the selected genre, starting with the current one.
func (s *Selection) Genres(ctx context.Context) <-chan models.GenreID {
	return s.genre.Watch(ctx)
}

// Movies streams the selected movie id, starting with the current one.
func (s *Selection) Movies(ctx context.Context) <-chan int64 {
	return s.movie.Watch(ctx)
}

// Close ends every stream derived from the selection.
func (s *Selection) Close() {
	s.genre.Close()
	s.movie.Close()
}

package favorites

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"moma/internal/database"
	"moma/models"
	"moma/services/catalog"
	"moma/services/catalog/mocks"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	db, err := database.Open(context.Background(), filepath.Join(t.TempDir(), "favorites.db"))
	require.NoError(t, err)
	return NewSQLStore(db)
}

func newMemFileStore(t *testing.T) Store {
	t.Helper()
	store, err := NewFileStore(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)
	return store
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestToggleTwiceRestoresInitialState(t *testing.T) {
	stores := map[string]func(*testing.T) Store{
		"sqlite": newSQLiteStore,
		"file":   newMemFileStore,
	}
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc, err := NewService(newStore(t), nil, 2)
			require.NoError(t, err)
			defer svc.Close()

			user := &models.User{ID: "u1"}

			fav, err := svc.Toggle(ctx, user, 42)
			require.NoError(t, err)
			assert.True(t, fav)

			ok, err := svc.IsFavorite(ctx, user, 42)
			require.NoError(t, err)
			assert.True(t, ok)

			ids, err := svc.MovieIDs(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, []int64{42}, ids)

			fav, err = svc.Toggle(ctx, user, 42)
			require.NoError(t, err)
			assert.False(t, fav)

			ok, err = svc.IsFavorite(ctx, user, 42)
			require.NoError(t, err)
			assert.False(t, ok)

			ids, err = svc.MovieIDs(ctx, "u1")
			require.NoError(t, err)
			assert.Empty(t, ids)
		})
	}
}

func TestFavoritesAreScopedPerUser(t *testing.T) {
	ctx := context.Background()
	svc, err := NewService(newSQLiteStore(t), nil, 0)
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.Toggle(ctx, &models.User{ID: "alice"}, 7)
	require.NoError(t, err)

	ok, err := svc.IsFavorite(ctx, &models.User{ID: "bob"}, 7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAnonymousReadsAreEmpty(t *testing.T) {
	ctx := context.Background()
	svc, err := NewService(newMemFileStore(t), nil, 0)
	require.NoError(t, err)

	ok, err := svc.IsFavorite(ctx, nil, 42)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsFavorite(ctx, &models.User{ID: "u1"}, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	ids, err := svc.MovieIDs(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, ids)

	movies, err := svc.FavoriteMovies(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, movies)
	assert.Empty(t, movies)
}

func TestToggleValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc, err := NewService(newMemFileStore(t), nil, 0)
	require.NoError(t, err)

	_, err = svc.Toggle(ctx, nil, 42)
	assert.True(t, errors.Is(err, ErrNoUser))

	_, err = svc.Toggle(ctx, &models.User{ID: "u1"}, 0)
	assert.True(t, errors.Is(err, ErrMovieIDRequired))

	_, err = NewService(nil, nil, 0)
	assert.True(t, errors.Is(err, ErrStoreRequired))
}

func TestFavoriteMoviesKeepsOrderAndSkipsFailures(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	source := mocks.NewMockSource(ctrl)

	store := newMemFileStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []int64{30, 10, 20} {
		require.NoError(t, store.Put(ctx, models.Favorite{UserID: "u1", MovieID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	source.EXPECT().MovieDetail(gomock.Any(), int64(30)).Return(catalog.Result[models.Movie]{Value: models.Movie{ID: 30, Title: "Thirty"}})
	source.EXPECT().MovieDetail(gomock.Any(), int64(10)).Return(catalog.Result[models.Movie]{Reason: errors.New("upstream down")})
	source.EXPECT().MovieDetail(gomock.Any(), int64(20)).Return(catalog.Result[models.Movie]{Value: models.Movie{ID: 20, Title: "Twenty"}})

	svc, err := NewService(store, source, 3)
	require.NoError(t, err)

	movies, err := svc.FavoriteMovies(ctx, &models.User{ID: "u1"})
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, int64(30), movies[0].ID)
	assert.Equal(t, int64(20), movies[1].ID)
}

func TestWatchReemitsAfterToggle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := NewService(newMemFileStore(t), nil, 0)
	require.NoError(t, err)
	user := &models.User{ID: "u1"}

	ids := svc.Watch(ctx, "u1")
	assert.Empty(t, receive(t, ids))

	_, err = svc.Toggle(ctx, user, 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, receive(t, ids))

	_, err = svc.Toggle(ctx, user, 5)
	require.NoError(t, err)
	assert.Empty(t, receive(t, ids))
}

func TestWatchIsFavoriteFollowsTogglesAndSelection(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := NewService(newMemFileStore(t), nil, 0)
	require.NoError(t, err)
	user := &models.User{ID: "u1"}
	_, err = svc.Toggle(ctx, user, 1)
	require.NoError(t, err)

	users := make(chan *models.User, 1)
	movieIDs := make(chan int64, 1)
	out := svc.WatchIsFavorite(ctx, users, movieIDs)

	users <- user
	movieIDs <- 2
	assert.False(t, receive(t, out))

	movieIDs <- 1
	assert.True(t, receive(t, out))

	_, err = svc.Toggle(ctx, user, 1)
	require.NoError(t, err)
	assert.False(t, receive(t, out))

	users <- nil
	assert.False(t, receive(t, out))
}

func TestWatchFavoriteMovies(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := gomock.NewController(t)
	source := mocks.NewMockSource(ctrl)
	source.EXPECT().MovieDetail(gomock.Any(), int64(9)).
		Return(catalog.Result[models.Movie]{Value: models.Movie{ID: 9, Title: "Nine"}}).
		AnyTimes()

	svc, err := NewService(newMemFileStore(t), source, 0)
	require.NoError(t, err)
	user := &models.User{ID: "u1"}

	users := make(chan *models.User, 1)
	out := svc.WatchFavoriteMovies(ctx, users)

	users <- nil
	assert.Empty(t, receive(t, out))

	users <- user
	assert.Empty(t, receive(t, out))

	_, err = svc.Toggle(ctx, user, 9)
	require.NoError(t, err)
	movies := receive(t, out)
	require.Len(t, movies, 1)
	assert.Equal(t, "Nine", movies[0].Title)
}

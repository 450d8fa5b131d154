package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"moma/models"
)

var ErrStorageDirRequired = errors.New("storage directory not provided")

// FileStore keeps every favorite in a single JSON document keyed by
// document id.
type FileStore struct {
	mu   sync.RWMutex
	fs   afero.Fs
	path string
	docs map[string]models.Favorite
}

var _ Store = (*FileStore)(nil)

// NewFileStore loads favorites.json from storageDir on fs.
func NewFileStore(fs afero.Fs, storageDir string) (*FileStore, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}
	if err := fs.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create favorites dir: %w", err)
	}

	store := &FileStore{
		fs:   fs,
		path: filepath.Join(storageDir, "favorites.json"),
		docs: make(map[string]models.Favorite),
	}
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *FileStore) Exists(_ context.Context, docID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[docID]
	return ok, nil
}

func (s *FileStore) Put(_ context.Context, fav models.Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fav.DocumentID()
	if _, ok := s.docs[id]; ok {
		return nil
	}
	s.docs[id] = fav
	if err := s.saveLocked(); err != nil {
		delete(s.docs, id)
		return err
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.docs[docID]
	if !ok {
		return nil
	}
	delete(s.docs, docID)
	if err := s.saveLocked(); err != nil {
		s.docs[docID] = prev
		return err
	}
	return nil
}

func (s *FileStore) MovieIDs(_ context.Context, userID string) ([]int64, error) {
	s.mu.RLock()
	favs := make([]models.Favorite, 0)
	for _, fav := range s.docs {
		if fav.UserID == userID {
			favs = append(favs, fav)
		}
	}
	s.mu.RUnlock()

	sortFavorites(favs)
	ids := make([]int64, len(favs))
	for i, fav := range favs {
		ids[i] = fav.MovieID
	}
	return ids, nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.fs.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open favorites: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read favorites: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var favs []models.Favorite
	if err := json.Unmarshal(data, &favs); err != nil {
		return fmt.Errorf("decode favorites: %w", err)
	}
	for _, fav := range favs {
		if strings.TrimSpace(fav.UserID) == "" || fav.MovieID == 0 {
			continue
		}
		s.docs[fav.DocumentID()] = fav
	}
	return nil
}

func (s *FileStore) saveLocked() error {
	favs := make([]models.Favorite, 0, len(s.docs))
	for _, fav := range s.docs {
		favs = append(favs, fav)
	}
	sortFavorites(favs)

	tmp := s.path + ".tmp"
	file, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create favorites temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(favs); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("encode favorites: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("sync favorites: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("close favorites temp file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace favorites file: %w", err)
	}
	return nil
}

func sortFavorites(favs []models.Favorite) {
	sort.Slice(favs, func(i, j int) bool {
		if favs[i].CreatedAt.Equal(favs[j].CreatedAt) {
			return favs[i].MovieID < favs[j].MovieID
		}
		return favs[i].CreatedAt.Before(favs[j].CreatedAt)
	})
}

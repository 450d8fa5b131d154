package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"moma/models"
)

var ErrStorageDirRequired = errors.New("storage directory not provided")

// accountStore persists accounts to accounts.json on an afero filesystem.
type accountStore struct {
	mu       sync.RWMutex
	fs       afero.Fs
	path     string
	accounts map[string]models.Account // by id
	byEmail  map[string]string         // normalised email -> id
}

func newAccountStore(fs afero.Fs, storageDir string) (*accountStore, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}
	if err := fs.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create accounts dir: %w", err)
	}

	s := &accountStore{
		fs:       fs,
		path:     filepath.Join(storageDir, "accounts.json"),
		accounts: make(map[string]models.Account),
		byEmail:  make(map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *accountStore) create(email, passwordHash string) (models.Account, error) {
	email = models.NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return models.Account{}, ErrEmailTaken
	}

	now := time.Now().UTC()
	account := models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.accounts[account.ID] = account
	s.byEmail[email] = account.ID

	if err := s.saveLocked(); err != nil {
		delete(s.accounts, account.ID)
		delete(s.byEmail, email)
		return models.Account{}, err
	}
	return account, nil
}

func (s *accountStore) findByEmail(email string) (models.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return models.Account{}, false
	}
	account, ok := s.accounts[id]
	return account, ok
}

func (s *accountStore) get(id string) (models.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[strings.TrimSpace(id)]
	return account, ok
}

func (s *accountStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.fs.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open accounts: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read accounts: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var accounts []models.Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return fmt.Errorf("decode accounts: %w", err)
	}
	for _, a := range accounts {
		a.ID = strings.TrimSpace(a.ID)
		if a.ID == "" {
			continue
		}
		a.Email = models.NormalizeEmail(a.Email)
		s.accounts[a.ID] = a
		s.byEmail[a.Email] = a.ID
	}
	return nil
}

func (s *accountStore) saveLocked() error {
	accounts := make([]models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].Email < accounts[j].Email
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})

	tmp := s.path + ".tmp"
	file, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create accounts temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(accounts); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("encode accounts: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("sync accounts: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("close accounts temp file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace accounts file: %w", err)
	}
	return nil
}

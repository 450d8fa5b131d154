package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/crypto/bcrypt"

	"moma/models"
)

const (
	defaultSessionTTL = 7 * 24 * time.Hour
	maxPasswordBytes  = 72 // bcrypt input limit
)

// LocalOptions configures a LocalProvider.
type LocalOptions struct {
	Fs         afero.Fs
	StorageDir string
	Secret     string
	SessionTTL time.Duration
	BcryptCost int
	Now        func() time.Time
}

// LocalProvider authenticates against accounts stored on disk and issues
// signed session tokens.
type LocalProvider struct {
	accounts *accountStore
	tokens   *tokenIssuer
	cost     int
}

var _ Provider = (*LocalProvider)(nil)

func NewLocalProvider(opts LocalOptions) (*LocalProvider, error) {
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, ErrSecretRequired
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	accounts, err := newAccountStore(fs, opts.StorageDir)
	if err != nil {
		return nil, err
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &LocalProvider{
		accounts: accounts,
		tokens:   newTokenIssuer(opts.Secret, ttl, opts.Now),
		cost:     cost,
	}, nil
}

func (p *LocalProvider) SignUp(_ context.Context, email, password string) (Session, error) {
	if len(password) > maxPasswordBytes {
		return Session{}, ErrPasswordTooLong
	}
	if _, taken := p.accounts.findByEmail(email); taken {
		return Session{}, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return Session{}, ErrPasswordTooLong
	}
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	account, err := p.accounts.create(email, string(hash))
	if err != nil {
		return Session{}, err
	}
	log.Printf("[auth] registered account %s", account.ID)
	return p.newSession(account.User())
}

func (p *LocalProvider) SignIn(_ context.Context, email, password string) (Session, error) {
	account, ok := p.accounts.findByEmail(email)
	if !ok {
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return p.newSession(account.User())
}

// SignOut revokes token. Tokens that no longer verify are already signed out.
func (p *LocalProvider) SignOut(_ context.Context, token string) error {
	claims, err := p.tokens.parse(token)
	if errors.Is(err, ErrSessionInvalid) {
		return nil
	}
	if err != nil {
		return err
	}
	p.tokens.revoke(claims)
	return nil
}

func (p *LocalProvider) Verify(_ context.Context, token string) (models.User, error) {
	claims, err := p.tokens.parse(token)
	if err != nil {
		return models.User{}, err
	}
	account, ok := p.accounts.get(claims.Subject)
	if !ok {
		return models.User{}, ErrSessionInvalid
	}
	return account.User(), nil
}

func (p *LocalProvider) newSession(user models.User) (Session, error) {
	token, expires, err := p.tokens.issue(user)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Token: token, ExpiresAt: expires}, nil
}

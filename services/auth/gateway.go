package auth

import (
	"context"
	"fmt"
	"log"

	"moma/internal/reactive"
	"moma/models"
)

const (
	HomePath  = "/"
	LoginPath = "/login"
)

// Navigator moves the client to another view after an auth transition.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Gateway drives sign-up, sign-in and sign-out for one client and publishes
// the resulting session state.
type Gateway struct {
	provider Provider
	nav      Navigator

	session *reactive.Value[*Session]
	pending *reactive.Value[int]
}

func NewGateway(provider Provider, nav Navigator) *Gateway {
	if nav == nil {
		nav = NavigatorFunc(func(string) {})
	}
	return &Gateway{
		provider: provider,
		nav:      nav,
		session:  reactive.NewValue[*Session](nil),
		pending:  reactive.NewValue(0),
	}
}

// Submit validates form and runs the provider operation for mode. Invalid
// forms are not submitted. On success the session is stored and the client
// is sent home. On failure the error is logged, the session is left as it
// was and nothing navigates; the returned error only tells the caller why
// (wrong credentials, email taken) and is not fatal to the Gateway, which
// stays usable for the next submission.
func (g *Gateway) Submit(ctx context.Context, mode Mode, form *Form) error {
	if form == nil {
		form = InitForm()
	}
	if fields := form.Validate(); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	g.pending.Update(func(n int) int { return n + 1 })
	defer g.pending.Update(func(n int) int { return n - 1 })

	var (
		sess Session
		err  error
	)
	switch mode {
	case ModeSignUp:
		sess, err = g.provider.SignUp(ctx, form.Email, form.Password)
	case ModeSignIn:
		sess, err = g.provider.SignIn(ctx, form.Email, form.Password)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if err != nil {
		log.Printf("[auth] %s failed: %v", mode, err)
		return err
	}

	g.session.Set(&sess)
	g.nav.Navigate(HomePath)
	return nil
}

// Resume restores a session from a previously issued token.
func (g *Gateway) Resume(ctx context.Context, token string) error {
	user, err := g.provider.Verify(ctx, token)
	if err != nil {
		return err
	}
	g.session.Set(&Session{User: user, Token: token})
	return nil
}

// SignOut ends the current session and sends the client to the login view.
func (g *Gateway) SignOut(ctx context.Context) error {
	if sess := g.session.Get(); sess != nil {
		if err := g.provider.SignOut(ctx, sess.Token); err != nil {
			log.Printf("[auth] sign out failed for %s: %v", sess.User.ID, err)
			return err
		}
	}
	g.session.Set(nil)
	g.nav.Navigate(LoginPath)
	return nil
}

// CurrentUser returns the signed-in user, or nil.
func (g *Gateway) CurrentUser() *models.User {
	sess := g.session.Get()
	if sess == nil {
		return nil
	}
	user := sess.User
	return &user
}

// Token returns the current session token, or "".
func (g *Gateway) Token() string {
	if sess := g.session.Get(); sess != nil {
		return sess.Token
	}
	return ""
}

// SessionState streams the signed-in user (nil when signed out) until ctx ends.
func (g *Gateway) SessionState(ctx context.Context) <-chan *models.User {
	return reactive.Map(ctx, g.session.Watch(ctx), func(sess *Session) *models.User {
		if sess == nil {
			return nil
		}
		user := sess.User
		return &user
	})
}

// IsLoggedIn streams whether a user is signed in.
func (g *Gateway) IsLoggedIn(ctx context.Context) <-chan bool {
	return reactive.Map(ctx, g.SessionState(ctx), func(u *models.User) bool {
		return u != nil
	})
}

// Loading streams whether a submission is in flight.
func (g *Gateway) Loading(ctx context.Context) <-chan bool {
	return reactive.Map(ctx, g.pending.Watch(ctx), func(n int) bool {
		return n > 0
	})
}

// Close ends every state stream.
func (g *Gateway) Close() {
	g.session.Close()
	g.pending.Close()
}

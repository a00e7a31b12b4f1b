// Package gate guards views that need a signed-in user.
//
// A Gate is mounted once. On mount it reads the stored token; with no token it
// redirects to the login view straight away, otherwise it asks the server who
// the token belongs to. A resolved user moves the gate to Authenticated and the
// guarded view is rendered with a read-only Session. Any failure moves it to
// Redirecting, which is terminal. Unmounting while the check is in flight
// cancels the request and drops whatever result arrives later.
package gate

import (
	"context"
	"errors"
	"sync"

	"auth_gate/internal/client/tokenstore"
	"auth_gate/internal/model"
)

// State of a mounted gate
type State int

const (
	Checking State = iota
	Authenticated
	Redirecting
)

func (s State) String() string {
	switch s {
	case Checking:
		return "checking"
	case Authenticated:
		return "authenticated"
	case Redirecting:
		return "redirecting"
	default:
		return "unknown"
	}
}

// DefaultLoginPath is where unauthenticated sessions are sent
const DefaultLoginPath = "/login"

var ErrAlreadyMounted = errors.New("gate already mounted")

// TokenSource yields the held bearer token. tokenstore.Store satisfies it.
type TokenSource interface {
	Get(ctx context.Context) (string, error)
}

// UserFetcher resolves a token into its owner via the server's "me" endpoint
type UserFetcher interface {
	Me(ctx context.Context, token string) (*model.UserProfile, error)
}

// Navigator moves the client to another view
type Navigator interface {
	Redirect(to string)
}

// NavigatorFunc adapts a plain function to Navigator
type NavigatorFunc func(to string)

func (f NavigatorFunc) Redirect(to string) { f(to) }

// Session is the resolved user handed to guarded views. It is a value copy;
// views cannot change what the gate holds.
type Session struct {
	user model.UserProfile
}

func (s Session) User() model.UserProfile { return s.user }

func (s Session) IsAdmin() bool { return s.user.Role == model.RoleAdmin }

// View renders the guarded content
type View func(Session)

// Option customises a Gate
type Option func(*Gate)

// WithLoginPath overrides the redirect target
func WithLoginPath(path string) Option {
	return func(g *Gate) { g.loginPath = path }
}

// WithErrorHook is called with the reason for every redirect (nil when no
// token was held, the store's error when it could not be read). Useful for
// logging. The hook may Unmount the gate, in which case no redirect follows.
func WithErrorHook(fn func(error)) Option {
	return func(g *Gate) { g.onError = fn }
}

// Gate is the protected route guard
type Gate struct {
	tokens    TokenSource
	users     UserFetcher
	nav       Navigator
	view      View
	loginPath string
	onError   func(error)

	mu      sync.Mutex
	state   State
	mounted bool
	used    bool
	session *Session
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(tokens TokenSource, users UserFetcher, nav Navigator, view View, opts ...Option) *Gate {
	g := &Gate{
		tokens:    tokens,
		users:     users,
		nav:       nav,
		view:      view,
		loginPath: DefaultLoginPath,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Mount enters Checking and starts the asynchronous check
func (g *Gate) Mount(ctx context.Context) error {
	g.mu.Lock()
	if g.used {
		g.mu.Unlock()
		return ErrAlreadyMounted
	}
	g.used = true
	g.mounted = true
	g.state = Checking
	ctx, g.cancel = context.WithCancel(ctx)
	g.mu.Unlock()

	go g.check(ctx)
	return nil
}

// Unmount stops the gate. A check still in flight is cancelled and its
// result is never applied. The session is discarded.
func (g *Gate) Unmount() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.mounted {
		return
	}
	g.mounted = false
	g.session = nil
	if g.cancel != nil {
		g.cancel()
	}
}

// Done is closed once the check has finished, whether or not its result was applied
func (g *Gate) Done() <-chan struct{} {
	return g.done
}

// Wait blocks until the check finishes or ctx ends, then reports the state
func (g *Gate) Wait(ctx context.Context) State {
	select {
	case <-g.done:
	case <-ctx.Done():
	}
	return g.State()
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Session returns the resolved user while the gate is mounted and authenticated
func (g *Gate) Session() (Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.mounted || g.session == nil {
		return Session{}, false
	}
	return *g.session, true
}

func (g *Gate) check(ctx context.Context) {
	defer close(g.done)

	token, err := g.tokens.Get(ctx)
	if errors.Is(err, tokenstore.ErrNoToken) {
		err = nil
	}
	if err != nil || token == "" {
		g.redirect(err)
		return
	}

	user, err := g.users.Me(ctx, token)
	if err != nil || user == nil {
		if err == nil {
			err = errors.New("empty user")
		}
		g.redirect(err)
		return
	}
	g.authenticate(*user)
}

// transition moves Checking to next if the gate is still mounted
func (g *Gate) transition(next State, session *Session) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.mounted || g.state != Checking {
		return false
	}
	g.state = next
	g.session = session
	return true
}

func (g *Gate) isMounted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mounted
}

// redirect and authenticate re-check the mount right before each side
// effect; the hook or another goroutine may unmount after the transition.
func (g *Gate) redirect(reason error) {
	if !g.transition(Redirecting, nil) {
		return
	}
	if g.onError != nil {
		g.onError(reason)
	}
	if !g.isMounted() {
		return
	}
	g.nav.Redirect(g.loginPath)
}

func (g *Gate) authenticate(user model.UserProfile) {
	s := &Session{user: user}
	if !g.transition(Authenticated, s) {
		return
	}
	if g.view == nil || !g.isMounted() {
		return
	}
	g.view(*s)
}

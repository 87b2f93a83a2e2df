package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"driver-portal-api-server/internal/auth"
	"driver-portal-api-server/internal/models"
)

// Manager states.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

var (
	// ErrMissingCredentials is reported before any remote call when either
	// field is empty or whitespace-only.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrInvalidCredentials covers every remote outcome short of a match:
	// wrong password, unknown user, network failure, server error. The
	// caller is never told which.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Authenticator is the remote verification call. It returns the matched
// admin identity or an error; an empty match must be an error.
type Authenticator interface {
	AuthenticateAdmin(ctx context.Context, email, password string) (models.AdminUser, error)
}

// DefaultTokenTTL matches the portal's 24-hour admin sessions.
const DefaultTokenTTL = 24 * time.Hour

// Manager owns the in-memory authentication state of the admin client.
// It orchestrates token issuance through the codec and persistence
// through the store. Callers serialize SignIn themselves; concurrent
// calls are not deduplicated here.
type Manager struct {
	store  Store
	remote Authenticator
	codec  *auth.Codec
	ttl    time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	state   State
	user    *models.AdminUser
	lastErr error
}

func NewManager(store Store, remote Authenticator, codec *auth.Codec, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		remote: remote,
		codec:  codec,
		ttl:    DefaultTokenTTL,
		logger: logger,
		state:  Authenticating,
	}
}

// Resolve consults the store for a previously persisted credential and
// settles the initial state. Called once on process start.
func (m *Manager) Resolve() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token, ok := m.store.Load(); ok {
		m.user = &token.User
		m.state = Authenticated
		return
	}
	m.state = Unauthenticated
}

// SignIn verifies the credentials remotely, then issues and persists a
// fresh token. It is the only path that clears prior error state.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		m.setErr(ErrMissingCredentials)
		return ErrMissingCredentials
	}

	m.mu.Lock()
	m.state = Authenticating
	m.mu.Unlock()

	user, err := m.remote.AuthenticateAdmin(ctx, email, password)
	if err != nil {
		// Server unreachable and wrong password look the same to the user.
		m.logger.Warn("admin sign-in failed", zap.Error(err))
		m.mu.Lock()
		m.state = Unauthenticated
		m.lastErr = ErrInvalidCredentials
		m.mu.Unlock()
		return ErrInvalidCredentials
	}

	token, err := m.codec.Issue(user, m.ttl)
	if err != nil {
		m.mu.Lock()
		m.state = Unauthenticated
		m.lastErr = ErrInvalidCredentials
		m.mu.Unlock()
		return ErrInvalidCredentials
	}
	if err := m.store.Save(token); err != nil {
		m.logger.Warn("failed to persist session token", zap.Error(err))
	}

	m.mu.Lock()
	m.user = &user
	m.state = Authenticated
	m.lastErr = nil
	m.mu.Unlock()
	return nil
}

// SignOut clears the stored credential and resets state. It never fails:
// a best-effort Clear is enough because Load self-heals.
func (m *Manager) SignOut() {
	_ = m.store.Clear()

	m.mu.Lock()
	m.user = nil
	m.state = Unauthenticated
	m.mu.Unlock()
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == Authenticated
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser returns the authenticated identity, if any.
func (m *Manager) CurrentUser() (models.AdminUser, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Authenticated || m.user == nil {
		return models.AdminUser{}, false
	}
	return *m.user, true
}

// CurrentToken reloads the persisted credential for use as a bearer
// header. Absent or expired tokens report false.
func (m *Manager) CurrentToken() (models.AuthToken, bool) {
	return m.store.Load()
}

// LastError reports the sticky error from the most recent failed sign-in.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = err
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"taskboard/internal/models"
)

// Storage keys of the persisted session.
const (
	TokenKey = "auth_token"
	UserKey  = "user_data"
)

const (
	defaultAvatar = "https://images.pexels.com/photos/1040881/pexels-photo-1040881.jpeg?auto=compress&cs=tinysrgb&w=100&h=100&fit=crop"
	googleAvatar  = "https://images.pexels.com/photos/415829/pexels-photo-415829.jpeg?auto=compress&cs=tinysrgb&w=100&h=100&fit=crop"
)

// ErrInvalidCredentials is returned for a login that cannot be accepted.
var ErrInvalidCredentials = errors.New("invalid credentials")

// KV is the durable storage the session is kept in. Get reports a missing
// key with ok == false and a nil error.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Manager holds the current identity. Authentication is mocked: any
// well formed e-mail signs in.
type Manager struct {
	mu     sync.RWMutex
	user   *models.User
	kv     KV
	logger *slog.Logger
	now    func() time.Time
}

// NewManager returns a signed out manager persisting to kv.
func NewManager(kv KV, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{kv: kv, logger: logger, now: time.Now}
}

// Current returns the signed in user.
func (m *Manager) Current() (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return models.User{}, false
	}
	return *m.user, true
}

// Restore reloads a persisted session. Unreadable data is discarded;
// storage failures are returned.
func (m *Manager) Restore(ctx context.Context) error {
	token, ok, err := m.kv.Get(ctx, TokenKey)
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if !ok || token == "" {
		m.logger.Debug("no persisted session")
		return nil
	}
	raw, ok, err := m.kv.Get(ctx, UserKey)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !ok {
		m.logger.Warn("dropping session token without user data")
		return m.clear(ctx)
	}

	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.Email == "" {
		m.logger.Warn("dropping corrupt session data", slog.Any("error", err))
		return m.clear(ctx)
	}

	m.mu.Lock()
	m.user = &u
	m.mu.Unlock()
	m.logger.Info("session restored", slog.String("email", u.Email))
	return nil
}

// Login signs in with an e-mail and password. The display name is the
// local part of the e-mail.
func (m *Manager) Login(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	local, _, ok := strings.Cut(email, "@")
	if !ok || local == "" || password == "" {
		return models.User{}, ErrInvalidCredentials
	}

	u := models.User{
		ID:        "1",
		Email:     email,
		Name:      local,
		Avatar:    defaultAvatar,
		CreatedAt: m.now(),
	}
	if err := m.signIn(ctx, u, "mock_token"); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// LoginWithGoogle signs in with the fixed mock Google account.
func (m *Manager) LoginWithGoogle(ctx context.Context) (models.User, error) {
	u := models.User{
		ID:        "1",
		Email:     "abinaya.s@gmail.com",
		Name:      "Abinaya S",
		Avatar:    googleAvatar,
		CreatedAt: m.now(),
	}
	if err := m.signIn(ctx, u, "mock_google_token"); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Logout forgets the current identity and its persisted copy.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
	return m.clear(ctx)
}

func (m *Manager) signIn(ctx context.Context, u models.User, token string) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := m.kv.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := m.kv.Set(ctx, UserKey, string(raw)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}

	m.mu.Lock()
	m.user = &u
	m.mu.Unlock()
	m.logger.Info("signed in", slog.String("email", u.Email))
	return nil
}

func (m *Manager) clear(ctx context.Context) error {
	if err := m.kv.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	if err := m.kv.Delete(ctx, UserKey); err != nil {
		return fmt.Errorf("clear user: %w", err)
	}
	return nil
}

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	domainAPI "github.com/AzielCF/az-laundry/domains/api"
	domainStorage "github.com/AzielCF/az-laundry/domains/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const DefaultKey = "auth_session"

// Record is the persisted login session.
type Record struct {
	Token   string          `json:"token"`
	User    json.RawMessage `json:"user,omitempty"`
	SavedAt time.Time       `json:"saved_at"`
}

// TokenInfo is what a token claims about itself. It is never verified here;
// the backend remains the authority.
type TokenInfo struct {
	Subject   string     `json:"subject,omitempty"`
	Issuer    string     `json:"issuer,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

// Store keeps the session record on the shared storage medium and serves the
// bearer token to the request orchestrator.
type Store struct {
	medium domainStorage.IMedium
	key    string
	now    func() time.Time

	mu      sync.Mutex
	onClear []func()
}

var _ domainAPI.ITokenProvider = (*Store)(nil)

func NewStore(medium domainStorage.IMedium, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{medium: medium, key: key, now: time.Now}
}

func (s *Store) Load(ctx context.Context) (Record, bool, error) {
	raw, ok, err := s.medium.Get(ctx, s.key)
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok || raw == "" {
		return Record{}, false, nil
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}, false, fmt.Errorf("failed to decode session: %w", err)
	}
	return rec, rec.Token != "", nil
}

func (s *Store) Save(ctx context.Context, token string, user json.RawMessage) error {
	rec := Record{Token: token, User: user, SavedAt: s.now().UTC()}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.medium.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	logrus.Info("[SESSION] session saved")
	return nil
}

// Token returns the stored bearer token. Unreadable records count as no
// session.
func (s *Store) Token(ctx context.Context) (string, bool) {
	rec, ok, err := s.Load(ctx)
	if err != nil {
		logrus.WithError(err).Warn("[SESSION] ignoring unreadable session")
		return "", false
	}
	if !ok {
		return "", false
	}
	return rec.Token, true
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.medium.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	logrus.Info("[SESSION] session cleared")

	s.mu.Lock()
	hooks := append([]func(){}, s.onClear...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
	return nil
}

// OnClear registers fn to run after every successful Clear.
func (s *Store) OnClear(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = append(s.onClear, fn)
}

// Inspect decodes the registered claims of a JWT without checking its
// signature.
func (s *Store) Inspect(token string) (TokenInfo, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenInfo{}, fmt.Errorf("failed to decode token: %w", err)
	}

	info := TokenInfo{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
	}
	if claims.IssuedAt != nil {
		t := claims.IssuedAt.Time.UTC()
		info.IssuedAt = &t
	}
	if claims.ExpiresAt != nil {
		t := claims.ExpiresAt.Time.UTC()
		info.ExpiresAt = &t
		info.Expired = s.now().After(t)
	}
	return info, nil
}

package prefs

import (
	"context"
	"fmt"
	"time"
)

// Scope identifies whose preferences are addressed.
type Scope struct {
	CompanyID string
	UserID    string
}

func (s Scope) key(name string) string {
	return fmt.Sprintf("prefs:%s:%s:%s", s.CompanyID, s.UserID, name)
}

// Service is the single accessor for preferences.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, now: now}
}

// Get returns the stored entry, or the key's default when nothing (unexpired) is stored.
func (s *Service) Get(ctx context.Context, scope Scope, key string) (Entry, error) {
	def, err := Lookup(key)
	if err != nil {
		return Entry{}, err
	}
	if scope.UserID == "" {
		return Entry{}, ErrNoScope
	}
	e, ok, err := s.store.Get(ctx, scope.key(key))
	if err != nil {
		return Entry{}, fmt.Errorf("get preference %s: %w", key, err)
	}
	if !ok || e.expired(s.now()) {
		return Entry{Key: key, Value: def.Default}, nil
	}
	return e, nil
}

// Set validates and stores value, stamping the key's expiry.
func (s *Service) Set(ctx context.Context, scope Scope, key string, value any) (Entry, error) {
	def, err := Lookup(key)
	if err != nil {
		return Entry{}, err
	}
	if scope.UserID == "" {
		return Entry{}, ErrNoScope
	}
	if err := def.check(value); err != nil {
		return Entry{}, err
	}

	e := Entry{Key: key, Value: value}
	if def.TTL > 0 {
		exp := s.now().Add(def.TTL).UTC()
		e.ExpiresAt = &exp
	}
	if err := s.store.Set(ctx, scope.key(key), e); err != nil {
		return Entry{}, fmt.Errorf("set preference %s: %w", key, err)
	}
	return e, nil
}

// Delete removes a stored value so the default applies again.
func (s *Service) Delete(ctx context.Context, scope Scope, key string) error {
	if _, err := Lookup(key); err != nil {
		return err
	}
	if scope.UserID == "" {
		return ErrNoScope
	}
	if err := s.store.Delete(ctx, scope.key(key)); err != nil {
		return fmt.Errorf("delete preference %s: %w", key, err)
	}
	return nil
}

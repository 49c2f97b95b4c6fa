// Package identity provides the anonymous per-device identity: a stable
// device id plus the cached role and user id chosen on first run.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"

	"github.com/tai-edu/tai/internal/domain"
	"github.com/tai-edu/tai/internal/store"
)

// Persisted keys. Nothing else is stored locally.
const (
	KeyDeviceID = "tai_device_id"
	KeyRole     = "tai_role"
	KeyUserID   = "tai_user_id"
)

var deviceIDPattern = regexp.MustCompile(`^device_[a-f0-9]{32}$`)

// Session is the cached role and user id. The zero value means no role has
// been selected yet.
type Session struct {
	Role   domain.Role
	UserID string
}

// Complete reports whether both role and user id are present.
func (s Session) Complete() bool {
	return s.Role.Valid() && s.UserID != ""
}

// Store is the identity view of local storage.
type Store interface {
	// DeviceID returns the stable device identifier, generating and
	// persisting one on first use.
	DeviceID(ctx context.Context) (string, error)
	// Current returns the cached session, or the zero Session.
	Current(ctx context.Context) (Session, error)
	// Save records the selected role and its user id.
	Save(ctx context.Context, role domain.Role, userID string) error
	// Clear forgets role and user id. The device id is kept.
	Clear(ctx context.Context) error
}

// Local implements Store on top of a store.Store.
type Local struct {
	kv store.Store
}

// NewLocal returns the production identity store.
func NewLocal(kv store.Store) *Local {
	return &Local{kv: kv}
}

func generateDeviceID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate device id: %w", err)
	}
	return "device_" + hex.EncodeToString(buf), nil
}

func isValidDeviceID(id string) bool {
	return deviceIDPattern.MatchString(id)
}

func (l *Local) DeviceID(ctx context.Context) (string, error) {
	id, ok, err := l.kv.Get(ctx, KeyDeviceID)
	if err != nil {
		return "", fmt.Errorf("read device id: %w", err)
	}
	if ok && isValidDeviceID(id) {
		return id, nil
	}

	id, err = generateDeviceID()
	if err != nil {
		return "", err
	}
	if err := l.kv.Set(ctx, KeyDeviceID, id); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}

func (l *Local) Current(ctx context.Context) (Session, error) {
	rawRole, ok, err := l.kv.Get(ctx, KeyRole)
	if err != nil {
		return Session{}, fmt.Errorf("read role: %w", err)
	}
	if !ok {
		return Session{}, nil
	}
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return Session{}, nil
	}

	userID, _, err := l.kv.Get(ctx, KeyUserID)
	if err != nil {
		return Session{}, fmt.Errorf("read user id: %w", err)
	}
	return Session{Role: role, UserID: userID}, nil
}

func (l *Local) Save(ctx context.Context, role domain.Role, userID string) error {
	if !role.Valid() {
		return fmt.Errorf("save identity: invalid role %q", role)
	}
	if err := l.kv.Set(ctx, KeyRole, string(role)); err != nil {
		return fmt.Errorf("persist role: %w", err)
	}
	if err := l.kv.Set(ctx, KeyUserID, userID); err != nil {
		return fmt.Errorf("persist user id: %w", err)
	}
	return nil
}

func (l *Local) Clear(ctx context.Context) error {
	if err := l.kv.Delete(ctx, KeyRole, KeyUserID); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}

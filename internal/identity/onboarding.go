package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tai-edu/tai/internal/domain"
)

// ErrSelectionInFlight is returned when SelectRole is called while an
// earlier selection has not finished.
var ErrSelectionInFlight = errors.New("role selection already in progress")

// UserRegistry creates or fetches the backend user for a device and role.
type UserRegistry interface {
	CreateOrGetUser(ctx context.Context, deviceID string, role domain.Role) (*domain.User, error)
}

// Onboarding runs the first-run role selection.
type Onboarding struct {
	ids    Store
	users  UserRegistry
	logger *slog.Logger

	mu       sync.Mutex
	inFlight bool
}

// NewOnboarding wires the selection flow.
func NewOnboarding(ids Store, users UserRegistry, logger *slog.Logger) *Onboarding {
	if logger == nil {
		logger = slog.Default()
	}
	return &Onboarding{ids: ids, users: users, logger: logger}
}

// InFlight reports whether a selection is running.
func (o *Onboarding) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight
}

// SelectRole binds this device to role and persists the resulting user id.
// It returns the route of the role's home view.
func (o *Onboarding) SelectRole(ctx context.Context, role domain.Role) (Route, error) {
	if !role.Valid() {
		return RouteRoleSelect, fmt.Errorf("select role: invalid role %q", role)
	}

	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return RouteRoleSelect, ErrSelectionInFlight
	}
	o.inFlight = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
	}()

	deviceID, err := o.ids.DeviceID(ctx)
	if err != nil {
		return RouteRoleSelect, err
	}
	user, err := o.users.CreateOrGetUser(ctx, deviceID, role)
	if err != nil {
		o.logger.Error("failed to create user", "role", role, "error", err)
		return RouteRoleSelect, fmt.Errorf("select role: %w", err)
	}
	if err := o.ids.Save(ctx, role, user.ID); err != nil {
		return RouteRoleSelect, err
	}

	o.logger.Info("role selected", "role", role, "user_id", user.ID)
	return HomeFor(role), nil
}

package auth

import (
	"context"
	"log/slog"

	"github.com/nerrad567/album-catalog/internal/events"
)

// UserAdmin performs account management on behalf of an ADMIN caller.
type UserAdmin struct {
	users     UserRepository
	publisher events.Publisher
	logger    *slog.Logger
}

// NewUserAdmin creates a UserAdmin. A nil publisher drops events.
func NewUserAdmin(users UserRepository, publisher events.Publisher, logger *slog.Logger) *UserAdmin {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &UserAdmin{users: users, publisher: publisher, logger: logger}
}

func (a *UserAdmin) authorize(actor Caller) error {
	if Decide(ActionUserManage, actor.Role, false) != Allow {
		return ErrForbidden
	}
	return nil
}

// List returns every account.
func (a *UserAdmin) List(ctx context.Context, actor Caller) ([]User, error) {
	if err := a.authorize(actor); err != nil {
		return nil, err
	}
	return a.users.List(ctx)
}

// Get returns one account.
func (a *UserAdmin) Get(ctx context.Context, actor Caller, id int64) (*User, error) {
	if err := a.authorize(actor); err != nil {
		return nil, err
	}
	return a.users.GetByID(ctx, id)
}

// UpdateRole sets the role of account id. rawRole is normalized and must
// name a valid role. Admins cannot change their own role.
func (a *UserAdmin) UpdateRole(ctx context.Context, actor Caller, id int64, rawRole string) (*User, error) {
	if err := a.authorize(actor); err != nil {
		return nil, err
	}
	role, err := ParseRole(rawRole)
	if err != nil {
		return nil, err
	}
	if id == actor.ID {
		return nil, ErrSelfModification
	}

	user, err := a.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.EffectiveRole() == role {
		return user, nil
	}

	if err := a.users.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	user.Role = role

	a.logger.Info("user role changed",
		"user_id", id,
		"role", string(role),
		"by", actor.Username,
	)
	a.publish(ctx, events.Event{
		Type:     events.UserRoleChanged,
		UserID:   id,
		Username: user.Username,
		Role:     string(role),
	})

	return user, nil
}

// SetEnabled enables or disables account id. Admins cannot disable themselves.
func (a *UserAdmin) SetEnabled(ctx context.Context, actor Caller, id int64, enabled bool) (*User, error) {
	if err := a.authorize(actor); err != nil {
		return nil, err
	}
	if id == actor.ID {
		return nil, ErrSelfModification
	}
	if err := a.users.SetEnabled(ctx, id, enabled); err != nil {
		return nil, err
	}
	a.logger.Info("user enabled flag changed", "user_id", id, "enabled", enabled, "by", actor.Username)
	return a.users.GetByID(ctx, id)
}

// Delete removes account id. The user's albums are kept without an owner.
func (a *UserAdmin) Delete(ctx context.Context, actor Caller, id int64) error {
	if err := a.authorize(actor); err != nil {
		return err
	}
	if id == actor.ID {
		return ErrSelfModification
	}
	if err := a.users.Delete(ctx, id); err != nil {
		return err
	}
	a.logger.Info("user deleted", "user_id", id, "by", actor.Username)
	return nil
}

func (a *UserAdmin) publish(ctx context.Context, e events.Event) {
	if err := a.publisher.Publish(ctx, e); err != nil {
		a.logger.Warn("publishing event failed", "type", string(e.Type), "error", err)
	}
}

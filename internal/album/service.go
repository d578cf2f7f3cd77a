package album

import (
	"context"
	"log/slog"

	"github.com/nerrad567/album-catalog/internal/auth"
	"github.com/nerrad567/album-catalog/internal/events"
)

// Service applies access control, ownership and the promotion rule on top
// of the album and user stores.
type Service struct {
	albums    Repository
	users     auth.UserRepository
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService wires a Service. A nil publisher drops events.
func NewService(albums Repository, users auth.UserRepository, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{albums: albums, users: users, publisher: publisher, logger: logger}
}

// List returns every album.
func (s *Service) List(ctx context.Context, caller auth.Caller) ([]Album, error) {
	if auth.Decide(auth.ActionAlbumRead, caller.Role, false) != auth.Allow {
		return nil, auth.ErrForbidden
	}
	return s.albums.List(ctx)
}

// Get returns one album.
func (s *Service) Get(ctx context.Context, caller auth.Caller, id int64) (*Album, error) {
	if auth.Decide(auth.ActionAlbumRead, caller.Role, false) != auth.Allow {
		return nil, auth.ErrForbidden
	}
	return s.albums.Get(ctx, id)
}

// Create stores a new album owned by caller. A caller whose role is exactly
// USER is promoted to EDITOR once the album is saved. A failed promotion
// is logged and does not undo the create.
func (s *Service) Create(ctx context.Context, caller auth.Caller, in Input) (*Album, error) {
	if auth.Decide(auth.ActionAlbumCreate, caller.Role, true) != auth.Allow {
		return nil, auth.ErrForbidden
	}

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	owner := caller.ID
	a := &Album{UserID: &owner}
	a.apply(in)
	if err := s.albums.Create(ctx, a); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.AlbumCreated,
		AlbumID:  a.ID,
		Title:    a.Title,
		UserID:   caller.ID,
		Username: caller.Username,
		Role:     string(caller.Role),
	})

	if next, ok := auth.PromotionOnCreate(caller.Role); ok {
		s.promote(ctx, caller, next)
	}

	return a, nil
}

func (s *Service) promote(ctx context.Context, caller auth.Caller, next auth.Role) {
	if err := s.users.UpdateRole(ctx, caller.ID, next); err != nil {
		s.logger.Error("promoting user after first album failed",
			"user_id", caller.ID,
			"error", err,
		)
		return
	}

	s.logger.Info("user promoted after first album",
		"user_id", caller.ID,
		"username", caller.Username,
		"role", string(next),
	)
	s.publish(ctx, events.Event{
		Type:     events.UserRoleChanged,
		UserID:   caller.ID,
		Username: caller.Username,
		Role:     string(next),
	})
}

// Update replaces the descriptive fields of album id. The owner is kept.
func (s *Service) Update(ctx context.Context, caller auth.Caller, id int64, in Input) (*Album, error) {
	a, err := s.authorizeMutation(ctx, caller, auth.ActionAlbumUpdate, id)
	if err != nil {
		return nil, err
	}

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	a.apply(in)
	if err := s.albums.Update(ctx, a); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.AlbumUpdated,
		AlbumID:  a.ID,
		Title:    a.Title,
		UserID:   caller.ID,
		Username: caller.Username,
		Role:     string(caller.Role),
	})
	return a, nil
}

// Delete removes album id.
func (s *Service) Delete(ctx context.Context, caller auth.Caller, id int64) error {
	a, err := s.authorizeMutation(ctx, caller, auth.ActionAlbumDelete, id)
	if err != nil {
		return err
	}

	if err := s.albums.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:     events.AlbumDeleted,
		AlbumID:  id,
		Title:    a.Title,
		UserID:   caller.ID,
		Username: caller.Username,
		Role:     string(caller.Role),
	})
	return nil
}

// authorizeMutation checks the role gate, then existence, then ownership.
func (s *Service) authorizeMutation(ctx context.Context, caller auth.Caller, action auth.Action, id int64) (*Album, error) {
	if !auth.MayAttempt(action, caller.Role) {
		return nil, auth.ErrForbidden
	}

	a, err := s.albums.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if auth.Decide(action, caller.Role, auth.IsOwner(a.UserID, caller.ID)) != auth.Allow {
		return nil, auth.ErrForbidden
	}
	return a, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("publishing event failed", "type", string(e.Type), "error", err)
	}
}

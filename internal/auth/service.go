package auth

import (
	"context"
	"errors"

	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/shared"
)

// Authenticator exchanges credentials for API tokens.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (apiclient.Tokens, error)
}

// Service wraps the sign-in rules.
type Service struct {
	api      Authenticator
	activity *shared.ActivityLog
}

// NewService constructs a new Service.
func NewService(api Authenticator, activity *shared.ActivityLog) *Service {
	return &Service{api: api, activity: activity}
}

// ErrUnavailable is returned when the API could not be reached for sign-in.
var ErrUnavailable = errors.New("auth: api unavailable")

// Authenticate validates username/password against the API and stores the
// issued tokens in store.
func (s *Service) Authenticate(ctx context.Context, store apiclient.TokenStore, username, password string) error {
	tokens, err := s.api.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, apiclient.ErrInvalidCredentials) {
			return apiclient.ErrInvalidCredentials
		}
		return errors.Join(ErrUnavailable, err)
	}
	if err := store.Save(ctx, tokens); err != nil {
		return err
	}
	s.activity.RecordDetached(ctx, shared.ActivityEntry{Actor: username, Action: "login", Entity: "session"})
	return nil
}

// SignOut forgets the stored tokens.
func (s *Service) SignOut(ctx context.Context, store apiclient.TokenStore, username string) error {
	if username != "" {
		s.activity.RecordDetached(ctx, shared.ActivityEntry{Actor: username, Action: "logout", Entity: "session"})
	}
	return store.Clear(ctx)
}

package auth

import (
	"context"
	"time"

	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/shared"
)

const (
	sessionAccessKey   = "api_access"
	sessionRefreshKey  = "api_refresh"
	sessionActivityKey = "api_last_activity"
)

// sessionTokens keeps the API token pair sealed inside the Redis session.
type sessionTokens struct {
	sess  *shared.Session
	vault *shared.TokenVault
}

// SessionTokens adapts sess into the token store used by the API client.
func SessionTokens(sess *shared.Session, vault *shared.TokenVault) apiclient.TokenStore {
	return &sessionTokens{sess: sess, vault: vault}
}

func (s *sessionTokens) Load(_ context.Context) (apiclient.Tokens, error) {
	if s.sess == nil {
		return apiclient.Tokens{}, nil
	}
	access, err := s.vault.Open(s.sess.Get(sessionAccessKey), s.sess.ID)
	if err != nil {
		// A value sealed for another session id or key is treated as signed out.
		return apiclient.Tokens{}, nil
	}
	refresh, err := s.vault.Open(s.sess.Get(sessionRefreshKey), s.sess.ID)
	if err != nil {
		return apiclient.Tokens{}, nil
	}
	tokens := apiclient.Tokens{Access: access, Refresh: refresh}
	if raw := s.sess.Get(sessionActivityKey); raw != "" {
		if at, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			tokens.LastActivity = at
		}
	}
	return tokens, nil
}

func (s *sessionTokens) Save(_ context.Context, tokens apiclient.Tokens) error {
	if s.sess == nil {
		return nil
	}
	access, err := s.vault.Seal(tokens.Access, s.sess.ID)
	if err != nil {
		return err
	}
	refresh, err := s.vault.Seal(tokens.Refresh, s.sess.ID)
	if err != nil {
		return err
	}
	s.sess.Set(sessionAccessKey, access)
	s.sess.Set(sessionRefreshKey, refresh)
	s.sess.Set(sessionActivityKey, tokens.LastActivity.UTC().Format(time.RFC3339Nano))
	return nil
}

func (s *sessionTokens) Clear(_ context.Context) error {
	if s.sess == nil {
		return nil
	}
	s.sess.Delete(sessionAccessKey)
	s.sess.Delete(sessionRefreshKey)
	s.sess.Delete(sessionActivityKey)
	return nil
}

package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/mysociety/internal/server/auth"
	"github.com/dmitrijs2005/mysociety/internal/server/models"
)

type Service struct {
	dir                         *Directory
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewService(dir *Directory, jwtSecret string, validity time.Duration) *Service {
	return &Service{
		dir:                         dir,
		jwtSecret:                   []byte(jwtSecret),
		accessTokenValidityDuration: validity,
	}
}

// Login authenticates the user and issues an access token.
func (s *Service) Login(ctx context.Context, username, password string) (string, models.User, error) {
	user, err := s.dir.Authenticate(ctx, username, password)
	if err != nil {
		return "", models.User{}, err
	}

	token, err := auth.GenerateToken(user, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", models.User{}, err
	}
	return token, user, nil
}

// Verify resolves an access token to its actor.
func (s *Service) Verify(token string) (models.Actor, error) {
	return auth.ParseToken(token, s.jwtSecret)
}

func (s *Service) Lookup(username string) (models.User, bool) {
	return s.dir.Lookup(username)
}

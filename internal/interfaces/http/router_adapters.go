package http

import (
	userusecases "bizdesk/internal/application/user/usecases"
	"bizdesk/internal/infrastructure/auth"
	"bizdesk/internal/shared/authorization"
)

type tokenIssuerAdapter struct {
	*auth.JWTService
}

func (a *tokenIssuerAdapter) Issue(userID uint, role authorization.UserRole) (*userusecases.IssuedToken, error) {
	token, err := a.JWTService.Generate(userID, role)
	if err != nil {
		return nil, err
	}
	return &userusecases.IssuedToken{
		AccessToken: token.AccessToken,
		ExpiresIn:   token.ExpiresIn,
		ExpiresAt:   token.ExpiresAt,
	}, nil
}

package usecases

import (
	"context"
	"strings"
	"time"

	"bizdesk/internal/application/user/dto"
	"bizdesk/internal/domain/user"
	"bizdesk/internal/shared/authorization"
	"bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/logger"
)

// IssuedToken is an access token handed back to the client.
type IssuedToken struct {
	AccessToken string
	ExpiresIn   int64
	ExpiresAt   time.Time
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID uint, role authorization.UserRole) (*IssuedToken, error)
}

// rehasher is implemented by hashers that can tell when a stored hash is
// weaker than their current setting.
type rehasher interface {
	NeedsRehash(hash string) bool
}

type LoginWithPasswordCommand struct {
	Email    string
	Password string
}

type LoginWithPasswordUseCase struct {
	userRepo       user.Repository
	passwordHasher user.PasswordHasher
	tokens         TokenIssuer
	logger         logger.Interface
}

func NewLoginWithPasswordUseCase(
	userRepo user.Repository,
	hasher user.PasswordHasher,
	tokens TokenIssuer,
	logger logger.Interface,
) *LoginWithPasswordUseCase {
	return &LoginWithPasswordUseCase{
		userRepo:       userRepo,
		passwordHasher: hasher,
		tokens:         tokens,
		logger:         logger,
	}
}

func (uc *LoginWithPasswordUseCase) Execute(ctx context.Context, cmd LoginWithPasswordCommand) (*dto.LoginResponse, error) {
	existingUser, err := uc.userRepo.GetByEmail(ctx, strings.TrimSpace(cmd.Email))
	if err != nil {
		uc.logger.Errorw("failed to get user by email", "error", err)
		return nil, errors.WrapPersistence("load user", err)
	}

	// the same error for unknown email and wrong password
	if existingUser == nil || !existingUser.HasPassword() {
		return nil, errors.NewInvalidCredentialsError()
	}
	if err := existingUser.VerifyPassword(cmd.Password, uc.passwordHasher); err != nil {
		return nil, errors.NewInvalidCredentialsError()
	}
	if !existingUser.IsActive() {
		return nil, errors.NewAccountInactiveError()
	}

	uc.upgradePasswordHash(ctx, existingUser, cmd.Password)

	token, err := uc.tokens.Issue(existingUser.ID(), existingUser.Role())
	if err != nil {
		uc.logger.Errorw("failed to issue access token", "user_id", existingUser.ID(), "error", err)
		return nil, errors.NewInternalError("failed to issue access token")
	}

	uc.logger.Infow("user logged in successfully", "user_id", existingUser.ID())

	return &dto.LoginResponse{
		AccessToken: token.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   token.ExpiresIn,
		ExpiresAt:   token.ExpiresAt,
		User:        dto.ToUserResponse(existingUser),
	}, nil
}

// upgradePasswordHash re-hashes the password with the configured cost after
// the cost was raised. Failures keep the old hash and do not block login.
func (uc *LoginWithPasswordUseCase) upgradePasswordHash(ctx context.Context, u *user.User, password string) {
	rh, ok := uc.passwordHasher.(rehasher)
	if !ok || !rh.NeedsRehash(u.PasswordHash()) {
		return
	}
	if err := u.SetPassword(password, uc.passwordHasher); err != nil {
		uc.logger.Warnw("failed to rehash password", "user_id", u.ID(), "error", err)
		return
	}
	if err := uc.userRepo.Update(ctx, u); err != nil {
		uc.logger.Warnw("failed to store rehashed password", "user_id", u.ID(), "error", err)
		return
	}
	uc.logger.Infow("password hash upgraded", "user_id", u.ID())
}

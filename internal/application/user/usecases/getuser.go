package usecases

import (
	"context"

	"bizdesk/internal/application/user/dto"
	"bizdesk/internal/domain/user"
	"bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/logger"
)

type GetUserUseCase struct {
	userRepo user.Repository
	logger   logger.Interface
}

func NewGetUserUseCase(userRepo user.Repository, logger logger.Interface) *GetUserUseCase {
	return &GetUserUseCase{userRepo: userRepo, logger: logger}
}

func (uc *GetUserUseCase) Execute(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	u, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		uc.logger.Errorw("failed to get user", "user_id", userID, "error", err)
		return nil, errors.WrapPersistence("load user", err)
	}
	if u == nil {
		return nil, errors.NewNotFoundError("user not found")
	}
	return dto.ToUserResponse(u), nil
}

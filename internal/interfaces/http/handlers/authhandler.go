package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	userdto "bizdesk/internal/application/user/dto"
	userusecases "bizdesk/internal/application/user/usecases"
	"bizdesk/internal/interfaces/http/middleware"
	"bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/logger"
	"bizdesk/internal/shared/utils"
)

type loginUseCase interface {
	Execute(ctx context.Context, cmd userusecases.LoginWithPasswordCommand) (*userdto.LoginResponse, error)
}

type getUserUseCase interface {
	Execute(ctx context.Context, userID uint) (*userdto.UserResponse, error)
}

type AuthHandler struct {
	loginUC      loginUseCase
	getUserUC    getUserUseCase
	secureCookie bool
	logger       logger.Interface
}

// NewAuthHandler builds the login handlers. secureCookie marks the access
// token cookie Secure, for deployments served over TLS.
func NewAuthHandler(loginUC loginUseCase, getUserUC getUserUseCase, secureCookie bool, logger logger.Interface) *AuthHandler {
	return &AuthHandler{
		loginUC:      loginUC,
		getUserUC:    getUserUC,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.TranslateValidationError(err))
		return
	}

	result, err := h.loginUC.Execute(c.Request.Context(), userusecases.LoginWithPasswordCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.ShouldLogAuthError(err) {
			h.logger.Warnw("login failed", "client_ip", c.ClientIP(), "error", err)
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.AccessTokenCookie, result.AccessToken, int(result.ExpiresIn), "/", "", h.secureCookie, true)

	utils.SuccessResponse(c, http.StatusOK, "Login successful", result)
}

func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("authentication required"))
		return
	}

	result, err := h.getUserUC.Execute(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

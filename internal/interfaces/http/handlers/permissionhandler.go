package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	permissiondto "bizdesk/internal/application/permission/dto"
	permissionusecases "bizdesk/internal/application/permission/usecases"
	"bizdesk/internal/domain/permission"
	vo "bizdesk/internal/domain/permission/value_objects"
	"bizdesk/internal/interfaces/http/middleware"
	"bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/logger"
	"bizdesk/internal/shared/utils"
)

type PermissionHandler struct {
	editPermissionsUC    editPermissionsUseCase
	deletePermissionUC   deletePermissionUseCase
	getUserPermissionsUC getUserPermissionsUseCase
	resolvePermissionsUC resolvePermissionsUseCase
	checker              accessChecker
	logger               logger.Interface
}

func NewPermissionHandler(
	editPermissionsUC editPermissionsUseCase,
	deletePermissionUC deletePermissionUseCase,
	getUserPermissionsUC getUserPermissionsUseCase,
	resolvePermissionsUC resolvePermissionsUseCase,
	checker accessChecker,
	logger logger.Interface,
) *PermissionHandler {
	return &PermissionHandler{
		editPermissionsUC:    editPermissionsUC,
		deletePermissionUC:   deletePermissionUC,
		getUserPermissionsUC: getUserPermissionsUC,
		resolvePermissionsUC: resolvePermissionsUC,
		checker:              checker,
		logger:               logger,
	}
}

// PermissionEditRequest changes one (user, module) row; absent flags keep
// their stored value.
type PermissionEditRequest struct {
	ModuleID  string `json:"module_id" binding:"required"`
	View      *bool  `json:"view"`
	Add       *bool  `json:"add"`
	Edit      *bool  `json:"edit"`
	Delete    *bool  `json:"delete"`
	IsBlocked *bool  `json:"is_blocked"`
}

type EditPermissionsRequest struct {
	Permissions []PermissionEditRequest `json:"permissions" binding:"required,min=1,dive"`
}

type CheckPermissionQuery struct {
	ModuleID   string `form:"module_id" json:"module_id" binding:"required"`
	Capability string `form:"capability" json:"capability" binding:"required,capability"`
}

func (h *PermissionHandler) GetUserPermissions(c *gin.Context) {
	userID, err := utils.ParseUintParam(c, "user_id", "user")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getUserPermissionsUC.Execute(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *PermissionHandler) EditPermissions(c *gin.Context) {
	userID, err := utils.ParseUintParam(c, "user_id", "user")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req EditPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for edit permissions",
			"user_id", userID,
			"error", err)
		utils.ErrorResponseWithError(c, utils.TranslateValidationError(err))
		return
	}

	edits := make([]permission.Edit, 0, len(req.Permissions))
	for _, p := range req.Permissions {
		edits = append(edits, permission.Edit{
			ModuleID:  p.ModuleID,
			View:      p.View,
			Add:       p.Add,
			Edit:      p.Edit,
			Delete:    p.Delete,
			IsBlocked: p.IsBlocked,
		})
	}

	result, err := h.editPermissionsUC.Execute(c.Request.Context(), permissionusecases.EditPermissionsCommand{
		UserID: userID,
		Edits:  edits,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Permissions updated successfully", result)
}

func (h *PermissionHandler) DeletePermission(c *gin.Context) {
	userID, err := utils.ParseUintParam(c, "user_id", "user")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	moduleID, err := parseModuleID(c, "module_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.deletePermissionUC.Execute(c.Request.Context(), permissionusecases.DeletePermissionCommand{
		UserID:   userID,
		ModuleID: moduleID,
	}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// GetModuleSubtreePermissions resolves a user's access on a module and every
// module below it.
func (h *PermissionHandler) GetModuleSubtreePermissions(c *gin.Context) {
	userID, err := utils.ParseUintParam(c, "user_id", "user")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	moduleID, err := parseModuleID(c, "module_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.resolve(c, permissionusecases.ResolvePermissionsQuery{UserID: userID, ModuleID: moduleID})
}

// GetEffectivePermissions resolves a user's access on the whole registry.
func (h *PermissionHandler) GetEffectivePermissions(c *gin.Context) {
	userID, err := utils.ParseUintParam(c, "user_id", "user")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.resolve(c, permissionusecases.ResolvePermissionsQuery{UserID: userID})
}

// GetMyPermissions resolves the caller's own access on the whole registry.
func (h *PermissionHandler) GetMyPermissions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("authentication required"))
		return
	}

	h.resolve(c, permissionusecases.ResolvePermissionsQuery{UserID: userID})
}

func (h *PermissionHandler) resolve(c *gin.Context, query permissionusecases.ResolvePermissionsQuery) {
	result, err := h.resolvePermissionsUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// CheckMyPermission explains the caller's access to one capability on one
// module, naming the rule that decided it.
func (h *PermissionHandler) CheckMyPermission(c *gin.Context) {
	subject, ok := middleware.GetSubject(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("authentication required"))
		return
	}

	var query CheckPermissionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.ErrorResponseWithError(c, utils.TranslateValidationError(err))
		return
	}

	capability := vo.Capability(query.Capability)
	decision, err := h.checker.Check(c.Request.Context(), subject, query.ModuleID, capability)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", &permissiondto.DecisionDTO{
		ModuleID:   query.ModuleID,
		Capability: capability.String(),
		Allowed:    decision.Allowed,
		Rule:       string(decision.Rule),
		Reason:     decision.Reason,
	})
}

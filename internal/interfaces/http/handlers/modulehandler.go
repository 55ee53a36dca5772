package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	moduleusecases "bizdesk/internal/application/module/usecases"
	"bizdesk/internal/domain/module"
	"bizdesk/internal/shared/id"
	"bizdesk/internal/shared/logger"
	"bizdesk/internal/shared/utils"
)

type ModuleHandler struct {
	addModuleUC     addModuleUseCase
	editModuleUC    editModuleUseCase
	bulkEditUC      bulkEditModulesUseCase
	deleteModuleUC  deleteModuleUseCase
	listModulesUC   listModulesUseCase
	getModuleUC     getModuleUseCase
	getModuleTreeUC getModuleTreeUseCase
	logger          logger.Interface
}

func NewModuleHandler(
	addModuleUC addModuleUseCase,
	editModuleUC editModuleUseCase,
	bulkEditUC bulkEditModulesUseCase,
	deleteModuleUC deleteModuleUseCase,
	listModulesUC listModulesUseCase,
	getModuleUC getModuleUseCase,
	getModuleTreeUC getModuleTreeUseCase,
	logger logger.Interface,
) *ModuleHandler {
	return &ModuleHandler{
		addModuleUC:     addModuleUC,
		editModuleUC:    editModuleUC,
		bulkEditUC:      bulkEditUC,
		deleteModuleUC:  deleteModuleUC,
		listModulesUC:   listModulesUC,
		getModuleUC:     getModuleUC,
		getModuleTreeUC: getModuleTreeUC,
		logger:          logger,
	}
}

type CreateModuleRequest struct {
	TabName   string `json:"tab_name" binding:"required,max=100"`
	Name      string `json:"name" binding:"max=200"`
	TabURL    string `json:"tab_url" binding:"required,taburl,max=255"`
	Number    int    `json:"number"`
	ParentID  string `json:"parent_id"`
	HasView   bool   `json:"has_view"`
	HasAdd    bool   `json:"has_add"`
	HasEdit   bool   `json:"has_edit"`
	HasDelete bool   `json:"has_delete"`
	Default   bool   `json:"default"`
	IsActive  *bool  `json:"is_active"`
}

// UpdateModuleRequest is a partial update; absent fields are left alone.
// An empty parent_id promotes the module to a root.
type UpdateModuleRequest struct {
	TabName   *string `json:"tab_name" binding:"omitempty,max=100"`
	Name      *string `json:"name" binding:"omitempty,max=200"`
	TabURL    *string `json:"tab_url" binding:"omitempty,taburl,max=255"`
	Number    *int    `json:"number"`
	ParentID  *string `json:"parent_id"`
	HasView   *bool   `json:"has_view"`
	HasAdd    *bool   `json:"has_add"`
	HasEdit   *bool   `json:"has_edit"`
	HasDelete *bool   `json:"has_delete"`
	Default   *bool   `json:"default"`
	IsActive  *bool   `json:"is_active"`
}

func (r UpdateModuleRequest) toPatch() module.Patch {
	return module.Patch{
		TabName:   r.TabName,
		Name:      r.Name,
		TabURL:    r.TabURL,
		Number:    r.Number,
		ParentID:  r.ParentID,
		HasView:   r.HasView,
		HasAdd:    r.HasAdd,
		HasEdit:   r.HasEdit,
		HasDelete: r.HasDelete,
		IsDefault: r.Default,
		IsActive:  r.IsActive,
	}
}

type BulkModulePatch struct {
	ID string `json:"id" binding:"required"`
	UpdateModuleRequest
}

type BulkUpdateModulesRequest struct {
	Modules []BulkModulePatch `json:"modules" binding:"required,min=1,dive"`
}

func (h *ModuleHandler) CreateModule(c *gin.Context) {
	var req CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create module", "error", err)
		utils.ErrorResponseWithError(c, utils.TranslateValidationError(err))
		return
	}

	result, err := h.addModuleUC.Execute(c.Request.Context(), moduleusecases.AddModuleCommand{
		TabName:   req.TabName,
		Name:      req.Name,
		TabURL:    req.TabURL,
		Number:    req.Number,
		ParentID:  req.ParentID,
		HasView:   req.HasView,
		HasAdd:    req.HasAdd,
		HasEdit:   req.HasEdit,
		HasDelete: req.HasDelete,
		IsDefault: req.Default,
		IsActive:  req.IsActive,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Module created successfully")
}

func (h *ModuleHandler) ListModules(c *gin.Context) {
	isActive, err := utils.ParseOptionalBoolQuery(c, "is_active")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	isDeleted, err := utils.ParseOptionalBoolQuery(c, "is_deleted")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	query := moduleusecases.ListModulesQuery{IsActive: isActive, IsDeleted: isDeleted}
	if parentID, ok := c.GetQuery("parent_id"); ok {
		query.ParentID = &parentID
	}

	result, err := h.listModulesUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *ModuleHandler) GetModuleTree(c *gin.Context) {
	result, err := h.getModuleTreeUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *ModuleHandler) GetModule(c *gin.Context) {
	moduleID, err := parseModuleID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getModuleUC.Execute(c.Request.Context(), moduleID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *ModuleHandler) UpdateModule(c *gin.Context) {
	moduleID, err := parseModuleID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req UpdateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update module",
			"module_id", moduleID,
			"error", err)
		utils.ErrorResponseWithError(c, utils.TranslateValidationError(err))
		return
	}

	result, err := h.editModuleUC.Execute(c.Request.Context(), moduleusecases.EditModuleCommand{
		ModuleID: moduleID,
		Patch:    req.toPatch(),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Module updated successfully", result)
}

func (h *ModuleHandler) BulkUpdateModules(c *gin.Context) {
	var req BulkUpdateModulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for bulk update modules", "error", err)
		utils.ErrorResponseWithError(c, utils.TranslateValidationError(err))
		return
	}

	cmd := moduleusecases.BulkEditModulesCommand{
		Edits: make([]moduleusecases.EditModuleCommand, 0, len(req.Modules)),
	}
	for _, m := range req.Modules {
		cmd.Edits = append(cmd.Edits, moduleusecases.EditModuleCommand{
			ModuleID: m.ID,
			Patch:    m.toPatch(),
		})
	}

	result, err := h.bulkEditUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Modules updated successfully", result)
}

func (h *ModuleHandler) DeleteModule(c *gin.Context) {
	moduleID, err := parseModuleID(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.deleteModuleUC.Execute(c.Request.Context(), moduleID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

func parseModuleID(c *gin.Context, param string) (string, error) {
	return utils.ParseSIDParam(c, param, id.PrefixModule, "module")
}

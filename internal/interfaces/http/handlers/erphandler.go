package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bizdesk/internal/shared/utils"
)

// ERPHandler answers the guarded ERP routes with a placeholder payload. The
// business routers behind them live outside this service.
type ERPHandler struct{}

func NewERPHandler() *ERPHandler {
	return &ERPHandler{}
}

type ERPStubResponse struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

func (h *ERPHandler) Handle(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", &ERPStubResponse{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
	})
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"research-rag/internal/app"
	"research-rag/internal/transport/http/middleware"
	"research-rag/internal/transport/http/response"
)

type WorkspaceHandler struct {
	workspaceService *app.WorkspaceService
}

type SaveContentRequest struct {
	Content *string `json:"content" binding:"required"`
}

func NewWorkspaceHandler(workspaceService *app.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

func (h *WorkspaceHandler) GetNote(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	note, err := h.workspaceService.GetNote(c.Request.Context(), userID)
	if err != nil {
		writeWorkspaceError(c, err)
		return
	}
	response.OK(c, note)
}

func (h *WorkspaceHandler) SaveNote(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	var req SaveContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	note, err := h.workspaceService.SaveNote(c.Request.Context(), userID, *req.Content)
	if err != nil {
		writeWorkspaceError(c, err)
		return
	}
	response.OK(c, note)
}

func (h *WorkspaceHandler) GetWhiteboard(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	board, err := h.workspaceService.GetWhiteboard(c.Request.Context(), userID)
	if err != nil {
		writeWorkspaceError(c, err)
		return
	}
	response.OK(c, board)
}

func (h *WorkspaceHandler) SaveWhiteboard(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	var req SaveContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	board, err := h.workspaceService.SaveWhiteboard(c.Request.Context(), userID, *req.Content)
	if err != nil {
		writeWorkspaceError(c, err)
		return
	}
	response.OK(c, board)
}

func writeWorkspaceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrContentTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "workspace request failed")
	}
}

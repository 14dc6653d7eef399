package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"research-rag/internal/app"
	"research-rag/internal/rag"
	"research-rag/internal/transport/http/middleware"
	"research-rag/internal/transport/http/response"
)

const timeLayout = time.RFC3339

const blockedMessage = "The response was blocked by safety filters. Try rephrasing your question."

type InsightHandler struct {
	insightService *app.InsightService
}

type AskRequest struct {
	Query             string   `json:"query" binding:"required,max=4000"`
	PaperIDs          []string `json:"paper_ids" binding:"max=50"`
	IncludeNotes      bool     `json:"include_notes"`
	IncludeWhiteboard bool     `json:"include_whiteboard"`
}

func NewInsightHandler(insightService *app.InsightService) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

func (h *InsightHandler) Ask(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.insightService.Ask(c.Request.Context(), app.AskInput{
		UserID:            userID,
		Query:             req.Query,
		PaperIDs:          req.PaperIDs,
		IncludeNotes:      req.IncludeNotes,
		IncludeWhiteboard: req.IncludeWhiteboard,
	})
	if err != nil {
		var notFound *rag.SourceNotFoundError
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, rag.ErrEmptySelection):
			response.Error(c, http.StatusBadRequest, response.CodeEmptySelection, err.Error())
		case errors.As(err, &notFound):
			response.Error(c, http.StatusNotFound, response.CodeSourceNotFound, notFound.Error())
		case errors.Is(err, app.ErrAnswerBlocked):
			response.Error(c, http.StatusUnprocessableEntity, response.CodeAnswerBlocked, blockedMessage)
		case errors.Is(err, app.ErrGenerationFailed):
			response.Error(c, http.StatusBadGateway, response.CodeGenerationFailed, app.GenerationFailureMessage)
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "answer query failed")
		}
		return
	}
	response.OK(c, result)
}

// History lists recent insights; ?limit= defaults to 20.
func (h *InsightHandler) History(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid limit")
		return
	}

	items, err := h.insightService.History(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "load insight history failed")
		return
	}
	response.OK(c, gin.H{"insights": items})
}

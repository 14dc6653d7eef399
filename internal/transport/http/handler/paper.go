package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"research-rag/internal/app"
	"research-rag/internal/pkg/textextract"
	"research-rag/internal/rag"
	"research-rag/internal/transport/http/middleware"
	"research-rag/internal/transport/http/response"
)

const (
	maxBatchFiles = 20
	// multipartSlack covers form boundaries and headers around file bodies.
	multipartSlack = 1 << 20
)

type PaperHandler struct {
	paperService   *app.PaperService
	maxUploadBytes int64
}

type CreatePaperRequest struct {
	ID      string `json:"id" binding:"max=64"`
	Name    string `json:"name" binding:"required,max=256"`
	Content string `json:"content" binding:"required"`
}

type paperView struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	SizeBytes      int64     `json:"size_bytes"`
	ChunkCount     int       `json:"chunk_count"`
	Dimension      int       `json:"dimension"`
	ContentPreview string    `json:"content_preview,omitempty"`
	Embedding      []float32 `json:"embedding,omitempty"`
	CreatedAt      string    `json:"created_at,omitempty"`
}

type batchItemView struct {
	Name  string            `json:"name"`
	OK    bool              `json:"ok"`
	Paper *app.IngestResult `json:"paper,omitempty"`
	Error string            `json:"error,omitempty"`
}

func NewPaperHandler(paperService *app.PaperService, maxUploadBytes int64) *PaperHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	return &PaperHandler{paperService: paperService, maxUploadBytes: maxUploadBytes}
}

// Upload ingests one multipart file field "file" with optional "id" and "name".
func (h *PaperHandler) Upload(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartSlack)

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file field")
		return
	}
	if file.Size > h.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, "file exceeds upload limit")
		return
	}

	text, err := extractUpload(file)
	if err != nil {
		writeIngestError(c, err)
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = file.Filename
	}
	result, err := h.paperService.Ingest(c.Request.Context(), app.IngestInput{
		UserID:    userID,
		ID:        c.PostForm("id"),
		Name:      name,
		SizeBytes: file.Size,
		Content:   text,
	})
	if err != nil {
		writeIngestError(c, err)
		return
	}
	response.OK(c, result)
}

// UploadBatch ingests every file of the multipart field "files" independently.
// The request body is capped at maxBatchFiles times the per-file limit.
func (h *PaperHandler) UploadBatch(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	limit := h.maxUploadBytes*maxBatchFiles + multipartSlack
	if c.Request.ContentLength > limit {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, "batch exceeds upload limit")
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, "batch exceeds upload limit")
			return
		}
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid multipart form")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no files uploaded")
		return
	}
	if len(files) > maxBatchFiles {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Sprintf("at most %d files per batch", maxBatchFiles))
		return
	}

	items := make([]batchItemView, len(files))
	inputs := make([]app.IngestInput, 0, len(files))
	positions := make([]int, 0, len(files))
	for i, file := range files {
		items[i].Name = file.Filename
		if file.Size > h.maxUploadBytes {
			items[i].Error = "file exceeds upload limit"
			continue
		}
		text, err := extractUpload(file)
		if err != nil {
			items[i].Error = err.Error()
			continue
		}
		inputs = append(inputs, app.IngestInput{
			UserID:    userID,
			Name:      file.Filename,
			SizeBytes: file.Size,
			Content:   text,
		})
		positions = append(positions, i)
	}

	for j, res := range h.paperService.IngestBatch(c.Request.Context(), inputs) {
		item := &items[positions[j]]
		if res.Err != nil {
			log.Warn().Err(res.Err).Uint("user_id", userID).Str("name", res.Name).Msg("batch item failed")
			item.Error = ingestErrorMessage(res.Err)
			continue
		}
		item.OK = true
		item.Paper = res.Result
	}
	response.OK(c, gin.H{"items": items})
}

// CreateFromText ingests pasted text.
func (h *PaperHandler) CreateFromText(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	var req CreatePaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.paperService.Ingest(c.Request.Context(), app.IngestInput{
		UserID:  userID,
		ID:      req.ID,
		Name:    req.Name,
		Content: req.Content,
	})
	if err != nil {
		writeIngestError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *PaperHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	papers, err := h.paperService.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list papers failed")
		return
	}

	views := make([]paperView, 0, len(papers))
	for _, p := range papers {
		views = append(views, paperView{
			ID:         p.ID,
			Name:       p.Name,
			SizeBytes:  p.SizeBytes,
			ChunkCount: p.ChunkCount,
			Dimension:  p.Dimension,
			CreatedAt:  p.CreatedAt.Format(timeLayout),
		})
	}
	response.OK(c, gin.H{"papers": views})
}

// Get returns one paper; ?include_embedding=true adds the document vector.
func (h *PaperHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	paper, err := h.paperService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writePaperLookupError(c, err)
		return
	}
	view := paperView{
		ID:             paper.ID,
		Name:           paper.Name,
		SizeBytes:      paper.SizeBytes,
		ChunkCount:     paper.ChunkCount,
		Dimension:      paper.Dimension,
		ContentPreview: paper.ContentPreview,
		CreatedAt:      paper.CreatedAt.Format(timeLayout),
	}
	if c.Query("include_embedding") == "true" {
		view.Embedding = paper.EmbeddingVector()
	}
	response.OK(c, view)
}

func (h *PaperHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	if err := h.paperService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writePaperLookupError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

func extractUpload(file *multipart.FileHeader) (string, error) {
	if !textextract.Supported(file.Filename) {
		return "", textextract.ErrUnsupportedFormat
	}
	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return textextract.Extract(file.Filename, f)
}

func writeIngestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrPaperExists):
		response.Error(c, http.StatusConflict, response.CodePaperExists, err.Error())
	case errors.Is(err, textextract.ErrUnsupportedFormat), errors.Is(err, textextract.ErrInvalidEncoding):
		response.Error(c, http.StatusBadRequest, response.CodeUnsupportedFormat, ingestErrorMessage(err))
	case errors.Is(err, rag.ErrEmptyDocument):
		response.Error(c, http.StatusBadRequest, response.CodeEmptyDocument, ingestErrorMessage(err))
	default:
		log.Error().Err(err).Msg("ingest paper failed")
		response.Error(c, http.StatusInternalServerError, response.CodeIngestFailed, ingestErrorMessage(err))
	}
}

// ingestErrorMessage is the user-facing text for an ingestion failure.
func ingestErrorMessage(err error) string {
	switch {
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrPaperExists):
		return err.Error()
	case errors.Is(err, textextract.ErrUnsupportedFormat):
		return "unsupported file format, expected pdf, docx, txt or md"
	case errors.Is(err, textextract.ErrInvalidEncoding):
		return textextract.ErrInvalidEncoding.Error()
	case errors.Is(err, rag.ErrEmptyDocument):
		return "document contains no text"
	case errors.Is(err, rag.ErrDimensionMismatch):
		return "embedding dimensions disagree across chunks"
	default:
		return "ingest paper failed"
	}
}

func writePaperLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrPaperNotFound):
		response.Error(c, http.StatusNotFound, response.CodePaperNotFound, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "paper lookup failed")
	}
}

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ErlanBelekov/writing-assistant/internal/domain"
	"github.com/ErlanBelekov/writing-assistant/internal/transport/http/middleware"
	"github.com/ErlanBelekov/writing-assistant/internal/usecase"
	"github.com/gin-gonic/gin"
)

type contentUsecaser interface {
	Create(ctx context.Context, userID int64, title, body string) (*domain.Content, error)
	List(ctx context.Context, userID int64) ([]*domain.Content, error)
	Get(ctx context.Context, id, userID int64) (*domain.Content, error)
	Update(ctx context.Context, id, userID int64, patch domain.ContentPatch) (*domain.Content, error)
	Delete(ctx context.Context, id, userID int64) error
	GenerateDraft(ctx context.Context, userID int64, topic string) (*usecase.Draft, error)
}

type ContentHandler struct {
	contentUsecase contentUsecaser
	logger         *slog.Logger
}

func NewContentHandler(contentUsecase contentUsecaser, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{contentUsecase: contentUsecase, logger: logger.With("component", "content_handler")}
}

type createContentRequest struct {
	Title *string `json:"title" binding:"required"`
	Body  *string `json:"body"  binding:"required"`
}

type updateContentRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

type generateRequest struct {
	Topic string `json:"topic" binding:"required,max=500"`
}

type contentResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toContentResponse(c *domain.Content) contentResponse {
	return contentResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		Title:     c.Title,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// POST /content
func (h *ContentHandler) Create(ctx *gin.Context) {
	var req createContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(ctx)
	c, err := h.contentUsecase.Create(ctx.Request.Context(), user.ID, *req.Title, *req.Body)
	if err != nil {
		h.logger.ErrorContext(ctx.Request.Context(), "create content", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":    "Content created successfully",
		"content_id": c.ID,
	})
}

// GET /content
func (h *ContentHandler) List(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	items, err := h.contentUsecase.List(ctx.Request.Context(), user.ID)
	if err != nil {
		h.logger.ErrorContext(ctx.Request.Context(), "list content", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	resp := make([]contentResponse, 0, len(items))
	for _, c := range items {
		resp = append(resp, toContentResponse(c))
	}
	ctx.JSON(http.StatusOK, gin.H{"contents": resp})
}

// GET /content/:id
func (h *ContentHandler) Get(ctx *gin.Context) {
	id, ok := contentID(ctx)
	if !ok {
		return
	}

	user := middleware.CurrentUser(ctx)
	c, err := h.contentUsecase.Get(ctx.Request.Context(), id, user.ID)
	if err != nil {
		h.writeContentError(ctx, "get content", id, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"content": toContentResponse(c)})
}

// PUT /content/:id
func (h *ContentHandler) Update(ctx *gin.Context) {
	id, ok := contentID(ctx)
	if !ok {
		return
	}
	var req updateContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.CurrentUser(ctx)
	c, err := h.contentUsecase.Update(ctx.Request.Context(), id, user.ID, domain.ContentPatch{
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		h.writeContentError(ctx, "update content", id, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Content updated successfully",
		"content": toContentResponse(c),
	})
}

// DELETE /content/:id
func (h *ContentHandler) Delete(ctx *gin.Context) {
	id, ok := contentID(ctx)
	if !ok {
		return
	}

	user := middleware.CurrentUser(ctx)
	if err := h.contentUsecase.Delete(ctx.Request.Context(), id, user.ID); err != nil {
		h.writeContentError(ctx, "delete content", id, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Content deleted successfully"})
}

// POST /content/generate
// Rate limited upstream of this handler.
func (h *ContentHandler) Generate(ctx *gin.Context) {
	var req generateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if strings.TrimSpace(req.Topic) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errBlankTopic})
		return
	}

	user := middleware.CurrentUser(ctx)
	draft, err := h.contentUsecase.GenerateDraft(ctx.Request.Context(), user.ID, req.Topic)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBlankTopic):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errBlankTopic})
		case errors.Is(err, domain.ErrUpstreamTimeout):
			ctx.JSON(http.StatusGatewayTimeout, gin.H{"error": errUpstreamTimeout})
		case errors.Is(err, domain.ErrGenerationFailed):
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errGenerationFailed})
		default:
			h.logger.ErrorContext(ctx.Request.Context(), "generate draft", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"title":            draft.Title,
		"generated":        draft.Body,
		"saved_content_id": draft.ContentID,
	})
}

func (h *ContentHandler) writeContentError(ctx *gin.Context, op string, id int64, err error) {
	if errors.Is(err, domain.ErrContentNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": errContentNotFound})
		return
	}
	h.logger.ErrorContext(ctx.Request.Context(), op, "content_id", id, "error", err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
}

func contentID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errInvalidContentID})
		return 0, false
	}
	return id, true
}

// Package http provides the gin handlers of the entry API. Every handler
// expects AuthenticationMiddleware to have stored the author in the context.
package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/Coops0/jrnlapp/internal/auth/http"
	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
	"github.com/Coops0/jrnlapp/internal/entries/http/dto"
	entriesUseCase "github.com/Coops0/jrnlapp/internal/entries/usecase"
	apperrors "github.com/Coops0/jrnlapp/internal/errors"
	"github.com/Coops0/jrnlapp/internal/httputil"
	customValidation "github.com/Coops0/jrnlapp/internal/validation"
)

// EntryHandler handles the /v1/entries routes.
type EntryHandler struct {
	entryUseCase entriesUseCase.EntryUseCase
	logger       *slog.Logger
}

// NewEntryHandler creates a new entry handler.
func NewEntryHandler(entryUseCase entriesUseCase.EntryUseCase, logger *slog.Logger) *EntryHandler {
	return &EntryHandler{
		entryUseCase: entryUseCase,
		logger:       logger,
	}
}

// ListHandler returns one page of encrypted history after moving the author's
// expired active entries into it.
// GET /v1/entries?cursor=<token>&limit=N
func (h *EntryHandler) ListHandler(c *gin.Context) {
	author, ok := h.author(c)
	if !ok {
		return
	}

	token, limit, err := httputil.ParsePagination(c, entriesUseCase.DefaultPageSize, entriesUseCase.MaxPageSize)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var cursor *entriesDomain.Cursor
	if token != "" {
		decoded, err := entriesDomain.DecodeCursor(token)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		cursor = &decoded
	}

	page, err := h.entryUseCase.ListHistory(c.Request.Context(), author, cursor, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEntryPageToResponse(page))
}

// GetHandler decrypts one past entry. An unknown id yields 200 with a null body.
// GET /v1/entries/:id
func (h *EntryHandler) GetHandler(c *gin.Context) {
	author, ok := h.author(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid entry id: %w", err), h.logger)
		return
	}

	entry, err := h.entryUseCase.Get(c.Request.Context(), author, id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDecryptedEntryToResponse(entry))
}

// GetTodayHandler returns today's active entry or null.
// GET /v1/entries/today
func (h *EntryHandler) GetTodayHandler(c *gin.Context) {
	author, ok := h.author(c)
	if !ok {
		return
	}

	entry, err := h.entryUseCase.GetToday(c.Request.Context(), author)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapActiveEntryToResponse(entry))
}

// UpsertTodayHandler creates or overwrites today's entry.
// PUT /v1/entries/today
func (h *EntryHandler) UpsertTodayHandler(c *gin.Context) {
	author, ok := h.author(c)
	if !ok {
		return
	}

	var req dto.UpsertTodayRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	entry, err := h.entryUseCase.UpsertToday(c.Request.Context(), author, entriesUseCase.UpsertInput{
		EmotionScale: *req.EmotionScale,
		Text:         dto.SanitizeText(req.Text),
		Ephemeral:    req.Ephemeral,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapActiveEntryToResponse(entry))
}

// ImportLocalHandler stores past entries kept by an offline client.
// PUT /v1/entries
func (h *EntryHandler) ImportLocalHandler(c *gin.Context) {
	author, ok := h.author(c)
	if !ok {
		return
	}

	var req dto.ImportLocalRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	imported, err := h.entryUseCase.ImportLocal(c.Request.Context(), author, req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ImportLocalResponse{Imported: imported})
}

// AverageHandler returns the mean emotion scale over past entries.
// GET /v1/entries/average
func (h *EntryHandler) AverageHandler(c *gin.Context) {
	author, ok := h.author(c)
	if !ok {
		return
	}

	average, err := h.entryUseCase.Average(c.Request.Context(), author)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.AverageResponse{Average: average})
}

func (h *EntryHandler) author(c *gin.Context) (entriesDomain.Author, bool) {
	author, ok := authHTTP.GetAuthor(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return entriesDomain.Author{}, false
	}
	return author, true
}

// bindJSON decodes the body into dst. It answers 413 when the body limit was
// hit and 400 for anything else.
func (h *EntryHandler) bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.logger.Warn("request body too large", slog.Int64("limit", tooLarge.Limit))
		c.JSON(http.StatusRequestEntityTooLarge, httputil.ErrorResponse{
			Error:   "payload_too_large",
			Message: fmt.Sprintf("request body must not exceed %d bytes", tooLarge.Limit),
		})
		return false
	}

	httputil.HandleBadRequestGin(c, err, h.logger)
	return false
}

// BodyLimitMiddleware caps the request body at limit bytes.
func BodyLimitMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// RegisterRoutes mounts the entry routes on group. Writes get maxBodyBytes,
// imports maxBodyBytes per allowed entry.
func (h *EntryHandler) RegisterRoutes(group *gin.RouterGroup, maxBodyBytes int64, maxImportEntries int) {
	group.GET("", h.ListHandler)
	group.PUT("", BodyLimitMiddleware(maxBodyBytes*int64(maxImportEntries)), h.ImportLocalHandler)
	group.GET("/average", h.AverageHandler)
	group.GET("/today", h.GetTodayHandler)
	group.PUT("/today", BodyLimitMiddleware(maxBodyBytes), h.UpsertTodayHandler)
	group.GET("/:id", h.GetHandler)
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mangashelf/internal/http-api/dto"
	"mangashelf/internal/http-api/service"
)

type LibraryHandler struct {
	svc service.LibraryService
}

func NewLibraryHandler(svc service.LibraryService) *LibraryHandler {
	return &LibraryHandler{svc: svc}
}

func (h *LibraryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Add)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Remove)
	rg.GET("/stats", h.Stats)
}

// currentUserID pulls the authenticated identity set by the auth middleware.
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return "", false
	}
	return userID.(string), true
}

// Add a catalog title to the user's library.
func (h *LibraryHandler) Add(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.AddToLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entry, err := h.svc.Add(ctx, userID, service.AddParams{
		MalID:         req.MalID,
		Title:         req.Title,
		ImageURL:      req.ImageURL,
		Status:        req.Status,
		TotalChapters: req.TotalChapters,
		TotalVolumes:  req.TotalVolumes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyInLibrary):
			c.JSON(http.StatusConflict, gin.H{"error": "manga already in library"})
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add to library"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.EntryResponse{Entry: entry})
}

// List the user's library, optionally narrowed to one status.
func (h *LibraryHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entries, err := h.svc.List(ctx, userID, c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch library"})
		return
	}

	c.JSON(http.StatusOK, dto.LibraryListResponse{
		Library: entries,
		Total:   len(entries),
	})
}

// Update applies a partial update to one entry.
func (h *LibraryHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	entryID := c.Param("id")
	if entryID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entry id required"})
		return
	}

	var req dto.UpdateLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := service.UpdateParams{
		Status:       req.Status,
		Rating:       req.Rating,
		ChaptersRead: req.ChaptersRead,
		VolumesRead:  req.VolumesRead,
		OwnedVolumes: req.OwnedVolumes,
		VolumeRange:  req.VolumeRange,
		Notes:        req.Notes,
	}

	startedAt, err := parseTimePatch(req.StartedAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid started_at timestamp"})
		return
	}
	params.StartedAt = startedAt

	completedAt, err := parseTimePatch(req.CompletedAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid completed_at timestamp"})
		return
	}
	params.CompletedAt = completedAt

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entry, err := h.svc.Update(ctx, userID, entryID, params)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEntryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "library entry not found"})
		case errors.Is(err, service.ErrInvalidStatus),
			errors.Is(err, service.ErrInvalidRating),
			errors.Is(err, service.ErrInvalidProgress):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update library entry"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.EntryResponse{Entry: entry})
}

// Remove deletes one entry owned by the user.
func (h *LibraryHandler) Remove(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	entryID := c.Param("id")
	if entryID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entry id required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Remove(ctx, userID, entryID); err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "library entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete library entry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Stats aggregates the user's collection.
func (h *LibraryHandler) Stats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.svc.Stats(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// parseTimePatch maps an optional RFC3339 string to a set/clear patch.
// Empty string means clear, nil means leave untouched.
func parseTimePatch(raw *string) (*service.TimePatch, error) {
	if raw == nil {
		return nil, nil
	}
	if *raw == "" {
		return &service.TimePatch{Clear: true}, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, err
	}
	return &service.TimePatch{Time: t}, nil
}

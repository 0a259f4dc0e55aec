package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mangashelf/internal/catalog"
)

type CatalogHandler struct {
	svc *catalog.Service
}

func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.Search)
	rg.GET("/details/:id", h.Details)
	rg.GET("/top", h.Top)
}

// Search proxies a catalog search to the upstream provider.
func (h *CatalogHandler) Search(c *gin.Context) {
	query := c.Query("q")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	filters := catalog.SearchFilters{
		Type:    c.Query("type"),
		OrderBy: c.Query("order_by"),
		Status:  c.Query("status"),
	}

	result, err := h.svc.Search(c.Request.Context(), query, page, filters)
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search manga"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Details fetches the full record for one catalog title.
func (h *CatalogHandler) Details(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}

	detail, err := h.svc.Details(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch manga details"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Top returns the ranked top list, cached for a bounded interval.
func (h *CatalogHandler) Top(c *gin.Context) {
	entries, err := h.svc.Top(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch top manga"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": entries})
}

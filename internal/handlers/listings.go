package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avillareal/homescout/internal/services"
	"github.com/avillareal/homescout/pkg/response"
)

// ListingsHandler serves residential listings enriched with cached
// coordinates.
type ListingsHandler struct {
	enrichment *services.EnrichmentService
}

func NewListingsHandler(enrichment *services.EnrichmentService) *ListingsHandler {
	return &ListingsHandler{enrichment: enrichment}
}

type activeListingsQuery struct {
	Limit int `form:"limit,default=10" binding:"min=1,max=100"`
}

// Active handles GET /api/listings/active.
func (h *ListingsHandler) Active(c *gin.Context) {
	var q activeListingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperrInvalid("limit must be between 1 and 100", err))
		return
	}

	listings, stats, err := h.enrichment.EnrichActive(c.Request.Context(), q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": listings,
		"count":    len(listings),
		"stats":    stats,
	})
}

// Detail handles GET /api/listings/:listingKey.
func (h *ListingsHandler) Detail(c *gin.Context) {
	listing, err := h.enrichment.Listing(c.Request.Context(), c.Param("listingKey"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

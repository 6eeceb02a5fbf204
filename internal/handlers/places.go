package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avillareal/homescout/internal/providers"
	"github.com/avillareal/homescout/internal/services"
	"github.com/avillareal/homescout/internal/store"
	"github.com/avillareal/homescout/pkg/response"
)

// PlacesHandler serves nearby place searches, place photos, and the
// places cache-clear endpoint.
type PlacesHandler struct {
	places *services.PlacesService
	store  *store.Store
}

func NewPlacesHandler(places *services.PlacesService, st *store.Store) *PlacesHandler {
	return &PlacesHandler{places: places, store: st}
}

type nearbyQuery struct {
	Location  string `form:"location"`
	Radius    int    `form:"radius,default=1000" binding:"min=100,max=50000"`
	Type      string `form:"type,default=restaurant"`
	Keyword   string `form:"keyword"`
	PageToken string `form:"pagetoken"`
}

// Nearby handles GET /api/places/nearby.
func (h *PlacesHandler) Nearby(c *gin.Context) {
	h.search(c, "", 0)
}

// Schools handles GET /api/places/schools.
func (h *PlacesHandler) Schools(c *gin.Context) {
	h.search(c, "school", 1500)
}

// Hospitals handles GET /api/places/hospitals.
func (h *PlacesHandler) Hospitals(c *gin.Context) {
	h.search(c, "hospital", 2000)
}

// Grocery handles GET /api/places/grocery.
func (h *PlacesHandler) Grocery(c *gin.Context) {
	h.search(c, "supermarket", 1500)
}

// Transportation handles GET /api/places/transportation.
func (h *PlacesHandler) Transportation(c *gin.Context) {
	h.search(c, "transit_station", 1500)
}

// search runs one nearby search. A non-empty fixedType pins the place
// type and default radius for the category endpoints; the generic
// endpoint takes both from the query string.
func (h *PlacesHandler) search(c *gin.Context, fixedType string, fixedRadius int) {
	var q nearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperrInvalid("radius must be between 100 and 50000", err))
		return
	}
	if q.Location == "" && q.PageToken == "" {
		response.Error(c, apperrInvalid("location is required", nil))
		return
	}

	if fixedType != "" {
		q.Type = fixedType
		if c.Query("radius") == "" {
			q.Radius = fixedRadius
		}
	}

	result, cached, err := h.places.SearchNearby(c.Request.Context(), providers.NearbyQuery{
		Location:  q.Location,
		Radius:    q.Radius,
		PlaceType: q.Type,
		Keyword:   q.Keyword,
		PageToken: q.PageToken,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("X-Cache", cacheHeader(cached))
	c.JSON(http.StatusOK, result)
}

type photoQuery struct {
	Reference string `form:"reference" binding:"required"`
	MaxWidth  int    `form:"maxwidth,default=400" binding:"min=1,max=1600"`
	MaxHeight int    `form:"maxheight" binding:"omitempty,min=1,max=1600"`
}

// Photo handles GET /api/places/photo, streaming the raw image bytes.
func (h *PlacesHandler) Photo(c *gin.Context) {
	var q photoQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperrInvalid("reference is required and sizes must be 1-1600", err))
		return
	}

	photo, cached, err := h.places.Photo(c.Request.Context(), q.Reference, q.MaxWidth, q.MaxHeight)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("X-Cache", cacheHeader(cached))
	c.Data(http.StatusOK, photo.ContentType, photo.Data)
}

// ClearCache handles POST /api/places/clear-cache. Only the place
// search rows are dropped; photos and geocode results stay.
func (h *PlacesHandler) ClearCache(c *gin.Context) {
	deleted, err := h.store.Clear(c.Request.Context(), store.KindPlaces)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"deleted": deleted[store.KindPlaces],
	})
}

func cacheHeader(cached bool) string {
	if cached {
		return "HIT"
	}
	return "MISS"
}

package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"evea/internal/pkg/response"
	"evea/internal/pkg/utils"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public browse endpoints. cache wraps the listing
// endpoints (typically the Redis response cache).
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, cache ...gin.HandlerFunc) {
	api.GET("/categories", append(cache[:len(cache):len(cache)], h.Categories)...)
	api.GET("/vendor-cards", append(cache[:len(cache):len(cache)], h.ListCards)...)
	api.GET("/vendor-cards/:id", h.GetCard)
	api.GET("/search", h.Search)
}

// Categories lists every category in display order.
// @Summary		List categories
// @Tags		Catalog
// @Success		200	{object}	map[string]interface{}
// @Router		/categories [GET]
func (h *Handler) Categories(c *gin.Context) {
	cats, err := h.service.Categories(c.Request.Context())
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"categories": cats})
}

// ListCards browses published vendor cards.
// @Summary		Browse vendor cards
// @Tags		Catalog
// @Param		category	query	string	false	"Category id or slug"
// @Param		city		query	string	false	"City (case-insensitive)"
// @Param		minPrice	query	number	false	"Minimum starting price"
// @Param		maxPrice	query	number	false	"Maximum starting price"
// @Param		minRating	query	number	false	"Minimum rating"
// @Param		featured	query	bool	false	"Only featured (true) or non-featured (false)"
// @Param		sort		query	string	false	"featured, rating, price_asc, price_desc or newest"
// @Param		page		query	int		false	"Page"
// @Param		limit		query	int		false	"Page size"
// @Success		200	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Router		/vendor-cards [GET]
func (h *Handler) ListCards(c *gin.Context) {
	q, msg := parseCardQuery(c)
	if msg != "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	list, err := h.service.ListCards(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"items": list.Items,
		"total": list.Total,
		"page":  list.Page,
		"limit": list.Limit,
	})
}

// GetCard returns one published vendor card.
// @Summary		Vendor card
// @Tags		Catalog
// @Param		id	path	int	true	"Vendor card id"
// @Success		200	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/vendor-cards/{id} [GET]
func (h *Handler) GetCard(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid vendor card id")
		return
	}
	card, err := h.service.GetCard(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"vendorCard": card})
}

// Search finds vendor cards and categories by keyword.
// @Summary		Search
// @Tags		Catalog
// @Param		q		query	string	true	"At least 2 characters"
// @Param		limit	query	int		false	"Maximum results per kind"
// @Success		200	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Router		/search [GET]
func (h *Handler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	res, err := h.service.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"query":       res.Query,
		"vendorCards": res.Cards,
		"categories":  res.Categories,
	})
}

// parseCardQuery returns a user-facing message for the first malformed
// parameter.
func parseCardQuery(c *gin.Context) (CardQuery, string) {
	page := utils.PageFromQuery(c)
	q := CardQuery{Page: page.Page, Limit: page.Limit}
	f := &q.Filter

	if cat := strings.TrimSpace(c.Query("category")); cat != "" {
		if id, err := strconv.ParseInt(cat, 10, 64); err == nil {
			f.CategoryID = id
		} else {
			f.CategorySlug = cat
		}
	}
	f.City = c.Query("city")
	f.Sort = c.Query("sort")

	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{{"minPrice", &f.MinPrice}, {"maxPrice", &f.MaxPrice}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			return q, p.name + " must be a non-negative number"
		}
		*p.dst = &d
	}

	if raw := c.Query("minRating"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil || r < 0 || r > 5 {
			return q, "minRating must be between 0 and 5"
		}
		f.MinRating = r
	}
	if raw := c.Query("featured"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return q, "featured must be true or false"
		}
		f.Featured = &b
	}
	return q, ""
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrCardNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Vendor card not found")
	case errors.Is(err, ErrQueryTooShort):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Search query must be at least 2 characters")
	case errors.Is(err, ErrInvalidSort):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "sort must be one of featured, rating, price_asc, price_desc, newest")
	case errors.Is(err, ErrInvalidPriceRange):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "minPrice must not exceed maxPrice")
	default:
		response.Internal(c, err)
	}
}

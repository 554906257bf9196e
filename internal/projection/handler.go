package projection

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	httperr "github.com/salesview-lab/salesview/internal/core/errors"
	"github.com/salesview-lab/salesview/internal/core/query"
)

// RegisterRoutes registers the read endpoints under the given group.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/sales", s.HandleQuerySales)
	r.GET("/sales/filters", s.HandleFilters)
}

// HandleQuerySales handles GET /sales.
// Query parameters: search, customerRegion, gender, productCategory, tags,
// paymentMethod, ageMin, ageMax, dateFrom, dateTo, sortBy, sortOrder, page, limit.
func (s *Service) HandleQuerySales(c *gin.Context) {
	var params query.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	resp, err := s.QuerySales(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, query.ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidQueryError,
				Message:   "Invalid sales query",
				Details:   err.Error(),
			})
			return
		}

		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to query sales",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleFilters handles GET /sales/filters.
func (s *Service) HandleFilters(c *gin.Context) {
	resp, err := s.Filters(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to load filter options",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"
	"github.com/netrics-lab/netrics-dashboard/internal/core/datafile"
	httperr "github.com/netrics-lab/netrics-dashboard/internal/core/errors"
)

// RegisterRoutes registers all dashboard API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/dashboard/stats", s.HandleCurrentStats)
	r.GET("/dashboard/series", s.HandleSeries)
}

// HandleCurrentStats handles GET /dashboard/stats.
// Responses carry an ETag; a matching If-None-Match is answered with 304.
func (s *Service) HandleCurrentStats(c *gin.Context) {
	points, err := s.CurrentStats(c.Request.Context())
	if err != nil {
		writeScanError(c, err, "Failed to read current statistics")
		return
	}

	body, err := json.Marshal(points)
	if err != nil {
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to encode current statistics",
			Details:   err.Error(),
		})
		return
	}

	etag := `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// HandleSeries handles GET /dashboard/series
// Query parameters: key (repeatable), age, decorate (repeatable), reverse
func (s *Service) HandleSeries(c *gin.Context) {
	var query struct {
		Keys     []string `form:"key" binding:"required"`
		Age      string   `form:"age"`
		Decorate []string `form:"decorate"`
		Reverse  bool     `form:"reverse"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	if query.Age == "" {
		query.Age = "1w"
	}
	age, err := datafile.ParseAge(query.Age)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid age",
			Details:   err.Error(),
		})
		return
	}

	resp, err := s.Series(c.Request.Context(), SeriesRequest{
		Keys:     query.Keys,
		Age:      age,
		Decorate: query.Decorate,
		Reverse:  query.Reverse,
	})
	if err != nil {
		writeScanError(c, err, "Failed to read series")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func writeScanError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   message,
			Details:   err.Error(),
		})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
			ErrorType: httperr.HttpTimeoutError,
			Message:   message,
			Details:   err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   message,
			Details:   err.Error(),
		})
	}
}

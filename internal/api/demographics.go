package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/turfworks/turf-platform/internal/demographics"
)

// demographicsRequest carries either a stored record id or an explicit
// tract set. When both are present the record wins.
type demographicsRequest struct {
	RecordID *int     `json:"record_id"`
	Tracts   []string `json:"tracts"`
}

// Demographics handles GET and POST /api/demographics. GET carries
// record_id as a query parameter; POST carries a JSON body with either
// record_id or a tracts array. A record with no tracts aggregates an
// empty list and returns all-zero totals, not an error.
func (h *Handler) Demographics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var req demographicsRequest
	if c.Request.Method == http.MethodGet {
		if v := c.Query("record_id"); v != "" {
			id, err := strconv.Atoi(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record_id"})
				return
			}
			req.RecordID = &id
		}
		if values := c.QueryArray("tracts"); len(values) > 0 {
			req.Tracts = values
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
	}

	tracts := req.Tracts
	if req.RecordID != nil {
		turf, err := h.store.GetTurf(ctx, *req.RecordID, CurrentScope(c))
		if err != nil {
			log.Printf("Failed to resolve record %d: %v", *req.RecordID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve record"})
			return
		}
		if turf == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
			return
		}
		tracts = turf.Tracts
	} else if tracts == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "record_id or tracts is required"})
		return
	}

	stats, err := h.store.GetTractStats(ctx, tracts)
	if err != nil {
		log.Printf("Failed to fetch tract stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch demographics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"aggregated": demographics.Aggregate(stats)})
}

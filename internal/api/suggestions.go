package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// suggestionShortlistSize caps the second grouping.
const suggestionShortlistSize = 10

// suggestionGroup is a labeled subset of the neighbor list. Callers
// must not assume any semantics beyond the label.
type suggestionGroup struct {
	Name   string   `json:"name"`
	Tracts []string `json:"tracts"`
}

// Suggestions handles GET /api/suggestions/:record_id. It resolves the
// stored record's tracts and returns them alongside groupings of
// adjacent tracts not already in the record.
func (h *Handler) Suggestions(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	id, err := strconv.Atoi(c.Param("record_id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record_id"})
		return
	}

	turf, err := h.store.GetTurf(ctx, id, CurrentScope(c))
	if err != nil {
		log.Printf("Failed to resolve record %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve record"})
		return
	}
	if turf == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	neighbors, err := h.store.SuggestAdjacentTracts(ctx, turf.Tracts)
	if err != nil {
		log.Printf("Failed to suggest tracts for record %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch suggestions"})
		return
	}

	shortlist := neighbors
	if len(shortlist) > suggestionShortlistSize {
		shortlist = shortlist[:suggestionShortlistSize]
	}

	c.JSON(http.StatusOK, gin.H{
		"tracts": turf.Tracts,
		"suggestions": []suggestionGroup{
			{Name: "all", Tracts: neighbors},
			{Name: "top_10", Tracts: shortlist},
		},
	})
}

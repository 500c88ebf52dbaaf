package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/turfworks/turf-platform/internal/models"
)

// Handler holds the store and provides HTTP handlers
type Handler struct {
	store Store
}

// NewHandler creates a new handler instance
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Identity handles GET /api/ and echoes the forwarded identity, mainly
// for debugging the gateway contract.
func (h *Handler) Identity(c *gin.Context) {
	ic := CurrentIdentity(c)

	username := ic.Username
	if username == "" {
		username = "Guest"
	}
	c.JSON(http.StatusOK, gin.H{
		"username": username,
		"user_id":  ic.UserID,
		"org_name": ic.OrgName,
		"org_id":   ic.OrgID,
		"guest":    ic.IsGuest(),
	})
}

// turfRequest is the JSON body for create and edit operations.
type turfRequest struct {
	ID          int                `json:"id"`
	Tracts      []string           `json:"tracts"`
	Description models.Description `json:"description"`
}

// ListTurfs handles GET /api/edit
func (h *Handler) ListTurfs(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	turfs, err := h.store.ListTurfs(ctx, CurrentScope(c))
	if err != nil {
		log.Printf("Failed to list turfs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch turfs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"turfs": turfs})
}

// CreateTurf handles POST /api/edit
func (h *Handler) CreateTurf(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var req turfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.Tracts == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tracts is required"})
		return
	}
	if req.Description.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description.name is required"})
		return
	}

	turf, err := h.store.CreateTurf(ctx, req.Tracts, req.Description, CurrentScope(c))
	if err != nil {
		log.Printf("Failed to create turf: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create turf"})
		return
	}
	c.JSON(http.StatusCreated, turf)
}

// UpdateTurf handles PUT /api/edit
func (h *Handler) UpdateTurf(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var req turfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.ID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}
	if req.Tracts == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tracts is required"})
		return
	}

	turf, err := h.store.UpdateTurf(ctx, req.ID, req.Tracts, req.Description, CurrentScope(c))
	if err != nil {
		log.Printf("Failed to update turf %d: %v", req.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update turf"})
		return
	}
	if turf == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	c.JSON(http.StatusOK, turf)
}

// DeleteTurf handles DELETE /api/edit?id=
func (h *Handler) DeleteTurf(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	id, err := strconv.Atoi(c.Query("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	deleted, err := h.store.DeleteTurf(ctx, id, CurrentScope(c))
	if err != nil {
		log.Printf("Failed to delete turf %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete turf"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"deleted": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

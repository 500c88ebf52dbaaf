package api

import (
	"context"

	"github.com/turfworks/turf-platform/internal/demographics"
	"github.com/turfworks/turf-platform/internal/models"
)

// AuthStore re-derives caller scope from durable membership state.
type AuthStore interface {
	// AuthorizeOrgAdmin returns the guest sentinel scope when either id
	// is zero; otherwise the org id when an is_org_admin membership row
	// exists, or authorized=false when it does not.
	AuthorizeOrgAdmin(ctx context.Context, orgID, userID int) (scope int, authorized bool, err error)
}

// TurfStore is org-scoped CRUD over turf records.
type TurfStore interface {
	ListTurfs(ctx context.Context, orgID int) ([]models.Turf, error)
	GetTurf(ctx context.Context, id, orgID int) (*models.Turf, error)
	CreateTurf(ctx context.Context, tracts []string, description models.Description, orgID int) (*models.Turf, error)
	UpdateTurf(ctx context.Context, id int, tracts []string, description models.Description, orgID int) (*models.Turf, error)
	DeleteTurf(ctx context.Context, id, orgID int) (bool, error)
}

// TractStore queries the immutable census tract reference data.
type TractStore interface {
	SuggestAdjacentTracts(ctx context.Context, tracts []string) ([]string, error)
	GetTractStats(ctx context.Context, tracts []string) ([]demographics.TractStats, error)
}

// Store is the full persistence surface the turf service requires.
// *db.Database satisfies it; tests substitute fakes.
type Store interface {
	AuthStore
	TurfStore
	TractStore
	Health(ctx context.Context) error
}

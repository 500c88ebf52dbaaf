package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/turfworks/turf-platform/internal/models"
)

// GetOrganizationBySlug resolves a partner organization from its URL
// slug. Returns nil without error when no organization matches.
func (db *Database) GetOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	var org models.Organization
	err := db.Pool.QueryRow(ctx,
		"SELECT id, name, slug FROM main_organization WHERE slug = $1",
		slug,
	).Scan(&org.ID, &org.Name, &org.Slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query organization by slug: %w", err)
	}
	return &org, nil
}

// AuthorizeOrgAdmin re-derives the caller's scope from durable
// membership state. Callers with no user or no organization get the
// guest sentinel scope. Otherwise the (org, user) pair must have an
// is_org_admin membership row; authorized=false means the route must
// respond 403 and perform no side effects.
func (db *Database) AuthorizeOrgAdmin(ctx context.Context, orgID, userID int) (scope int, authorized bool, err error) {
	if orgID == 0 || userID == 0 {
		return models.GuestOrgID, true, nil
	}

	var exists bool
	err = db.Pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM main_membership
			WHERE organization_id = $1 AND member_id = $2 AND is_org_admin IS TRUE
		)`,
		orgID, userID,
	).Scan(&exists)
	if err != nil {
		return 0, false, fmt.Errorf("failed to query membership: %w", err)
	}
	if !exists {
		return 0, false, nil
	}
	return orgID, true, nil
}

package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/turfworks/turf-platform/internal/models"
)

// listTurfsQuery derives each record's geometry projection from its
// live tract list on every read: member tract polygons are repaired
// with ST_MakeValid before union, and unknown GEOIDs simply contribute
// no geometry. An empty union comes back as an empty string.
const listTurfsQuery = `
	SELECT t.id, t.tracts, t.description, t.organization_id,
	       COALESCE(ST_AsGeoJSON(g.geom), '')
	FROM main_turf t
	LEFT JOIN LATERAL (
		SELECT ST_Union(ST_MakeValid(ct.geometry)) AS geom
		FROM census_tracts ct
		WHERE ct.geoid = ANY(t.tracts)
	) g ON true
`

// ListTurfs retrieves all turfs in the given scope, each with its
// derived geometry projection. The guest scope lists records with no
// organization.
func (db *Database) ListTurfs(ctx context.Context, orgID int) ([]models.Turf, error) {
	query := listTurfsQuery + " WHERE t.organization_id = $1 ORDER BY t.id"
	args := []interface{}{orgID}
	if orgID == models.GuestOrgID {
		query = listTurfsQuery + " WHERE t.organization_id IS NULL ORDER BY t.id"
		args = nil
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query turfs: %w", err)
	}
	defer rows.Close()

	turfs := []models.Turf{}
	for rows.Next() {
		var turf models.Turf
		var geometryJSON string
		err := rows.Scan(&turf.ID, &turf.Tracts, &turf.Description, &turf.OrganizationID, &geometryJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to scan turf: %w", err)
		}
		turf.Geometry = models.NewGeometryProjection([]byte(geometryJSON))
		turfs = append(turfs, turf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating turfs: %w", err)
	}

	return turfs, nil
}

// GetTurf retrieves a single turf by id within the given scope. Returns
// nil without error when no record matches, including a valid id owned
// by a different organization.
func (db *Database) GetTurf(ctx context.Context, id, orgID int) (*models.Turf, error) {
	query := "SELECT id, tracts, description, organization_id FROM main_turf WHERE id = $1 AND organization_id = $2"
	args := []interface{}{id, orgID}
	if orgID == models.GuestOrgID {
		query = "SELECT id, tracts, description, organization_id FROM main_turf WHERE id = $1 AND organization_id IS NULL"
		args = args[:1]
	}

	var turf models.Turf
	err := db.Pool.QueryRow(ctx, query, args...).Scan(&turf.ID, &turf.Tracts, &turf.Description, &turf.OrganizationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query turf %d: %w", id, err)
	}
	return &turf, nil
}

// CreateTurf inserts a new turf owned by the given scope and returns it
// with the store-assigned id. Tract ids are not validated against the
// tract store at write time; referential integrity is enforced lazily
// on read. The single INSERT commits atomically.
func (db *Database) CreateTurf(ctx context.Context, tracts []string, description models.Description, orgID int) (*models.Turf, error) {
	var orgParam interface{}
	if orgID != models.GuestOrgID {
		orgParam = orgID
	}

	turf := models.Turf{Tracts: tracts, Description: description}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO main_turf (tracts, description, organization_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, organization_id`,
		tracts, description, orgParam,
	).Scan(&turf.ID, &turf.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert turf: %w", err)
	}
	return &turf, nil
}

// UpdateTurf replaces a turf's tracts and description. The WHERE clause
// carries the authorized scope, so an id owned by another organization
// reads as not-found rather than being writable; organization_id itself
// is never updated. Returns nil without error when no row matched.
func (db *Database) UpdateTurf(ctx context.Context, id int, tracts []string, description models.Description, orgID int) (*models.Turf, error) {
	query := `UPDATE main_turf SET tracts = $2, description = $3
	          WHERE id = $1 AND organization_id = $4
	          RETURNING id, tracts, description, organization_id`
	args := []interface{}{id, tracts, description, orgID}
	if orgID == models.GuestOrgID {
		query = `UPDATE main_turf SET tracts = $2, description = $3
		         WHERE id = $1 AND organization_id IS NULL
		         RETURNING id, tracts, description, organization_id`
		args = args[:3]
	}

	var turf models.Turf
	err := db.Pool.QueryRow(ctx, query, args...).Scan(&turf.ID, &turf.Tracts, &turf.Description, &turf.OrganizationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update turf %d: %w", id, err)
	}
	return &turf, nil
}

// DeleteTurf removes a turf within the given scope. Deleting an id that
// does not exist (or was already deleted) reports false, not an error.
func (db *Database) DeleteTurf(ctx context.Context, id, orgID int) (bool, error) {
	query := "DELETE FROM main_turf WHERE id = $1 AND organization_id = $2"
	args := []interface{}{id, orgID}
	if orgID == models.GuestOrgID {
		query = "DELETE FROM main_turf WHERE id = $1 AND organization_id IS NULL"
		args = args[:1]
	}

	result, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete turf %d: %w", id, err)
	}
	return result.RowsAffected() > 0, nil
}

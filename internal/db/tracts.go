package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/turfworks/turf-platform/internal/demographics"
)

// SuggestAdjacentTracts returns the GEOIDs of tracts that share a
// boundary with any tract in the input set, excluding the input tracts
// themselves, ordered by GEOID. Sharing a boundary means a non-empty
// linear intersection; tracts that merely touch at a corner do not
// qualify. An empty input yields an empty result.
func (db *Database) SuggestAdjacentTracts(ctx context.Context, tracts []string) ([]string, error) {
	if len(tracts) == 0 {
		return []string{}, nil
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT ct.geoid
		 FROM census_tracts ct
		 JOIN census_tracts sel ON sel.geoid = ANY($1)
		 WHERE ct.geoid <> ALL($1)
		   AND ST_Touches(ct.geometry, sel.geometry)
		   AND ST_Dimension(ST_Intersection(ct.geometry, sel.geometry)) = 1
		 ORDER BY ct.geoid`,
		tracts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query adjacent tracts: %w", err)
	}
	defer rows.Close()

	neighbors := []string{}
	for rows.Next() {
		var geoid string
		if err := rows.Scan(&geoid); err != nil {
			return nil, fmt.Errorf("failed to scan adjacent tract: %w", err)
		}
		neighbors = append(neighbors, geoid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating adjacent tracts: %w", err)
	}

	return neighbors, nil
}

// GetTractStats fetches the demographic statistic columns for the given
// tracts. Unknown GEOIDs return no row and NULL column values scan as
// zero, so missing data never fails the aggregation.
func (db *Database) GetTractStats(ctx context.Context, tracts []string) ([]demographics.TractStats, error) {
	if len(tracts) == 0 {
		return []demographics.TractStats{}, nil
	}

	cols := demographics.Columns()
	selects := make([]string, len(cols))
	for i, col := range cols {
		selects[i] = fmt.Sprintf("COALESCE(%s, 0)", col)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM census_tracts WHERE geoid = ANY($1)",
		strings.Join(selects, ", "),
	)

	rows, err := db.Pool.Query(ctx, query, tracts)
	if err != nil {
		return nil, fmt.Errorf("failed to query tract stats: %w", err)
	}
	defer rows.Close()

	stats := []demographics.TractStats{}
	for rows.Next() {
		values := make([]float64, len(cols))
		dests := make([]interface{}, len(cols))
		for i := range values {
			dests[i] = &values[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("failed to scan tract stats: %w", err)
		}

		row := make(demographics.TractStats, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		stats = append(stats, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tract stats: %w", err)
	}

	return stats, nil
}

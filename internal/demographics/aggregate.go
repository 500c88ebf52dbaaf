// Package demographics sums tract-level planning-database statistics
// and derives normalized percentage metrics. It is pure: the same tract
// rows always produce the same result, and nothing is persisted.
package demographics

import "math"

// TotalPopulationColumn is reported as a plain count, not a percentage.
const TotalPopulationColumn = "tot_population_cen_2020"

// Metric pairs a derived percentage with its numerator and denominator
// columns. The list is versioned with the underlying census vintage
// (2020 Census counts, ACS 2017-2021 estimates); changing it changes
// the API contract.
type Metric struct {
	Key         string
	Numerator   string
	Denominator string
}

// Metrics is the fixed list of derived percentage metrics.
var Metrics = []Metric{
	{Key: "pct_hispanic_cen_2020", Numerator: "hispanic_cen_2020", Denominator: TotalPopulationColumn},
	{Key: "pct_nh_blk_alone_cen_2020", Numerator: "nh_blk_alone_cen_2020", Denominator: TotalPopulationColumn},
	{Key: "pct_nh_asian_alone_cen_2020", Numerator: "nh_asian_alone_cen_2020", Denominator: TotalPopulationColumn},
	{Key: "pct_nh_aian_alone_cen_2020", Numerator: "nh_aian_alone_cen_2020", Denominator: TotalPopulationColumn},
	{Key: "pct_rel_family_hhd_cen_2020", Numerator: "rel_family_hhd_cen_2020", Denominator: TotalPopulationColumn},
	{Key: "pct_born_foreign_acs_17_21", Numerator: "born_foreign_acs_17_21", Denominator: "pop_acs_17_21"},
	{Key: "pct_prs_blw_pov_lev_acs_17_21", Numerator: "prs_blw_pov_lev_acs_17_21", Denominator: "pov_univ_acs_17_21"},
	{Key: "pct_crowd_occp_u_acs_17_21", Numerator: "crowd_occp_u_acs_17_21", Denominator: "tot_occp_units_acs_17_21"},
	{Key: "pct_mlt_u2_9_strc_acs_17_21", Numerator: "mlt_u2_9_strc_acs_17_21", Denominator: "tot_housing_units_acs_17_21"},
	{Key: "pct_mlt_u10p_acs_17_21", Numerator: "mlt_u10p_acs_17_21", Denominator: "tot_housing_units_acs_17_21"},
	{Key: "pct_eng_vw_acs_17_21", Numerator: "eng_vw_acs_17_21", Denominator: "tot_occp_units_acs_17_21"},
	{Key: "pct_eng_vw_span_acs_17_21", Numerator: "eng_vw_span_acs_17_21", Denominator: "tot_occp_units_acs_17_21"},
	{Key: "pct_eng_vw_indoeuro_acs_17_21", Numerator: "eng_vw_indoeuro_acs_17_21", Denominator: "tot_occp_units_acs_17_21"},
	{Key: "pct_eng_vw_api_acs_17_21", Numerator: "eng_vw_api_acs_17_21", Denominator: "tot_occp_units_acs_17_21"},
}

// Columns returns every statistic column the aggregator reads, in a
// stable order suitable for building the SELECT list.
func Columns() []string {
	seen := map[string]bool{TotalPopulationColumn: true}
	cols := []string{TotalPopulationColumn}
	for _, m := range Metrics {
		for _, c := range []string{m.Numerator, m.Denominator} {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	return cols
}

// TractStats holds one tract's statistic columns. Columns absent from
// the map count as zero.
type TractStats map[string]float64

// Aggregate sums the statistic columns across tracts and derives the
// percentage metrics, rounded to two decimal places. A zero denominator
// sum yields a zero percentage, never a division error. The total
// population is reported as a plain integer count. An empty input
// yields an all-zero result.
func Aggregate(rows []TractStats) map[string]interface{} {
	cols := Columns()
	sums := make(map[string]float64, len(cols))
	for _, row := range rows {
		for _, col := range cols {
			sums[col] += row[col]
		}
	}

	aggregated := make(map[string]interface{}, len(Metrics)+1)
	for _, m := range Metrics {
		aggregated[m.Key] = pct(sums[m.Numerator], sums[m.Denominator])
	}
	aggregated[TotalPopulationColumn] = int64(sums[TotalPopulationColumn])
	return aggregated
}

// pct computes num/den*100 rounded to two decimals, 0 when den is 0.
func pct(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return math.Round(num/den*100*100) / 100
}
